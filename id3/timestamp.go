package id3

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Timestamp is an ID3v2.4 time stamp, a restricted form of ISO 8601
// (yyyy, yyyy-MM, yyyy-MM-dd, yyyy-MM-ddTHH, yyyy-MM-ddTHH:mm and
// yyyy-MM-ddTHH:mm:ss). Components that are absent are negative.
type Timestamp struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

var timestampSplit = regexp.MustCompile(`[-T:/.]|\s+`)

var (
	timestampFormats = [...]string{"%04d", "%02d", "%02d", "%02d", "%02d", "%02d"}
	timestampSeps    = [...]string{"-", "-", "T", ":", ":", ""}
)

// ParseTimestamp parses s leniently. Components that are missing or
// not numeric are marked as absent.
func ParseTimestamp(s string) Timestamp {
	parts := timestampSplit.Split(s+":::::", -1)
	var v [6]int
	for i := range v {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			n = -1
		}
		v[i] = n
	}
	return Timestamp{v[0], v[1], v[2], v[3], v[4], v[5]}
}

// TimestampFromTime returns a timestamp with second precision.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()}
}

func (ts Timestamp) parts() [6]int {
	return [6]int{ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second}
}

// String formats the timestamp up to the first absent component.
func (ts Timestamp) String() string {
	var sb strings.Builder
	for i, p := range ts.parts() {
		if p < 0 {
			break
		}
		if i > 0 {
			sb.WriteString(timestampSeps[i-1])
		}
		fmt.Fprintf(&sb, timestampFormats[i], p)
	}
	return sb.String()
}

// Time converts the timestamp to a time in UTC. Absent components
// default to their minimum.
func (ts Timestamp) Time() (time.Time, error) {
	if ts.Year < 0 {
		return time.Time{}, fmt.Errorf("timestamp %q has no year", ts.String())
	}
	p := ts.parts()
	absent := false
	for i := 1; i < len(p); i++ {
		absent = absent || p[i] < 0
		if !absent {
			continue
		}
		p[i] = 0
		if i < 3 {
			p[i] = 1
		}
	}
	return time.Date(p[0], time.Month(p[1]), p[2], p[3], p[4], p[5], 0, time.UTC), nil
}
