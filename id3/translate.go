package id3

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"honnef.co/go/audiotag/internal/logging"
)

var (
	yearRE  = regexp.MustCompile(`^[0-9]+$`)
	ddmmRE  = regexp.MustCompile(`^([0-9]{2})([0-9]{2})$`)
	genreRE = regexp.MustCompile(`(?s)^((?:\((?:[0-9]+|RX|CR)\))*)(.*)$`)
)

// Frames that only exist in ID3v2.4.
var v24Only = []FrameType{
	"ASPI", "EQU2", "RVA2", "SEEK", "SIGN", "TDEN", "TDOR", "TDRC",
	"TDRL", "TDTG", "TIPL", "TMCL", "TMOO", "TPRO", "TSOA", "TSOP",
	"TSOT", "TSST",
}

// Frames that cannot be represented in ID3v2.4.
var v23Only = []FrameType{"RVAD", "EQUA", "TRDA", "TSIZ", "TDAT", "TIME"}

func (t *Tag) translate(version int) []*TranslationError {
	if version == 3 {
		return t.UpdateToV23()
	}
	return t.UpdateToV24()
}

type translation struct {
	errs []*TranslationError
}

func (tr *translation) drop(id FrameType, format string, args ...interface{}) {
	err := &TranslationError{Frame: id, Reason: fmt.Sprintf(format, args...)}
	logging.Logger().Debug().Str("frame", string(id)).Str("reason", err.Reason).Msg("dropping frame")
	tr.errs = append(tr.errs, err)
}

// UpdateToV24 converts ID3v2.3 frames to their ID3v2.4 counterparts:
//
//   - TYER, TDAT and TIME get merged into TDRC
//   - TORY gets replaced by TDOR
//   - IPLS gets replaced by TIPL
//   - RVAD, EQUA, TRDA and TSIZ are removed
//
// Frames that had to be dropped are reported.
func (t *Tag) UpdateToV24() []*TranslationError {
	var tr translation
	t.updateCommon()

	years := t.popText("TYER")
	dates := t.popText("TDAT")
	times := t.popText("TIME")
	var stamps []string
	n := max(len(years), len(dates), len(times))
	for i := 0; i < n; i++ {
		y, d, tm := at(years, i), at(dates, i), at(times, i)
		if !yearRE.MatchString(y) {
			if y != "" {
				tr.drop("TYER", "invalid year %q", y)
			}
			continue
		}
		stamp := y
		if m := ddmmRE.FindStringSubmatch(d); m != nil {
			stamp += "-" + m[2] + "-" + m[1]
			if m := ddmmRE.FindStringSubmatch(tm); m != nil {
				stamp += "T" + m[1] + ":" + m[2] + ":00"
			} else if tm != "" {
				tr.drop("TIME", "invalid time %q", tm)
			}
		} else if d != "" {
			tr.drop("TDAT", "invalid date %q", d)
		}
		stamps = append(stamps, stamp)
	}
	if len(stamps) > 0 {
		if t.Has("TDRC") {
			tr.drop("TYER", "TDRC already present")
		} else {
			t.Add(&TextInformationFrame{
				FrameHeader: FrameHeader{Type: "TDRC"},
				Encoding:    EncodingISO88591,
				Text:        stamps,
			})
		}
	}

	if f, ok := t.pop("TORY").(*TextInformationFrame); ok {
		if t.Has("TDOR") {
			tr.drop("TORY", "TDOR already present")
		} else {
			t.Add(&TextInformationFrame{
				FrameHeader: FrameHeader{Type: "TDOR"},
				Encoding:    EncodingISO88591,
				Text:        f.Text,
			})
		}
	}

	if f, ok := t.pop("IPLS").(*PairedTextFrame); ok {
		if t.Has("TIPL") {
			tr.drop("IPLS", "TIPL already present")
		} else {
			t.Add(&PairedTextFrame{
				FrameHeader: FrameHeader{Type: "TIPL"},
				Encoding:    f.Encoding,
				Pairs:       f.Pairs,
			})
		}
	}

	for _, id := range v23Only {
		if t.deleteID(id) {
			tr.drop(id, "not supported by ID3v2.4")
		}
	}
	return tr.errs
}

// UpdateToV23 converts ID3v2.4 frames to their ID3v2.3 counterparts:
//
//   - TIPL and TMCL get merged into IPLS
//   - TDOR gets replaced by TORY
//   - TDRC gets split into TYER, TDAT and TIME
//   - all other frames that only exist in ID3v2.4 are removed
//
// Frames that had to be dropped are reported. To keep one of them,
// remove it before the update and add it again afterwards.
func (t *Tag) UpdateToV23() []*TranslationError {
	var tr translation
	t.updateCommon()

	if t.Has("TIPL") || t.Has("TMCL") {
		var (
			pairs []TextPair
			enc   Encoding
		)
		for _, id := range []string{"TIPL", "TMCL"} {
			if f, ok := t.pop(id).(*PairedTextFrame); ok {
				pairs = append(pairs, f.Pairs...)
				enc = f.Encoding
			}
		}
		if t.Has("IPLS") {
			tr.drop("TIPL", "IPLS already present")
		} else {
			t.Add(&PairedTextFrame{
				FrameHeader: FrameHeader{Type: "IPLS"},
				Encoding:    enc,
				Pairs:       pairs,
			})
		}
	}

	if f, ok := t.pop("TDOR").(*TextInformationFrame); ok && len(f.Text) > 0 {
		d := f.Timestamps()[0]
		if d.Year > 0 && !t.Has("TORY") {
			t.addText("TORY", f.Encoding, fmt.Sprintf("%04d", d.Year))
		} else {
			tr.drop("TDOR", "cannot convert %q", f.Text[0])
		}
	}

	if f, ok := t.pop("TDRC").(*TextInformationFrame); ok && len(f.Text) > 0 {
		d := f.Timestamps()[0]
		if d.Year <= 0 {
			tr.drop("TDRC", "cannot convert %q", f.Text[0])
		}
		if d.Year > 0 && !t.Has("TYER") {
			t.addText("TYER", f.Encoding, fmt.Sprintf("%04d", d.Year))
		}
		if d.Month > 0 && d.Day > 0 && !t.Has("TDAT") {
			t.addText("TDAT", f.Encoding, fmt.Sprintf("%02d%02d", d.Day, d.Month))
		}
		if d.Hour > 0 && d.Minute > 0 && !t.Has("TIME") {
			t.addText("TIME", f.Encoding, fmt.Sprintf("%02d%02d", d.Hour, d.Minute))
		}
	}

	for _, id := range v24Only {
		if t.deleteID(id) {
			tr.drop(id, "not supported by ID3v2.3")
		}
	}
	return tr.errs
}

// updateCommon applies the conversions shared by both updates.
func (t *Tag) updateCommon() {
	if f, ok := t.Get("TCON").(*TextInformationFrame); ok {
		f.Text = Genres(f.Text)
	}
	for _, f := range t.GetAll("APIC") {
		p, ok := f.(*PictureFrame)
		if !ok {
			continue
		}
		if mime, ok := v22ImageFormats[p.MIMEType]; ok {
			p.MIMEType = mime
		}
	}
}

// Genres resolves the values of a TCON frame, which may contain ID3v1
// genre numbers ("17", "(17)", "(17)Rock") and the special values RX
// (remix) and CR (cover).
func Genres(values []string) []string {
	var out []string
	for _, v := range values {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < 256 && isDigits(v) {
			out = append(out, genreName(n))
			continue
		}
		switch v {
		case "":
			continue
		case "CR":
			out = append(out, "Cover")
			continue
		case "RX":
			out = append(out, "Remix")
			continue
		}

		var genres []string
		m := genreRE.FindStringSubmatch(v)
		if ids := m[1]; ids != "" {
			for _, id := range strings.Split(ids[1:len(ids)-1], ")(") {
				switch id {
				case "CR":
					genres = append(genres, "Cover")
				case "RX":
					genres = append(genres, "Remix")
				default:
					n, _ := strconv.Atoi(id)
					genres = append(genres, genreName(n))
				}
			}
		}
		if name := m[2]; name != "" {
			// "((" escapes a literal parenthesis
			if strings.HasPrefix(name, "((") {
				name = name[1:]
			}
			if !slices.Contains(genres, name) {
				genres = append(genres, name)
			}
		}
		out = append(out, genres...)
	}
	return out
}

func genreName(n int) string {
	if n >= 0 && n < len(GenreNames) {
		return GenreNames[n]
	}
	return "Unknown"
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (t *Tag) popText(id string) []string {
	if f, ok := t.pop(id).(*TextInformationFrame); ok {
		return f.Text
	}
	return nil
}

func (t *Tag) addText(id FrameType, enc Encoding, values ...string) {
	t.Add(&TextInformationFrame{FrameHeader: FrameHeader{Type: id}, Encoding: enc, Text: values})
}

// deleteID removes all frames with the given identifier, including
// unknown ones.
func (t *Tag) deleteID(id FrameType) bool {
	found := len(t.GetAll(string(id))) > 0
	t.DeleteAll(string(id))
	unknown := t.Unknown[:0]
	for _, u := range t.Unknown {
		if u.Type == id {
			found = true
			continue
		}
		unknown = append(unknown, u)
	}
	t.Unknown = unknown
	return found
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
