// Package vorbis reads and writes Vorbis comments, the tag format of
// Ogg Vorbis, Opus and FLAC.
//
// A comment is a vendor string and an ordered list of KEY=value
// fields. Keys are printable ASCII and compare case-insensitively; a
// key may occur multiple times.
package vorbis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"honnef.co/go/audiotag/internal/logging"
)

// ErrFramingBit is returned by Decode when the framing bit is required
// but not set.
var ErrFramingBit = errors.New("vorbis: framing bit unset")

// FormatError reports a malformed comment block.
type FormatError struct {
	Msg string
}

func (err *FormatError) Error() string {
	return "vorbis: " + err.Msg
}

// InvalidKeyError is returned when a field uses a key that cannot be
// represented in a comment block.
type InvalidKeyError struct {
	Key string
}

func (err *InvalidKeyError) Error() string {
	return fmt.Sprintf("vorbis: invalid key %q", err.Key)
}

// Field is a single KEY=value pair.
type Field struct {
	Key   string
	Value string
}

type Comment struct {
	Vendor string
	Fields []Field
}

// ValidKey reports whether key may be used in a comment: it must not
// be empty and may only contain the characters 0x20 through 0x7D,
// excluding '='.
func ValidKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c < 0x20 || c > 0x7D || c == '=' {
			return false
		}
	}
	return true
}

// Get returns all values of key in order.
func (c *Comment) Get(key string) []string {
	var out []string
	for _, f := range c.Fields {
		if strings.EqualFold(f.Key, key) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Keys returns the distinct keys in lower case, in order of first
// appearance.
func (c *Comment) Keys() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range c.Fields {
		k := strings.ToLower(f.Key)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Add appends a field.
func (c *Comment) Add(key, value string) error {
	if !ValidKey(key) {
		return &InvalidKeyError{Key: key}
	}
	c.Fields = append(c.Fields, Field{Key: key, Value: value})
	return nil
}

// Set replaces all values of key. The new fields are appended at the
// end.
func (c *Comment) Set(key string, values ...string) error {
	if !ValidKey(key) {
		return &InvalidKeyError{Key: key}
	}
	c.Delete(key)
	for _, v := range values {
		c.Fields = append(c.Fields, Field{Key: key, Value: v})
	}
	return nil
}

// Delete removes all fields with the given key.
func (c *Comment) Delete(key string) {
	fields := c.Fields[:0]
	for _, f := range c.Fields {
		if !strings.EqualFold(f.Key, key) {
			fields = append(fields, f)
		}
	}
	c.Fields = fields
}

func (c *Comment) String() string {
	var sb strings.Builder
	for i, f := range c.Fields {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(f.Key)
		sb.WriteByte('=')
		sb.WriteString(f.Value)
	}
	return sb.String()
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) uint32() (uint32, error) {
	if len(r.data)-r.off < 4 {
		return 0, &FormatError{Msg: "unexpected end of data"}
	}
	n := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return n, nil
}

func (r *reader) bytes(n uint32) ([]byte, error) {
	if uint64(len(r.data)-r.off) < uint64(n) {
		return nil, &FormatError{Msg: fmt.Sprintf("cannot read %d bytes, only %d left", n, len(r.data)-r.off)}
	}
	b := r.data[r.off : r.off+int(n)]
	r.off += int(n)
	return b, nil
}

func text(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}

// Decode parses a comment block at the start of data. framing
// requires the framing bit used by Ogg Vorbis; FLAC and Opus don't
// have one. n is the number of bytes the block occupied, anything
// after it is padding or codec specific.
//
// Invalid UTF-8 is replaced. Fields without '=' are kept under the key
// "unknownN", where N is their index; fields with an invalid key are
// dropped.
func Decode(data []byte, framing bool) (c *Comment, n int, err error) {
	r := &reader{data: data}
	vlen, err := r.uint32()
	if err != nil {
		return nil, 0, err
	}
	vendor, err := r.bytes(vlen)
	if err != nil {
		return nil, 0, err
	}
	count, err := r.uint32()
	if err != nil {
		return nil, 0, err
	}
	// Every field needs at least its length.
	if uint64(count)*4 > uint64(len(data)-r.off) {
		return nil, 0, &FormatError{Msg: fmt.Sprintf("%d fields do not fit into %d bytes", count, len(data)-r.off)}
	}

	c = &Comment{Vendor: text(vendor), Fields: make([]Field, 0, count)}
	for i := uint32(0); i < count; i++ {
		flen, err := r.uint32()
		if err != nil {
			return nil, 0, err
		}
		b, err := r.bytes(flen)
		if err != nil {
			return nil, 0, err
		}
		key, value, ok := strings.Cut(text(b), "=")
		if !ok {
			key, value = fmt.Sprintf("unknown%d", i), key
		}
		if !ValidKey(key) {
			logging.Logger().Debug().Str("key", key).Msg("dropping comment field with invalid key")
			continue
		}
		c.Fields = append(c.Fields, Field{Key: key, Value: value})
	}

	if framing {
		if r.off >= len(data) || data[r.off]&0x01 == 0 {
			return nil, 0, ErrFramingBit
		}
		r.off++
	}
	return c, r.off, nil
}

// Encode serializes the comment block, followed by the framing bit
// if framing is set.
func (c *Comment) Encode(framing bool) ([]byte, error) {
	size := 8 + len(c.Vendor)
	for _, f := range c.Fields {
		if !ValidKey(f.Key) {
			return nil, &InvalidKeyError{Key: f.Key}
		}
		size += 4 + len(f.Key) + 1 + len(f.Value)
	}
	if framing {
		size++
	}

	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(c.Vendor)))
	out = append(out, c.Vendor...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(c.Fields)))
	for _, f := range c.Fields {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(f.Key)+1+len(f.Value)))
		out = append(out, f.Key...)
		out = append(out, '=')
		out = append(out, f.Value...)
	}
	if framing {
		out = append(out, 1)
	}
	return out, nil
}
