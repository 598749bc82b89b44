package id3

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the text encoding byte used by text carrying frames.
type Encoding byte

const (
	EncodingISO88591 Encoding = 0
	EncodingUTF16    Encoding = 1 // with byte order mark
	EncodingUTF16BE  Encoding = 2 // without byte order mark
	EncodingUTF8     Encoding = 3
)

var (
	nul  = []byte{0}
	nul2 = []byte{0, 0}

	utf16BOM = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	utf16BE  = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	utf16LE  = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

func (e Encoding) String() string {
	switch e {
	case EncodingISO88591:
		return "ISO-8859-1"
	case EncodingUTF16:
		return "UTF-16"
	case EncodingUTF16BE:
		return "UTF-16BE"
	case EncodingUTF8:
		return "UTF-8"
	default:
		return fmt.Sprintf("Encoding(%d)", byte(e))
	}
}

func (e Encoding) valid() bool {
	return e <= EncodingUTF8
}

func (e Encoding) terminator() []byte {
	if e == EncodingUTF16 || e == EncodingUTF16BE {
		return nul2
	}
	return nul
}

func (e Encoding) codec() encoding.Encoding {
	switch e {
	case EncodingISO88591:
		return charmap.ISO8859_1
	case EncodingUTF16:
		return utf16BOM
	case EncodingUTF16BE:
		return utf16BE
	default:
		return encoding.Nop
	}
}

// decode converts text in encoding e to UTF-8. A trailing terminator
// is ignored.
func (e Encoding) decode(b []byte) (string, error) {
	switch e {
	case EncodingUTF16, EncodingUTF16BE:
		if len(b)%2 == 1 {
			b = b[:len(b)-1]
		}
		b = bytes.TrimSuffix(b, nul2)
		if len(b) == 0 {
			return "", nil
		}
		codec := e.codec()
		if e == EncodingUTF16 && !hasBOM(b) {
			// Frequently written without a BOM. Windows taggers did
			// that in little endian.
			codec = utf16LE
		}
		out, err := codec.NewDecoder().Bytes(b)
		if err != nil {
			return "", &FormatError{Msg: "invalid UTF-16 text", Err: err}
		}
		return string(out), nil
	case EncodingISO88591, EncodingUTF8:
		b = bytes.TrimSuffix(b, nul)
		out, err := e.codec().NewDecoder().Bytes(b)
		if err != nil {
			return "", &FormatError{Msg: "invalid text", Err: err}
		}
		return string(out), nil
	default:
		return "", &FormatError{Msg: fmt.Sprintf("invalid text encoding %d", byte(e))}
	}
}

// encode converts s to encoding e. It does not add a terminator.
func (e Encoding) encode(s string) ([]byte, error) {
	if s == "" && e != EncodingUTF16 {
		return nil, nil
	}
	if !e.valid() {
		return nil, &FormatError{Msg: fmt.Sprintf("invalid text encoding %d", byte(e))}
	}
	if e == EncodingUTF16 {
		// ExpectBOM writes a BOM on encode.
		out, err := e.codec().NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, &FormatError{Msg: "cannot encode text as UTF-16", Err: err}
		}
		return out, nil
	}
	out, err := e.codec().NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &FormatError{Msg: fmt.Sprintf("cannot encode %q as %s", s, e), Err: err}
	}
	return out, nil
}

func (e Encoding) encodeTerminated(s string) ([]byte, error) {
	b, err := e.encode(s)
	if err != nil {
		return nil, err
	}
	return append(b, e.terminator()...), nil
}

func hasBOM(b []byte) bool {
	return len(b) >= 2 && (b[0] == 0xFF && b[1] == 0xFE || b[0] == 0xFE && b[1] == 0xFF)
}

// splitTerminated splits off the first terminated string in data. If
// there is no terminator, all of data is the string.
func splitTerminated(data []byte, e Encoding) (head, rest []byte) {
	if e != EncodingUTF16 && e != EncodingUTF16BE {
		i := bytes.IndexByte(data, 0)
		if i == -1 {
			return data, nil
		}
		return data[:i], data[i+1:]
	}
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return data[:i], data[i+2:]
		}
	}
	return data, nil
}

// splitAll splits data into all terminated strings. A trailing
// terminator does not produce an empty value.
func splitAll(data []byte, e Encoding) [][]byte {
	var out [][]byte
	for len(data) > 0 {
		var head []byte
		head, data = splitTerminated(data, e)
		out = append(out, head)
	}
	return out
}

func decodeStrings(data []byte, e Encoding) ([]string, error) {
	var out []string
	for _, part := range splitAll(data, e) {
		s, err := e.decode(part)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// encodeStrings writes values separated and terminated by the
// encoding's terminator.
func encodeStrings(values []string, e Encoding) ([]byte, error) {
	var out []byte
	for _, v := range values {
		b, err := e.encodeTerminated(v)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// latin1 decodes ISO-8859-1 bytes. It cannot fail.
func latin1(b []byte) string {
	s, _ := EncodingISO88591.decode(b)
	return s
}

// fits reports whether s can be encoded in e without loss.
func fits(s string, e Encoding) bool {
	if e != EncodingISO88591 {
		return true
	}
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}
