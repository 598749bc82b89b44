package vorbis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

func block(vendor string, fields ...string) []byte {
	var b []byte
	b = binary.LittleEndian.AppendUint32(b, uint32(len(vendor)))
	b = append(b, vendor...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(fields)))
	for _, f := range fields {
		b = binary.LittleEndian.AppendUint32(b, uint32(len(f)))
		b = append(b, f...)
	}
	return b
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		key string
		ok  bool
	}{
		{"TITLE", true},
		{"title", true},
		{"MUSICBRAINZ ALBUMID", true},
		{"", false},
		{"A=B", false},
		{"TAB\t", false},
		{"BRACE}", true},
		{"TILDE~", false},
		{"ÄRGER", false},
	}
	for _, tt := range tests {
		if got := ValidKey(tt.key); got != tt.ok {
			t.Errorf("ValidKey(%q) = %t, want %t", tt.key, got, tt.ok)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	c := &Comment{Vendor: "audiotag"}
	c.Add("TITLE", "Song")
	c.Add("ARTIST", "A")
	c.Add("artist", "B")
	c.Add("COMMENT", "a=b")

	for _, framing := range []bool{true, false} {
		data, err := c.Encode(framing)
		if err != nil {
			t.Fatal(err)
		}
		data = append(data, 0, 0, 0)
		got, n, err := Decode(data, framing)
		if err != nil {
			t.Fatal(err)
		}
		if n != len(data)-3 {
			t.Errorf("framing=%t: consumed %d bytes, want %d", framing, n, len(data)-3)
		}
		if !reflect.DeepEqual(got, c) {
			t.Errorf("framing=%t: got %#v, want %#v", framing, got, c)
		}
	}
}

func TestCaseInsensitive(t *testing.T) {
	c := &Comment{}
	c.Add("Artist", "A")
	c.Add("TITLE", "T")
	c.Add("ARTIST", "B")

	if got := c.Get("artist"); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Get = %q", got)
	}
	if got := c.Keys(); !reflect.DeepEqual(got, []string{"artist", "title"}) {
		t.Errorf("Keys = %q", got)
	}
	if err := c.Set("artist", "C"); err != nil {
		t.Fatal(err)
	}
	want := []Field{{"TITLE", "T"}, {"artist", "C"}}
	if !reflect.DeepEqual(c.Fields, want) {
		t.Errorf("after Set: %v, want %v", c.Fields, want)
	}
	c.Delete("TiTlE")
	if len(c.Get("title")) != 0 {
		t.Error("Delete left title behind")
	}
}

func TestInvalidKey(t *testing.T) {
	c := &Comment{}
	var kerr *InvalidKeyError
	if err := c.Add("A=B", "x"); !errors.As(err, &kerr) {
		t.Errorf("Add: got %v, want InvalidKeyError", err)
	}
	if err := c.Set("", "x"); !errors.As(err, &kerr) {
		t.Errorf("Set: got %v, want InvalidKeyError", err)
	}
	c.Fields = append(c.Fields, Field{Key: "\x01", Value: "x"})
	if _, err := c.Encode(true); !errors.As(err, &kerr) {
		t.Errorf("Encode: got %v, want InvalidKeyError", err)
	}
}

func TestDecodeFieldWithoutSeparator(t *testing.T) {
	c, _, err := Decode(block("v", "TITLE=x", "junk", "=nokey"), false)
	if err != nil {
		t.Fatal(err)
	}
	want := []Field{{"TITLE", "x"}, {"unknown1", "junk"}}
	if !reflect.DeepEqual(c.Fields, want) {
		t.Errorf("got %v, want %v", c.Fields, want)
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	c, _, err := Decode(block("v\xff", "TITLE=a\xffb"), false)
	if err != nil {
		t.Fatal(err)
	}
	if c.Vendor != "v�" {
		t.Errorf("vendor = %q", c.Vendor)
	}
	if got := c.Get("title"); len(got) != 1 || got[0] != "a�b" {
		t.Errorf("title = %q", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	good := block("vendor", "A=1")
	var ferr *FormatError

	for i := 0; i < len(good); i++ {
		if _, _, err := Decode(good[:i], false); !errors.As(err, &ferr) {
			t.Errorf("truncated to %d: got %v, want FormatError", i, err)
		}
	}

	huge := block("v")
	huge = huge[:len(huge)-4]
	huge = binary.LittleEndian.AppendUint32(huge, 1<<30)
	if _, _, err := Decode(huge, false); !errors.As(err, &ferr) {
		t.Errorf("huge count: got %v, want FormatError", err)
	}

	if _, _, err := Decode(good, true); err != ErrFramingBit {
		t.Errorf("missing framing: got %v", err)
	}
	if _, _, err := Decode(append(bytes.Clone(good), 0x02), true); err != ErrFramingBit {
		t.Errorf("unset framing: got %v", err)
	}
	if _, n, err := Decode(append(bytes.Clone(good), 0x03), true); err != nil || n != len(good)+1 {
		t.Errorf("framing set: n=%d err=%v", n, err)
	}
}
