package id3

import (
	"bytes"
	"testing"
	"time"
)

var (
	UTF8TestString  = []byte("Ein etwas kürzerer Text mit wenigen Umlauten: äöüß äöüß")
	UTF16TestString = []byte{254, 255, 0, 69, 0, 105, 0, 110, 0, 32,
		0, 101, 0, 116, 0, 119, 0, 97, 0, 115, 0, 32, 0, 107, 0, 252, 0,
		114, 0, 122, 0, 101, 0, 114, 0, 101, 0, 114, 0, 32, 0, 84, 0, 101,
		0, 120, 0, 116, 0, 32, 0, 109, 0, 105, 0, 116, 0, 32, 0, 119, 0,
		101, 0, 110, 0, 105, 0, 103, 0, 101, 0, 110, 0, 32, 0, 85, 0, 109,
		0, 108, 0, 97, 0, 117, 0, 116, 0, 101, 0, 110, 0, 58, 0, 32, 0,
		228, 0, 246, 0, 252, 0, 223, 0, 32, 0, 228, 0, 246, 0, 252, 0,
		223}
	ISOTestString = []byte("Ein etwas k\xFCrzerer Text mit wenigen Umlauten: \xE4\xF6\xFC\xDF \xE4\xF6\xFC\xDF")
)

func TestUTF8ToISO88591(t *testing.T) {
	res, err := EncodingISO88591.encode(string(UTF8TestString))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(res, ISOTestString) {
		t.Errorf("Expected: %q - Got: %q", ISOTestString, res)
	}
}

func TestISO88591ToUTF8(t *testing.T) {
	res, err := EncodingISO88591.decode(ISOTestString)
	if err != nil {
		t.Fatal(err)
	}
	if res != string(UTF8TestString) {
		t.Errorf("Expected: %s - Got: %s", UTF8TestString, res)
	}
}

func TestUTF16ToUTF8(t *testing.T) {
	const out = "Just a test: äüö 日本語"
	tests := []struct {
		name string
		enc  Encoding
		in   []byte
	}{
		{"big endian BOM", EncodingUTF16, []byte{254, 255, 0, 74, 0,
			117, 0, 115, 0, 116, 0, 32, 0, 97, 0, 32, 0, 116, 0, 101, 0, 115,
			0, 116, 0, 58, 0, 32, 0, 228, 0, 252, 0, 246, 0, 32, 101, 229,
			103, 44, 138, 158}},
		{"big endian", EncodingUTF16BE, []byte{0, 74, 0,
			117, 0, 115, 0, 116, 0, 32, 0, 97, 0, 32, 0, 116, 0, 101, 0, 115,
			0, 116, 0, 58, 0, 32, 0, 228, 0, 252, 0, 246, 0, 32, 101, 229,
			103, 44, 138, 158}},
		{"little endian BOM", EncodingUTF16, []byte{255, 254, 74, 0, 117, 0, 115, 0, 116, 0, 32, 0, 97,
			0, 32, 0, 116, 0, 101, 0, 115, 0, 116, 0, 58, 0, 32, 0, 228, 0,
			252, 0, 246, 0, 32, 0, 229, 101, 44, 103, 158, 138}},
		{"missing BOM", EncodingUTF16, []byte{74, 0, 117, 0, 115, 0, 116, 0, 32, 0, 97,
			0, 32, 0, 116, 0, 101, 0, 115, 0, 116, 0, 58, 0, 32, 0, 228, 0,
			252, 0, 246, 0, 32, 0, 229, 101, 44, 103, 158, 138}},
		{"terminated", EncodingUTF16, []byte{255, 254, 74, 0, 117, 0, 115, 0, 116, 0, 32, 0, 97,
			0, 32, 0, 116, 0, 101, 0, 115, 0, 116, 0, 58, 0, 32, 0, 228, 0,
			252, 0, 246, 0, 32, 0, 229, 101, 44, 103, 158, 138, 0, 0}},
	}

	for _, test := range tests {
		res, err := test.enc.decode(test.in)
		if err != nil {
			t.Errorf("%s: %s", test.name, err)
			continue
		}
		if res != out {
			t.Errorf("%s: Expected: %s - Got: %s", test.name, out, res)
		}
	}
}

func TestUTF16RoundTrip(t *testing.T) {
	for _, enc := range []Encoding{EncodingUTF16, EncodingUTF16BE, EncodingUTF8} {
		b, err := enc.encode(string(UTF8TestString))
		if err != nil {
			t.Fatalf("%s: %s", enc, err)
		}
		if enc == EncodingUTF16 && !hasBOM(b) {
			t.Errorf("%s: no byte order mark written", enc)
		}
		s, err := enc.decode(b)
		if err != nil {
			t.Fatalf("%s: %s", enc, err)
		}
		if s != string(UTF8TestString) {
			t.Errorf("%s: got %q", enc, s)
		}
	}
}

func TestEncodeLatin1Unrepresentable(t *testing.T) {
	if _, err := EncodingISO88591.encode("日本語"); err == nil {
		t.Error("expected an error encoding CJK text as ISO-8859-1")
	}
	if fits("日本語", EncodingISO88591) {
		t.Error("CJK text should not fit ISO-8859-1")
	}
	if !fits("äöü", EncodingISO88591) {
		t.Error("umlauts should fit ISO-8859-1")
	}
}

func TestSplitTerminatedAlignment(t *testing.T) {
	// "A" followed by U+4200, little endian. The zero bytes at
	// offset 1 and 2 are not a terminator.
	data := []byte{0x41, 0x00, 0x00, 0x42, 0x00, 0x00, 0x43, 0x00}
	head, rest := splitTerminated(data, EncodingUTF16)
	if !bytes.Equal(head, data[:4]) {
		t.Errorf("got head %v", head)
	}
	if !bytes.Equal(rest, data[6:]) {
		t.Errorf("got rest %v", rest)
	}

	head, rest = splitTerminated([]byte("abc\x00def"), EncodingISO88591)
	if string(head) != "abc" || string(rest) != "def" {
		t.Errorf("got %q, %q", head, rest)
	}
}

func TestTimeParsing(t *testing.T) {
	tests := []struct {
		in  string
		out time.Time
	}{
		{"2009-11-10T23:01:02", time.Date(2009, 11, 10, 23, 01, 02, 0, time.UTC)},
		{"2009-11-10T23:01", time.Date(2009, 11, 10, 23, 01, 0, 0, time.UTC)},
		{"2009-11-10T23", time.Date(2009, 11, 10, 23, 0, 0, 0, time.UTC)},
		{"2009-11-10", time.Date(2009, 11, 10, 0, 0, 0, 0, time.UTC)},
		{"2009-11", time.Date(2009, 11, 1, 0, 0, 0, 0, time.UTC)},
		{"2009", time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, test := range tests {
		res, err := ParseTimestamp(test.in).Time()
		if err != nil {
			t.Fatalf("Couldn't parse time '%s': %s", test.in, err)
		}

		if !res.Equal(test.out) {
			t.Fatalf("Time '%s' parsed to '%s' instead of '%s'", test.in, res, test.out)
		}
	}
}

func TestTimestampString(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"2004", "2004"},
		{"2004-5", "2004-05"},
		{"2004-05-06 12:30", "2004-05-06T12:30"},
		{"2004/05/06T12:30:15", "2004-05-06T12:30:15"},
		{"2004-xx-06", "2004"},
		{"", ""},
	}
	for _, test := range tests {
		if got := ParseTimestamp(test.in).String(); got != test.out {
			t.Errorf("ParseTimestamp(%q).String() = %q, want %q", test.in, got, test.out)
		}
	}

	ts := TimestampFromTime(time.Date(2010, 2, 3, 4, 5, 6, 0, time.UTC))
	if got := ts.String(); got != "2010-02-03T04:05:06" {
		t.Errorf("got %q", got)
	}
	if _, err := ParseTimestamp("foo").Time(); err == nil {
		t.Error("expected an error for a timestamp without year")
	}
}

func TestUserFrameNameParsing(t *testing.T) {
	tests := []struct {
		in      FrameType
		outName string
		outBool bool
	}{
		{"TLEN", "", false},
		{"TXXX:", "", false},
		{"TXXX:User frame", "User frame", true},
	}

	for _, test := range tests {
		out, ok := frameNameToUserFrame(test.in)
		if out != test.outName || ok != test.outBool {
			t.Fatalf("Didn't parse user frame name correctly. Expected: %q/%t, got %q/%t",
				test.outName, test.outBool, out, ok)
		}
	}
}

func BenchmarkISO88591ToUTF8(b *testing.B) {
	b.SetBytes(int64(len(ISOTestString)))
	for i := 0; i < b.N; i++ {
		_, _ = EncodingISO88591.decode(ISOTestString)
	}
}

func BenchmarkUTF8ToISO88591(b *testing.B) {
	b.SetBytes(int64(len(UTF8TestString)))
	s := string(UTF8TestString)
	for i := 0; i < b.N; i++ {
		_, _ = EncodingISO88591.encode(s)
	}
}

func BenchmarkUTF16ToUTF8(b *testing.B) {
	b.SetBytes(int64(len(UTF16TestString)))
	for i := 0; i < b.N; i++ {
		_, _ = EncodingUTF16.decode(UTF16TestString)
	}
}
