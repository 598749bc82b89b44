package id3

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func syncsafe(n int) []byte {
	b, err := EncodeSyncsafe(uint32(n))
	if err != nil {
		panic(err)
	}
	return b[:]
}

func rawTag(version, flags byte, body []byte) []byte {
	return concat([]byte("ID3"), []byte{version, 0, flags}, syncsafe(len(body)), body)
}

func rawFrame24(id string, flags FrameFlags, payload []byte) []byte {
	fl := make([]byte, 2)
	binary.BigEndian.PutUint16(fl, uint16(flags))
	return concat([]byte(id), syncsafe(len(payload)), fl, payload)
}

func rawFrame23(id string, payload []byte) []byte {
	size := make([]byte, 4)
	binary.BigEndian.PutUint32(size, uint32(len(payload)))
	return concat([]byte(id), size, []byte{0, 0}, payload)
}

func decodeBytes(t *testing.T, b []byte, opts *DecodeOptions) *Tag {
	t.Helper()
	tag, err := Decode(bytes.NewReader(b), opts)
	if err != nil {
		t.Fatal(err)
	}
	return tag
}

func encodeTag(t *testing.T, tag *Tag, opts *SaveOptions) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := tag.Encode(&buf, opts); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func sampleTag() *Tag {
	tag := NewTag()
	tag.Add(NewTextFrame("TIT2", "Title"))
	tag.Add(NewTextFrame("TPE1", "Artist one", "Artist two"))
	tag.Add(NewTextFrame("TRCK", "4/9"))
	tag.Add(NewTextFrame("TCON", "Rock"))
	tag.Add(NewTextFrame("TDRC", "2004-05-06"))
	tag.Add(&UserTextInformationFrame{FrameHeader: FrameHeader{Type: "TXXX"}, Encoding: EncodingUTF8, Description: "key", Text: []string{"value"}})
	tag.Add(&CommentFrame{FrameHeader: FrameHeader{Type: "COMM"}, Encoding: EncodingUTF8, Language: "eng", Description: "c", Text: []string{"hello"}})
	tag.Add(&UnsynchronisedLyricsFrame{FrameHeader: FrameHeader{Type: "USLT"}, Encoding: EncodingUTF8, Language: "eng", Description: "l", Lyrics: "la la"})
	tag.Add(&PictureFrame{FrameHeader: FrameHeader{Type: "APIC"}, Encoding: EncodingUTF8, MIMEType: "image/png", PictureType: 3, Description: "front", Data: []byte{1, 2, 3}})
	tag.Add(&UniqueFileIdentifierFrame{FrameHeader: FrameHeader{Type: "UFID"}, Owner: "http://musicbrainz.org", Identifier: []byte("abc")})
	tag.Add(&PrivateFrame{FrameHeader: FrameHeader{Type: "PRIV"}, Owner: "owner", Data: []byte{0, 1, 2}})
	tag.Add(&URLLinkFrame{FrameHeader: FrameHeader{Type: "WOAR"}, URL: "http://example.com/"})
	tag.Add(&UserDefinedURLLinkFrame{FrameHeader: FrameHeader{Type: "WXXX"}, Encoding: EncodingUTF8, Description: "home", URL: "http://example.org/"})
	tag.Add(&PairedTextFrame{FrameHeader: FrameHeader{Type: "TIPL"}, Encoding: EncodingUTF8, Pairs: []TextPair{{"producer", "Bob"}}})
	tag.Add(&PlayCounterFrame{FrameHeader: FrameHeader{Type: "PCNT"}, Count: 5})
	tag.Add(&PopularimeterFrame{FrameHeader: FrameHeader{Type: "POPM"}, Email: "a@b", Rating: 200, Count: 7})
	tag.Add(&GeneralObjectFrame{FrameHeader: FrameHeader{Type: "GEOB"}, Encoding: EncodingUTF8, MIMEType: "application/octet-stream", Filename: "f.bin", Description: "obj", Data: []byte{9, 9}})
	tag.Add(&TermsOfUseFrame{FrameHeader: FrameHeader{Type: "USER"}, Encoding: EncodingUTF8, Language: "eng", Text: "terms"})
	tag.Add(&MusicCDIdentifierFrame{FrameHeader: FrameHeader{Type: "MCDI"}, TOC: []byte{1, 2, 3}})
	tag.Add(NewTextFrame("MVNM", "Allegro"))
	tag.Add(NewTextFrame("TKWD", "news"))
	tag.Add(&URLLinkFrame{FrameHeader: FrameHeader{Type: "WFED"}, URL: "http://example.com/feed"})
	tag.Add(&SynchronisedLyricsFrame{
		FrameHeader:     FrameHeader{Type: "SYLT"},
		Encoding:        EncodingUTF8,
		Language:        "eng",
		TimestampFormat: TimestampMilliseconds,
		ContentType:     1,
		Description:     "s",
		Lyrics:          []SyncedText{{"one", 0}, {"two", 1500}},
	})
	tag.Add(&EventTimingFrame{FrameHeader: FrameHeader{Type: "ETCO"}, TimestampFormat: TimestampMilliseconds, Events: []TimingEvent{{Type: 3, Time: 1000}}})
	tag.Add(&RelativeVolumeFrame{
		FrameHeader:    FrameHeader{Type: "RVA2"},
		Identification: "track",
		Channels:       []VolumeChannel{{Type: 1, Adjustment: -3072, PeakBits: 16, Peak: []byte{0x7F, 0xFF}}},
	})
	tag.Add(&OwnershipFrame{FrameHeader: FrameHeader{Type: "OWNE"}, Encoding: EncodingUTF8, Price: "USD0.99", Date: "20200101", Seller: "shop"})
	tag.Add(&CommercialFrame{
		FrameHeader:  FrameHeader{Type: "COMR"},
		Encoding:     EncodingUTF8,
		Price:        "USD0.99",
		ValidUntil:   "20301231",
		ContactURL:   "http://example.com/buy",
		ReceivedAs:   2,
		Seller:       "shop",
		Description:  "deal",
		LogoMIMEType: "image/png",
		Logo:         []byte{4, 5},
	})
	tag.Add(&LinkedInfoFrame{FrameHeader: FrameHeader{Type: "LINK"}, FrameID: "TIT2", URL: "http://example.com/t", Data: []byte("x")})
	tag.Add(&PodcastFrame{FrameHeader: FrameHeader{Type: "PCST"}, Flag: 1})
	tag.Add(&ChapterFrame{
		FrameHeader: FrameHeader{Type: "CHAP"},
		ElementID:   "ch1",
		StartTime:   0,
		EndTime:     5000,
		StartOffset: 0xFFFFFFFF,
		EndOffset:   0xFFFFFFFF,
		SubFrames:   []Frame{NewTextFrame("TIT2", "Chapter one")},
	})
	tag.Add(&TableOfContentsFrame{
		FrameHeader: FrameHeader{Type: "CTOC"},
		ElementID:   "toc",
		Flags:       TOCTopLevel | TOCOrdered,
		ChildIDs:    []string{"ch1"},
	})
	return tag
}

func TestRoundTrip(t *testing.T) {
	tag := sampleTag()
	out := decodeBytes(t, encodeTag(t, tag, nil), nil)

	if out.Len() != tag.Len() {
		t.Errorf("got %d frames, want %d", out.Len(), tag.Len())
	}
	if out.Header.Version != Version24 {
		t.Errorf("got version %s", out.Header.Version)
	}
	for _, key := range tag.Keys() {
		if got, want := out.Get(key), tag.Get(key); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: got %#v, want %#v", key, got, want)
		}
	}
}

func TestFrameOrder(t *testing.T) {
	tag := NewTag()
	tag.SetText("TXXX:x", "1")
	tag.SetText("TALB", "album")
	tag.SetText("TIT2", "title")
	b := encodeTag(t, tag, nil)
	tit2 := bytes.Index(b, []byte("TIT2"))
	talb := bytes.Index(b, []byte("TALB"))
	txxx := bytes.Index(b, []byte("TXXX"))
	if !(tit2 < talb && talb < txxx) {
		t.Errorf("unexpected frame order: TIT2 at %d, TALB at %d, TXXX at %d", tit2, talb, txxx)
	}
}

// Frames without a fixed position are written in insertion order.
func TestFrameOrderKeepsInsertionOrder(t *testing.T) {
	tag := NewTag()
	tag.SetText("TXXX:long", strings.Repeat("x", 100))
	tag.SetText("TALB", "album")
	tag.SetText("TCOP", "c")
	tag.SetText("TIT2", "title")
	tag.SetText("TCON", "Rock")

	out := decodeBytes(t, encodeTag(t, tag, nil), nil)
	var ids []string
	for _, f := range out.Frames() {
		ids = append(ids, f.HashKey())
	}
	want := []string{"TIT2", "TALB", "TCON", "TXXX:long", "TCOP"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("got order %q, want %q", ids, want)
	}
}

func TestEmptyFramesSkipped(t *testing.T) {
	tag := NewTag()
	tag.SetText("TIT2", "")
	tag.SetText("TXXX:empty")
	tag.SetText("TALB", "album")
	b := encodeTag(t, tag, nil)
	if bytes.Contains(b, []byte("TIT2")) || bytes.Contains(b, []byte("TXXX")) {
		t.Error("empty frames were written")
	}
	if !bytes.Contains(b, []byte("TALB")) {
		t.Error("TALB missing")
	}
}

func TestUnknownFramesPreserved(t *testing.T) {
	tag := NewTag()
	tag.SetText("TIT2", "title")
	unknown := &UnsupportedFrame{FrameHeader: FrameHeader{Type: "XYZW"}, Data: []byte{1, 2, 3}, Version: 4}
	tag.Add(unknown)

	out := decodeBytes(t, encodeTag(t, tag, nil), nil)
	if len(out.Unknown) != 1 || !reflect.DeepEqual(out.Unknown[0], unknown) {
		t.Errorf("got %#v", out.Unknown)
	}

	b := encodeTag(t, tag, &SaveOptions{Version: 3})
	if bytes.Contains(b, []byte("XYZW")) {
		t.Error("ID3v2.4 frame written to ID3v2.3 tag")
	}
}

// An ID3v2.2 tag is read with its frames renamed.
func TestDecodeV22(t *testing.T) {
	body := concat(
		[]byte("TT2"), []byte{0, 0, 4}, []byte{0, 'F', 'o', 'o'},
		[]byte("PIC"), []byte{0, 0, 9}, []byte{0}, []byte("JPG"), []byte{3}, []byte("d\x00"), []byte{0xFF, 0xD8},
		[]byte("XYZ"), []byte{0, 0, 1}, []byte{0},
	)
	tag := decodeBytes(t, rawTag(2, 0, body), nil)

	if v := tag.TextValue("TIT2"); v != "Foo" {
		t.Errorf("got TIT2 %q", v)
	}
	pic, ok := tag.Get("APIC:d").(*PictureFrame)
	if !ok {
		t.Fatalf("no picture, keys %q", tag.Keys())
	}
	if pic.MIMEType != "image/jpeg" || pic.PictureType != 3 || !bytes.Equal(pic.Data, []byte{0xFF, 0xD8}) {
		t.Errorf("got %#v", pic)
	}
	if tag.Len() != 2 || len(tag.Unknown) != 0 {
		t.Errorf("got keys %q and %d unknown frames", tag.Keys(), len(tag.Unknown))
	}
}

func TestV23Separator(t *testing.T) {
	tag := NewTag()
	tag.Add(&TextInformationFrame{FrameHeader: FrameHeader{Type: "TPE1"}, Encoding: EncodingISO88591, Text: []string{"A", "B"}})

	b := encodeTag(t, tag, &SaveOptions{Version: 3})
	if b[3] != 3 {
		t.Errorf("got major version %d", b[3])
	}
	if !bytes.Contains(b, []byte("TPE1\x00\x00\x00\x05\x00\x00\x00A/B\x00")) {
		t.Errorf("joined frame not found in %q", b)
	}
	out := decodeBytes(t, b, &DecodeOptions{TranslateTo: 3})
	if v := out.TextValues("TPE1"); !reflect.DeepEqual(v, []string{"A/B"}) {
		t.Errorf("got %q", v)
	}

	b = encodeTag(t, tag, &SaveOptions{Version: 3, V23Separator: "; "})
	if !bytes.Contains(b, []byte("A; B\x00")) {
		t.Errorf("custom separator not used in %q", b)
	}

	b = encodeTag(t, tag, &SaveOptions{Version: 3, V23NullSeparator: true})
	out = decodeBytes(t, b, &DecodeOptions{TranslateTo: 3})
	if v := out.TextValues("TPE1"); !reflect.DeepEqual(v, []string{"A", "B"}) {
		t.Errorf("got %q", v)
	}
}

func TestV23Encoding(t *testing.T) {
	tag := NewTag()
	tag.SetText("TIT2", "日本語")
	tag.Add(&TextInformationFrame{FrameHeader: FrameHeader{Type: "TALB"}, Encoding: EncodingISO88591, Text: []string{"日本"}})

	for _, version := range []int{3, 4} {
		out := decodeBytes(t, encodeTag(t, tag, &SaveOptions{Version: version}), &DecodeOptions{TranslateTo: version})
		want := EncodingUTF8
		if version == 3 {
			want = EncodingUTF16
		}
		for _, id := range []FrameType{"TIT2", "TALB"} {
			f := out.Get(string(id)).(*TextInformationFrame)
			if f.Encoding != want {
				t.Errorf("v2.%d %s: got encoding %s, want %s", version, id, f.Encoding, want)
			}
		}
		if v := out.TextValue("TIT2"); v != "日本語" {
			t.Errorf("v2.%d: got %q", version, v)
		}
	}
}

func TestUnsynchronisedTag(t *testing.T) {
	for _, version := range []int{3, 4} {
		tag := NewTag()
		tag.Add(&PrivateFrame{FrameHeader: FrameHeader{Type: "PRIV"}, Owner: "o", Data: []byte{0xFF, 0xE0, 0xFF, 0x00, 0xFF}})
		b := encodeTag(t, tag, &SaveOptions{Version: version, Unsynchronise: true})
		if bytes.Contains(b[tagHeaderSize:], []byte{0xFF, 0xE0}) {
			t.Errorf("v2.%d: false sync in output", version)
		}
		if version == 3 && b[5]&0x80 == 0 {
			t.Error("v2.3: unsynchronisation flag not set")
		}

		out := decodeBytes(t, b, &DecodeOptions{TranslateTo: version})
		frames := out.GetAll("PRIV")
		if len(frames) != 1 {
			t.Fatalf("v2.%d: got %d PRIV frames", version, len(frames))
		}
		if p := frames[0].(*PrivateFrame); !bytes.Equal(p.Data, []byte{0xFF, 0xE0, 0xFF, 0x00, 0xFF}) {
			t.Errorf("v2.%d: got %v", version, p.Data)
		}
	}
}

func TestCompressedFrame(t *testing.T) {
	payload := []byte{3, 'H', 'i', 0}
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	zw.Write(payload)
	zw.Close()

	body := rawFrame24("TIT2", flag24Compress|flag24DataLen, concat(syncsafe(len(payload)), z.Bytes()))
	tag := decodeBytes(t, rawTag(4, 0, body), nil)
	if v := tag.TextValue("TIT2"); v != "Hi" {
		t.Errorf("got %q", v)
	}
}

func TestEncryptedFrameKept(t *testing.T) {
	body := rawFrame24("TIT2", flag24Encrypt, []byte{1, 2, 3})
	tag := decodeBytes(t, rawTag(4, 0, body), nil)
	if tag.Len() != 0 || len(tag.Unknown) != 1 {
		t.Fatalf("got keys %q and %d unknown frames", tag.Keys(), len(tag.Unknown))
	}
	if u := tag.Unknown[0]; u.Type != "TIT2" || !bytes.Equal(u.Data, []byte{1, 2, 3}) {
		t.Errorf("got %#v", u)
	}
}

func TestDecodeDuplicatePictures(t *testing.T) {
	var frames bytes.Buffer
	enc := NewEncoder(&frames)
	for i := 0; i < 3; i++ {
		err := enc.WriteFrame(&PictureFrame{FrameHeader: FrameHeader{Type: "APIC"}, MIMEType: "image/png", Description: "x", Data: []byte{byte(i)}})
		if err != nil {
			t.Fatal(err)
		}
	}
	enc.WriteFrame(NewTextFrame("TIT2", "a"))
	enc.WriteFrame(NewTextFrame("TIT2", "b"))

	tag := decodeBytes(t, rawTag(4, 0, frames.Bytes()), nil)
	want := []string{"APIC:x", "APIC:x ", "APIC:x  ", "TIT2"}
	if !reflect.DeepEqual(tag.Keys(), want) {
		t.Errorf("got keys %q, want %q", tag.Keys(), want)
	}
	if v := tag.TextValues("TIT2"); !reflect.DeepEqual(v, []string{"a", "b"}) {
		t.Errorf("got TIT2 %q", v)
	}
}

func TestDecodeSkipsBadFrames(t *testing.T) {
	body := concat(
		rawFrame24("TIT2", 0, []byte{9, 'x'}),
		rawFrame24("TALB", 0, []byte{0, 'o', 'k'}),
	)
	tag := decodeBytes(t, rawTag(4, 0, body), nil)
	if tag.Has("TIT2") {
		t.Error("frame with invalid encoding was read")
	}
	if v := tag.TextValue("TALB"); v != "ok" {
		t.Errorf("got %q", v)
	}
}

func TestDecodeITunesFrameSizes(t *testing.T) {
	long := bytes.Repeat([]byte{'a'}, 200)
	payload := concat([]byte{0}, long)
	size := make([]byte, 4)
	binary.BigEndian.PutUint32(size, uint32(len(payload)))
	body := concat([]byte("TIT2"), size, []byte{0, 0}, payload)
	body = concat(body, rawFrame24("TALB", 0, []byte{0, 'b'}))

	tag := decodeBytes(t, rawTag(4, 0, body), nil)
	if v := tag.TextValue("TIT2"); v != string(long) {
		t.Errorf("got TIT2 of length %d", len(v))
	}
	if v := tag.TextValue("TALB"); v != "b" {
		t.Errorf("got TALB %q", v)
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		err  error
	}{
		{"empty", nil, ErrNoTag},
		{"no magic", bytes.Repeat([]byte{0}, 200), ErrNoTag},
	}
	for _, test := range tests {
		_, err := Decode(bytes.NewReader(test.in), nil)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: got %v, want %v", test.name, err, test.err)
		}
	}

	_, err := Decode(bytes.NewReader(rawTag(5, 0, nil)), &DecodeOptions{SkipV1: true})
	var verr *UnsupportedVersionError
	if !errors.As(err, &verr) {
		t.Errorf("got %v, want an UnsupportedVersionError", err)
	}

	truncated := rawTag(4, 0, rawFrame24("TIT2", 0, []byte{0, 'a'}))
	_, err = Decode(bytes.NewReader(truncated[:len(truncated)-3]), nil)
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Errorf("got %v, want a FormatError", err)
	}

	if _, err := Decode(bytes.NewReader(truncated), &DecodeOptions{TranslateTo: 2}); err == nil {
		t.Error("expected an error for an invalid translation target")
	}
}

func TestExtendedHeader(t *testing.T) {
	ext := concat(syncsafe(6), []byte{1, 0})
	body := concat(ext, rawFrame24("TIT2", 0, []byte{0, 'a'}))
	tag := decodeBytes(t, rawTag(4, 0x40, body), nil)
	if v := tag.TextValue("TIT2"); v != "a" {
		t.Errorf("got %q", v)
	}

	// flag set, but no extended header written
	body = rawFrame24("TIT2", 0, []byte{0, 'b'})
	tag = decodeBytes(t, rawTag(4, 0x40, body), nil)
	if v := tag.TextValue("TIT2"); v != "b" {
		t.Errorf("got %q", v)
	}

	ext23 := concat([]byte{0, 0, 0, 6}, make([]byte, 6))
	body = concat(ext23, rawFrame23("TIT2", []byte{0, 'c'}))
	tag = decodeBytes(t, rawTag(3, 0x40, body), nil)
	if v := tag.TextValue("TIT2"); v != "c" {
		t.Errorf("got %q", v)
	}
}

func TestPadding(t *testing.T) {
	tag := NewTag()
	tag.SetText("TIT2", "a")

	b := encodeTag(t, tag, &SaveOptions{Padding: func(info PaddingInfo) int64 { return 100 }})
	frameLen := frameLength + 1 + 1 + 1
	if len(b) != tagHeaderSize+frameLen+100 {
		t.Errorf("got tag of %d bytes", len(b))
	}
	out := decodeBytes(t, b, nil)
	if out.padding != 100 {
		t.Errorf("got padding %d, want 100", out.padding)
	}

	// Without a padding function roughly a KiB is added.
	b = encodeTag(t, tag, nil)
	if len(b) != tagHeaderSize+frameLen+1024 {
		t.Errorf("got tag of %d bytes", len(b))
	}

	err := tag.Encode(new(bytes.Buffer), &SaveOptions{Padding: func(PaddingInfo) int64 { return -1 }})
	if !errors.Is(err, ErrInvalidPadding) {
		t.Errorf("got %v, want ErrInvalidPadding", err)
	}
}
