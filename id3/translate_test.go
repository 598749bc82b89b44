package id3

import (
	"reflect"
	"testing"
)

func hasDropped(errs []*TranslationError, id FrameType) bool {
	for _, err := range errs {
		if err.Frame == id {
			return true
		}
	}
	return false
}

func TestUpdateToV24Dates(t *testing.T) {
	tag := NewTag()
	tag.SetText("TYER", "2004")
	tag.SetText("TDAT", "0605")
	tag.SetText("TIME", "1230")
	tag.SetText("TORY", "1999")
	tag.SetText("TSIZ", "1234")

	errs := tag.UpdateToV24()
	if v := tag.TextValue("TDRC"); v != "2004-05-06T12:30:00" {
		t.Errorf("got TDRC %q", v)
	}
	if v := tag.TextValue("TDOR"); v != "1999" {
		t.Errorf("got TDOR %q", v)
	}
	for _, id := range []string{"TYER", "TDAT", "TIME", "TORY", "TSIZ"} {
		if tag.Has(id) {
			t.Errorf("%s still present", id)
		}
	}
	if !hasDropped(errs, "TSIZ") {
		t.Errorf("TSIZ not reported as dropped: %v", errs)
	}
}

func TestUpdateToV24InvalidDate(t *testing.T) {
	tag := NewTag()
	tag.SetText("TYER", "2004")
	tag.SetText("TDAT", "bad")

	errs := tag.UpdateToV24()
	if v := tag.TextValue("TDRC"); v != "2004" {
		t.Errorf("got TDRC %q", v)
	}
	if !hasDropped(errs, "TDAT") {
		t.Errorf("TDAT not reported: %v", errs)
	}
}

func TestUpdateToV24KeepsTDRC(t *testing.T) {
	tag := NewTag()
	tag.SetText("TDRC", "2010")
	tag.SetText("TYER", "2004")
	errs := tag.UpdateToV24()
	if v := tag.TextValue("TDRC"); v != "2010" {
		t.Errorf("got TDRC %q", v)
	}
	if !hasDropped(errs, "TYER") {
		t.Errorf("TYER not reported: %v", errs)
	}
}

func TestUpdateToV24IPLS(t *testing.T) {
	tag := NewTag()
	tag.Add(&PairedTextFrame{FrameHeader: FrameHeader{Type: "IPLS"}, Pairs: []TextPair{{"guitar", "Ann"}}})
	tag.UpdateToV24()
	f, ok := tag.Get("TIPL").(*PairedTextFrame)
	if !ok {
		t.Fatalf("no TIPL, keys %q", tag.Keys())
	}
	if !reflect.DeepEqual(f.Pairs, []TextPair{{"guitar", "Ann"}}) {
		t.Errorf("got %v", f.Pairs)
	}
}

func TestUpdateToV23(t *testing.T) {
	tag := NewTag()
	tag.SetText("TDRC", "2004-05-06T12:30:00")
	tag.SetText("TDOR", "1999-01-01")
	tag.SetText("TSOP", "Artist, The")
	tag.SetText("TCON", "(17)")
	tag.Add(&PairedTextFrame{FrameHeader: FrameHeader{Type: "TIPL"}, Pairs: []TextPair{{"producer", "Bob"}}})
	tag.Add(&PairedTextFrame{FrameHeader: FrameHeader{Type: "TMCL"}, Pairs: []TextPair{{"guitar", "Ann"}}})

	errs := tag.UpdateToV23()

	want := map[string]string{
		"TYER": "2004",
		"TDAT": "0605",
		"TIME": "1230",
		"TORY": "1999",
		"TCON": "Rock",
	}
	for id, v := range want {
		if got := tag.TextValue(FrameType(id)); got != v {
			t.Errorf("%s: got %q, want %q", id, got, v)
		}
	}
	for _, id := range []string{"TDRC", "TDOR", "TSOP", "TIPL", "TMCL"} {
		if tag.Has(id) {
			t.Errorf("%s still present", id)
		}
	}
	ipls, ok := tag.Get("IPLS").(*PairedTextFrame)
	if !ok {
		t.Fatalf("no IPLS, keys %q", tag.Keys())
	}
	if want := []TextPair{{"producer", "Bob"}, {"guitar", "Ann"}}; !reflect.DeepEqual(ipls.Pairs, want) {
		t.Errorf("got %v", ipls.Pairs)
	}
	if !hasDropped(errs, "TSOP") {
		t.Errorf("TSOP not reported: %v", errs)
	}
}

func TestUpdateToV23YearOnly(t *testing.T) {
	tag := NewTag()
	tag.SetText("TDRC", "2004")
	tag.UpdateToV23()
	if v := tag.TextValue("TYER"); v != "2004" {
		t.Errorf("got TYER %q", v)
	}
	if tag.Has("TDAT") || tag.Has("TIME") {
		t.Errorf("unexpected frames %q", tag.Keys())
	}
}

func TestGenres(t *testing.T) {
	tests := []struct {
		in  []string
		out []string
	}{
		{[]string{"17"}, []string{"Rock"}},
		{[]string{"(17)"}, []string{"Rock"}},
		{[]string{"(17)Rock"}, []string{"Rock"}},
		{[]string{"(4)(CR)Foo"}, []string{"Disco", "Cover", "Foo"}},
		{[]string{"((Foo)"}, []string{"(Foo)"}},
		{[]string{"RX"}, []string{"Remix"}},
		{[]string{"Rock", "", "Jazz"}, []string{"Rock", "Jazz"}},
		{[]string{"255"}, []string{"Unknown"}},
		{[]string{"Hard Rock (Live)"}, []string{"Hard Rock (Live)"}},
	}
	for _, test := range tests {
		if got := Genres(test.in); !reflect.DeepEqual(got, test.out) {
			t.Errorf("Genres(%q) = %q, want %q", test.in, got, test.out)
		}
	}
}

func TestUpdatePictureMIME(t *testing.T) {
	tag := NewTag()
	tag.Add(&PictureFrame{FrameHeader: FrameHeader{Type: "APIC"}, MIMEType: "PNG"})
	tag.UpdateToV24()
	if p := tag.Get("APIC:").(*PictureFrame); p.MIMEType != "image/png" {
		t.Errorf("got %q", p.MIMEType)
	}
}

func TestDecodeTranslateTo(t *testing.T) {
	tag := NewTag()
	tag.SetText("TDRC", "2004-05-06")
	b := encodeTag(t, tag, nil)

	out := decodeBytes(t, b, &DecodeOptions{TranslateTo: 3})
	if v := out.TextValue("TYER"); v != "2004" {
		t.Errorf("got TYER %q", v)
	}
	if v := out.TextValue("TDAT"); v != "0605" {
		t.Errorf("got TDAT %q", v)
	}

	out = decodeBytes(t, b, &DecodeOptions{NoTranslate: true})
	if v := out.TextValue("TDRC"); v != "2004-05-06" {
		t.Errorf("got TDRC %q", v)
	}

	// A v2.3 tag is upgraded by default.
	b = encodeTag(t, out, &SaveOptions{Version: 3})
	out = decodeBytes(t, b, nil)
	if v := out.TextValue("TDRC"); v != "2004-05-06" {
		t.Errorf("got TDRC %q after v2.3 round trip", v)
	}
}
