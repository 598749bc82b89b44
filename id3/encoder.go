package id3

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"

	"honnef.co/go/audiotag/internal/logging"
	"honnef.co/go/audiotag/rewrite"
)

// PaddingInfo and PaddingFunc are shared with the other formats.
type (
	PaddingInfo = rewrite.PaddingInfo
	PaddingFunc = rewrite.PaddingFunc
)

var ErrInvalidPadding = rewrite.ErrInvalidPadding

// V1Mode controls what happens to ID3v1 tags when saving.
type V1Mode int

const (
	// V1Update updates an existing ID3v1 tag but doesn't add one.
	V1Update V1Mode = iota
	// V1Remove removes an existing ID3v1 tag.
	V1Remove
	// V1Create creates or updates an ID3v1 tag.
	V1Create
)

// SaveOptions control how tags are written. The zero value writes
// ID3v2.4 tags with the default padding and updates existing ID3v1
// tags.
type SaveOptions struct {
	// Version is 3 or 4. Zero means 4.
	Version int
	// V23Separator joins multiple values of a text frame when writing
	// ID3v2.3 tags. The empty string means "/".
	V23Separator string
	// V23NullSeparator writes multiple values separated by the text
	// terminator instead, as ID3v2.4 does. Few ID3v2.3 readers
	// understand this.
	V23NullSeparator bool
	// Unsynchronise applies unsynchronisation to the written tag.
	Unsynchronise bool
	// Padding decides how much padding to write. Nil means
	// PaddingInfo.DefaultPadding.
	Padding PaddingFunc
	V1      V1Mode
}

type encodeConfig struct {
	version int
	sep     string
	nullSep bool
	unsync  bool
}

var defaultConfig = encodeConfig{version: 4, sep: "/"}

func (o *SaveOptions) config() (encodeConfig, error) {
	cfg := defaultConfig
	if o == nil {
		return cfg, nil
	}
	switch o.Version {
	case 0, 4:
	case 3:
		cfg.version = 3
	default:
		return cfg, fmt.Errorf("id3: cannot write version 2.%d", o.Version)
	}
	if o.V23Separator != "" {
		cfg.sep = o.V23Separator
	}
	cfg.nullSep = o.V23NullSeparator
	cfg.unsync = o.Unsynchronise
	return cfg, nil
}

func (o *SaveOptions) padding() PaddingFunc {
	if o == nil {
		return nil
	}
	return o.Padding
}

func (o *SaveOptions) v1() V1Mode {
	if o == nil {
		return V1Update
	}
	return o.V1
}

type Encoder struct {
	w   io.Writer
	cfg encodeConfig
}

// NewEncoder returns an encoder that writes ID3v2.4 frames.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, cfg: defaultConfig}
}

// WriteFrame writes a single frame, including its header. Empty text
// frames are skipped.
func (e *Encoder) WriteFrame(f Frame) error {
	b, err := e.cfg.frame(f)
	if err != nil {
		return err
	}
	_, err = e.w.Write(b)
	return err
}

// Encode writes the tag, followed by padding, to w.
func (t *Tag) Encode(w io.Writer, opts *SaveOptions) error {
	data, err := t.render(opts, 0, 0)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// frameOrder lists frames that are written before all others.
var frameOrder = []FrameType{"TIT2", "TPE1", "TRCK", "TALB", "TPOS", "TDRC", "TCON"}

func framePriority(id FrameType) int {
	for i, o := range frameOrder {
		if o == id {
			return i
		}
	}
	return len(frameOrder)
}

// encodeFrames serializes all frames. The frames in frameOrder come
// first, all others keep the order they have in the tag.
func (t *Tag) encodeFrames(cfg encodeConfig) ([]byte, error) {
	type encoded struct {
		prio int
		data []byte
	}
	var frames []encoded
	for _, f := range t.Frames() {
		b, err := cfg.frame(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.ID(), err)
		}
		if len(b) == 0 {
			continue
		}
		frames = append(frames, encoded{framePriority(f.ID()), b})
	}
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].prio < frames[j].prio
	})

	var out []byte
	for _, f := range frames {
		out = append(out, f.data...)
	}
	for _, u := range t.Unknown {
		if int(u.Version) != cfg.version {
			logging.Logger().Debug().Str("frame", string(u.Type)).Int("version", int(u.Version)).Msg("dropping unknown frame of other version")
			continue
		}
		b, err := cfg.header(u.Type, u.Flags, len(u.Data))
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
		out = append(out, u.Data...)
	}
	return out, nil
}

// render returns the complete tag, including header and padding.
// available is the size of the region the tag replaces and trailing
// the amount of data following it.
func (t *Tag) render(opts *SaveOptions, available, trailing int64) ([]byte, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	frames, err := t.encodeFrames(cfg)
	if err != nil {
		return nil, err
	}
	var flags HeaderFlags
	if cfg.unsync && cfg.version == 3 {
		if u := Unsynchronise(frames); len(u) != len(frames) {
			frames = u
			flags |= 0x80
		}
	}

	needed := int64(tagHeaderSize + len(frames))
	info := PaddingInfo{Padding: available - needed, NewSize: needed, Size: trailing}
	padding, err := info.Resolve(opts.padding())
	if err != nil {
		return nil, err
	}
	// A tag that fits into the old region fills all of it, so the
	// rest of the file stays where it is.
	if needed+padding < available {
		padding = available - needed
	}

	if int64(len(frames))+padding >= 1<<28 {
		return nil, &FormatError{Msg: "tag too large"}
	}
	size, err := EncodeSyncsafe(uint32(int64(len(frames)) + padding))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, needed+padding)
	out = append(out, Magic[:]...)
	out = append(out, byte(cfg.version), 0, byte(flags))
	out = append(out, size[:]...)
	out = append(out, frames...)
	out = append(out, make([]byte, padding)...)

	logging.Logger().Debug().
		Int("version", cfg.version).
		Int64("frames", int64(len(frames))).
		Int64("padding", padding).
		Msg("rendered tag")
	return out, nil
}

func (cfg encodeConfig) header(id FrameType, flags FrameFlags, size int) ([]byte, error) {
	if len(id) != 4 || !validFrameID([]byte(id)) {
		return nil, &FormatError{Msg: fmt.Sprintf("invalid frame identifier %q", string(id))}
	}
	out := make([]byte, frameLength)
	copy(out, id)
	if cfg.version == 4 {
		b, err := EncodeSyncsafe(uint32(size))
		if err != nil || size >= 1<<28 {
			return nil, &FormatError{Msg: fmt.Sprintf("frame %s too large", string(id))}
		}
		copy(out[4:8], b[:])
	} else {
		if int64(size) > 0xFFFFFFFF {
			return nil, &FormatError{Msg: fmt.Sprintf("frame %s too large", string(id))}
		}
		binary.BigEndian.PutUint32(out[4:8], uint32(size))
	}
	binary.BigEndian.PutUint16(out[8:10], uint16(flags))
	return out, nil
}

// frame serializes f including its header.
func (cfg encodeConfig) frame(f Frame) ([]byte, error) {
	if u, ok := f.(*UnsupportedFrame); ok {
		if int(u.Version) != cfg.version {
			return nil, nil
		}
		h, err := cfg.header(u.Type, u.Flags, len(u.Data))
		if err != nil {
			return nil, err
		}
		return concat(h, u.Data), nil
	}

	payload, err := cfg.payload(f)
	if err != nil || payload == nil {
		return nil, err
	}
	var flags FrameFlags
	if cfg.unsync && cfg.version == 4 {
		if u := Unsynchronise(payload); len(u) != len(payload) {
			payload = u
			flags |= flag24Unsynch
		}
	}
	h, err := cfg.header(f.ID(), flags, len(payload))
	if err != nil {
		return nil, err
	}
	return concat(h, payload), nil
}

// textEncoding picks the encoding to write text in. ID3v2.3 only
// knows ISO-8859-1 and UTF-16, and ISO-8859-1 cannot hold all
// characters.
func (cfg encodeConfig) textEncoding(enc Encoding, values ...string) Encoding {
	if !enc.valid() {
		enc = EncodingUTF8
	}
	if cfg.version == 3 && enc > EncodingUTF16 {
		enc = EncodingUTF16
	}
	if enc == EncodingISO88591 {
		for _, v := range values {
			if !fits(v, enc) {
				if cfg.version == 3 {
					return EncodingUTF16
				}
				return EncodingUTF8
			}
		}
	}
	return enc
}

// join merges multiple values into one for ID3v2.3.
func (cfg encodeConfig) join(values []string) []string {
	if cfg.version != 3 || cfg.nullSep || len(values) < 2 {
		return values
	}
	return []string{strings.Join(values, cfg.sep)}
}

func language(lang string) []byte {
	if lang == "" {
		lang = "XXX"
	}
	b := []byte(lang)
	for len(b) < 3 {
		b = append(b, ' ')
	}
	return b[:3]
}

func latin1Terminated(s string) ([]byte, error) {
	return EncodingISO88591.encodeTerminated(s)
}

func counter(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	i := 0
	for i < 4 && b[i] == 0 {
		i++
	}
	return b[i:]
}

// fixedDate encodes the YYYYMMDD dates of OWNE and COMR frames.
func fixedDate(s string) ([]byte, error) {
	if s == "" {
		s = "19700101"
	}
	if len(s) != 8 {
		return nil, &FormatError{Msg: fmt.Sprintf("invalid date %q", s)}
	}
	return EncodingISO88591.encode(s)
}

// subFrames serializes the frames embedded in CHAP and CTOC frames.
func (cfg encodeConfig) subFrames(frames []Frame) ([]byte, error) {
	var out []byte
	for _, f := range frames {
		b, err := cfg.frame(f)
		if err != nil {
			return nil, fmt.Errorf("embedded %s: %w", f.ID(), err)
		}
		out = append(out, b...)
	}
	return out, nil
}

func isEmpty(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}

// payload serializes the frame body. It returns nil for frames that
// shouldn't be written.
func (cfg encodeConfig) payload(f Frame) ([]byte, error) {
	switch f := f.(type) {
	case *TextInformationFrame:
		if isEmpty(f.Text) {
			return nil, nil
		}
		values := f.Text
		if f.Kind() != KindTimestamp {
			values = cfg.join(values)
		}
		enc := cfg.textEncoding(f.Encoding, values...)
		text, err := encodeStrings(values, enc)
		if err != nil {
			return nil, err
		}
		return concat([]byte{byte(enc)}, text), nil

	case *UserTextInformationFrame:
		if isEmpty(f.Text) {
			return nil, nil
		}
		values := cfg.join(f.Text)
		enc := cfg.textEncoding(f.Encoding, append([]string{f.Description}, values...)...)
		desc, err := enc.encodeTerminated(f.Description)
		if err != nil {
			return nil, err
		}
		text, err := encodeStrings(values, enc)
		if err != nil {
			return nil, err
		}
		return concat([]byte{byte(enc)}, desc, text), nil

	case *URLLinkFrame:
		return latin1Terminated(f.URL)

	case *UserDefinedURLLinkFrame:
		enc := cfg.textEncoding(f.Encoding, f.Description)
		desc, err := enc.encodeTerminated(f.Description)
		if err != nil {
			return nil, err
		}
		url, err := latin1Terminated(f.URL)
		if err != nil {
			return nil, err
		}
		return concat([]byte{byte(enc)}, desc, url), nil

	case *PairedTextFrame:
		var values []string
		for _, p := range f.Pairs {
			values = append(values, p.Key, p.Value)
		}
		enc := cfg.textEncoding(f.Encoding, values...)
		text, err := encodeStrings(values, enc)
		if err != nil {
			return nil, err
		}
		return concat([]byte{byte(enc)}, text), nil

	case *CommentFrame:
		if isEmpty(f.Text) {
			return nil, nil
		}
		values := cfg.join(f.Text)
		enc := cfg.textEncoding(f.Encoding, append([]string{f.Description}, values...)...)
		desc, err := enc.encodeTerminated(f.Description)
		if err != nil {
			return nil, err
		}
		text, err := encodeStrings(values, enc)
		if err != nil {
			return nil, err
		}
		return concat([]byte{byte(enc)}, language(f.Language), desc, text), nil

	case *UnsynchronisedLyricsFrame:
		enc := cfg.textEncoding(f.Encoding, f.Description, f.Lyrics)
		desc, err := enc.encodeTerminated(f.Description)
		if err != nil {
			return nil, err
		}
		lyrics, err := enc.encodeTerminated(f.Lyrics)
		if err != nil {
			return nil, err
		}
		return concat([]byte{byte(enc)}, language(f.Language), desc, lyrics), nil

	case *PictureFrame:
		enc := cfg.textEncoding(f.Encoding, f.Description)
		mime, err := latin1Terminated(f.MIMEType)
		if err != nil {
			return nil, err
		}
		desc, err := enc.encodeTerminated(f.Description)
		if err != nil {
			return nil, err
		}
		return concat([]byte{byte(enc)}, mime, []byte{byte(f.PictureType)}, desc, f.Data), nil

	case *UniqueFileIdentifierFrame:
		owner, err := latin1Terminated(f.Owner)
		if err != nil {
			return nil, err
		}
		return concat(owner, f.Identifier), nil

	case *PrivateFrame:
		owner, err := latin1Terminated(f.Owner)
		if err != nil {
			return nil, err
		}
		return concat(owner, f.Data), nil

	case *MusicCDIdentifierFrame:
		return concat(f.TOC), nil

	case *PlayCounterFrame:
		return counter(f.Count), nil

	case *PopularimeterFrame:
		email, err := latin1Terminated(f.Email)
		if err != nil {
			return nil, err
		}
		out := concat(email, []byte{f.Rating})
		if f.Count > 0 {
			out = append(out, counter(f.Count)...)
		}
		return out, nil

	case *GeneralObjectFrame:
		enc := cfg.textEncoding(f.Encoding, f.Filename, f.Description)
		mime, err := latin1Terminated(f.MIMEType)
		if err != nil {
			return nil, err
		}
		filename, err := enc.encodeTerminated(f.Filename)
		if err != nil {
			return nil, err
		}
		desc, err := enc.encodeTerminated(f.Description)
		if err != nil {
			return nil, err
		}
		return concat([]byte{byte(enc)}, mime, filename, desc, f.Data), nil

	case *TermsOfUseFrame:
		enc := cfg.textEncoding(f.Encoding, f.Text)
		text, err := enc.encodeTerminated(f.Text)
		if err != nil {
			return nil, err
		}
		return concat([]byte{byte(enc)}, language(f.Language), text), nil

	case *SynchronisedLyricsFrame:
		texts := []string{f.Description}
		for _, l := range f.Lyrics {
			texts = append(texts, l.Text)
		}
		enc := cfg.textEncoding(f.Encoding, texts...)
		desc, err := enc.encodeTerminated(f.Description)
		if err != nil {
			return nil, err
		}
		out := concat([]byte{byte(enc)}, language(f.Language), []byte{f.TimestampFormat, f.ContentType}, desc)
		for _, l := range f.Lyrics {
			text, err := enc.encodeTerminated(l.Text)
			if err != nil {
				return nil, err
			}
			out = append(out, text...)
			out = binary.BigEndian.AppendUint32(out, l.Time)
		}
		return out, nil

	case *EventTimingFrame:
		out := []byte{f.TimestampFormat}
		for _, e := range f.Events {
			out = append(out, e.Type)
			out = binary.BigEndian.AppendUint32(out, e.Time)
		}
		return out, nil

	case *RelativeVolumeFrame:
		out, err := latin1Terminated(f.Identification)
		if err != nil {
			return nil, err
		}
		for _, c := range f.Channels {
			n := (int(c.PeakBits) + 7) / 8
			if len(c.Peak) != n {
				return nil, &FormatError{Msg: fmt.Sprintf("peak of %d bits needs %d bytes, got %d", c.PeakBits, n, len(c.Peak))}
			}
			out = append(out, c.Type)
			out = binary.BigEndian.AppendUint16(out, uint16(c.Adjustment))
			out = append(out, c.PeakBits)
			out = append(out, c.Peak...)
		}
		return out, nil

	case *OwnershipFrame:
		enc := cfg.textEncoding(f.Encoding, f.Seller)
		price, err := latin1Terminated(f.Price)
		if err != nil {
			return nil, err
		}
		date, err := fixedDate(f.Date)
		if err != nil {
			return nil, err
		}
		seller, err := enc.encode(f.Seller)
		if err != nil {
			return nil, err
		}
		return concat([]byte{byte(enc)}, price, date, seller), nil

	case *CommercialFrame:
		enc := cfg.textEncoding(f.Encoding, f.Seller, f.Description)
		price, err := latin1Terminated(f.Price)
		if err != nil {
			return nil, err
		}
		date, err := fixedDate(f.ValidUntil)
		if err != nil {
			return nil, err
		}
		contact, err := latin1Terminated(f.ContactURL)
		if err != nil {
			return nil, err
		}
		seller, err := enc.encodeTerminated(f.Seller)
		if err != nil {
			return nil, err
		}
		desc, err := enc.encodeTerminated(f.Description)
		if err != nil {
			return nil, err
		}
		out := concat([]byte{byte(enc)}, price, date, contact, []byte{f.ReceivedAs}, seller, desc)
		if f.LogoMIMEType != "" || len(f.Logo) > 0 {
			mime, err := latin1Terminated(f.LogoMIMEType)
			if err != nil {
				return nil, err
			}
			out = concat(out, mime, f.Logo)
		}
		return out, nil

	case *LinkedInfoFrame:
		if len(f.FrameID) != 4 || !validFrameID([]byte(f.FrameID)) {
			return nil, &FormatError{Msg: fmt.Sprintf("invalid linked frame identifier %q", string(f.FrameID))}
		}
		url, err := latin1Terminated(f.URL)
		if err != nil {
			return nil, err
		}
		return concat([]byte(f.FrameID), url, f.Data), nil

	case *PodcastFrame:
		return binary.BigEndian.AppendUint32(nil, f.Flag), nil

	case *ChapterFrame:
		id, err := latin1Terminated(f.ElementID)
		if err != nil {
			return nil, err
		}
		out := id
		for _, v := range []uint32{f.StartTime, f.EndTime, f.StartOffset, f.EndOffset} {
			out = binary.BigEndian.AppendUint32(out, v)
		}
		sub, err := cfg.subFrames(f.SubFrames)
		if err != nil {
			return nil, err
		}
		return concat(out, sub), nil

	case *TableOfContentsFrame:
		if len(f.ChildIDs) > 255 {
			return nil, &FormatError{Msg: "too many child elements"}
		}
		id, err := latin1Terminated(f.ElementID)
		if err != nil {
			return nil, err
		}
		out := concat(id, []byte{f.Flags, byte(len(f.ChildIDs))})
		for _, c := range f.ChildIDs {
			b, err := latin1Terminated(c)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		sub, err := cfg.subFrames(f.SubFrames)
		if err != nil {
			return nil, err
		}
		return concat(out, sub), nil
	}
	return nil, &FormatError{Msg: fmt.Sprintf("cannot encode frame of type %T", f)}
}
