package id3

import (
	"fmt"
	"strconv"
	"strings"
)

var FrameNames = map[FrameType]string{
	"AENC": "Audio encryption",
	"APIC": "Attached picture",
	"ASPI": "Audio seek point index",
	"CHAP": "Chapter",
	"COMM": "Comments",
	"COMR": "Commercial frame",
	"CTOC": "Table of contents",

	"ENCR": "Encryption method registration",
	"EQU2": "Equalisation (2)",
	"EQUA": "Equalisation",
	"ETCO": "Event timing codes",

	"GEOB": "General encapsulated object",
	"GRID": "Group identification registration",
	"GRP1": "iTunes grouping",

	"IPLS": "Involved people list",

	"LINK": "Linked information",

	"MCDI": "Music CD identifier",
	"MLLT": "MPEG location lookup table",
	"MVIN": "iTunes movement number/count",
	"MVNM": "iTunes movement name",

	"OWNE": "Ownership frame",

	"PRIV": "Private frame",
	"PCNT": "Play counter",
	"PCST": "iTunes podcast flag",
	"POPM": "Popularimeter",
	"POSS": "Position synchronisation frame",

	"RBUF": "Recommended buffer size",
	"RVA2": "Relative volume adjustment (2)",
	"RVAD": "Relative volume adjustment",
	"RVRB": "Reverb",

	"SEEK": "Seek frame",
	"SIGN": "Signature frame",
	"SYLT": "Synchronised lyric/text",
	"SYTC": "Synchronised tempo codes",

	"TALB": "Album/Movie/Show title",
	"TBPM": "BPM (beats per minute)",
	"TCOM": "Composer",
	"TCON": "Content type",
	"TCMP": "iTunes compilation flag",
	"TCOP": "Copyright message",
	"TCAT": "iTunes podcast category",
	"TDEN": "Encoding time",
	"TDLY": "Playlist delay",
	"TDOR": "Original release time",
	"TDRC": "Recording time",
	"TDRL": "Release time",
	"TDTG": "Tagging time",
	"TENC": "Encoded by",
	"TDAT": "Date",
	"TDES": "iTunes podcast description",
	"TEXT": "Lyricist/Text writer",
	"TFLT": "File type",
	"TGID": "iTunes podcast identifier",
	"TIME": "Time",
	"TIPL": "Involved people list",
	"TIT1": "Content group description",
	"TIT2": "Title/songname/content description",
	"TIT3": "Subtitle/Description refinement",
	"TKEY": "Initial key",
	"TKWD": "iTunes podcast keywords",
	"TLAN": "Language(s)",
	"TLEN": "Length",
	"TMCL": "Musician credits list",
	"TMED": "Media type",
	"TMOO": "Mood",
	"TOAL": "Original album/movie/show title",
	"TOFN": "Original filename",
	"TOLY": "Original lyricist(s)/text writer(s)",
	"TORY": "Original release year",
	"TOPE": "Original artist(s)/performer(s)",
	"TOWN": "File owner/licensee",
	"TPE1": "Lead performer(s)/Soloist(s)",
	"TPE2": "Band/orchestra/accompaniment",
	"TPE3": "Conductor/performer refinement",
	"TPE4": "Interpreted, remixed, or otherwise modified by",
	"TPOS": "Part of a set",
	"TPRO": "Produced notice",
	"TPUB": "Publisher",
	"TRDA": "Recording dates",
	"TRCK": "Track number/Position in set",
	"TRSN": "Internet radio station name",
	"TRSO": "Internet radio station owner",
	"TSOA": "Album sort order",
	"TSOP": "Performer sort order",
	"TSOT": "Title sort order",
	"TSO2": "Album Artist sort order", // iTunes extension
	"TSOC": "Composer sort order",      // iTunes extension
	"TSIZ": "Size",
	"TSRC": "ISRC (international standard recording code)",
	"TSSE": "Software/Hardware and settings used for encoding",
	"TSST": "Set subtitle",
	"TYER": "Year",
	"TXXX": "User defined text information frame",

	"UFID": "Unique file identifier",
	"USER": "Terms of use",
	"USLT": "Unsynchronised lyric/text transcription",

	"WCOM": "Commercial information",
	"WCOP": "Copyright/Legal information",
	"WFED": "iTunes podcast feed",
	"WOAF": "Official audio file webpage",
	"WOAR": "Official artist/performer webpage",
	"WOAS": "Official audio source webpage",
	"WORS": "Official Internet radio station homepage",
	"WPAY": "Payment",
	"WPUB": "Publishers official webpage",
	"WXXX": "User defined URL link frame",
}

var PictureTypes = []string{
	"Other",
	"32x32 pixels 'file icon' (PNG only)",
	"Other file icon",
	"Cover (front)",
	"Cover (back)",
	"Leaflet page",
	"Media (e.g. label side of CD)",
	"Lead artist/lead performer/soloist",
	"Artist/performer",
	"Conductor",
	"Band/Orchestra",
	"Composer",
	"Lyricist/text writer",
	"Recording Location",
	"During recording",
	"During performance",
	"Movie/video screen capture",
	"A bright coloured fish",
	"Illustration",
	"Band/artist logotype",
	"Publisher/Studio logotype",
}

// FrameKind identifies the payload layout of a frame.
type FrameKind int

const (
	KindUnknown FrameKind = iota
	KindText
	KindNumeric
	KindNumericPart
	KindTimestamp
	KindUserText
	KindURL
	KindUserURL
	KindPairedText
	KindComment
	KindLyrics
	KindPicture
	KindUniqueFileID
	KindPrivate
	KindBinary
	KindPlayCounter
	KindPopularimeter
	KindGeneralObject
	KindTermsOfUse
	KindSyncedLyrics
	KindEventTiming
	KindRelativeVolume
	KindOwnership
	KindCommercial
	KindLinkedInfo
	KindPodcast
	KindChapter
	KindTableOfContents
)

var kindNames = [...]string{
	KindUnknown:         "unknown",
	KindText:            "text",
	KindNumeric:         "numeric text",
	KindNumericPart:     "numeric part text",
	KindTimestamp:       "timestamp",
	KindUserText:        "user text",
	KindURL:             "URL",
	KindUserURL:         "user URL",
	KindPairedText:      "paired text",
	KindComment:         "comment",
	KindLyrics:          "lyrics",
	KindPicture:         "picture",
	KindUniqueFileID:    "unique file identifier",
	KindPrivate:         "private",
	KindBinary:          "binary",
	KindPlayCounter:     "play counter",
	KindPopularimeter:   "popularimeter",
	KindGeneralObject:   "general object",
	KindTermsOfUse:      "terms of use",
	KindSyncedLyrics:    "synchronised lyrics",
	KindEventTiming:     "event timing codes",
	KindRelativeVolume:  "relative volume",
	KindOwnership:       "ownership",
	KindCommercial:      "commercial",
	KindLinkedInfo:      "linked information",
	KindPodcast:         "podcast flag",
	KindChapter:         "chapter",
	KindTableOfContents: "table of contents",
}

func (k FrameKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "FrameKind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// frameKinds is the registry of all frames this package can decode
// and encode. Identifiers not listed here are kept as
// UnsupportedFrame.
var frameKinds = map[FrameType]FrameKind{
	"TALB": KindText,
	"TBPM": KindNumeric,
	"TCMP": KindNumeric,
	"TCOM": KindText,
	"TCON": KindText,
	"TCOP": KindText,
	"TDAT": KindText,
	"TDEN": KindTimestamp,
	"TDLY": KindNumeric,
	"TDOR": KindTimestamp,
	"TDRC": KindTimestamp,
	"TDRL": KindTimestamp,
	"TDTG": KindTimestamp,
	"TENC": KindText,
	"TEXT": KindText,
	"TFLT": KindText,
	"TIME": KindText,
	"TIT1": KindText,
	"TIT2": KindText,
	"TIT3": KindText,
	"TKEY": KindText,
	"TLAN": KindText,
	"TLEN": KindNumeric,
	"TMED": KindText,
	"TMOO": KindText,
	"TOAL": KindText,
	"TOFN": KindText,
	"TOLY": KindText,
	"TOPE": KindText,
	"TORY": KindNumeric,
	"TOWN": KindText,
	"TPE1": KindText,
	"TPE2": KindText,
	"TPE3": KindText,
	"TPE4": KindText,
	"TPOS": KindNumericPart,
	"TPRO": KindText,
	"TPUB": KindText,
	"TRCK": KindNumericPart,
	"TRDA": KindText,
	"TRSN": KindText,
	"TRSO": KindText,
	"TSIZ": KindNumeric,
	"TSO2": KindText,
	"TSOA": KindText,
	"TSOC": KindText,
	"TSOP": KindText,
	"TSOT": KindText,
	"TSRC": KindText,
	"TSSE": KindText,
	"TSST": KindText,
	"TYER": KindNumeric,
	"GRP1": KindText,
	"MVNM": KindText,
	"MVIN": KindNumericPart,
	"TCAT": KindText,
	"TDES": KindText,
	"TGID": KindText,
	"TKWD": KindText,
	"TXXX": KindUserText,

	"WCOM": KindURL,
	"WCOP": KindURL,
	"WOAF": KindURL,
	"WOAR": KindURL,
	"WOAS": KindURL,
	"WORS": KindURL,
	"WPAY": KindURL,
	"WPUB": KindURL,
	"WFED": KindURL,
	"WXXX": KindUserURL,

	"IPLS": KindPairedText,
	"TIPL": KindPairedText,
	"TMCL": KindPairedText,

	"COMM": KindComment,
	"USLT": KindLyrics,
	"APIC": KindPicture,
	"UFID": KindUniqueFileID,
	"PRIV": KindPrivate,
	"MCDI": KindBinary,
	"PCNT": KindPlayCounter,
	"POPM": KindPopularimeter,
	"GEOB": KindGeneralObject,
	"USER": KindTermsOfUse,
	"SYLT": KindSyncedLyrics,
	"ETCO": KindEventTiming,
	"RVA2": KindRelativeVolume,
	"OWNE": KindOwnership,
	"COMR": KindCommercial,
	"LINK": KindLinkedInfo,
	"PCST": KindPodcast,
	"CHAP": KindChapter,
	"CTOC": KindTableOfContents,
}

// v22Frames maps ID3v2.2 identifiers to their v2.3/v2.4
// counterparts. Identifiers missing here have no counterpart and are
// dropped on upgrade.
var v22Frames = map[string]FrameType{
	"UFI": "UFID",
	"TT1": "TIT1",
	"TT2": "TIT2",
	"TT3": "TIT3",
	"TP1": "TPE1",
	"TP2": "TPE2",
	"TP3": "TPE3",
	"TP4": "TPE4",
	"TCM": "TCOM",
	"TXT": "TEXT",
	"TLA": "TLAN",
	"TCO": "TCON",
	"TAL": "TALB",
	"TPA": "TPOS",
	"TRK": "TRCK",
	"TRC": "TSRC",
	"TYE": "TYER",
	"TDA": "TDAT",
	"TIM": "TIME",
	"TRD": "TRDA",
	"TMT": "TMED",
	"TFT": "TFLT",
	"TBP": "TBPM",
	"TCP": "TCMP",
	"TCR": "TCOP",
	"TPB": "TPUB",
	"TEN": "TENC",
	"TST": "TSOT",
	"TSA": "TSOA",
	"TS2": "TSO2",
	"TSP": "TSOP",
	"TSC": "TSOC",
	"TSS": "TSSE",
	"TOF": "TOFN",
	"TLE": "TLEN",
	"TSI": "TSIZ",
	"TDY": "TDLY",
	"TKE": "TKEY",
	"TOT": "TOAL",
	"TOA": "TOPE",
	"TOL": "TOLY",
	"TOR": "TORY",
	"TXX": "TXXX",
	"WAF": "WOAF",
	"WAR": "WOAR",
	"WAS": "WOAS",
	"WCM": "WCOM",
	"WCP": "WCOP",
	"WPB": "WPUB",
	"WXX": "WXXX",
	"IPL": "IPLS",
	"MCI": "MCDI",
	"ETC": "ETCO",
	"MLL": "MLLT",
	"STC": "SYTC",
	"ULT": "USLT",
	"SLT": "SYLT",
	"COM": "COMM",
	"RVA": "RVAD",
	"REV": "RVRB",
	"PIC": "APIC",
	"GEO": "GEOB",
	"CNT": "PCNT",
	"POP": "POPM",
	"BUF": "RBUF",
	"CRA": "AENC",
	"LNK": "LINK",
	"GP1": "GRP1",
	"MVN": "MVNM",
	"MVI": "MVIN",
}

// KindOf returns the kind of frames with the given identifier.
func KindOf(id FrameType) FrameKind {
	return frameKinds[id]
}

type FrameHeader struct {
	Type  FrameType
	Flags FrameFlags
}

func (h FrameHeader) Header() FrameHeader { return h }

func (h FrameHeader) ID() FrameType {
	return h.Type
}

func (h FrameHeader) frame() {}

// Frame is implemented by pointers to all frame types of this
// package.
type Frame interface {
	ID() FrameType
	Header() FrameHeader
	// HashKey identifies the frame inside a Tag.
	HashKey() string
	// Value returns a human readable representation of the frame's
	// content.
	Value() string
	frame()
}

// TextInformationFrame holds text, numeric and timestamp frames.
type TextInformationFrame struct {
	FrameHeader
	Encoding Encoding
	Text     []string
}

// TextPair is one entry of a paired text frame, e.g. an involved
// person and their role.
type TextPair struct {
	Key   string
	Value string
}

type PairedTextFrame struct {
	FrameHeader
	Encoding Encoding
	Pairs    []TextPair
}

type UserTextInformationFrame struct {
	FrameHeader
	Encoding    Encoding
	Description string
	Text        []string
}

type UniqueFileIdentifierFrame struct {
	FrameHeader
	Owner      string
	Identifier []byte
}

type URLLinkFrame struct {
	FrameHeader
	URL string
}

type UserDefinedURLLinkFrame struct {
	FrameHeader
	Encoding    Encoding
	Description string
	URL         string
}

type CommentFrame struct {
	FrameHeader
	Encoding    Encoding
	Language    string
	Description string
	Text        []string
}

type PrivateFrame struct {
	FrameHeader
	Owner string
	Data  []byte
}

type PictureFrame struct {
	FrameHeader
	Encoding    Encoding
	MIMEType    string
	PictureType PictureType
	Description string
	Data        []byte
	// Salt is appended to the HashKey so that pictures with the same
	// description can coexist. It is never written to the file.
	Salt string
}

type MusicCDIdentifierFrame struct {
	FrameHeader
	TOC []byte
}

type UnsynchronisedLyricsFrame struct {
	FrameHeader
	Encoding    Encoding
	Language    string
	Description string
	Lyrics      string
}

type PlayCounterFrame struct {
	FrameHeader
	Count uint64
}

type PopularimeterFrame struct {
	FrameHeader
	Email  string
	Rating byte
	Count  uint64
}

type GeneralObjectFrame struct {
	FrameHeader
	Encoding    Encoding
	MIMEType    string
	Filename    string
	Description string
	Data        []byte
}

type TermsOfUseFrame struct {
	FrameHeader
	Encoding Encoding
	Language string
	Text     string
}

// SyncedText is one line of synchronised lyrics. Time is in the unit
// given by the frame's TimestampFormat.
type SyncedText struct {
	Text string
	Time uint32
}

// Timestamp formats of SYLT and ETCO frames.
const (
	TimestampMPEGFrames   byte = 1
	TimestampMilliseconds byte = 2
)

type SynchronisedLyricsFrame struct {
	FrameHeader
	Encoding        Encoding
	Language        string
	TimestampFormat byte
	ContentType     byte
	Description     string
	Lyrics          []SyncedText
}

type TimingEvent struct {
	Type byte
	Time uint32
}

type EventTimingFrame struct {
	FrameHeader
	TimestampFormat byte
	Events          []TimingEvent
}

// VolumeChannel is the adjustment of one channel of an RVA2 frame.
// Adjustment is in 1/512 dB. Peak holds PeakBits bits.
type VolumeChannel struct {
	Type       byte
	Adjustment int16
	PeakBits   byte
	Peak       []byte
}

// Gain returns the adjustment in dB.
func (c VolumeChannel) Gain() float64 {
	return float64(c.Adjustment) / 512
}

type RelativeVolumeFrame struct {
	FrameHeader
	Identification string
	Channels       []VolumeChannel
}

type OwnershipFrame struct {
	FrameHeader
	Encoding Encoding
	Price    string
	// Date is formatted YYYYMMDD.
	Date   string
	Seller string
}

type CommercialFrame struct {
	FrameHeader
	Encoding    Encoding
	Price       string
	ValidUntil  string
	ContactURL  string
	ReceivedAs  byte
	Seller      string
	Description string
	// LogoMIMEType and Logo are optional.
	LogoMIMEType string
	Logo         []byte
}

type LinkedInfoFrame struct {
	FrameHeader
	// FrameID is the identifier of the linked frame.
	FrameID FrameType
	URL     string
	Data    []byte
}

// PodcastFrame is iTunes' marker for podcast episodes.
type PodcastFrame struct {
	FrameHeader
	Flag uint32
}

// ChapterFrame describes a chapter. Offsets of 0xFFFFFFFF mean
// unset. SubFrames usually hold a title.
type ChapterFrame struct {
	FrameHeader
	ElementID   string
	StartTime   uint32
	EndTime     uint32
	StartOffset uint32
	EndOffset   uint32
	SubFrames   []Frame
}

// Flags of CTOC frames.
const (
	TOCTopLevel byte = 0x02
	TOCOrdered  byte = 0x01
)

type TableOfContentsFrame struct {
	FrameHeader
	ElementID string
	Flags     byte
	ChildIDs  []string
	SubFrames []Frame
}

// UnsupportedFrame is a frame this package cannot interpret, either
// because its identifier is unknown or because it is encrypted. Data
// is the payload exactly as it was stored. It is written back only to
// tags of the same major version it was read from.
type UnsupportedFrame struct {
	FrameHeader
	Data    []byte
	Version byte
}

// NewTextFrame returns a text frame encoded as UTF-8.
func NewTextFrame(id FrameType, values ...string) *TextInformationFrame {
	return &TextInformationFrame{
		FrameHeader: FrameHeader{Type: id},
		Encoding:    EncodingUTF8,
		Text:        values,
	}
}

func (f FrameType) String() string {
	v, ok := FrameNames[f]
	if ok {
		return v
	}

	return string(f)
}

func (p PictureType) String() string {
	if int(p) >= len(PictureTypes) {
		return ""
	}

	return PictureTypes[p]
}

func (f *TextInformationFrame) HashKey() string { return string(f.Type) }

func (f *TextInformationFrame) Value() string {
	return strings.Join(f.Text, " / ")
}

// Kind returns KindText, KindNumeric, KindNumericPart or
// KindTimestamp.
func (f *TextInformationFrame) Kind() FrameKind {
	if k := KindOf(f.Type); k != KindUnknown {
		return k
	}
	return KindText
}

// Number returns the numeric value of a numeric or numeric part
// frame. For numeric part frames ("4/9") it returns the part.
func (f *TextInformationFrame) Number() (int, error) {
	if len(f.Text) == 0 {
		return 0, fmt.Errorf("%s: no value", f.Type)
	}
	s := f.Text[0]
	if f.Kind() == KindNumericPart {
		s, _, _ = strings.Cut(s, "/")
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

// Timestamps parses the values of a timestamp frame.
func (f *TextInformationFrame) Timestamps() []Timestamp {
	out := make([]Timestamp, len(f.Text))
	for i, s := range f.Text {
		out[i] = ParseTimestamp(s)
	}
	return out
}

func (f *PairedTextFrame) HashKey() string { return string(f.Type) }

func (f *PairedTextFrame) Value() string {
	parts := make([]string, len(f.Pairs))
	for i, p := range f.Pairs {
		parts[i] = p.Key + "=" + p.Value
	}
	return strings.Join(parts, " / ")
}

func (f *UserTextInformationFrame) HashKey() string {
	return string(f.Type) + ":" + f.Description
}

func (f *UserTextInformationFrame) Value() string {
	return strings.Join(f.Text, " / ")
}

func (f *UniqueFileIdentifierFrame) HashKey() string {
	return string(f.Type) + ":" + f.Owner
}

func (f *UniqueFileIdentifierFrame) Value() string {
	return f.Owner + "=" + strconv.Quote(string(f.Identifier))
}

func (f *URLLinkFrame) HashKey() string {
	switch f.Type {
	case "WCOM", "WOAR":
		return string(f.Type) + ":" + f.URL
	}
	return string(f.Type)
}

func (f *URLLinkFrame) Value() string {
	return f.URL
}

func (f *UserDefinedURLLinkFrame) HashKey() string {
	return string(f.Type) + ":" + f.Description
}

func (f *UserDefinedURLLinkFrame) Value() string {
	return f.URL
}

func (f *CommentFrame) HashKey() string {
	return string(f.Type) + ":" + f.Description + ":" + f.Language
}

func (f *CommentFrame) Value() string {
	return strings.Join(f.Text, " / ")
}

func (f *PrivateFrame) HashKey() string {
	return string(f.Type) + ":" + f.Owner + ":" + bytesKey(f.Data)
}

func (f *PrivateFrame) Value() string {
	return f.Owner + "=" + strconv.Quote(string(f.Data))
}

func (f *PictureFrame) HashKey() string {
	return string(f.Type) + ":" + f.Description + f.Salt
}

func (f *PictureFrame) Value() string {
	return fmt.Sprintf("%s (%s, %d bytes)", f.Description, f.MIMEType, len(f.Data))
}

func (f *MusicCDIdentifierFrame) HashKey() string { return string(f.Type) }

func (f *MusicCDIdentifierFrame) Value() string {
	return fmt.Sprintf("%d bytes", len(f.TOC))
}

func (f *UnsynchronisedLyricsFrame) HashKey() string {
	return string(f.Type) + ":" + f.Description + ":" + f.Language
}

func (f *UnsynchronisedLyricsFrame) Value() string {
	return f.Lyrics
}

func (f *PlayCounterFrame) HashKey() string { return string(f.Type) }

func (f *PlayCounterFrame) Value() string {
	return strconv.FormatUint(f.Count, 10)
}

func (f *PopularimeterFrame) HashKey() string {
	return string(f.Type) + ":" + f.Email
}

func (f *PopularimeterFrame) Value() string {
	return fmt.Sprintf("%s=%d %d/255", f.Email, f.Count, f.Rating)
}

func (f *GeneralObjectFrame) HashKey() string {
	return string(f.Type) + ":" + f.Description
}

func (f *GeneralObjectFrame) Value() string {
	return fmt.Sprintf("%s (%s, %d bytes)", f.Filename, f.MIMEType, len(f.Data))
}

func (f *TermsOfUseFrame) HashKey() string {
	return string(f.Type) + ":" + f.Language
}

func (f *TermsOfUseFrame) Value() string {
	return f.Text
}

func (f *SynchronisedLyricsFrame) HashKey() string {
	return string(f.Type) + ":" + f.Description + ":" + f.Language
}

func (f *SynchronisedLyricsFrame) Value() string {
	unit := "ms"
	if f.TimestampFormat == TimestampMPEGFrames {
		unit = "fr"
	}
	lines := make([]string, len(f.Lyrics))
	for i, l := range f.Lyrics {
		lines[i] = fmt.Sprintf("[%d%s]: %s", l.Time, unit, l.Text)
	}
	return strings.Join(lines, "\n")
}

func (f *EventTimingFrame) HashKey() string { return string(f.Type) }

func (f *EventTimingFrame) Value() string {
	return fmt.Sprintf("%d events", len(f.Events))
}

func (f *RelativeVolumeFrame) HashKey() string {
	return string(f.Type) + ":" + f.Identification
}

func (f *RelativeVolumeFrame) Value() string {
	parts := make([]string, len(f.Channels))
	for i, c := range f.Channels {
		parts[i] = fmt.Sprintf("channel %d: %+.4f dB", c.Type, c.Gain())
	}
	return f.Identification + ": " + strings.Join(parts, ", ")
}

func (f *OwnershipFrame) HashKey() string { return string(f.Type) }

func (f *OwnershipFrame) Value() string {
	return f.Seller
}

func (f *CommercialFrame) HashKey() string {
	return string(f.Type) + ":" + f.Seller + ":" + f.Description
}

func (f *CommercialFrame) Value() string {
	return f.Seller + ": " + f.Price
}

func (f *LinkedInfoFrame) HashKey() string {
	return string(f.Type) + ":" + string(f.FrameID) + ":" + f.URL + ":" + bytesKey(f.Data)
}

func (f *LinkedInfoFrame) Value() string {
	return string(f.FrameID) + " " + f.URL
}

func (f *PodcastFrame) HashKey() string { return string(f.Type) }

func (f *PodcastFrame) Value() string {
	return strconv.FormatUint(uint64(f.Flag), 10)
}

func (f *ChapterFrame) HashKey() string {
	return string(f.Type) + ":" + f.ElementID
}

func (f *ChapterFrame) Value() string {
	return fmt.Sprintf("%s %d-%d ms (%d frames)", f.ElementID, f.StartTime, f.EndTime, len(f.SubFrames))
}

func (f *TableOfContentsFrame) HashKey() string {
	return string(f.Type) + ":" + f.ElementID
}

func (f *TableOfContentsFrame) Value() string {
	return f.ElementID + ": " + strings.Join(f.ChildIDs, ", ")
}

func (f *UnsupportedFrame) HashKey() string { return string(f.Type) }

func (f *UnsupportedFrame) Value() string {
	return fmt.Sprintf("%d bytes", len(f.Data))
}

// bytesKey renders binary data for use in a HashKey. Printable ASCII
// is kept as is, everything else is escaped.
func bytesKey(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c >= 0x20 && c < 0x7F && c != '\\' {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, "\\x%02x", c)
	}
	return sb.String()
}
