package id3

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"honnef.co/go/audiotag/internal/logging"
)

// DecodeOptions control how tags are read.
type DecodeOptions struct {
	// TranslateTo is the version (3 or 4) the tag is updated to after
	// reading. The zero value means 4.
	TranslateTo int
	// NoTranslate keeps frames the way they were read. Frames read
	// from ID3v2.2 tags are always renamed to their v2.3/v2.4
	// identifiers.
	NoTranslate bool
	// SkipV1 ignores ID3v1 tags.
	SkipV1 bool
}

func (o DecodeOptions) target() (int, error) {
	switch o.TranslateTo {
	case 0, 4:
		return 4, nil
	case 3:
		return 3, nil
	default:
		return 0, fmt.Errorf("id3: cannot translate to version 2.%d", o.TranslateTo)
	}
}

var errEncrypted = errors.New("encrypted frame")

type Decoder struct {
	r io.Reader
	h TagHeader

	Options DecodeOptions

	headerRead bool
	body       []byte
	sizeBits   uint
	padding    int
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// ParseHeader parses the ID3 header and reads the rest of the tag
// into memory. It returns ErrNoTag if r doesn't start with an ID3v2
// tag.
func (d *Decoder) ParseHeader() (TagHeader, error) {
	header, err := d.readHeader()
	if err != nil {
		return TagHeader{}, err
	}

	body := make([]byte, header.Size)
	if _, err := io.ReadFull(d.r, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return TagHeader{}, &FormatError{Msg: "tag is truncated", Err: err}
		}
		return TagHeader{}, err
	}
	if header.hasFooter() {
		if _, err := io.CopyN(io.Discard, d.r, tagHeaderSize); err != nil {
			return TagHeader{}, &FormatError{Msg: "missing footer", Err: err}
		}
	}

	if header.Flags.Unsynchronisation() && header.Version.Major() < 4 {
		if b, err := Resynchronise(body); err == nil {
			body = b
		} else {
			logging.Logger().Debug().Err(err).Msg("reading unsynchronised tag as is")
		}
	}

	if header.Flags.ExtendedHeader() {
		body, err = skipExtendedHeader(header.Version, body)
		if err != nil {
			return TagHeader{}, err
		}
	}

	d.h = header
	d.body = body
	d.headerRead = true
	d.sizeBits = 8
	if header.Version.Major() >= 4 {
		d.sizeBits = determineSizeBits(body)
	}

	return header, nil
}

// Parse parses a tag.
//
// Parse will always return a valid tag. In the case of an error, the
// tag will be empty.
func (d *Decoder) Parse() (*Tag, error) {
	tag := NewTag()
	target, err := d.Options.target()
	if err != nil {
		return tag, err
	}
	if !d.headerRead {
		if _, err := d.ParseHeader(); err != nil {
			return tag, err
		}
	}
	tag.Header = d.h

	log := logging.Logger()
	for {
		frame, err := d.ParseFrame()
		if err != nil {
			if err == io.EOF {
				break
			}
			var ferr *FormatError
			if errors.As(err, &ferr) {
				log.Debug().Err(err).Stringer("version", d.h.Version).Msg("skipping frame")
				continue
			}
			return NewTag(), err
		}
		d.add(tag, frame)
	}
	tag.padding = d.padding

	if !d.Options.NoTranslate {
		tag.translate(target)
	}

	return tag, nil
}

// add adds a frame read from a file. Pictures that collide get a salt,
// other colliding frames replace the earlier one.
func (d *Decoder) add(tag *Tag, f Frame) {
	for {
		err := tag.Add(f)
		if err == nil {
			return
		}
		if p, ok := f.(*PictureFrame); ok {
			p.Salt += " "
			continue
		}
		logging.Logger().Debug().Str("key", f.HashKey()).Msg("replacing duplicate frame")
		tag.Set(f)
		return
	}
}

// readHeader reads an ID3v2 header. It expects the reader to be
// seeked to the beginning of the header.
func (d *Decoder) readHeader() (header TagHeader, err error) {
	var bytes struct {
		Magic   [3]byte
		Version [2]byte
		Flags   byte
		Size    [4]byte
	}

	err = binary.Read(d.r, binary.BigEndian, &bytes)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return header, ErrNoTag
		}
		return header, err
	}
	if bytes.Magic != Magic {
		return TagHeader{}, ErrNoTag
	}
	version := Version(int16(bytes.Version[0])<<8 | int16(bytes.Version[1]))
	if bytes.Version[0] > 4 || bytes.Version[0] < 2 || bytes.Version[1] == 0xFF {
		return TagHeader{}, &UnsupportedVersionError{version}
	}

	flags := HeaderFlags(bytes.Flags)
	switch {
	case version.Major() == 4 && flags.UndefinedSet(),
		version.Major() == 3 && flags&0x1F != 0:
		return TagHeader{}, &FormatError{Msg: fmt.Sprintf("invalid header flags %#02x", byte(flags))}
	case version.Major() == 2 && flags&0x40 != 0:
		return TagHeader{}, &FormatError{Msg: "compressed ID3v2.2 tags are not supported"}
	}

	size, err := DecodeSyncsafe(bytes.Size[:])
	if err != nil {
		return TagHeader{}, err
	}

	header.Version = version
	header.Flags = flags
	header.Size = int(size)

	return header, nil
}

func skipExtendedHeader(v Version, body []byte) ([]byte, error) {
	if len(body) < 4 {
		return nil, &FormatError{Msg: "extended header is truncated"}
	}
	// Some taggers set the flag without writing an extended header.
	if _, ok := FrameNames[FrameType(body[:4])]; ok {
		return body, nil
	}
	var size int
	if v.Major() >= 4 {
		n, err := DecodeSyncsafe(body[:4])
		if err != nil {
			return nil, err
		}
		size = int(n)
	} else {
		size = int(binary.BigEndian.Uint32(body[:4])) + 4
	}
	if size < 4 || size > len(body) {
		return nil, &FormatError{Msg: fmt.Sprintf("invalid extended header size %d", size)}
	}
	return body[size:], nil
}

// determineSizeBits guesses whether the frame sizes of an ID3v2.4 tag
// are sync-safe or, as written by some versions of iTunes, plain
// integers. It counts the known frames found with either
// interpretation.
func determineSizeBits(body []byte) uint {
	walk := func(bits uint) (found int, overshoot int) {
		o := 0
		for o < len(body)-10 {
			part := body[o : o+10]
			if bytes.Equal(part, make([]byte, 10)) {
				return found, -((len(body) - o) % 10)
			}
			o += 10 + int(sizeBits(part[4:8], bits))
			if _, ok := FrameNames[FrameType(part[:4])]; ok {
				found++
			}
		}
		return found, o - len(body)
	}

	asSyncsafe, syncsafeOff := walk(7)
	asInt, intOff := walk(8)
	if asInt > asSyncsafe || (asInt == asSyncsafe && syncsafeOff >= 1 && intOff <= 1) {
		return 8
	}
	return 7
}

// ParseFrame reads the next ID3 frame. When it reaches padding, it
// will discard it and return io.EOF. A frame that cannot be decoded
// results in a *FormatError; parsing can continue with the next
// frame.
func (d *Decoder) ParseFrame() (Frame, error) {
	if !d.headerRead {
		if _, err := d.ParseHeader(); err != nil {
			return nil, err
		}
	}

	for {
		var (
			id    string
			size  int
			flags FrameFlags
			hdr   int
		)

		if d.h.Version.Major() == 2 {
			hdr = 6
			if len(d.body) < hdr {
				return nil, d.end()
			}
			id = string(d.body[:3])
			size = int(d.body[3])<<16 | int(d.body[4])<<8 | int(d.body[5])
		} else {
			hdr = frameLength
			if len(d.body) < hdr {
				return nil, d.end()
			}
			id = string(d.body[:4])
			size = int(sizeBits(d.body[4:8], d.sizeBits))
			flags = FrameFlags(binary.BigEndian.Uint16(d.body[8:10]))
		}

		// We're in the padding
		if strings.Trim(id, "\x00") == "" {
			return nil, d.end()
		}
		if size > len(d.body)-hdr {
			logging.Logger().Debug().Str("frame", id).Int("size", size).Msg("frame exceeds tag, treating rest as padding")
			return nil, d.end()
		}

		data := d.body[hdr : hdr+size]
		d.body = d.body[hdr+size:]
		if size == 0 {
			continue
		}
		if !validFrameID([]byte(id)) {
			return nil, &FormatError{Msg: fmt.Sprintf("invalid frame identifier %q", id)}
		}

		frame, err := d.decodeFrame(id, flags, data)
		if err != nil {
			return nil, err
		}
		if frame == nil {
			continue
		}
		return frame, nil
	}
}

func (d *Decoder) end() error {
	d.padding = len(d.body)
	d.body = nil
	return io.EOF
}

// decodeFrame decodes a single frame payload. It returns a nil frame
// for ID3v2.2 frames without a newer counterpart.
func (d *Decoder) decodeFrame(rawID string, flags FrameFlags, data []byte) (Frame, error) {
	v := d.h.Version
	id := FrameType(rawID)
	if v.Major() == 2 {
		up, ok := v22Frames[rawID]
		if !ok {
			logging.Logger().Debug().Str("frame", rawID).Msg("dropping ID3v2.2 frame without counterpart")
			return nil, nil
		}
		id = up
	}

	header := FrameHeader{Type: id, Flags: flags}
	unsupported := &UnsupportedFrame{FrameHeader: header, Data: data, Version: byte(v.Major())}

	kind := KindOf(id)
	if kind == KindUnknown {
		return unsupported, nil
	}

	payload, err := d.unwrap(flags, data)
	if err != nil {
		if err == errEncrypted {
			return unsupported, nil
		}
		return nil, err
	}

	var frame Frame
	if rawID == "PIC" {
		frame, err = d.readPICFrame(header, payload)
	} else {
		frame, err = d.readFrame(kind, header, payload)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawID, err)
	}
	return frame, nil
}

// unwrap undoes the per frame transformations signalled by flags.
func (d *Decoder) unwrap(flags FrameFlags, data []byte) ([]byte, error) {
	v := d.h.Version
	switch v.Major() {
	case 4:
		if flags&flag24Group != 0 {
			if len(data) < 1 {
				return nil, &FormatError{Msg: "frame too small"}
			}
			data = data[1:]
		}
		if flags&flag24Encrypt != 0 {
			return nil, errEncrypted
		}
		var dataLen []byte
		if flags&(flag24Compress|flag24DataLen) != 0 {
			if len(data) < 4 {
				return nil, &FormatError{Msg: "frame too small"}
			}
			dataLen, data = data[:4], data[4:]
		}
		if flags&flag24Unsynch != 0 || d.h.Flags.Unsynchronisation() {
			// Some writers set the flag on data that isn't
			// unsynchronised.
			if b, err := Resynchronise(data); err == nil {
				data = b
			}
		}
		if flags&flag24Compress != 0 {
			out, err := inflate(data)
			if err != nil {
				// Early writers omitted the data length indicator.
				out, err = inflate(concat(dataLen, data))
				if err != nil {
					return nil, &FormatError{Msg: "invalid compressed frame", Err: err}
				}
			}
			data = out
		}
	case 3:
		if flags&flag23Encrypt != 0 {
			return nil, errEncrypted
		}
		if flags&flag23Compress != 0 {
			if len(data) < 4 {
				return nil, &FormatError{Msg: "frame too small"}
			}
			data = data[4:]
		}
		if flags&flag23Group != 0 {
			if len(data) < 1 {
				return nil, &FormatError{Msg: "frame too small"}
			}
			data = data[1:]
		}
		if flags&flag23Compress != 0 {
			out, err := inflate(data)
			if err != nil {
				return nil, &FormatError{Msg: "invalid compressed frame", Err: err}
			}
			data = out
		}
	}
	return data, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func (d *Decoder) readFrame(kind FrameKind, header FrameHeader, data []byte) (Frame, error) {
	switch kind {
	case KindText, KindNumeric, KindNumericPart, KindTimestamp:
		return d.readTextFrame(header, data)
	case KindUserText:
		return d.readTXXXFrame(header, data)
	case KindURL:
		return &URLLinkFrame{FrameHeader: header, URL: latin1(firstTerminated(data))}, nil
	case KindUserURL:
		return d.readWXXXFrame(header, data)
	case KindPairedText:
		return d.readPairedFrame(header, data)
	case KindComment:
		return d.readCOMMFrame(header, data)
	case KindLyrics:
		return d.readUSLTFrame(header, data)
	case KindPicture:
		return d.readAPICFrame(header, data)
	case KindUniqueFileID:
		owner, rest := splitTerminated(data, EncodingISO88591)
		return &UniqueFileIdentifierFrame{FrameHeader: header, Owner: latin1(owner), Identifier: rest}, nil
	case KindPrivate:
		owner, rest := splitTerminated(data, EncodingISO88591)
		return &PrivateFrame{FrameHeader: header, Owner: latin1(owner), Data: rest}, nil
	case KindBinary:
		return &MusicCDIdentifierFrame{FrameHeader: header, TOC: data}, nil
	case KindPlayCounter:
		n, err := readCounter(data)
		if err != nil {
			return nil, err
		}
		return &PlayCounterFrame{FrameHeader: header, Count: n}, nil
	case KindPopularimeter:
		return d.readPOPMFrame(header, data)
	case KindGeneralObject:
		return d.readGEOBFrame(header, data)
	case KindTermsOfUse:
		return d.readUSERFrame(header, data)
	case KindSyncedLyrics:
		return d.readSYLTFrame(header, data)
	case KindEventTiming:
		return readETCOFrame(header, data)
	case KindRelativeVolume:
		return readRVA2Frame(header, data)
	case KindOwnership:
		return readOWNEFrame(header, data)
	case KindCommercial:
		return readCOMRFrame(header, data)
	case KindLinkedInfo:
		return d.readLINKFrame(header, data)
	case KindPodcast:
		if len(data) > 4 {
			return nil, &FormatError{Msg: "podcast flag too large"}
		}
		var n uint32
		for _, b := range data {
			n = n<<8 | uint32(b)
		}
		return &PodcastFrame{FrameHeader: header, Flag: n}, nil
	case KindChapter:
		return d.readCHAPFrame(header, data)
	case KindTableOfContents:
		return d.readCTOCFrame(header, data)
	}
	return nil, &FormatError{Msg: fmt.Sprintf("no decoder for %s frames", kind)}
}

func readEncoding(data []byte) (Encoding, []byte, error) {
	if len(data) < 1 {
		return 0, nil, &FormatError{Msg: "frame too small"}
	}
	enc := Encoding(data[0])
	if !enc.valid() {
		return 0, nil, &FormatError{Msg: fmt.Sprintf("invalid text encoding %d", data[0])}
	}
	return enc, data[1:], nil
}

// readValues decodes a list of terminated strings. Older versions
// did not support multiple values; zero padding after a value is not
// read as a list of empty strings.
func (d *Decoder) readValues(data []byte, enc Encoding) ([]string, error) {
	var out []string
	for len(data) > 0 {
		var head []byte
		head, data = splitTerminated(data, enc)
		s, err := enc.decode(head)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		if d.h.Version.Major() < 4 && len(bytes.Trim(data, "\x00")) == 0 {
			break
		}
	}
	return out, nil
}

func firstTerminated(data []byte) []byte {
	head, _ := splitTerminated(data, EncodingISO88591)
	return head
}

func (d *Decoder) readTextFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	text, err := d.readValues(rest, enc)
	if err != nil {
		return nil, err
	}
	return &TextInformationFrame{FrameHeader: header, Encoding: enc, Text: text}, nil
}

func (d *Decoder) readTXXXFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	descBytes, rest := splitTerminated(rest, enc)
	desc, err := enc.decode(descBytes)
	if err != nil {
		return nil, err
	}
	text, err := d.readValues(rest, enc)
	if err != nil {
		return nil, err
	}

	return &UserTextInformationFrame{
		FrameHeader: header,
		Encoding:    enc,
		Description: desc,
		Text:        text,
	}, nil
}

func (d *Decoder) readWXXXFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	descBytes, rest := splitTerminated(rest, enc)
	desc, err := enc.decode(descBytes)
	if err != nil {
		return nil, err
	}

	return &UserDefinedURLLinkFrame{
		FrameHeader: header,
		Encoding:    enc,
		Description: desc,
		URL:         latin1(firstTerminated(rest)),
	}, nil
}

func (d *Decoder) readPairedFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	values, err := d.readValues(rest, enc)
	if err != nil {
		return nil, err
	}
	frame := &PairedTextFrame{FrameHeader: header, Encoding: enc}
	for i := 0; i < len(values); i += 2 {
		p := TextPair{Key: values[i]}
		if i+1 < len(values) {
			p.Value = values[i+1]
		}
		frame.Pairs = append(frame.Pairs, p)
	}
	return frame, nil
}

func readLanguage(data []byte) (string, []byte, error) {
	if len(data) < 3 {
		return "", nil, &FormatError{Msg: "frame too small"}
	}
	return latin1(data[:3]), data[3:], nil
}

func (d *Decoder) readCOMMFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	lang, rest, err := readLanguage(rest)
	if err != nil {
		return nil, err
	}
	descBytes, rest := splitTerminated(rest, enc)
	desc, err := enc.decode(descBytes)
	if err != nil {
		return nil, err
	}
	text, err := d.readValues(rest, enc)
	if err != nil {
		return nil, err
	}

	return &CommentFrame{
		FrameHeader: header,
		Encoding:    enc,
		Language:    lang,
		Description: desc,
		Text:        text,
	}, nil
}

func (d *Decoder) readUSLTFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	lang, rest, err := readLanguage(rest)
	if err != nil {
		return nil, err
	}
	descBytes, rest := splitTerminated(rest, enc)
	desc, err := enc.decode(descBytes)
	if err != nil {
		return nil, err
	}
	lyricsBytes, _ := splitTerminated(rest, enc)
	lyrics, err := enc.decode(lyricsBytes)
	if err != nil {
		return nil, err
	}

	return &UnsynchronisedLyricsFrame{
		FrameHeader: header,
		Encoding:    enc,
		Language:    lang,
		Description: desc,
		Lyrics:      lyrics,
	}, nil
}

func (d *Decoder) readAPICFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	mime, rest := splitTerminated(rest, EncodingISO88591)
	if len(rest) < 1 {
		return nil, &FormatError{Msg: "picture type missing"}
	}
	typ := PictureType(rest[0])
	descBytes, pic := splitTerminated(rest[1:], enc)
	desc, err := enc.decode(descBytes)
	if err != nil {
		return nil, err
	}

	return &PictureFrame{
		FrameHeader: header,
		Encoding:    enc,
		MIMEType:    latin1(mime),
		PictureType: typ,
		Description: desc,
		Data:        pic,
	}, nil
}

var v22ImageFormats = map[string]string{
	"JPG": "image/jpeg",
	"PNG": "image/png",
}

// readPICFrame reads the ID3v2.2 picture frame, which stores a three
// letter image format instead of a MIME type.
func (d *Decoder) readPICFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	if len(rest) < 4 {
		return nil, &FormatError{Msg: "frame too small"}
	}
	format := latin1(rest[:3])
	typ := PictureType(rest[3])
	descBytes, pic := splitTerminated(rest[4:], enc)
	desc, err := enc.decode(descBytes)
	if err != nil {
		return nil, err
	}
	mime, ok := v22ImageFormats[strings.ToUpper(format)]
	if !ok {
		mime = format
	}

	return &PictureFrame{
		FrameHeader: header,
		Encoding:    enc,
		MIMEType:    mime,
		PictureType: typ,
		Description: desc,
		Data:        pic,
	}, nil
}

// readCounter reads a big endian counter of at least 4 bytes.
func readCounter(data []byte) (uint64, error) {
	if len(data) < 4 {
		return 0, &FormatError{Msg: "counter too small"}
	}
	data = bytes.TrimLeft(data, "\x00")
	if len(data) > 8 {
		return 0, &FormatError{Msg: "counter too large"}
	}
	var n uint64
	for _, b := range data {
		n = n<<8 | uint64(b)
	}
	return n, nil
}

func (d *Decoder) readPOPMFrame(header FrameHeader, data []byte) (Frame, error) {
	email, rest := splitTerminated(data, EncodingISO88591)
	if len(rest) < 1 {
		return nil, &FormatError{Msg: "rating missing"}
	}
	frame := &PopularimeterFrame{FrameHeader: header, Email: latin1(email), Rating: rest[0]}
	// The counter is optional.
	if n, err := readCounter(rest[1:]); err == nil {
		frame.Count = n
	}
	return frame, nil
}

func (d *Decoder) readGEOBFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	mime, rest := splitTerminated(rest, EncodingISO88591)
	filenameBytes, rest := splitTerminated(rest, enc)
	descBytes, obj := splitTerminated(rest, enc)
	filename, err := enc.decode(filenameBytes)
	if err != nil {
		return nil, err
	}
	desc, err := enc.decode(descBytes)
	if err != nil {
		return nil, err
	}

	return &GeneralObjectFrame{
		FrameHeader: header,
		Encoding:    enc,
		MIMEType:    latin1(mime),
		Filename:    filename,
		Description: desc,
		Data:        obj,
	}, nil
}

func (d *Decoder) readUSERFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	lang, rest, err := readLanguage(rest)
	if err != nil {
		return nil, err
	}
	textBytes, _ := splitTerminated(rest, enc)
	text, err := enc.decode(textBytes)
	if err != nil {
		return nil, err
	}
	return &TermsOfUseFrame{FrameHeader: header, Encoding: enc, Language: lang, Text: text}, nil
}

func (d *Decoder) readSYLTFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	lang, rest, err := readLanguage(rest)
	if err != nil {
		return nil, err
	}
	if len(rest) < 2 {
		return nil, &FormatError{Msg: "frame too small"}
	}
	frame := &SynchronisedLyricsFrame{
		FrameHeader:     header,
		Encoding:        enc,
		Language:        lang,
		TimestampFormat: rest[0],
		ContentType:     rest[1],
	}
	descBytes, rest := splitTerminated(rest[2:], enc)
	if frame.Description, err = enc.decode(descBytes); err != nil {
		return nil, err
	}
	for len(rest) > 0 {
		var textBytes []byte
		textBytes, rest = splitTerminated(rest, enc)
		if len(rest) < 4 {
			return nil, &FormatError{Msg: "synchronised text without timestamp"}
		}
		text, err := enc.decode(textBytes)
		if err != nil {
			return nil, err
		}
		frame.Lyrics = append(frame.Lyrics, SyncedText{Text: text, Time: binary.BigEndian.Uint32(rest)})
		rest = rest[4:]
	}
	return frame, nil
}

func readETCOFrame(header FrameHeader, data []byte) (Frame, error) {
	if len(data) < 1 {
		return nil, &FormatError{Msg: "frame too small"}
	}
	frame := &EventTimingFrame{FrameHeader: header, TimestampFormat: data[0]}
	// Trailing bytes that don't form a complete event are ignored.
	for rest := data[1:]; len(rest) >= 5; rest = rest[5:] {
		frame.Events = append(frame.Events, TimingEvent{Type: rest[0], Time: binary.BigEndian.Uint32(rest[1:])})
	}
	return frame, nil
}

func readRVA2Frame(header FrameHeader, data []byte) (Frame, error) {
	ident, rest := splitTerminated(data, EncodingISO88591)
	frame := &RelativeVolumeFrame{FrameHeader: header, Identification: latin1(ident)}
	for len(rest) > 0 {
		if len(rest) < 4 {
			return nil, &FormatError{Msg: "volume adjustment is truncated"}
		}
		c := VolumeChannel{
			Type:       rest[0],
			Adjustment: int16(binary.BigEndian.Uint16(rest[1:3])),
			PeakBits:   rest[3],
		}
		n := (int(c.PeakBits) + 7) / 8
		rest = rest[4:]
		if len(rest) < n {
			return nil, &FormatError{Msg: "volume peak is truncated"}
		}
		c.Peak = rest[:n:n]
		rest = rest[n:]
		frame.Channels = append(frame.Channels, c)
	}
	return frame, nil
}

// readDate reads the fixed eight character dates of OWNE and COMR
// frames.
func readDate(data []byte) (string, []byte, error) {
	if len(data) < 8 {
		return "", nil, &FormatError{Msg: "date is truncated"}
	}
	return latin1(data[:8]), data[8:], nil
}

func readOWNEFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	price, rest := splitTerminated(rest, EncodingISO88591)
	date, rest, err := readDate(rest)
	if err != nil {
		return nil, err
	}
	sellerBytes, _ := splitTerminated(rest, enc)
	seller, err := enc.decode(sellerBytes)
	if err != nil {
		return nil, err
	}
	return &OwnershipFrame{
		FrameHeader: header,
		Encoding:    enc,
		Price:       latin1(price),
		Date:        date,
		Seller:      seller,
	}, nil
}

func readCOMRFrame(header FrameHeader, data []byte) (Frame, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	price, rest := splitTerminated(rest, EncodingISO88591)
	validUntil, rest, err := readDate(rest)
	if err != nil {
		return nil, err
	}
	contact, rest := splitTerminated(rest, EncodingISO88591)
	if len(rest) < 1 {
		return nil, &FormatError{Msg: "frame too small"}
	}
	frame := &CommercialFrame{
		FrameHeader: header,
		Encoding:    enc,
		Price:       latin1(price),
		ValidUntil:  validUntil,
		ContactURL:  latin1(contact),
		ReceivedAs:  rest[0],
	}
	sellerBytes, rest := splitTerminated(rest[1:], enc)
	descBytes, rest := splitTerminated(rest, enc)
	if frame.Seller, err = enc.decode(sellerBytes); err != nil {
		return nil, err
	}
	if frame.Description, err = enc.decode(descBytes); err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		mime, logo := splitTerminated(rest, EncodingISO88591)
		frame.LogoMIMEType = latin1(mime)
		frame.Logo = logo
	}
	return frame, nil
}

func (d *Decoder) readLINKFrame(header FrameHeader, data []byte) (Frame, error) {
	n := 4
	if d.h.Version.Major() == 2 {
		n = 3
	}
	if len(data) < n {
		return nil, &FormatError{Msg: "frame too small"}
	}
	id := FrameType(data[:n])
	if n == 3 {
		up, ok := v22Frames[string(id)]
		if !ok {
			return nil, &FormatError{Msg: fmt.Sprintf("link to ID3v2.2 frame %q without counterpart", string(id))}
		}
		id = up
	}
	url, rest := splitTerminated(data[n:], EncodingISO88591)
	return &LinkedInfoFrame{FrameHeader: header, FrameID: id, URL: latin1(url), Data: rest}, nil
}

// readSubFrames reads the frames embedded in CHAP and CTOC frames.
// They use the header format of the surrounding tag. The payload has
// already been resynchronised.
func (d *Decoder) readSubFrames(data []byte) []Frame {
	h := d.h
	h.Flags &^= 0x80
	sub := &Decoder{h: h, Options: d.Options, headerRead: true, body: data, sizeBits: d.sizeBits}
	var frames []Frame
	for {
		f, err := sub.ParseFrame()
		if err == io.EOF {
			return frames
		}
		if err != nil {
			logging.Logger().Debug().Err(err).Msg("skipping embedded frame")
			continue
		}
		frames = append(frames, f)
	}
}

func (d *Decoder) readCHAPFrame(header FrameHeader, data []byte) (Frame, error) {
	id, rest := splitTerminated(data, EncodingISO88591)
	if len(rest) < 16 {
		return nil, &FormatError{Msg: "chapter times are truncated"}
	}
	return &ChapterFrame{
		FrameHeader: header,
		ElementID:   latin1(id),
		StartTime:   binary.BigEndian.Uint32(rest[0:4]),
		EndTime:     binary.BigEndian.Uint32(rest[4:8]),
		StartOffset: binary.BigEndian.Uint32(rest[8:12]),
		EndOffset:   binary.BigEndian.Uint32(rest[12:16]),
		SubFrames:   d.readSubFrames(rest[16:]),
	}, nil
}

func (d *Decoder) readCTOCFrame(header FrameHeader, data []byte) (Frame, error) {
	id, rest := splitTerminated(data, EncodingISO88591)
	if len(rest) < 2 {
		return nil, &FormatError{Msg: "frame too small"}
	}
	frame := &TableOfContentsFrame{FrameHeader: header, ElementID: latin1(id), Flags: rest[0]}
	count := int(rest[1])
	rest = rest[2:]
	for i := 0; i < count; i++ {
		if len(rest) == 0 {
			return nil, &FormatError{Msg: "child element list is truncated"}
		}
		var child []byte
		child, rest = splitTerminated(rest, EncodingISO88591)
		frame.ChildIDs = append(frame.ChildIDs, latin1(child))
	}
	frame.SubFrames = d.readSubFrames(rest)
	return frame, nil
}
