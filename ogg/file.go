package ogg

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go4.org/readerutil"

	"honnef.co/go/audiotag/internal/logging"
	"honnef.co/go/audiotag/rewrite"
	"honnef.co/go/audiotag/vorbis"
)

// ErrUnsupportedCodec is returned when accessing the comments of a
// stream whose codec is not known.
var ErrUnsupportedCodec = errors.New("ogg: unsupported codec")

// ErrNoStream is returned when a serial number does not name a
// logical stream of the file.
var ErrNoStream = errors.New("ogg: no such stream")

type Codec int

const (
	Unknown Codec = iota
	Vorbis
	Opus
)

func (c Codec) String() string {
	switch c {
	case Vorbis:
		return "Vorbis"
	case Opus:
		return "Opus"
	default:
		return "unknown"
	}
}

var (
	vorbisHead = []byte("\x01vorbis")
	vorbisTags = []byte("\x03vorbis")
	opusHead   = []byte("OpusHead")
	opusTags   = []byte("OpusTags")
)

func detect(packet []byte) Codec {
	switch {
	case bytes.HasPrefix(packet, vorbisHead):
		return Vorbis
	case bytes.HasPrefix(packet, opusHead):
		return Opus
	default:
		return Unknown
	}
}

// A Stream is one logical bitstream of a physical Ogg file.
type Stream struct {
	Serial uint32
	Codec  Codec
	// Pages in sequence order.
	Pages []*Page
}

// Packets returns all packets of the stream. A packet that is not
// finished by the last page is returned as is.
func (s *Stream) Packets() ([][]byte, error) {
	return ToPackets(s.Pages, false)
}

// pagesOf returns the range of pages holding data of packet i.
func (s *Stream) pagesOf(i int) (start, end int, ok bool) {
	start = -1
	for j, sp := range spans(s.Pages) {
		if sp.first <= i && i <= sp.last {
			if start == -1 {
				start = j
			}
			end = j
		}
	}
	return start, end, start != -1
}

// Packet returns packet i of the stream.
func (s *Stream) Packet(i int) ([]byte, error) {
	start, end, ok := s.pagesOf(i)
	if !ok {
		return nil, &FormatError{Offset: -1, Msg: fmt.Sprintf("stream %08x has no packet %d", s.Serial, i)}
	}
	pages := s.Pages[start : end+1]
	local := i - spans(s.Pages)[start].first
	if spans(pages)[len(pages)-1].finished < local {
		return nil, &FormatError{Offset: pages[len(pages)-1].Offset, Msg: fmt.Sprintf("packet %d of stream %08x is truncated", i, s.Serial)}
	}
	packets, err := ToPackets(pages, false)
	if err != nil {
		return nil, err
	}
	return packets[local], nil
}

// A File is a demultiplexed Ogg file. All pages are held in memory.
type File struct {
	Path    string
	Streams []*Stream

	size     int64
	raw      map[uint32][]byte
	comments map[uint32]*vorbis.Comment
}

// Open reads and demultiplexes the named file.
func Open(name string) (*File, error) {
	fd, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	f, err := Demux(fd)
	if err != nil {
		return nil, err
	}
	f.Path = name
	return f, nil
}

// Demux reads all pages from r and groups them by stream. Data before
// the first page, such as an ID3 tag, is skipped.
func Demux(r io.Reader) (*File, error) {
	var n int64
	br := bufio.NewReader(readerutil.CountingReader{Reader: r, N: &n})
	offset := func() int64 { return n - int64(br.Buffered()) }

	for {
		b, err := br.Peek(len(capturePattern))
		if err != nil {
			if err == io.EOF {
				return nil, &FormatError{Offset: offset(), Msg: "no Ogg page found"}
			}
			return nil, err
		}
		if bytes.Equal(b, capturePattern) {
			break
		}
		br.Discard(1)
	}

	log := logging.Logger()
	if skipped := offset(); skipped > 0 {
		log.Debug().Int64("bytes", skipped).Msg("skipped data before first page")
	}

	f := &File{
		raw:      make(map[uint32][]byte),
		comments: make(map[uint32]*vorbis.Comment),
	}
	streams := make(map[uint32]*Stream)
	for {
		off := offset()
		p, err := ReadPage(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			var ferr *FormatError
			if errors.As(err, &ferr) && ferr.Offset < 0 {
				ferr.Offset = off
			}
			return nil, err
		}
		p.Offset = off

		s, ok := streams[p.Serial]
		if !ok {
			s = &Stream{Serial: p.Serial}
			if len(p.Packets) > 0 {
				s.Codec = detect(p.Packets[0])
			}
			streams[p.Serial] = s
			f.Streams = append(f.Streams, s)
			log.Debug().Str("serial", fmt.Sprintf("%08x", p.Serial)).Stringer("codec", s.Codec).Msg("found stream")
		} else if prev := s.Pages[len(s.Pages)-1]; p.Sequence != prev.Sequence+1 {
			return nil, &FormatError{Offset: off, Msg: fmt.Sprintf("stream %08x: page %d follows page %d", p.Serial, p.Sequence, prev.Sequence)}
		}
		s.Pages = append(s.Pages, p)
	}
	f.size = n
	return f, nil
}

// Stream returns the stream with the given serial number, or nil.
func (f *File) Stream(serial uint32) *Stream {
	for _, s := range f.Streams {
		if s.Serial == serial {
			return s
		}
	}
	return nil
}

func (f *File) stream(serial uint32) (*Stream, error) {
	s := f.Stream(serial)
	if s == nil {
		return nil, fmt.Errorf("%w: %08x", ErrNoStream, serial)
	}
	return s, nil
}

// parseComment splits a comment header packet into the comment and
// whatever follows it.
func parseComment(codec Codec, packet []byte) (*vorbis.Comment, []byte, error) {
	var prefix []byte
	var framing bool
	switch codec {
	case Vorbis:
		prefix, framing = vorbisTags, true
	case Opus:
		prefix, framing = opusTags, false
	default:
		return nil, nil, ErrUnsupportedCodec
	}
	if !bytes.HasPrefix(packet, prefix) {
		return nil, nil, &FormatError{Offset: -1, Msg: fmt.Sprintf("%s comment header not found", codec)}
	}
	body := packet[len(prefix):]
	c, n, err := vorbis.Decode(body, framing)
	if err != nil {
		return nil, nil, err
	}
	return c, body[n:], nil
}

// Comment returns the comment of a Vorbis or Opus stream. Changes to
// it are written by Save after calling SetComment.
func (f *File) Comment(serial uint32) (*vorbis.Comment, error) {
	if c := f.comments[serial]; c != nil {
		return c, nil
	}
	s, err := f.stream(serial)
	if err != nil {
		return nil, err
	}
	packet, err := f.CommentPacket(serial)
	if err != nil {
		return nil, err
	}
	c, _, err := parseComment(s.Codec, packet)
	return c, err
}

// CommentPacket returns the second packet of a stream, which holds
// the comment in Vorbis, Opus and most other Ogg codecs. A packet set
// with SetCommentPacket is returned as is.
func (f *File) CommentPacket(serial uint32) ([]byte, error) {
	if b, ok := f.raw[serial]; ok {
		return b, nil
	}
	s, err := f.stream(serial)
	if err != nil {
		return nil, err
	}
	return s.Packet(1)
}

// SetComment replaces the comment of a Vorbis or Opus stream. The file
// is not modified until Save is called.
func (f *File) SetComment(serial uint32, c *vorbis.Comment) error {
	s, err := f.stream(serial)
	if err != nil {
		return err
	}
	if s.Codec == Unknown {
		return ErrUnsupportedCodec
	}
	delete(f.raw, serial)
	f.comments[serial] = c
	return nil
}

// SetCommentPacket replaces the second packet of a stream with data,
// which is written verbatim by Save.
func (f *File) SetCommentPacket(serial uint32, data []byte) error {
	if _, err := f.stream(serial); err != nil {
		return err
	}
	delete(f.comments, serial)
	f.raw[serial] = data
	return nil
}

// Save writes all changed comments to the file at f.Path and reloads
// it. The padding function decides how much padding follows comments
// set with SetComment; nil uses rewrite.PaddingInfo.DefaultPadding.
func (f *File) Save(padding rewrite.PaddingFunc) error {
	var edits []rewrite.Edit
	for _, s := range f.Streams {
		data, ok := f.raw[s.Serial]
		if c := f.comments[s.Serial]; c != nil {
			var err error
			data, err = f.commentPacket(s, c, padding)
			if err != nil {
				return err
			}
			ok = true
		}
		if !ok {
			continue
		}
		e, err := replacePacket(s, 1, data)
		if err != nil {
			return err
		}
		edits = append(edits, e...)
	}
	if len(edits) == 0 {
		return nil
	}

	if err := rewrite.Apply(f.Path, edits...); err != nil {
		return err
	}
	nf, err := Open(f.Path)
	if err != nil {
		return err
	}
	*f = *nf
	return nil
}

func (f *File) commentPacket(s *Stream, c *vorbis.Comment, padding rewrite.PaddingFunc) ([]byte, error) {
	old, err := s.Packet(1)
	if err != nil {
		return nil, err
	}
	_, tail, err := parseComment(s.Codec, old)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch s.Codec {
	case Vorbis:
		block, err := c.Encode(true)
		if err != nil {
			return nil, err
		}
		data = append(append(data, vorbisTags...), block...)
	case Opus:
		block, err := c.Encode(false)
		if err != nil {
			return nil, err
		}
		data = append(append(data, opusTags...), block...)
		// If the lowest bit of the first byte after the comment is
		// set, the rest of the packet is extension data.
		if len(tail) > 0 && tail[0]&0x01 != 0 {
			return append(data, tail...), nil
		}
	}

	info := rewrite.PaddingInfo{
		Padding: int64(len(old) - len(data)),
		NewSize: int64(len(data)),
		Size:    f.size - int64(len(old)),
	}
	n, err := info.Resolve(padding)
	if err != nil {
		return nil, err
	}
	logging.Logger().Debug().Stringer("info", info).Int64("padding", n).Msg("writing comment")
	return append(data, make([]byte, n)...), nil
}

// replacePacket returns the edits that replace packet i of s with
// data. Only the pages holding the packet are rewritten, plus the
// following pages of the stream if their sequence numbers change.
func replacePacket(s *Stream, i int, data []byte) ([]rewrite.Edit, error) {
	start, end, ok := s.pagesOf(i)
	if !ok {
		return nil, &FormatError{Offset: -1, Msg: fmt.Sprintf("stream %08x has no packet %d", s.Serial, i)}
	}
	oldPages := s.Pages[start : end+1]
	packets, err := ToPackets(oldPages, false)
	if err != nil {
		return nil, err
	}
	packets[i-spans(s.Pages)[start].first] = data

	newPages, preserved := preserveLayout(packets, oldPages)
	first, last := oldPages[0], oldPages[len(oldPages)-1]
	for _, p := range newPages {
		p.Version = first.Version
		p.Serial = s.Serial
	}
	np := newPages[0]
	np.setFlag(FlagFirst, first.First())
	np.setFlag(FlagLast, first.Last())
	np.setFlag(FlagContinued, first.Continued())
	np = newPages[len(newPages)-1]
	np.setFlag(FlagFirst, last.First())
	np.setFlag(FlagLast, last.Last())
	np.Complete = last.Complete

	if !preserved {
		// Each page gets the granule position of the old page on which
		// its last finished packet ended.
		granules := make(map[int]int64)
		for j, sp := range spans(oldPages) {
			for k := sp.first; k <= sp.finished; k++ {
				granules[k] = oldPages[j].Position
			}
		}
		for j, sp := range spans(newPages) {
			pos, ok := granules[sp.finished]
			if sp.finished < 0 || !ok {
				pos = -1
			}
			newPages[j].Position = pos
		}
	}
	if !np.Complete && len(np.Packets) == 1 {
		np.Position = -1
	}

	// New pages are written into the slots of the old ones. Surplus
	// pages go into the last slot, surplus slots are emptied.
	edits := make([]rewrite.Edit, len(oldPages))
	for j, p := range oldPages {
		edits[j] = rewrite.Edit{Offset: p.Offset, Size: int64(p.size)}
	}
	for j, p := range newPages {
		b, err := p.Bytes()
		if err != nil {
			return nil, err
		}
		k := min(j, len(edits)-1)
		edits[k].Data = append(edits[k].Data, b...)
	}

	delta := int64(len(newPages)) - int64(len(oldPages))
	log := logging.Logger()
	log.Debug().
		Str("serial", fmt.Sprintf("%08x", s.Serial)).
		Int("old", len(oldPages)).
		Int("new", len(newPages)).
		Bool("preserved", preserved).
		Msg("repaginated packet")
	if delta == 0 {
		return edits, nil
	}

	for _, p := range s.Pages[end+1:] {
		q := *p
		q.Sequence = uint32(int64(p.Sequence) + delta)
		b, err := q.Bytes()
		if err != nil {
			return nil, err
		}
		edits = append(edits, rewrite.Edit{Offset: p.Offset, Size: int64(p.size), Data: b})
	}
	log.Debug().Int("pages", len(s.Pages)-end-1).Int64("delta", delta).Msg("renumbered pages")
	return edits, nil
}
