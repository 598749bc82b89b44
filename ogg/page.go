package ogg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header type flags.
const (
	FlagContinued = 0x01
	FlagFirst     = 0x02
	FlagLast      = 0x04
)

const headerSize = 27

var capturePattern = []byte("OggS")

// FormatError reports a malformed Ogg stream.
type FormatError struct {
	Offset int64
	Msg    string
}

func (err *FormatError) Error() string {
	if err.Offset < 0 {
		return "ogg: " + err.Msg
	}
	return fmt.Sprintf("ogg: at offset %d: %s", err.Offset, err.Msg)
}

// A Page is a single Ogg page.
//
// Packets holds the packet data stored on the page. If the page is
// continued, the first entry is the tail of a packet started on an
// earlier page. If the page is not Complete, the last entry is
// continued on the next page.
type Page struct {
	Version  byte
	Flags    byte
	Position int64 // granule position, -1 if no packet finishes on the page
	Serial   uint32
	Sequence uint32
	Packets  [][]byte
	Complete bool

	// Offset is where the page was read from, or -1.
	Offset int64

	// Number of bytes the page occupied when it was read.
	size int
}

func (p *Page) Continued() bool { return p.Flags&FlagContinued != 0 }
func (p *Page) First() bool     { return p.Flags&FlagFirst != 0 }
func (p *Page) Last() bool      { return p.Flags&FlagLast != 0 }

func (p *Page) setFlag(flag byte, on bool) {
	if on {
		p.Flags |= flag
	} else {
		p.Flags &^= flag
	}
}

func (p *Page) lacing() []byte {
	var lacing []byte
	for _, packet := range p.Packets {
		for n := len(packet); ; n -= 255 {
			if n < 255 {
				lacing = append(lacing, byte(n))
				break
			}
			lacing = append(lacing, 255)
		}
	}
	if !p.Complete && len(lacing) > 0 && lacing[len(lacing)-1] == 0 {
		lacing = lacing[:len(lacing)-1]
	}
	return lacing
}

// Size returns the encoded size of the page.
func (p *Page) Size() int {
	n := headerSize
	for _, packet := range p.Packets {
		n += len(packet)/255 + 1 + len(packet)
	}
	if !p.Complete && len(p.Packets) > 0 && len(p.Packets[len(p.Packets)-1])%255 == 0 {
		n--
	}
	return n
}

// Bytes encodes the page, including its checksum.
func (p *Page) Bytes() ([]byte, error) {
	lacing := p.lacing()
	if len(lacing) > 255 {
		return nil, fmt.Errorf("ogg: %d lacing values do not fit into one page", len(lacing))
	}
	if !p.Complete && len(lacing) > 0 && lacing[len(lacing)-1] != 255 {
		return nil, errors.New("ogg: incomplete page must end with a lacing value of 255")
	}

	out := make([]byte, headerSize, p.Size())
	copy(out, capturePattern)
	out[4] = p.Version
	out[5] = p.Flags
	binary.LittleEndian.PutUint64(out[6:], uint64(p.Position))
	binary.LittleEndian.PutUint32(out[14:], p.Serial)
	binary.LittleEndian.PutUint32(out[18:], p.Sequence)
	out[26] = byte(len(lacing))
	out = append(out, lacing...)
	for _, packet := range p.Packets {
		out = append(out, packet...)
	}
	binary.LittleEndian.PutUint32(out[22:], Checksum(out))
	return out, nil
}

// ReadPage reads the next page from r. It returns io.EOF if r is at
// its end, or only zero bytes are left where a header was expected.
// Pages with an unknown version or a bad checksum are rejected.
func ReadPage(r io.Reader) (*Page, error) {
	var hdr [headerSize]byte
	n, err := io.ReadFull(r, hdr[:])
	if err != nil {
		if n == 0 || bytes.Count(hdr[:n], []byte{0}) == n {
			return nil, io.EOF
		}
		return nil, &FormatError{Offset: -1, Msg: "truncated page header"}
	}
	if !bytes.Equal(hdr[:4], capturePattern) {
		return nil, &FormatError{Offset: -1, Msg: fmt.Sprintf("bad capture pattern %q", hdr[:4])}
	}
	if hdr[4] != 0 {
		return nil, &FormatError{Offset: -1, Msg: fmt.Sprintf("unsupported stream structure version %d", hdr[4])}
	}

	p := &Page{
		Version:  hdr[4],
		Flags:    hdr[5],
		Position: int64(binary.LittleEndian.Uint64(hdr[6:])),
		Serial:   binary.LittleEndian.Uint32(hdr[14:]),
		Sequence: binary.LittleEndian.Uint32(hdr[18:]),
		Offset:   -1,
	}
	crc := binary.LittleEndian.Uint32(hdr[22:])

	lacing := make([]byte, hdr[26])
	if _, err := io.ReadFull(r, lacing); err != nil {
		return nil, &FormatError{Offset: -1, Msg: "truncated lacing values"}
	}

	var sizes []int
	total, n := 0, 0
	for _, v := range lacing {
		n += int(v)
		if v < 255 {
			sizes = append(sizes, n)
			total += n
			n = 0
		}
	}
	p.Complete = len(lacing) == 0 || lacing[len(lacing)-1] < 255
	if !p.Complete {
		sizes = append(sizes, n)
		total += n
	}

	body := make([]byte, total)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, &FormatError{Offset: -1, Msg: "truncated page body"}
	}
	for _, size := range sizes {
		p.Packets = append(p.Packets, body[:size:size])
		body = body[size:]
	}

	hdr[22], hdr[23], hdr[24], hdr[25] = 0, 0, 0, 0
	sum := update(update(0, hdr[:]), lacing)
	for _, packet := range p.Packets {
		sum = update(sum, packet)
	}
	if sum != crc {
		return nil, &FormatError{Offset: -1, Msg: fmt.Sprintf("checksum mismatch in page %d of stream %08x", p.Sequence, p.Serial)}
	}

	p.size = headerSize + len(lacing) + total
	return p, nil
}
