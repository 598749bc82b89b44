package ogg

import (
	"fmt"
)

const (
	// Pages are filled up to roughly this size.
	defaultPageSize = 4096
	// Packet tails shorter than this stay on the current page even if
	// that makes it larger than defaultPageSize.
	wiggleRoom = 2048
	// Maximum number of packets started on a single page.
	maxPackets = 255
)

// ToPackets reassembles the packets stored on pages, which must belong
// to one logical stream and have consecutive sequence numbers.
//
// If strict is set, the first page must not be continued and the last
// page must be complete. Otherwise a partial packet at either end is
// returned as is.
func ToPackets(pages []*Page, strict bool) ([][]byte, error) {
	if len(pages) == 0 {
		return nil, nil
	}
	serial, seq := pages[0].Serial, pages[0].Sequence

	if strict {
		if pages[0].Continued() {
			return nil, &FormatError{Offset: pages[0].Offset, Msg: "first packet is continued"}
		}
		if !pages[len(pages)-1].Complete {
			return nil, &FormatError{Offset: pages[len(pages)-1].Offset, Msg: "last packet does not complete"}
		}
	}

	var packets [][]byte
	if pages[0].Continued() {
		packets = append(packets, nil)
	}
	for _, page := range pages {
		if page.Serial != serial {
			return nil, &FormatError{Offset: page.Offset, Msg: fmt.Sprintf("invalid serial number in page %d", page.Sequence)}
		}
		if page.Sequence != seq {
			return nil, &FormatError{Offset: page.Offset, Msg: fmt.Sprintf("bad sequence number %d, expected %d", page.Sequence, seq)}
		}
		seq++

		rest := page.Packets
		if page.Continued() && len(rest) > 0 {
			last := len(packets) - 1
			packets[last] = append(packets[last], rest[0]...)
			rest = rest[1:]
		}
		for _, packet := range rest {
			packets = append(packets, append([]byte(nil), packet...))
		}
	}
	return packets, nil
}

// FromPackets distributes packets over new pages, starting with the
// given sequence number. Only the sequence numbers, the continued flag
// and the packet layout are set; the caller fills in the rest.
func FromPackets(packets [][]byte, sequence uint32) []*Page {
	return fromPackets(packets, sequence, defaultPageSize, wiggleRoom)
}

func newPage(sequence uint32) *Page {
	return &Page{Sequence: sequence, Complete: true, Offset: -1}
}

func fromPackets(packets [][]byte, sequence uint32, pageSize, wiggle int) []*Page {
	chunkSize := pageSize / 255 * 255

	var pages []*Page
	page := newPage(sequence)
	for _, packet := range packets {
		page.Packets = append(page.Packets, []byte{})
		for len(packet) > 0 {
			n := min(chunkSize, len(packet))
			data := packet[:n]
			packet = packet[n:]

			last := len(page.Packets) - 1
			if page.Size() < pageSize && len(page.Packets) < maxPackets {
				page.Packets[last] = append(page.Packets[last], data...)
			} else {
				// The current page is full. If the packet has already
				// started on it, it continues on the next page.
				if len(page.Packets[last]) > 0 {
					page.Complete = false
					if len(page.Packets) == 1 {
						page.Position = -1
					}
				} else {
					page.Packets = page.Packets[:last]
				}
				pages = append(pages, page)

				prev := page
				page = newPage(prev.Sequence + 1)
				page.setFlag(FlagContinued, !prev.Complete)
				page.Packets = append(page.Packets, append([]byte(nil), data...))
			}

			if len(packet) < wiggle {
				last = len(page.Packets) - 1
				page.Packets[last] = append(page.Packets[last], packet...)
				packet = nil
			}
		}
	}
	if len(page.Packets) > 0 {
		pages = append(pages, page)
	}
	return pages
}

// preserveLayout is like FromPackets, but reuses the layout, flags and
// granule positions of oldPages if the packet sizes did not change.
func preserveLayout(packets [][]byte, oldPages []*Page) ([]*Page, bool) {
	oldPackets, err := ToPackets(oldPages, false)
	if err != nil || !sameSizes(packets, oldPackets) {
		return FromPackets(packets, oldPages[0].Sequence), false
	}

	var pages []*Page
	i := 0
	var rest []byte
	for k, old := range oldPages {
		page := &Page{
			Version:  old.Version,
			Flags:    old.Flags,
			Position: old.Position,
			Serial:   old.Serial,
			Sequence: old.Sequence,
			Complete: old.Complete,
			Offset:   -1,
		}
		for j, frag := range old.Packets {
			if j > 0 || !old.Continued() || k == 0 {
				rest = packets[i]
				i++
			}
			page.Packets = append(page.Packets, rest[:len(frag)])
			rest = rest[len(frag):]
		}
		pages = append(pages, page)
	}
	return pages, true
}

func sameSizes(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
	}
	return true
}

// span describes which packets of a stream have data on a page.
type span struct {
	first, last int
	// Index of the last packet finishing on the page, or -1.
	finished int
}

func spans(pages []*Page) []span {
	out := make([]span, len(pages))
	next := 0
	for i, p := range pages {
		first := next
		starts := len(p.Packets)
		if p.Continued() && next > 0 {
			first--
			starts--
		}
		next += starts
		s := span{first: first, last: next - 1, finished: next - 1}
		if !p.Complete {
			s.finished--
		}
		if s.finished < first {
			s.finished = -1
		}
		out[i] = s
	}
	return out
}
