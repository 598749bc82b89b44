package id3

import (
	"bytes"
	"encoding/binary"
)

// DecodeSyncsafe decodes a big-endian sync-safe integer, which uses
// only the low 7 bits of every byte.
func DecodeSyncsafe(b []byte) (uint32, error) {
	if len(b) > 5 {
		return 0, &FormatError{Msg: "sync-safe integer too long"}
	}
	var n uint32
	for _, c := range b {
		if c&0x80 != 0 {
			return 0, &FormatError{Msg: "invalid sync-safe integer"}
		}
		n = n<<7 | uint32(c)
	}
	return n, nil
}

// EncodeSyncsafe encodes n as a 4 byte sync-safe integer.
func EncodeSyncsafe(n uint32) ([4]byte, error) {
	if n >= 1<<28 {
		return [4]byte{}, &FormatError{Msg: "value too large for sync-safe integer"}
	}
	return [4]byte{
		byte(n>>21) & 0x7F,
		byte(n>>14) & 0x7F,
		byte(n>>7) & 0x7F,
		byte(n) & 0x7F,
	}, nil
}

// sizeBits decodes a 4 byte frame size with either 7 (sync-safe) or 8
// significant bits per byte. High bits are masked, not rejected.
func sizeBits(b []byte, bits uint) uint32 {
	if bits == 8 {
		return binary.BigEndian.Uint32(b)
	}
	var n uint32
	for _, c := range b {
		n = n<<7 | uint32(c&0x7F)
	}
	return n
}

// Unsynchronise inserts a zero byte after every 0xFF that is followed
// by a zero byte or by a byte >= 0xE0, and after a trailing 0xFF.
func Unsynchronise(data []byte) []byte {
	if bytes.IndexByte(data, 0xFF) == -1 {
		return data
	}
	out := make([]byte, 0, len(data)+len(data)/16)
	for i, c := range data {
		out = append(out, c)
		if c != 0xFF {
			continue
		}
		if i+1 == len(data) || data[i+1] == 0 || data[i+1] >= 0xE0 {
			out = append(out, 0)
		}
	}
	return out
}

// Resynchronise reverses Unsynchronise. It fails if data contains a
// 0xFF followed by a byte >= 0xE0, which cannot occur in a correctly
// unsynchronised stream.
func Resynchronise(data []byte) ([]byte, error) {
	if bytes.IndexByte(data, 0xFF) == -1 {
		return data, nil
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		c := data[i]
		out = append(out, c)
		if c != 0xFF {
			continue
		}
		if i+1 == len(data) {
			break
		}
		if data[i+1] >= 0xE0 {
			return nil, &FormatError{Msg: "invalid unsynchronised data"}
		}
		if data[i+1] == 0 {
			i++
		}
	}
	return out, nil
}

func concat(bs ...[]byte) []byte {
	n := 0
	for _, b := range bs {
		n += len(b)
	}
	out := make([]byte, 0, n)
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}

func validFrameID(id []byte) bool {
	if len(id) == 0 {
		return false
	}
	for _, b := range id {
		// Allow 0-9
		if b >= '0' && b <= '9' {
			continue
		}
		// Allow A-Z
		if b >= 'A' && b <= 'Z' {
			continue
		}
		return false
	}
	return true
}
