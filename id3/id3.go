package id3

import (
	"errors"
	"fmt"
)

var Magic = [3]byte{0x49, 0x44, 0x33}

const (
	frameLength   = 10
	tagHeaderSize = 10
)

const (
	Version22 Version = 0x0200
	Version23 Version = 0x0300
	Version24 Version = 0x0400
)

type HeaderFlags byte
type FrameFlags uint16
type Version int16
type FrameType string
type PictureType byte

// ErrNoTag is returned when a file contains neither an ID3v2 nor an
// ID3v1 tag.
var ErrNoTag = errors.New("id3: no tag found")

// FormatError reports malformed tag data.
type FormatError struct {
	Msg string
	Err error
}

type UnsupportedVersionError struct {
	Version Version
}

// TranslationError describes a frame that was dropped while
// converting a tag between versions. Translation never fails; these
// errors are informational.
type TranslationError struct {
	Frame  FrameType
	Reason string
}

// CollisionError is returned by Tag.Add when a frame with the same
// HashKey already exists and the two frames cannot be merged.
type CollisionError struct {
	Key string
}

type TagHeader struct {
	Version Version // The ID3v2 version the file currently has on disk
	Flags   HeaderFlags
	Size    int // The size of the tag (excluding the size of the header and footer)
}

func (err *FormatError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("id3: %s: %s", err.Msg, err.Err)
	}
	return "id3: " + err.Msg
}

func (err *FormatError) Unwrap() error { return err.Err }

func (err *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("id3: unsupported version: %s", err.Version)
}

func (err *TranslationError) Error() string {
	return fmt.Sprintf("id3: dropped %s: %s", string(err.Frame), err.Reason)
}

func (err *CollisionError) Error() string {
	return fmt.Sprintf("id3: a frame with key %q already exists", err.Key)
}

func (f HeaderFlags) Unsynchronisation() bool {
	return (f & 128) > 0
}

func (f HeaderFlags) ExtendedHeader() bool {
	return (f & 64) > 0
}

func (f HeaderFlags) Experimental() bool {
	return (f & 32) > 0
}

// Footer is only defined for ID3v2.4.
func (f HeaderFlags) Footer() bool {
	return (f & 16) > 0
}

func (f HeaderFlags) UndefinedSet() bool {
	return (f & 15) > 0
}

// Frame flags differ between v2.3 and v2.4.
const (
	flag23Compress FrameFlags = 0x0080
	flag23Encrypt  FrameFlags = 0x0040
	flag23Group    FrameFlags = 0x0020

	flag24Group    FrameFlags = 0x0040
	flag24Compress FrameFlags = 0x0008
	flag24Encrypt  FrameFlags = 0x0004
	flag24Unsynch  FrameFlags = 0x0002
	flag24DataLen  FrameFlags = 0x0001
)

func (f FrameFlags) Compressed(v Version) bool {
	if v.Major() >= 4 {
		return f&flag24Compress > 0
	}
	return f&flag23Compress > 0
}

func (f FrameFlags) Encrypted(v Version) bool {
	if v.Major() >= 4 {
		return f&flag24Encrypt > 0
	}
	return f&flag23Encrypt > 0
}

func (f FrameFlags) Grouped(v Version) bool {
	if v.Major() >= 4 {
		return f&flag24Group > 0
	}
	return f&flag23Group > 0
}

// Unsynchronised and DataLength are only defined for ID3v2.4.
func (f FrameFlags) Unsynchronised() bool {
	return f&flag24Unsynch > 0
}

func (f FrameFlags) DataLength() bool {
	return f&flag24DataLen > 0
}

func (v Version) Major() int { return int(v >> 8) }

func (v Version) String() string {
	return fmt.Sprintf("ID3v2.%.1d.%.1d", v>>8, v&0xFF)
}

func (h TagHeader) hasFooter() bool {
	return h.Version.Major() >= 4 && h.Flags.Footer()
}

// regionSize returns the number of bytes the whole tag occupies in the
// file.
func (h TagHeader) regionSize() int64 {
	n := int64(tagHeaderSize + h.Size)
	if h.hasFooter() {
		n += tagHeaderSize
	}
	return n
}

func frameNameToUserFrame(name FrameType) (frameName string, ok bool) {
	if len(name) < 6 {
		return "", false
	}

	if name[0:4] != "TXXX" {
		return "", false
	}

	return string(name[5:]), true
}
