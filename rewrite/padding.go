package rewrite

import (
	"errors"
	"fmt"
)

// ErrInvalidPadding is returned when a PaddingFunc asks for a negative
// amount of padding.
var ErrInvalidPadding = errors.New("rewrite: invalid padding")

// PaddingInfo is passed to a PaddingFunc when a metadata block is about
// to be written.
type PaddingInfo struct {
	// Padding is the number of bytes left over in the old metadata
	// region after the new data was written to it. It is negative if
	// the new data does not fit and the file has to grow.
	Padding int64

	// NewSize is the size of the serialized metadata, without padding.
	NewSize int64

	// Size is the amount of file data following the metadata region.
	Size int64
}

// A PaddingFunc returns the amount of padding (>= 0) to write after
// the metadata. The actual amount may differ slightly, depending on the
// container format.
type PaddingFunc func(PaddingInfo) int64

// DefaultPadding returns the padding used when no PaddingFunc is given.
// Existing padding is reused as long as it is not excessive; otherwise
// roughly 1 KiB plus 0.1% of the trailing data is used.
func (info PaddingInfo) DefaultPadding() int64 {
	high := 1024*10 + info.Size/100
	low := 1024 + info.Size/1000

	if info.Padding >= 0 {
		if info.Padding > high {
			return low
		}
		return info.Padding
	}
	return low
}

// Resolve calls fn, or DefaultPadding if fn is nil.
func (info PaddingInfo) Resolve(fn PaddingFunc) (int64, error) {
	var n int64
	if fn == nil {
		n = info.DefaultPadding()
	} else {
		n = fn(info)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPadding, n)
	}
	return n, nil
}

func (info PaddingInfo) String() string {
	return fmt.Sprintf("PaddingInfo{padding=%d new=%d size=%d}", info.Padding, info.NewSize, info.Size)
}
