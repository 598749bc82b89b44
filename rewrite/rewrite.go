// Package rewrite replaces byte ranges of existing files.
//
// Edits that keep the size of the replaced range are written in
// place. Everything else is staged in a temporary file next to the
// original, which is renamed over the original once it has been
// written completely. If anything fails the original is left
// untouched.
package rewrite

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"honnef.co/go/audiotag/internal/logging"
)

const bufferSize = 64 * 1024

// Replaced in tests.
var (
	createTemp = os.CreateTemp
	rename     = os.Rename
)

// An Edit replaces Size bytes at Offset with Data. A Size of zero
// inserts, an empty Data deletes.
type Edit struct {
	Offset int64
	Size   int64
	Data   []byte
}

func (e Edit) inPlace() bool {
	return int64(len(e.Data)) == e.Size
}

// Delta returns how much the edit grows (or shrinks) the file.
func (e Edit) Delta() int64 {
	return int64(len(e.Data)) - e.Size
}

// Replace replaces size bytes at offset in the named file with data.
func Replace(path string, offset, size int64, data []byte) error {
	return Apply(path, Edit{Offset: offset, Size: size, Data: data})
}

// Apply applies edits to the named file. Offsets refer to the file as
// it is before any edit is applied; edits must not overlap.
func Apply(path string, edits ...Edit) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	edits = append([]Edit(nil), edits...)
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].Offset < edits[j].Offset })
	if err := check(edits, fi.Size()); err != nil {
		return err
	}

	inPlace := true
	for _, e := range edits {
		if !e.inPlace() {
			inPlace = false
			break
		}
	}

	log := logging.Logger()
	if inPlace {
		log.Debug().Str("path", path).Int("edits", len(edits)).Msg("rewriting in place")
		for _, e := range edits {
			if _, err := f.WriteAt(e.Data, e.Offset); err != nil {
				return err
			}
		}
		return f.Sync()
	}

	log.Debug().Str("path", path).Int("edits", len(edits)).Int64("size", fi.Size()).Msg("staging rewrite")
	if err := stage(f, fi, path, edits); err != nil {
		return err
	}
	return nil
}

func check(edits []Edit, size int64) error {
	var end int64
	for i, e := range edits {
		if e.Offset < 0 || e.Size < 0 {
			return fmt.Errorf("rewrite: invalid edit at offset %d", e.Offset)
		}
		if e.Offset+e.Size > size {
			return fmt.Errorf("rewrite: edit [%d, %d) beyond end of file (%d bytes)", e.Offset, e.Offset+e.Size, size)
		}
		if i > 0 && e.Offset < end {
			return fmt.Errorf("rewrite: overlapping edits at offset %d", e.Offset)
		}
		end = e.Offset + e.Size
	}
	return nil
}

// stage writes the edited file to a temporary file in the same
// directory and renames it over path.
func stage(f *os.File, fi os.FileInfo, path string, edits []Edit) (err error) {
	tmp, err := createTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	buf := make([]byte, bufferSize)
	var pos int64
	for _, e := range edits {
		if err := copyRange(tmp, f, pos, e.Offset-pos, buf); err != nil {
			return err
		}
		if _, err := tmp.Write(e.Data); err != nil {
			return err
		}
		pos = e.Offset + e.Size
	}
	if err := copyRange(tmp, f, pos, fi.Size()-pos, buf); err != nil {
		return err
	}

	if err := tmp.Chmod(fi.Mode().Perm()); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := rename(tmp.Name(), path); err != nil {
		return err
	}
	return nil
}

func copyRange(dst io.Writer, src io.ReaderAt, off, n int64, buf []byte) error {
	if n == 0 {
		return nil
	}
	written, err := io.CopyBuffer(dst, io.NewSectionReader(src, off, n), buf)
	if err != nil {
		return err
	}
	if written != n {
		return errors.New("rewrite: short copy")
	}
	return nil
}
