package id3

import (
	"errors"
	"io"
	"os"

	"go4.org/readerutil"

	"honnef.co/go/audiotag/internal/logging"
	"honnef.co/go/audiotag/rewrite"
)

// Decode reads the ID3v2 tag at the start of r and merges in the
// ID3v1 tag at its end, if any. Frames of the ID3v2 tag take
// precedence. r must be positioned at the start of the data.
//
// If there is neither kind of tag, Decode returns ErrNoTag.
func Decode(r io.ReadSeeker, opts *DecodeOptions) (*Tag, error) {
	var o DecodeOptions
	if opts != nil {
		o = *opts
	}
	target, err := o.target()
	if err != nil {
		return nil, err
	}
	size, sized := readerutil.Size(r)

	// The ID3v1 frames are merged in the version the ID3v2 tag was
	// read as, so translation happens once everything is merged.
	d := NewDecoder(r)
	d.Options = o
	d.Options.NoTranslate = true
	tag, err := d.Parse()
	hasV2 := err == nil
	if err != nil {
		var verr *UnsupportedVersionError
		if err != ErrNoTag && !errors.As(err, &verr) {
			return nil, err
		}
		if o.SkipV1 {
			return nil, err
		}
	}

	var v1 []Frame
	if !o.SkipV1 && sized && size >= v1Size {
		buf := make([]byte, v1Size)
		if _, err := r.Seek(size-v1Size, io.SeekStart); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		version := target
		if hasV2 {
			version = 3
			if tag.Header.Version.Major() == 4 {
				version = 4
			}
		}
		v1 = parseV1(buf, version)
	}

	if !hasV2 {
		if len(v1) == 0 {
			return nil, err
		}
		tag = NewTag()
	}
	for _, f := range v1 {
		if len(tag.GetAll(f.HashKey())) == 0 {
			tag.Add(f)
		}
	}
	if !o.NoTranslate {
		tag.translate(target)
	}
	return tag, nil
}

// File is a tag together with the file it was read from.
type File struct {
	Path string
	Tag  *Tag
}

// Open opens the named file and parses its tag. If there is no tag,
// (*File).HasTag() will return false and Tag will be empty.
func Open(name string, opts *DecodeOptions) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tag, err := Decode(f, opts)
	if err != nil {
		if err != ErrNoTag {
			return nil, err
		}
		tag = NewTag()
	}
	return &File{Path: name, Tag: tag}, nil
}

// HasTag returns true when the underlying file had an ID3v2 tag.
func (f *File) HasTag() bool {
	return f.Tag.Header.Version > 0
}

// Save writes the tag back to the file.
func (f *File) Save(opts *SaveOptions) error {
	return Save(f.Path, f.Tag, opts)
}

// layout describes where the tags of a file are.
type layout struct {
	size  int64 // size of the file
	v2    int64 // size of the ID3v2 region at the start
	hasV1 bool
}

func readLayout(name string) (layout, error) {
	f, err := os.Open(name)
	if err != nil {
		return layout{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return layout{}, err
	}
	l := layout{size: fi.Size()}

	header, err := NewDecoder(f).readHeader()
	switch {
	case err == nil:
		l.v2 = header.regionSize()
		if l.v2 > l.size {
			return layout{}, &FormatError{Msg: "tag extends beyond end of file"}
		}
	case err == ErrNoTag:
	default:
		return layout{}, err
	}

	if l.size-l.v2 >= v1Size {
		buf := make([]byte, v1Size)
		if _, err := f.ReadAt(buf, l.size-v1Size); err != nil {
			return layout{}, err
		}
		l.hasV1 = hasV1(buf)
	}
	return l, nil
}

// Save writes t to the named file, replacing any existing ID3v2 tag.
// If the new tag fits into the space of the old one it is written in
// place; otherwise the file is rewritten. The file is never left
// half-written.
func Save(name string, t *Tag, opts *SaveOptions) error {
	if _, err := opts.config(); err != nil {
		return err
	}
	l, err := readLayout(name)
	if err != nil {
		return err
	}

	data, err := t.render(opts, l.v2, l.size-l.v2)
	if err != nil {
		return err
	}
	edits := []rewrite.Edit{{Offset: 0, Size: l.v2, Data: data}}

	switch mode := opts.v1(); {
	case l.hasV1 && mode == V1Remove:
		edits = append(edits, rewrite.Edit{Offset: l.size - v1Size, Size: v1Size})
	case l.hasV1:
		edits = append(edits, rewrite.Edit{Offset: l.size - v1Size, Size: v1Size, Data: makeV1(t)})
	case mode == V1Create:
		edits = append(edits, rewrite.Edit{Offset: l.size, Data: makeV1(t)})
	}

	logging.Logger().Debug().
		Str("path", name).
		Int64("old", l.v2).
		Int("new", len(data)).
		Bool("v1", l.hasV1).
		Msg("saving tag")
	return rewrite.Apply(name, edits...)
}

// Delete removes the ID3v2 and/or ID3v1 tags of the named file.
func Delete(name string, v1, v2 bool) error {
	l, err := readLayout(name)
	if err != nil {
		return err
	}
	var edits []rewrite.Edit
	if v2 && l.v2 > 0 {
		edits = append(edits, rewrite.Edit{Offset: 0, Size: l.v2})
	}
	if v1 && l.hasV1 {
		edits = append(edits, rewrite.Edit{Offset: l.size - v1Size, Size: v1Size})
	}
	if len(edits) == 0 {
		return nil
	}
	return rewrite.Apply(name, edits...)
}
