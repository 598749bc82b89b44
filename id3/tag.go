package id3

import (
	"slices"
	"strings"
)

// Tag is an ordered collection of frames, keyed by their HashKey.
//
// Frames this package cannot interpret are kept in Unknown and are
// not part of the keyed collection.
type Tag struct {
	Header  TagHeader
	Unknown []*UnsupportedFrame

	keys   []string
	frames map[string]Frame

	// padding found after the frames when the tag was read
	padding int
}

// NewTag returns an empty tag.
func NewTag() *Tag {
	return &Tag{frames: make(map[string]Frame)}
}

// Len returns the number of frames, not counting unknown frames.
func (t *Tag) Len() int {
	return len(t.keys)
}

// Keys returns the HashKeys of all frames in insertion order.
func (t *Tag) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Frames returns all frames in insertion order.
func (t *Tag) Frames() []Frame {
	out := make([]Frame, len(t.keys))
	for i, k := range t.keys {
		out[i] = t.frames[k]
	}
	return out
}

// Get returns the frame stored under the given HashKey, or nil.
func (t *Tag) Get(key string) Frame {
	return t.frames[key]
}

func (t *Tag) Has(key string) bool {
	_, ok := t.frames[key]
	return ok
}

// Add inserts f under its HashKey. If a frame with that key exists
// and both are text frames of the same type, the values of f that
// aren't present yet are appended to the existing frame. Any other
// conflict results in a *CollisionError.
//
// Unsupported frames are appended to Unknown.
func (t *Tag) Add(f Frame) error {
	if u, ok := f.(*UnsupportedFrame); ok {
		t.Unknown = append(t.Unknown, u)
		return nil
	}
	key := f.HashKey()
	old, ok := t.frames[key]
	if !ok {
		t.insert(key, f)
		return nil
	}
	if merge(old, f) {
		return nil
	}
	return &CollisionError{Key: key}
}

// Set stores f under its HashKey, replacing an existing frame in
// place.
func (t *Tag) Set(f Frame) {
	if u, ok := f.(*UnsupportedFrame); ok {
		t.Unknown = append(t.Unknown, u)
		return
	}
	key := f.HashKey()
	if _, ok := t.frames[key]; ok {
		t.frames[key] = f
		return
	}
	t.insert(key, f)
}

func (t *Tag) insert(key string, f Frame) {
	if t.frames == nil {
		t.frames = make(map[string]Frame)
	}
	t.frames[key] = f
	t.keys = append(t.keys, key)
}

// Delete removes the frame with the given HashKey.
func (t *Tag) Delete(key string) {
	if _, ok := t.frames[key]; !ok {
		return
	}
	delete(t.frames, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i:i], t.keys[i+1:]...)
			break
		}
	}
}

// GetAll returns the frame whose HashKey is exactly id, or else all
// frames whose HashKey starts with id followed by a colon.
func (t *Tag) GetAll(id string) []Frame {
	if f, ok := t.frames[id]; ok {
		return []Frame{f}
	}
	prefix := id + ":"
	var out []Frame
	for _, k := range t.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, t.frames[k])
		}
	}
	return out
}

// DeleteAll deletes all frames GetAll would return.
func (t *Tag) DeleteAll(id string) {
	if t.Has(id) {
		t.Delete(id)
		return
	}
	prefix := id + ":"
	keys := t.keys[:0]
	for _, k := range t.keys {
		if strings.HasPrefix(k, prefix) {
			delete(t.frames, k)
			continue
		}
		keys = append(keys, k)
	}
	t.keys = keys
}

// SetAll replaces all frames GetAll would return with frames.
func (t *Tag) SetAll(id string, frames []Frame) error {
	t.DeleteAll(id)
	for _, f := range frames {
		if err := t.Add(f); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes all frames from the tag.
func (t *Tag) Clear() {
	t.keys = nil
	t.frames = make(map[string]Frame)
	t.Unknown = nil
}

// pop removes and returns the frame with the given key.
func (t *Tag) pop(key string) Frame {
	f := t.frames[key]
	if f != nil {
		t.Delete(key)
	}
	return f
}

// TextValues returns the values of a text frame.
//
// To access user text frames, specify the name like "TXXX:The
// description".
func (t *Tag) TextValues(name FrameType) []string {
	switch f := t.frames[string(name)].(type) {
	case *TextInformationFrame:
		return f.Text
	case *UserTextInformationFrame:
		return f.Text
	}
	return nil
}

// TextValue returns the first value of a text frame, or the empty
// string.
func (t *Tag) TextValue(name FrameType) string {
	v := t.TextValues(name)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// SetText replaces a text frame with one holding values, encoded as
// UTF-8. Names of the form "TXXX:description" set user text frames.
func (t *Tag) SetText(name FrameType, values ...string) {
	if desc, ok := frameNameToUserFrame(name); ok {
		t.Set(&UserTextInformationFrame{
			FrameHeader: FrameHeader{Type: "TXXX"},
			Encoding:    EncodingUTF8,
			Description: desc,
			Text:        values,
		})
		return
	}
	t.Set(NewTextFrame(name, values...))
}

func merge(old, f Frame) bool {
	switch o := old.(type) {
	case *TextInformationFrame:
		n, ok := f.(*TextInformationFrame)
		if !ok {
			return false
		}
		o.Text, o.Encoding = mergeValues(o.Text, o.Encoding, n.Text, n.Encoding)
		return true
	case *UserTextInformationFrame:
		n, ok := f.(*UserTextInformationFrame)
		if !ok {
			return false
		}
		o.Text, o.Encoding = mergeValues(o.Text, o.Encoding, n.Text, n.Encoding)
		return true
	case *CommentFrame:
		n, ok := f.(*CommentFrame)
		if !ok {
			return false
		}
		o.Text, o.Encoding = mergeValues(o.Text, o.Encoding, n.Text, n.Encoding)
		return true
	}
	return false
}

func mergeValues(old []string, oldEnc Encoding, add []string, addEnc Encoding) ([]string, Encoding) {
	for _, v := range add {
		if slices.Contains(old, v) {
			continue
		}
		old = append(old, v)
		if addEnc > oldEnc {
			oldEnc = addEnc
		}
	}
	return old, oldEnc
}
