package id3

import (
	"bytes"
	"strconv"
	"strings"
)

// v1Size is the length of an ID3v1 tag in bytes.
const v1Size = 128

// v1Magic is the byte sequence appearing at the beginning of an ID3v1 tag.
var v1Magic = []byte("TAG")

// GenreNames lists the ID3v1 genres, including the Winamp extensions.
var GenreNames = []string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient",
	"Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical",
	"Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel",
	"Noise", "Alt. Rock", "Bass", "Soul", "Punk", "Space", "Meditative",
	"Instrumental Pop", "Instrumental Rock", "Ethnic", "Gothic",
	"Darkwave", "Techno-Industrial", "Electronic", "Pop-Folk",
	"Eurodance", "Dream", "Southern Rock", "Comedy", "Cult", "Gangsta Rap",
	"Top 40", "Christian Rap", "Pop/Funk", "Jungle", "Native American",
	"Cabaret", "New Wave", "Psychedelic", "Rave", "Showtunes", "Trailer",
	"Lo-Fi", "Tribal", "Acid Punk", "Acid Jazz", "Polka", "Retro",
	"Musical", "Rock & Roll", "Hard Rock", "Folk", "Folk-Rock",
	"National Folk", "Swing", "Fast-Fusion", "Bebop", "Latin", "Revival",
	"Celtic", "Bluegrass", "Avantgarde", "Gothic Rock", "Progressive Rock",
	"Psychedelic Rock", "Symphonic Rock", "Slow Rock", "Big Band",
	"Chorus", "Easy Listening", "Acoustic", "Humour", "Speech", "Chanson",
	"Opera", "Chamber Music", "Sonata", "Symphony", "Booty Bass", "Primus",
	"Porn Groove", "Satire", "Slow Jam", "Club", "Tango", "Samba",
	"Folklore", "Ballad", "Power Ballad", "Rhythmic Soul", "Freestyle",
	"Duet", "Punk Rock", "Drum Solo", "A Cappella", "Euro-House",
	"Dance Hall", "Goa", "Drum & Bass", "Club-House", "Hardcore", "Terror",
	"Indie", "BritPop", "Afro-Punk", "Polsk Punk", "Beat",
	"Christian Gangsta Rap", "Heavy Metal", "Black Metal", "Crossover",
	"Contemporary Christian", "Christian Rock", "Merengue", "Salsa",
	"Thrash Metal", "Anime", "JPop", "Synthpop", "Abstract", "Art Rock",
	"Baroque", "Bhangra", "Big Beat", "Breakbeat", "Chillout", "Downtempo",
	"Dub", "EBM", "Eclectic", "Electro", "Electroclash", "Emo",
	"Experimental", "Garage", "Global", "IDM", "Illbient", "Industro-Goth",
	"Jam Band", "Krautrock", "Leftfield", "Lounge", "Math Rock",
	"New Romantic", "Nu-Breakz", "Post-Punk", "Post-Rock", "Psytrance",
	"Shoegaze", "Space Rock", "Trop Rock", "World Music", "Neoclassical",
	"Audiobook", "Audio Theatre", "Neue Deutsche Welle", "Podcast",
	"Indie Rock", "G-Funk", "Dubstep", "Garage Rock", "Psybient",
}

func hasV1(data []byte) bool {
	return len(data) == v1Size && bytes.Equal(data[:3], v1Magic)
}

func v1Field(b []byte) string {
	if i := bytes.IndexByte(b, 0); i != -1 {
		b = b[:i]
	}
	return strings.TrimSpace(latin1(b))
}

// parseV1 converts an ID3v1 tag to frames. version decides whether the
// year is stored as TDRC (4) or TYER (3).
func parseV1(data []byte, version int) []Frame {
	if !hasV1(data) {
		return nil
	}
	title := v1Field(data[3:33])
	artist := v1Field(data[33:63])
	album := v1Field(data[63:93])
	year := v1Field(data[93:97])
	comment := v1Field(data[97:126])
	track := data[126]
	genre := data[127]

	text := func(id FrameType, v string) Frame {
		return &TextInformationFrame{FrameHeader: FrameHeader{Type: id}, Encoding: EncodingISO88591, Text: []string{v}}
	}

	var frames []Frame
	if title != "" {
		frames = append(frames, text("TIT2", title))
	}
	if artist != "" {
		frames = append(frames, text("TPE1", artist))
	}
	if album != "" {
		frames = append(frames, text("TALB", album))
	}
	if year != "" {
		if version == 3 {
			frames = append(frames, text("TYER", year))
		} else {
			frames = append(frames, text("TDRC", year))
		}
	}
	if comment != "" {
		frames = append(frames, &CommentFrame{
			FrameHeader: FrameHeader{Type: "COMM"},
			Encoding:    EncodingISO88591,
			Language:    "eng",
			Description: "ID3v1 Comment",
			Text:        []string{comment},
		})
	}
	// Don't read a track number if it looks like the comment was
	// padded with spaces instead of nulls.
	if track != 0 && (track != 32 || data[125] == 0) {
		frames = append(frames, text("TRCK", strconv.Itoa(int(track))))
	}
	if genre != 255 {
		frames = append(frames, text("TCON", genreName(int(genre))))
	}
	return frames
}

func v1Put(dst []byte, s string) {
	var b []byte
	for _, r := range s {
		if r > 0xFF {
			r = '?'
		}
		b = append(b, byte(r))
	}
	copy(dst, b)
}

// makeV1 renders the ID3v1 equivalent of t.
func makeV1(t *Tag) []byte {
	out := make([]byte, v1Size)
	copy(out, v1Magic)
	v1Put(out[3:33], t.TextValue("TIT2"))
	v1Put(out[33:63], t.TextValue("TPE1"))
	v1Put(out[63:93], t.TextValue("TALB"))

	year := t.TextValue("TDRC")
	if year == "" {
		year = t.TextValue("TYER")
	}
	v1Put(out[93:97], year)

	for _, f := range t.GetAll("COMM") {
		if c, ok := f.(*CommentFrame); ok && len(c.Text) > 0 {
			v1Put(out[97:125], c.Text[0])
			break
		}
	}

	if f, ok := t.Get("TRCK").(*TextInformationFrame); ok {
		if n, err := f.Number(); err == nil && n > 0 && n < 256 {
			out[126] = byte(n)
		}
	}

	out[127] = 255
	if genres := Genres(t.TextValues("TCON")); len(genres) > 0 {
		for i, name := range GenreNames {
			if name == genres[0] {
				out[127] = byte(i)
				break
			}
		}
	}
	return out
}
