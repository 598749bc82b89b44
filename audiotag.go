// Package audiotag reads and writes metadata embedded in audio files.
//
// The codecs live in subpackages:
//
//	id3      ID3v2.2/2.3/2.4 tags and the legacy ID3v1 trailer
//	ogg      Ogg pages, packets and comment packet rewriting
//	vorbis   Vorbis comment blocks (Ogg Vorbis, Opus)
//	rewrite  padding policy and safe in-file region replacement
//
// Logging is disabled by default. Call SetLogger to see which frames
// were dropped during decoding or translation and how files were
// rewritten:
//
//	audiotag.SetLogger(zerolog.New(os.Stderr).Level(zerolog.DebugLevel))
package audiotag

import (
	"github.com/rs/zerolog"

	"honnef.co/go/audiotag/internal/logging"
)

// SetLogger sets the logger used by all codec packages.
func SetLogger(l zerolog.Logger) {
	logging.SetLogger(l)
}

// Logger returns the logger used by all codec packages.
func Logger() zerolog.Logger {
	return *logging.Logger()
}
