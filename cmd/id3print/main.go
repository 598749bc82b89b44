// Command id3print prints and converts the tags of audio files.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"honnef.co/go/audiotag"
)

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func main() {
	var debug bool
	log := newLogger(false)

	root := &cobra.Command{
		Use:           "id3print",
		Short:         "Print and convert ID3 and Ogg tags",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = newLogger(debug)
			audiotag.SetLogger(log)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log what the codecs do")

	root.AddCommand(showCommand(&log), convertCommand(&log))

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("id3print failed")
		os.Exit(1)
	}
}
