package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"honnef.co/go/audiotag/id3"
	"honnef.co/go/audiotag/ogg"
)

func showCommand(log *zerolog.Logger) *cobra.Command {
	var dump, raw bool
	cmd := &cobra.Command{
		Use:   "show FILE...",
		Short: "Print the tags of ID3 tagged and Ogg files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			failed := 0
			for _, name := range args {
				fmt.Fprintln(w, name)
				if err := show(w, name, dump, raw); err != nil {
					log.Error().Err(err).Str("file", name).Msg("cannot read tags")
					failed++
				}
				fmt.Fprintln(w)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the decoded Go values")
	cmd.Flags().BoolVar(&raw, "raw", false, "do not upgrade ID3 tags to version 2.4")
	return cmd
}

func isOgg(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()
	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return false, nil
	}
	return bytes.Equal(magic, []byte("OggS")), nil
}

func show(w io.Writer, name string, dump, raw bool) error {
	ok, err := isOgg(name)
	if err != nil {
		return err
	}
	if ok {
		return showOgg(w, name, dump)
	}
	return showID3(w, name, dump, raw)
}

func showID3(w io.Writer, name string, dump, raw bool) error {
	f, err := id3.Open(name, &id3.DecodeOptions{NoTranslate: raw})
	if err != nil {
		return err
	}
	if !f.HasTag() && f.Tag.Len() == 0 {
		fmt.Fprintln(w, "no ID3 tag")
		return nil
	}

	if f.HasTag() {
		fmt.Fprintf(w, "%s, %d bytes\n", f.Tag.Header.Version, f.Tag.Header.Size)
	}
	for _, frame := range f.Tag.Frames() {
		if dump {
			spew.Fdump(w, frame)
			continue
		}
		fmt.Fprintf(w, "%s %s: %s\n", frame.ID(), frame.ID().String(), frame.Value())
	}
	for _, frame := range f.Tag.Unknown {
		fmt.Fprintf(w, "%s (kept as is, %d bytes)\n", frame.ID(), len(frame.Data))
	}
	return nil
}

func showOgg(w io.Writer, name string, dump bool) error {
	f, err := ogg.Open(name)
	if err != nil {
		return err
	}
	for _, s := range f.Streams {
		fmt.Fprintf(w, "stream %08x: %s, %d pages\n", s.Serial, s.Codec, len(s.Pages))
		if s.Codec == ogg.Unknown {
			continue
		}
		c, err := f.Comment(s.Serial)
		if err != nil {
			return err
		}
		if dump {
			spew.Fdump(w, c)
			continue
		}
		fmt.Fprintf(w, "vendor: %s\n", c.Vendor)
		for _, field := range c.Fields {
			fmt.Fprintf(w, "%s=%s\n", field.Key, field.Value)
		}
	}
	return nil
}
