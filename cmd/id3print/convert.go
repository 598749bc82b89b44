package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"honnef.co/go/audiotag/id3"
	"honnef.co/go/audiotag/internal/config"
)

func convertCommand(log *zerolog.Logger) *cobra.Command {
	cfg := config.Default()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Rewrite the ID3 tags of files as version 2.3 or 2.4",
		Long: `Rewrite the ID3 tags of files as version 2.3 or 2.4.

Settings are read from the config file (default ` + config.DefaultConfigPath() + `),
flags given on the command line take precedence.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgPath
			if path == "" {
				path = config.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if path != "" && config.FileExists(path) {
				fc, err := config.LoadFileConfig(path)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				config.ApplyFileConfig(&cfg, fc, changed)
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s does not exist", cfgPath)
			}

			opts, err := cfg.SaveOptions()
			if err != nil {
				return err
			}
			log.Debug().Interface("config", cfg).Msg("configuration")

			for _, name := range args {
				if err := convert(name, cfg.Version, opts); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				log.Info().Str("file", name).Int("version", cfg.Version).Msg("converted")
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfgPath, "config", "", "path to the config file")
	fs.IntVar(&cfg.Version, "version", cfg.Version, "ID3v2 version to write (3 or 4)")
	fs.StringVar(&cfg.Separator, "separator", cfg.Separator, "separator for multiple values in ID3v2.3 text frames")
	fs.BoolVar(&cfg.NullSeparator, "null-separator", cfg.NullSeparator, "separate multiple values in ID3v2.3 with null bytes")
	fs.BoolVar(&cfg.Unsynchronise, "unsynchronise", cfg.Unsynchronise, "apply unsynchronisation")
	fs.Int64Var(&cfg.MaxPadding, "max-padding", cfg.MaxPadding, "upper limit for padding, 0 for no limit")
	fs.StringVar(&cfg.V1, "v1", cfg.V1, "what to do with ID3v1 tags: update, remove or create")
	return cmd
}

func convert(name string, version int, opts *id3.SaveOptions) error {
	f, err := id3.Open(name, &id3.DecodeOptions{TranslateTo: version})
	if err != nil {
		return err
	}
	return f.Save(opts)
}
