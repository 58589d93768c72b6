package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"btb-downloader/pkg/archive"
	"btb-downloader/pkg/config"
	"btb-downloader/pkg/episodeservice"
)

func newRootCommand() *cobra.Command {
	var (
		configPath string
		outputDir  string
		delay      float64
		limit      int
		verbose    bool
	)

	def := config.Default()

	cmd := &cobra.Command{
		Use:           "btbdl",
		Short:         "Archive Behind the Bastards episodes with transcripts",
		Version:       archive.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := def
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.Output.Dir = outputDir
			}
			if cmd.Flags().Changed("delay") {
				cfg.Output.DelaySeconds = delay
			}
			if cmd.Flags().Changed("limit") {
				cfg.Output.Limit = limit
			}

			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()

			logger.Info().Str("version", archive.Version).Msg("starting episode download")

			svc := episodeservice.New(cfg, logger)
			return svc.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&outputDir, "output-dir", def.Output.Dir, "Directory to save episode files")
	cmd.Flags().Float64Var(&delay, "delay", def.Output.DelaySeconds, "Delay between requests in seconds")
	cmd.Flags().IntVar(&limit, "limit", def.Output.Limit, "Limit number of episodes to download")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
