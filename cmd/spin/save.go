package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vesper8/spin/pkg/config"
	"github.com/vesper8/spin/pkg/docker"
	"github.com/vesper8/spin/pkg/save"
)

var (
	saveName   string
	saveTag    string
	savePrefix string
	saveOutput string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Archive the built images into a tarball for offline transfer",
	Long: `Resolves the expected image for every Dockerfile* in the current directory
and saves all images that exist locally into ./output/<name>-<tag>.tar.

Images that were never built are skipped with a warning; finding none at all
is an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, err := config.Load(config.DefaultFile)
		if err != nil {
			return err
		}
		cfg := config.ResolveSave(cfgFile, saveName, saveTag, savePrefix)
		log.Info().
			Str("prefix", cfg.Prefix).
			Str("tag", cfg.Tag).
			Str("name", cfg.Vendor).
			Msg("Resolved config")

		ctx, cancel := commandContext()
		defer cancel()

		p := save.Pipeline{
			Store:     &docker.CLI{Verbose: verbose},
			Config:    cfg,
			Dir:       ".",
			OutputDir: saveOutput,
		}
		if _, err := p.Run(ctx); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	saveCmd.Flags().StringVarP(&saveName, "name", "n", "", "Vendor name used in the archive filename")
	saveCmd.Flags().StringVarP(&saveTag, "tag", "t", "", "Tag of the images to save")
	saveCmd.Flags().StringVarP(&savePrefix, "prefix", "p", "", "Image name prefix")
	saveCmd.Flags().StringVarP(&saveOutput, "output", "o", save.DefaultOutputDir, "Directory the archive is written to")
}
