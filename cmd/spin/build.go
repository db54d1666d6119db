package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vesper8/spin/pkg/build"
	"github.com/vesper8/spin/pkg/config"
	"github.com/vesper8/spin/pkg/docker"
)

var (
	buildOnly     string
	buildNoLabels bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an image from every Dockerfile* in the current directory",
	Long: `Builds one image per Dockerfile* found in the current directory, in order,
and loads the results into the local image store. The first failed build
aborts the whole run.

Configured through SPIN_BUILD_IMAGE_PREFIX, SPIN_BUILD_TAG and
SPIN_BUILD_PLATFORM, or an optional spin.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, err := config.Load(config.DefaultFile)
		if err != nil {
			return err
		}
		cfg := config.ResolveBuild(cfgFile)
		log.Info().
			Str("platform", cfg.Platform).
			Str("prefix", cfg.Prefix).
			Str("tag", cfg.Tag).
			Msg("Resolved config")

		ctx, cancel := commandContext()
		defer cancel()

		p := build.Pipeline{
			// builds always stream, --progress=plain is the whole point
			Store:    &docker.CLI{Verbose: true},
			Config:   cfg,
			Dir:      ".",
			Only:     buildOnly,
			NoLabels: buildNoLabels,
		}
		results, err := p.Run(ctx)
		if err != nil {
			return err
		}

		log.Info().Int("images", len(results)).Msg("All built")
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOnly, "file", "f", "", "Build only the named Dockerfile")
	buildCmd.Flags().BoolVar(&buildNoLabels, "no-labels", false, "Skip OCI annotation labels")
}
