package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vesper8/spin/pkg/util"
)

var BuildVersion string // Will be set dynamically at build time.
var appName string = "spin"

var (
	verbose      bool
	noColor      bool
	timeout      time.Duration
	printVersion bool
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Build Docker images from local Dockerfiles and pack them for offline transfer.",
	Long: `Builds an image from every Dockerfile* in the current directory and saves
the built images into a single tarball you can carry to an air-gapped host.

Image names are derived from the Dockerfile filenames, so build and save
always agree on what exists.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(verbose, noColor)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if printVersion {
			fmt.Printf("%s version: %s\n", appName, BuildVersion)
			return
		}
		_ = cmd.Help()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	if BuildVersion == "" {
		BuildVersion = "development" // Fallback if not set during build
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Increase verbosity of output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Bound every docker invocation, 0 means no timeout")
	rootCmd.Flags().BoolVarP(&printVersion, "version", "V", false, "Display the application version and exit")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(saveCmd)
}

func main() {
	// Local overrides for dev runs; harmless in CI.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		util.FailOnError(err)
	}
}

func initLogger(verbose bool, noColor bool) {
	writer := zerolog.ConsoleWriter{Out: colorable.NewColorableStderr(), NoColor: noColor}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// commandContext bounds every external docker call when --timeout is given.
func commandContext() (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.WithCancel(context.Background())
}
