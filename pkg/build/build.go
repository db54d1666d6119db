// Package build implements the image build pipeline: discover Dockerfiles,
// report build-context diagnostics, then build them one by one, fail-fast.
package build

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vesper8/spin/pkg/config"
	"github.com/vesper8/spin/pkg/docker"
	"github.com/vesper8/spin/pkg/dockerfile"
	"github.com/vesper8/spin/pkg/image"
)

type Pipeline struct {
	Store  docker.ImageStore
	Config config.Build
	// Dir is the working directory, also used as the build context.
	Dir string
	// Only limits the run to a single named Dockerfile when non-empty.
	Only string
	// NoLabels skips OCI annotation labels.
	NoLabels bool
}

// Result records one successfully built image.
type Result struct {
	Dockerfile string
	Ref        image.Ref
}

// Run executes the whole pipeline. On the first failed build it stops and
// returns the error together with the results gathered so far; remaining
// Dockerfiles are not attempted.
func (p *Pipeline) Run(ctx context.Context) ([]Result, error) {
	files, err := dockerfile.Discover(p.Dir)
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(files)).Interface("dockerfiles", files).Msg("Discovered")

	ReportContext(p.Dir)

	var results []Result
	for _, f := range files {
		if p.Only != "" && f != p.Only {
			log.Debug().Str("dockerfile", f).Msg("Skipping, not selected by --file")
			continue
		}

		ref, err := image.FromDockerfile(f, p.Config.Prefix, p.Config.Tag)
		if err != nil {
			return results, err
		}

		labels := map[string]string{}
		if !p.NoLabels {
			labels, err = Labels(p.Config, ref.Name)
			if err != nil {
				return results, err
			}
		}

		if err := p.Store.Build(ctx, docker.BuildOptions{
			Dockerfile: f,
			Ref:        ref.String(),
			Platform:   p.Config.Platform,
			Labels:     labels,
			ContextDir: p.Dir,
		}); err != nil {
			return results, fmt.Errorf("building %s from %s: %w", ref, f, err)
		}

		log.Info().Str("image", ref.String()).Msg("Built")
		log.Info().Msg("Inspect it with: docker run -it --rm " + ref.String() + " sh")
		results = append(results, Result{Dockerfile: f, Ref: ref})
	}

	if p.Only != "" && len(results) == 0 {
		return nil, fmt.Errorf("no Dockerfile named %q found", p.Only)
	}
	return results, nil
}
