// Package save implements the image archive pipeline: resolve the expected
// image for every Dockerfile, skip the ones that were never built, and write
// all the rest into a single tarball for offline transfer.
package save

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/vesper8/spin/pkg/config"
	"github.com/vesper8/spin/pkg/docker"
	"github.com/vesper8/spin/pkg/dockerfile"
	"github.com/vesper8/spin/pkg/image"
	"github.com/vesper8/spin/pkg/util"
)

// ErrNoImages means not a single expected image exists locally.
var ErrNoImages = errors.New("no images found to save")

// DefaultOutputDir is where archives land unless overridden.
const DefaultOutputDir = "output"

// Manifest is the outcome of the existence check: which expected images are
// present, which are not, and how much disk the present ones take.
type Manifest struct {
	Found          []image.Ref
	Missing        []image.Ref
	TotalSizeBytes uint64
}

type Pipeline struct {
	Store  docker.ImageStore
	Config config.Save
	// Dir is the working directory searched for Dockerfiles.
	Dir string
	// OutputDir defaults to DefaultOutputDir; created when absent.
	OutputDir string
}

// OutputPath is the archive destination, derived from vendor name and tag.
func (p *Pipeline) OutputPath() string {
	return filepath.Join(p.outputDir(), p.Config.Vendor+"-"+p.Config.Tag+".tar")
}

func (p *Pipeline) outputDir() string {
	if p.OutputDir != "" {
		return p.OutputDir
	}
	return DefaultOutputDir
}

// Check resolves the expected reference for every Dockerfile and partitions
// them by local presence. Missing images are warnings, not errors.
func (p *Pipeline) Check(ctx context.Context, files []string) (Manifest, error) {
	var m Manifest
	for _, f := range files {
		ref, err := image.FromDockerfile(f, p.Config.Prefix, p.Config.Tag)
		if err != nil {
			return m, err
		}

		if p.Store.Exists(ctx, ref.String()) {
			m.Found = append(m.Found, ref)
		} else {
			log.Warn().Str("image", ref.String()).Msg("Not built yet, skipping")
			m.Missing = append(m.Missing, ref)
		}
	}
	return m, nil
}

// Run executes the whole pipeline and returns the manifest it acted on.
func (p *Pipeline) Run(ctx context.Context) (Manifest, error) {
	files, err := dockerfile.Discover(p.Dir)
	if err != nil {
		return Manifest{}, err
	}
	log.Info().Int("count", len(files)).Interface("dockerfiles", files).Msg("Discovered")

	m, err := p.Check(ctx, files)
	if err != nil {
		return m, err
	}
	if len(m.Found) == 0 {
		for _, ref := range m.Missing {
			log.Error().Str("image", ref.String()).Msg("Expected but not found")
		}
		log.Error().Msg("Build them first with: spin build")
		return m, ErrNoImages
	}

	// sizes are informational only
	for _, ref := range m.Found {
		size, err := p.Store.Size(ctx, ref.String())
		if err != nil {
			log.Warn().Err(err).Str("image", ref.String()).Msg("Could not read size of")
			continue
		}
		m.TotalSizeBytes += size
		log.Info().Str("image", ref.String()).Str("size", util.ByteCountIEC(size)).Msg("Will save")
	}
	log.Info().Int("images", len(m.Found)).Str("total", util.ByteCountIEC(m.TotalSizeBytes)).Msg("Saving")

	dest := p.OutputPath()
	if err := os.MkdirAll(p.outputDir(), 0o755); err != nil {
		return m, fmt.Errorf("creating %s: %w", p.outputDir(), err)
	}
	if err := p.Store.Save(ctx, image.Strings(m.Found), dest); err != nil {
		return m, fmt.Errorf("saving images to %s: %w", dest, err)
	}

	if info, err := os.Stat(dest); err == nil {
		log.Info().Str("archive", dest).Str("size", util.ByteCountIEC(uint64(info.Size()))).Msg("Written")
	}
	for _, ref := range m.Found {
		log.Info().Msg("Included " + ref.String())
	}
	log.Info().Msg("Load it on the target host with: docker load -i " + dest)

	return m, nil
}
