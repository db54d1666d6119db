package build

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/vesper8/spin/pkg/util"
)

// FindDockerignore walks from start toward the filesystem root and returns
// the path of the first .dockerignore found, or an empty string when there is
// none anywhere up the tree.
func FindDockerignore(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, ".dockerignore")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// ContextStats counts the files under dir and sums their sizes. The numbers
// describe the unfiltered build context, ignore rules are applied by docker
// itself.
func ContextStats(dir string) (files int, size uint64, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		size += uint64(info.Size())
		return nil
	})
	return files, size, err
}

// ReportContext logs build-context diagnostics: which .dockerignore applies
// and what it contains, plus the aggregate file count and size. Diagnostics
// only, never fatal.
func ReportContext(dir string) {
	ignoreFile, err := FindDockerignore(dir)
	if err != nil {
		log.Warn().Err(err).Msg("Could not look for .dockerignore")
	} else if ignoreFile == "" {
		log.Warn().Msg("No .dockerignore found, the whole directory will be sent to the builder")
	} else {
		log.Info().Str("file", ignoreFile).Msg("Using ignore rules from")
		content, err := os.ReadFile(ignoreFile)
		if err != nil {
			log.Warn().Err(err).Str("file", ignoreFile).Msg("Could not read")
		} else {
			log.Info().Msg("Ignore rules:\n" + string(content))
		}
	}

	files, size, err := ContextStats(dir)
	if err != nil {
		log.Warn().Err(err).Msg("Could not measure build context")
		return
	}
	log.Info().Int("files", files).Str("size", util.ByteCountIEC(size)).Msg("Build context")
}
