// Package dockerfile locates the Dockerfiles a run operates on.
package dockerfile

import (
	"errors"
	"path/filepath"
)

// ErrNoneFound means the working directory holds no Dockerfile* entries.
// Both pipelines treat it as fatal.
var ErrNoneFound = errors.New("no Dockerfile* found in the current directory")

// Discover lists files matching Dockerfile* directly in dir, non-recursive.
// filepath.Glob sorts, so the order is stable across platforms.
func Discover(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "Dockerfile*"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNoneFound
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names, nil
}
