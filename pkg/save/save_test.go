package save_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesper8/spin/pkg/build"
	"github.com/vesper8/spin/pkg/config"
	"github.com/vesper8/spin/pkg/docker"
	"github.com/vesper8/spin/pkg/dockerfile"
	"github.com/vesper8/spin/pkg/image"
	"github.com/vesper8/spin/pkg/save"
)

// fakeStore pretends the given refs exist and writes an empty archive on Save.
type fakeStore struct {
	existing map[string]uint64
	saveErr  error

	savedRefs []string
	savedDest string
	builtRefs []string
	calls     int
}

func (f *fakeStore) Exists(ctx context.Context, ref string) bool {
	f.calls++
	_, ok := f.existing[ref]
	return ok
}

func (f *fakeStore) Size(ctx context.Context, ref string) (uint64, error) {
	size, ok := f.existing[ref]
	if !ok {
		return 0, errors.New("no such image")
	}
	return size, nil
}

func (f *fakeStore) Build(ctx context.Context, opts docker.BuildOptions) error {
	f.builtRefs = append(f.builtRefs, opts.Ref)
	return nil
}

func (f *fakeStore) Save(ctx context.Context, refs []string, dest string) error {
	f.calls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedRefs = refs
	f.savedDest = dest
	return os.WriteFile(dest, []byte{}, 0o644)
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("FROM scratch\n"), 0o644))
}

func testConfig() config.Save {
	return config.Save{Prefix: "localhost", Tag: "latest", Vendor: "spin"}
}

func pipeline(t *testing.T, dir string, store *fakeStore) save.Pipeline {
	t.Helper()
	return save.Pipeline{
		Store:     store,
		Config:    testConfig(),
		Dir:       dir,
		OutputDir: filepath.Join(dir, "output"),
	}
}

func TestRunAllMissing(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Dockerfile.api")
	touch(t, dir, "Dockerfile.worker")

	store := &fakeStore{}
	p := pipeline(t, dir, store)

	m, err := p.Run(context.Background())
	assert.ErrorIs(t, err, save.ErrNoImages)
	assert.Empty(t, m.Found)
	assert.Equal(t, []string{
		"localhost/dockerfile.api:latest",
		"localhost/dockerfile.worker:latest",
	}, image.Strings(m.Missing))
}

func TestRunSavesAllFound(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Dockerfile.api")
	touch(t, dir, "Dockerfile.worker")

	store := &fakeStore{existing: map[string]uint64{
		"localhost/dockerfile.api:latest":    100,
		"localhost/dockerfile.worker:latest": 200,
	}}
	p := pipeline(t, dir, store)

	m, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"localhost/dockerfile.api:latest",
		"localhost/dockerfile.worker:latest",
	}, store.savedRefs)
	assert.Equal(t, filepath.Join(dir, "output", "spin-latest.tar"), store.savedDest)
	assert.FileExists(t, store.savedDest)
	assert.Equal(t, uint64(300), m.TotalSizeBytes)
	assert.Empty(t, m.Missing)
}

func TestRunPartialIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Dockerfile.api")
	touch(t, dir, "Dockerfile.worker")

	store := &fakeStore{existing: map[string]uint64{
		"localhost/dockerfile.api:latest": 100,
	}}
	p := pipeline(t, dir, store)

	m, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost/dockerfile.api:latest"}, store.savedRefs)
	assert.Equal(t, []string{"localhost/dockerfile.worker:latest"}, image.Strings(m.Missing))
}

func TestRunWithoutDockerfilesIsFatal(t *testing.T) {
	store := &fakeStore{}
	p := pipeline(t, t.TempDir(), store)

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, dockerfile.ErrNoneFound)
	// the image store must never be touched
	assert.Zero(t, store.calls)
}

func TestRunSaveFailure(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Dockerfile")

	store := &fakeStore{
		existing: map[string]uint64{"localhost/dockerfile:latest": 42},
		saveErr:  errors.New("disk full"),
	}
	p := pipeline(t, dir, store)

	_, err := p.Run(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

// Both pipelines must derive byte-identical references from the same
// Dockerfile, prefix and tag. Asserted directly, not just observationally.
func TestBuildAndSaveAgreeOnNames(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Dockerfile.API")
	touch(t, dir, "Dockerfile.worker")

	store := &fakeStore{}
	b := build.Pipeline{
		Store:    store,
		Config:   config.Build{Platform: "linux/amd64", Prefix: "localhost", Tag: "v2"},
		Dir:      dir,
		NoLabels: true,
	}
	_, err := b.Run(context.Background())
	require.NoError(t, err)

	files, err := dockerfile.Discover(dir)
	require.NoError(t, err)

	s := save.Pipeline{Store: store, Config: config.Save{Prefix: "localhost", Tag: "v2", Vendor: "spin"}, Dir: dir}
	m, err := s.Check(context.Background(), files)
	require.NoError(t, err)

	checked := append(image.Strings(m.Found), image.Strings(m.Missing)...)
	assert.ElementsMatch(t, store.builtRefs, checked)
}

func TestOutputPathFromFlags(t *testing.T) {
	p := save.Pipeline{Config: config.Save{Prefix: "localhost", Tag: "v1.0", Vendor: "acme"}}
	assert.Equal(t, filepath.Join("output", "acme-v1.0.tar"), p.OutputPath())
}

