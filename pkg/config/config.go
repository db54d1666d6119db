package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Environment variables shared with the CI jobs that call spin.
const (
	EnvImagePrefix = "SPIN_BUILD_IMAGE_PREFIX"
	EnvTag         = "SPIN_BUILD_TAG"
	EnvPlatform    = "SPIN_BUILD_PLATFORM"
)

const (
	DefaultPrefix   = "localhost"
	DefaultPlatform = "linux/amd64"
	DefaultTag      = "latest"
	DefaultVendor   = "spin"

	// DefaultFile is the optional per-project config, looked up in the
	// working directory. Env vars and flags take precedence over it.
	DefaultFile = "spin.yaml"
)

// File is the optional spin.yaml schema. Label values may be Go templates
// rendered per image with sprig functions.
type File struct {
	Prefix   string            `yaml:"prefix"`
	Tag      string            `yaml:"tag"`
	Platform string            `yaml:"platform"`
	Vendor   string            `yaml:"vendor"`
	Labels   map[string]string `yaml:"labels"`
}

// Build holds the resolved configuration of a build run. Immutable once
// resolved.
type Build struct {
	Platform string
	Prefix   string
	Tag      string
	Labels   map[string]string
}

// Save holds the resolved configuration of a save run.
type Save struct {
	Prefix string
	Tag    string
	Vendor string
}

// Load reads the optional config file. A missing file is not an error, a
// malformed one is.
func Load(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &File{}, nil
		}
		log.Error().Err(err).Msg("Error loading config")
		return nil, err
	}
	defer file.Close()

	var cfg File
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		log.Error().Err(err).Msg("Decoding YAML " + filename + " failed! Check syntax and try again")
		return nil, err
	}
	return &cfg, nil
}

// ResolveBuild merges env vars over the config file over defaults. The build
// default tag is a fresh debug tag, so repeated debug builds never clobber a
// released one.
func ResolveBuild(cfg *File) Build {
	return Build{
		Platform: firstOf(os.Getenv(EnvPlatform), cfg.Platform, DefaultPlatform),
		Prefix:   firstOf(os.Getenv(EnvImagePrefix), cfg.Prefix, DefaultPrefix),
		Tag:      firstOf(os.Getenv(EnvTag), cfg.Tag, DebugTag(time.Now())),
		Labels:   cfg.Labels,
	}
}

// ResolveSave merges flag values over env vars over the config file over
// defaults. Empty flag values mean "not given".
func ResolveSave(cfg *File, name, tag, prefix string) Save {
	return Save{
		Prefix: firstOf(prefix, os.Getenv(EnvImagePrefix), cfg.Prefix, DefaultPrefix),
		Tag:    firstOf(tag, os.Getenv(EnvTag), cfg.Tag, DefaultTag),
		Vendor: firstOf(name, cfg.Vendor, DefaultVendor),
	}
}

// DebugTag generates the timestamped tag used when no tag is configured for
// a build.
func DebugTag(now time.Time) string {
	return "debug-" + now.Format("20060102-150405")
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
