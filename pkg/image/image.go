package image

import (
	"errors"
	"strings"
)

// Ref is a canonical image reference of the form prefix/name:tag, where name
// is the lowercased Dockerfile filename. Both the build and save pipelines
// derive references through FromDockerfile, so a Dockerfile always maps to
// the same reference on both sides.
type Ref struct {
	Prefix string
	Name   string
	Tag    string
}

// FromDockerfile derives the reference for an image built from the given
// Dockerfile filename. The filename is lowercased, nothing else is validated:
// prefix and tag pass through verbatim.
func FromDockerfile(filename, prefix, tag string) (Ref, error) {
	if filename == "" {
		return Ref{}, errors.New("dockerfile name must not be empty")
	}
	return Ref{
		Prefix: prefix,
		Name:   strings.ToLower(filename),
		Tag:    tag,
	}, nil
}

func (r Ref) String() string {
	return r.Prefix + "/" + r.Name + ":" + r.Tag
}

// Strings renders a slice of references, in order. Handy for passing a whole
// manifest to `docker image save`.
func Strings(refs []Ref) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.String())
	}
	return out
}
