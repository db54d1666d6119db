// Package docker wraps the three Docker CLI capabilities spin depends on:
// image existence/size inspection, buildx builds and image save.
package docker

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vesper8/spin/pkg/cmd"
)

// BuildOptions describes a single image build.
type BuildOptions struct {
	Dockerfile string
	Ref        string
	Platform   string
	Labels     map[string]string
	ContextDir string
}

// ImageStore is the narrow capability surface both pipelines run against.
// Tests substitute a fake, production uses CLI.
type ImageStore interface {
	// Exists reports whether the reference resolves in the local image store.
	Exists(ctx context.Context, ref string) bool
	// Size returns the image's on-disk size in bytes.
	Size(ctx context.Context, ref string) (uint64, error)
	// Build builds and loads a single image.
	Build(ctx context.Context, opts BuildOptions) error
	// Save archives all given references into a single tarball at dest.
	Save(ctx context.Context, refs []string, dest string) error
}

// CLI shells out to the docker binary.
type CLI struct {
	// Verbose streams build/save output to the terminal instead of
	// capturing it.
	Verbose bool
}

func (c *CLI) Exists(ctx context.Context, ref string) bool {
	return inspectCmd(ref).RunQuiet(ctx) == nil
}

func (c *CLI) Size(ctx context.Context, ref string) (uint64, error) {
	out, err := sizeCmd(ref).Output(ctx)
	if err != nil {
		return 0, fmt.Errorf("inspecting %s: %w", ref, err)
	}

	size, err := strconv.ParseUint(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing size of %s: %w", ref, err)
	}
	return size, nil
}

func (c *CLI) Build(ctx context.Context, opts BuildOptions) error {
	return buildCmd(opts).
		SetVerbose(c.Verbose).
		PreInfo("Building " + opts.Ref).
		Run(ctx)
}

func (c *CLI) Save(ctx context.Context, refs []string, dest string) error {
	return saveCmd(refs, dest).
		SetVerbose(c.Verbose).
		PreInfo("Saving " + strconv.Itoa(len(refs)) + " image(s) to " + dest).
		Run(ctx)
}

func inspectCmd(ref string) *cmd.Cmd {
	return cmd.New("docker").Arg("image", "inspect").Arg(ref)
}

func sizeCmd(ref string) *cmd.Cmd {
	return cmd.New("docker").Arg("image", "inspect").
		Arg("--format", "{{.Size}}").
		Arg(ref)
}

func buildCmd(opts BuildOptions) *cmd.Cmd {
	return cmd.New("docker").Arg("buildx", "build").
		Arg("--platform", opts.Platform).
		Arg("-t", opts.Ref).
		Arg("-f", opts.Dockerfile).
		Arg(labelsToArgs(opts.Labels)...).
		Arg("--load").
		Arg("--progress=plain").
		Arg(opts.ContextDir)
}

func saveCmd(refs []string, dest string) *cmd.Cmd {
	return cmd.New("docker").Arg("image", "save", "-o").
		Arg(dest).
		Arg(refs...)
}

func labelsToArgs(labels map[string]string) []string {
	args := []string{}
	for _, k := range sortedKeys(labels) {
		args = append(args, "--label", k+"="+labels[k])
	}
	return args
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// map order is random, command lines should not be
	sort.Strings(keys)
	return keys
}
