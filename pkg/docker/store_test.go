package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCmd(t *testing.T) {
	c := buildCmd(BuildOptions{
		Dockerfile: "Dockerfile.api",
		Ref:        "localhost/dockerfile.api:latest",
		Platform:   "linux/amd64",
		ContextDir: ".",
	})

	assert.Equal(t,
		"docker buildx build --platform linux/amd64 -t localhost/dockerfile.api:latest -f Dockerfile.api --load --progress=plain .",
		c.String())
}

func TestBuildCmdLabelsAreOrdered(t *testing.T) {
	c := buildCmd(BuildOptions{
		Dockerfile: "Dockerfile",
		Ref:        "localhost/dockerfile:v1",
		Platform:   "linux/arm64",
		Labels: map[string]string{
			"org.opencontainers.image.version": "v1",
			"maintainer":                       "ops",
		},
		ContextDir: ".",
	})

	assert.Equal(t,
		"docker buildx build --platform linux/arm64 -t localhost/dockerfile:v1 -f Dockerfile "+
			"--label maintainer=ops --label org.opencontainers.image.version=v1 "+
			"--load --progress=plain .",
		c.String())
}

func TestSaveCmd(t *testing.T) {
	c := saveCmd([]string{
		"localhost/dockerfile.api:latest",
		"localhost/dockerfile.worker:latest",
	}, "output/spin-latest.tar")

	assert.Equal(t,
		"docker image save -o output/spin-latest.tar localhost/dockerfile.api:latest localhost/dockerfile.worker:latest",
		c.String())
}

func TestInspectCmds(t *testing.T) {
	assert.Equal(t, "docker image inspect localhost/app:latest",
		inspectCmd("localhost/app:latest").String())
	assert.Equal(t, "docker image inspect --format {{.Size}} localhost/app:latest",
		sizeCmd("localhost/app:latest").String())
}
