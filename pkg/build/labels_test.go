package build_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesper8/spin/pkg/build"
	"github.com/vesper8/spin/pkg/config"
)

func TestLabelsContainOCISet(t *testing.T) {
	cfg := config.Build{Platform: "linux/amd64", Prefix: "localhost", Tag: "v1.2.3"}

	labels, err := build.Labels(cfg, "dockerfile.api")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", labels["org.opencontainers.image.version"])
	assert.Contains(t, labels, "org.opencontainers.image.created")
}

func TestLabelsRenderTemplates(t *testing.T) {
	cfg := config.Build{
		Platform: "linux/amd64",
		Prefix:   "localhost",
		Tag:      "v1.2.3",
		Labels: map[string]string{
			"com.example.image": "{{ .Image }}",
			"com.example.tag":   "{{ .Tag | upper }}",
		},
	}

	labels, err := build.Labels(cfg, "dockerfile.api")
	require.NoError(t, err)
	assert.Equal(t, "dockerfile.api", labels["com.example.image"])
	assert.Equal(t, "V1.2.3", labels["com.example.tag"])
}

func TestLabelsBadTemplate(t *testing.T) {
	cfg := config.Build{Tag: "v1", Labels: map[string]string{"x": "{{ .Broken"}}

	_, err := build.Labels(cfg, "dockerfile")
	assert.Error(t, err)
}

func TestLabelsConfiguredWinOverDerived(t *testing.T) {
	cfg := config.Build{
		Tag: "v1",
		Labels: map[string]string{
			"org.opencontainers.image.version": "pinned",
		},
	}

	labels, err := build.Labels(cfg, "dockerfile")
	require.NoError(t, err)
	assert.Equal(t, "pinned", labels["org.opencontainers.image.version"])
}
