package build

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	git "github.com/go-git/go-git/v5"

	"github.com/vesper8/spin/pkg/config"
	"github.com/vesper8/spin/pkg/image"
)

// Labels assembles the labels for one image: the OCI annotation set derived
// from the environment, then any configured label templates rendered for this
// image. Configured labels win on conflict.
//
// Follows https://github.com/opencontainers/image-spec/blob/main/annotations.md
func Labels(cfg config.Build, imageName string) (map[string]string, error) {
	labels := collectOCILabels(cfg.Tag)

	templated, err := image.TemplateMap(cfg.Labels, map[string]interface{}{
		"Image":    imageName,
		"Tag":      cfg.Tag,
		"Prefix":   cfg.Prefix,
		"Platform": cfg.Platform,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering labels for %s: %w", imageName, err)
	}
	for k, v := range templated {
		labels[k] = v
	}

	log.Debug().Interface("labels", labels).Msg("Adding OCI")
	return labels, nil
}

func collectOCILabels(tag string) map[string]string {
	labels := map[string]string{}

	if tag != "" {
		labels["org.opencontainers.image.version"] = tag
	}
	labels["org.opencontainers.image.created"] = time.Now().Format(time.RFC3339)

	originURL, hexsha, branch, err := readGitRepo(".")
	if err != nil {
		log.Warn().Err(err).Msg("Not being able to read git repo metadata, or not a git repo. Skipping.")
	} else {
		if originURL != "" {
			labels["org.opencontainers.image.source"] = originURL
		}
		if hexsha != "" {
			labels["org.opencontainers.image.revision"] = hexsha
		}
		if branch != "" {
			labels["org.opencontainers.image.branch"] = branch
		}
	}

	return labels
}

func readGitRepo(path string) (originURL string, commitHex string, branchName string, err error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if err == git.ErrRepositoryNotExists {
			// not a git repo, nothing to annotate
			return "", "", "", nil
		}
		return "", "", "", fmt.Errorf("failed to open repository: %w", err)
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return "", "", "", fmt.Errorf("failed to list remotes: %w", err)
	}
	for _, remote := range remotes {
		if remote.Config().Name == "origin" {
			if len(remote.Config().URLs) > 0 {
				originURL = remote.Config().URLs[0]
			}
			break
		}
	}

	head, err := repo.Head()
	if err != nil {
		return "", "", "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	commitHex = head.Hash().String()
	if head.Name().IsBranch() {
		branchName = head.Name().Short()
	}

	return originURL, commitHex, branchName, nil
}
