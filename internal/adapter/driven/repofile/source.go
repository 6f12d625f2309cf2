// Package repofile implements the RepoSource port over a YAML watch list.
package repofile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/assignwatch/assignwatch/internal/domain/model"
	"github.com/assignwatch/assignwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepoSource = (*Source)(nil)

// Source reads the watched-repository list from a YAML file on every call,
// so edits take effect on the next invocation without a restart.
type Source struct {
	path string
}

// NewSource creates a Source reading from the given file path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

type watchList struct {
	Repos []watchEntry `yaml:"repos"`
}

type watchEntry struct {
	ID    int64  `yaml:"id"`
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

// WatchedRepos returns the configured repositories. A missing file is an
// empty watch list, not an error; a malformed file or entry is an error.
func (s *Source) WatchedRepos(_ context.Context) ([]model.WatchedRepo, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading watch list %s: %w", s.path, err)
	}

	var list watchList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing watch list %s: %w", s.path, err)
	}

	repos := make([]model.WatchedRepo, 0, len(list.Repos))
	for i, entry := range list.Repos {
		if entry.Owner == "" || entry.Name == "" {
			return nil, fmt.Errorf("watch list %s: entry %d is missing owner or name", s.path, i)
		}
		repos = append(repos, model.WatchedRepo{
			ID:    entry.ID,
			Owner: entry.Owner,
			Name:  entry.Name,
		})
	}

	return repos, nil
}
