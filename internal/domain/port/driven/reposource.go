package driven

import (
	"context"

	"github.com/assignwatch/assignwatch/internal/domain/model"
)

// RepoSource defines the driven port for repository discovery. An empty
// list is a valid (if idle) configuration, not an error.
type RepoSource interface {
	WatchedRepos(ctx context.Context) ([]model.WatchedRepo, error)
}
