package model

import "fmt"

// WatchedRepo identifies a repository that is in scope for activity
// monitoring. The watch list is supplied externally (see the RepoSource
// port); the watchdog never mutates it.
type WatchedRepo struct {
	ID    int64
	Owner string
	Name  string
}

// FullName returns the "owner/name" form used as the bucket key in
// TrackedState and in GitHub API paths.
func (r WatchedRepo) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}
