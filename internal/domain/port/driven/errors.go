package driven

import "errors"

// Sentinel errors returned by driven port implementations.
var (
	// ErrNoAssignmentEvent indicates an issue whose event history contains
	// no "assigned" event.
	ErrNoAssignmentEvent = errors.New("issue has no assignment event")

	// ErrInvalidRepoName indicates a repository name that is not in
	// "owner/name" form.
	ErrInvalidRepoName = errors.New("repository name must be in owner/name form")
)
