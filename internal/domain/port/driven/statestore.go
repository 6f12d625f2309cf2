package driven

import (
	"context"

	"github.com/assignwatch/assignwatch/internal/domain/model"
)

// StateStore defines the driven port for the durable reminder bookkeeping.
//
// Update runs the transform as one read-modify-write transaction: the
// transform receives the whole mapping, mutates or replaces it, and the
// store persists the result atomically. Callers never hold a mutable
// reference to the state between transactions, and no network call may
// happen inside a transform.
type StateStore interface {
	Update(ctx context.Context, transform func(model.TrackedState) model.TrackedState) error

	// Snapshot returns a read-only copy of the current state.
	Snapshot(ctx context.Context) (model.TrackedState, error)
}
