package application

import (
	"context"
	"fmt"

	"github.com/assignwatch/assignwatch/internal/domain/model"
)

// recordReminder appends the record to the repository's bucket unless a
// record for the same issue number already exists. Idempotent under replay
// of the same assignment event.
func (s *Watchdog) recordReminder(ctx context.Context, repoFullName string, rec model.ReminderRecord) error {
	err := s.store.Update(ctx, func(state model.TrackedState) model.TrackedState {
		bucket, ok := state[repoFullName]
		if !ok {
			state[repoFullName] = []model.ReminderRecord{}
			bucket = state[repoFullName]
		}
		for _, existing := range bucket {
			if existing.IssueNumber == rec.IssueNumber {
				return state
			}
		}
		state[repoFullName] = append(bucket, rec)
		return state
	})
	if err != nil {
		return fmt.Errorf("recording reminder for %s#%d: %w", repoFullName, rec.IssueNumber, err)
	}
	return nil
}

// pruneRecord drops the issue's record from its bucket, if present. Used
// when a tracked issue loses its assignees so the reconciler can disable
// the scheduled workflow once nothing is left to track.
func (s *Watchdog) pruneRecord(ctx context.Context, repoFullName string, issueNumber int) error {
	err := s.store.Update(ctx, func(state model.TrackedState) model.TrackedState {
		bucket, ok := state[repoFullName]
		if !ok {
			return state
		}
		kept := make([]model.ReminderRecord, 0, len(bucket))
		for _, rec := range bucket {
			if rec.IssueNumber != issueNumber {
				kept = append(kept, rec)
			}
		}
		state[repoFullName] = kept
		return state
	})
	if err != nil {
		return fmt.Errorf("pruning reminder for %s#%d: %w", repoFullName, issueNumber, err)
	}
	return nil
}
