package model

// ReminderRecord is the durable marker that an assignment notice was
// already posted for an issue. Records are never updated in place; they are
// removed when the issue loses its assignees or is disqualified.
type ReminderRecord struct {
	CommentID   int64
	IssueNumber int
}

// TrackedState maps "owner/repo" bucket keys to the ordered reminder
// records of that repository. Invariant: a bucket with zero records must
// not survive the reconciler's prune phase.
type TrackedState map[string][]ReminderRecord

// Clone returns a deep copy. Store implementations hand transforms a copy
// so a failed transaction cannot leak partial mutations.
func (s TrackedState) Clone() TrackedState {
	out := make(TrackedState, len(s))
	for key, records := range s {
		out[key] = append([]ReminderRecord(nil), records...)
	}
	return out
}
