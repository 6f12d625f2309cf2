package driven

import (
	"context"

	"github.com/assignwatch/assignwatch/internal/domain/model"
)

// ReminderEngine defines the driven port for the per-issue timing engine.
// Given a tracked, assigned, eligible issue it decides whether to remind
// the assignees, disqualify them, or do nothing. The scan loop dispatches
// to it concurrently and collects one outcome per issue.
type ReminderEngine interface {
	UpdateTaskReminder(ctx context.Context, repoFullName string, issue model.IssueSnapshot) error
}
