package driven

import (
	"context"
	"time"

	"github.com/assignwatch/assignwatch/internal/domain/model"
)

// IssueTracker defines the driven port for the issue-tracker API. Listing
// methods handle pagination internally; write methods mutate issue state.
type IssueTracker interface {
	// ListOpenIssues returns all open issues of the repository. Pull
	// requests surfaced by the Issues API are included and flagged on the
	// snapshot; filtering them out is the caller's job.
	ListOpenIssues(ctx context.Context, repoFullName string) ([]model.IssueSnapshot, error)

	// ListComments returns all comments of an issue in creation order.
	ListComments(ctx context.Context, repoFullName string, issueNumber int) ([]model.IssueComment, error)

	// LastAssignedAt returns the time of the most recent "assigned" event
	// on the issue. Returns ErrNoAssignmentEvent when the issue has never
	// been assigned.
	LastAssignedAt(ctx context.Context, repoFullName string, issueNumber int) (time.Time, error)

	// PostComment posts the notice's diff as an issue comment and returns
	// the receipt. A nil receipt with a nil error means posting was
	// suppressed; callers must not record anything in that case.
	PostComment(ctx context.Context, repoFullName string, issueNumber int, notice model.Notice) (*model.PostedComment, error)

	// RemoveAssignees unassigns the given logins from the issue.
	RemoveAssignees(ctx context.Context, repoFullName string, issueNumber int, logins []string) error
}

// WorkflowToggler defines the driven port for enabling and disabling the
// scheduled workflow that drives periodic invocations. Both calls are
// idempotent at the remote end.
type WorkflowToggler interface {
	EnableWorkflow(ctx context.Context, owner, repo, workflowFile string) error
	DisableWorkflow(ctx context.Context, owner, repo, workflowFile string) error
}
