package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/assignwatch/assignwatch/internal/domain/model"
	"github.com/assignwatch/assignwatch/internal/domain/port/driven"
	"github.com/assignwatch/assignwatch/internal/labels"
	"github.com/assignwatch/assignwatch/internal/timefmt"
)

// Compile-time interface satisfaction check.
var _ driven.ReminderEngine = (*ReminderService)(nil)

// ReminderService implements the per-issue timing engine. For a tracked,
// assigned issue it inspects the comment history, scales the base intervals
// by the issue's priority, and either reminds the assignees, disqualifies
// them, or leaves the issue alone.
type ReminderService struct {
	tracker    driven.IssueTracker
	store      driven.StateStore
	botLogin   string
	warning    time.Duration
	disqualify time.Duration
	now        func() time.Time
}

// NewReminderService creates a ReminderService. botLogin identifies the
// automation's own comments so its reminders are not mistaken for assignee
// activity.
func NewReminderService(
	tracker driven.IssueTracker,
	store driven.StateStore,
	botLogin string,
	warning, disqualify time.Duration,
) *ReminderService {
	return &ReminderService{
		tracker:    tracker,
		store:      store,
		botLogin:   botLogin,
		warning:    warning,
		disqualify: disqualify,
		now:        time.Now,
	}
}

// UpdateTaskReminder evaluates one assigned issue. The disqualification
// clock runs from the assignees' last activity only; reminders also anchor
// on the last reminder so a silent assignee is nudged once per warning
// interval, not on every scan.
func (s *ReminderService) UpdateTaskReminder(ctx context.Context, repoFullName string, issue model.IssueSnapshot) error {
	assignedAt, err := s.tracker.LastAssignedAt(ctx, repoFullName, issue.Number)
	if err != nil {
		if errors.Is(err, driven.ErrNoAssignmentEvent) {
			slog.Info("assigned issue has no assignment event, skipping", "repo", repoFullName, "issue", issue.Number)
			return nil
		}
		return fmt.Errorf("resolving assignment time for %s#%d: %w", repoFullName, issue.Number, err)
	}

	comments, err := s.tracker.ListComments(ctx, repoFullName, issue.Number)
	if err != nil {
		return fmt.Errorf("listing comments for %s#%d: %w", repoFullName, issue.Number, err)
	}

	lastActivity := assignedAt
	var lastReminder time.Time
	for _, c := range comments {
		if c.Author == s.botLogin {
			if c.CreatedAt.After(lastReminder) {
				lastReminder = c.CreatedAt
			}
			continue
		}
		if slices.Contains(issue.Assignees, c.Author) && c.CreatedAt.After(lastActivity) {
			lastActivity = c.CreatedAt
		}
	}

	priority := labels.ParsePriority(issue.Labels)
	warning, disqualify := scaleDeadlines(priority, s.warning, s.disqualify)
	now := s.now()

	if now.Sub(lastActivity) >= disqualify {
		return s.disqualifyAssignees(ctx, repoFullName, issue, now.Sub(lastActivity))
	}

	// Anchor reminders on the later of assignee activity and the last
	// reminder, giving one nudge per warning interval.
	anchor := lastActivity
	if lastReminder.After(anchor) {
		anchor = lastReminder
	}
	if now.Sub(anchor) >= warning {
		return s.remindAssignees(ctx, repoFullName, issue, warning, disqualify, now.Sub(lastActivity))
	}

	return nil
}

func (s *ReminderService) remindAssignees(ctx context.Context, repoFullName string, issue model.IssueSnapshot, warning, disqualify, idle time.Duration) error {
	text := fmt.Sprintf(
		"%s, this task has been idle for %s. Update it or you will be disqualified after %s of inactivity.",
		mentions(issue.Assignees), timefmt.Duration(idle), timefmt.Duration(disqualify),
	)
	notice := model.Notice{Raw: text, Diff: text}

	posted, err := s.tracker.PostComment(ctx, repoFullName, issue.Number, notice)
	if err != nil {
		return fmt.Errorf("posting reminder for %s#%d: %w", repoFullName, issue.Number, err)
	}
	if posted != nil {
		slog.Info("reminder posted", "repo", repoFullName, "issue", issue.Number, "idle", idle.Round(time.Minute))
	}
	return nil
}

func (s *ReminderService) disqualifyAssignees(ctx context.Context, repoFullName string, issue model.IssueSnapshot, idle time.Duration) error {
	if err := s.tracker.RemoveAssignees(ctx, repoFullName, issue.Number, issue.Assignees); err != nil {
		return fmt.Errorf("removing assignees from %s#%d: %w", repoFullName, issue.Number, err)
	}

	text := fmt.Sprintf(
		"%s ha%s been unassigned after %s of inactivity. The task is open for a new assignee.",
		mentions(issue.Assignees), pluralHave(len(issue.Assignees)), timefmt.Duration(idle),
	)
	notice := model.Notice{Raw: text, Diff: text}
	if _, err := s.tracker.PostComment(ctx, repoFullName, issue.Number, notice); err != nil {
		return fmt.Errorf("posting disqualification for %s#%d: %w", repoFullName, issue.Number, err)
	}

	// The issue is no longer tracked; drop its record so the reconciler
	// can disable the cron workflow once nothing is left.
	if err := s.store.Update(ctx, func(state model.TrackedState) model.TrackedState {
		bucket := state[repoFullName]
		kept := make([]model.ReminderRecord, 0, len(bucket))
		for _, rec := range bucket {
			if rec.IssueNumber != issue.Number {
				kept = append(kept, rec)
			}
		}
		state[repoFullName] = kept
		return state
	}); err != nil {
		return fmt.Errorf("dropping reminder record for %s#%d: %w", repoFullName, issue.Number, err)
	}

	slog.Info("assignees disqualified", "repo", repoFullName, "issue", issue.Number, "idle", idle.Round(time.Minute))
	return nil
}

func mentions(logins []string) string {
	out := make([]string, len(logins))
	for i, l := range logins {
		out[i] = "@" + l
	}
	return strings.Join(out, " ")
}

func pluralHave(n int) string {
	if n == 1 {
		return "s"
	}
	return "ve"
}
