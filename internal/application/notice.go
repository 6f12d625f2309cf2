package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/assignwatch/assignwatch/internal/domain/model"
	"github.com/assignwatch/assignwatch/internal/labels"
	"github.com/assignwatch/assignwatch/internal/timefmt"
)

// postAssignmentNotice composes the assignment advisory, posts it, and
// records the posted comment. The notice's diff equals its raw text; the
// posting transport consumes the diff. When posting is suppressed the
// operation degrades silently and nothing is recorded.
func (s *Watchdog) postAssignmentNotice(ctx context.Context, repoFullName string, issue model.IssueSnapshot) error {
	priority := labels.ParsePriority(issue.Labels)
	warning, disqualify := scaleDeadlines(priority, s.cfg.WarningInterval, s.cfg.DisqualifyInterval)

	var b strings.Builder
	b.WriteString("This task is now being monitored for activity.\n")
	if s.cfg.RequirePullRequest {
		b.WriteString("Open a linked pull request before the first reminder or you risk being disqualified from this task.\n")
	}
	fmt.Fprintf(&b, "Reminders will be sent every %s if there is no activity.\n", timefmt.Duration(warning))
	fmt.Fprintf(&b, "Assignees will be disqualified after %s of inactivity.", timefmt.Duration(disqualify))

	text := b.String()
	notice := model.Notice{Raw: text, Diff: text}
	slog.Error("assignment notice", "repo", repoFullName, "issue", issue.Number, "text", notice.Raw)

	posted, err := s.tracker.PostComment(ctx, repoFullName, issue.Number, notice)
	if err != nil {
		return fmt.Errorf("posting assignment notice for %s#%d: %w", repoFullName, issue.Number, err)
	}
	if posted == nil {
		// Posting suppressed; nothing to record.
		return nil
	}

	return s.recordReminder(ctx, repoFullName, model.ReminderRecord{
		CommentID:   posted.ID,
		IssueNumber: posted.IssueNumber,
	})
}
