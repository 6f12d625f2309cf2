package application

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/assignwatch/assignwatch/internal/domain/model"
)

// scanOutcome is the result of one per-issue dispatch to the reminder
// engine. Collecting outcomes keeps partial failures reportable instead of
// losing them in the concurrent join.
type scanOutcome struct {
	IssueNumber int
	Err         error
}

// scanRepo lists the repository's open issues, skips ineligible and
// unassigned ones, and dispatches the rest to the reminder engine. All
// dispatches run concurrently with no ordering guarantee; scanRepo returns
// only after every dispatch has finished.
func (s *Watchdog) scanRepo(ctx context.Context, repoFullName string) ([]scanOutcome, error) {
	issues, err := s.tracker.ListOpenIssues(ctx, repoFullName)
	if err != nil {
		return nil, fmt.Errorf("listing open issues for %s: %w", repoFullName, err)
	}

	var dispatch []model.IssueSnapshot
	for _, issue := range issues {
		if reasons := checkEligibility(issue); reasons.Any() {
			slog.Info("issue not eligible for tracking",
				"repo", repoFullName,
				"issue", issue.Number,
				"draft", issue.Draft,
				"pull_request", issue.PullRequest,
				"locked", issue.Locked,
				"state", issue.State,
				"has_price_label", !reasons.NoPrice,
			)
			continue
		}

		if !issue.HasAssignees() {
			slog.Info("issue has no assignees, pruning stale reminder record",
				"repo", repoFullName,
				"issue", issue.Number,
			)
			if err := s.pruneRecord(ctx, repoFullName, issue.Number); err != nil {
				slog.Error("stale record prune failed", "repo", repoFullName, "issue", issue.Number, "error", err)
			}
			continue
		}

		dispatch = append(dispatch, issue)
	}

	// One slot per dispatch; each goroutine writes only its own index, so
	// outcomes need no locking. Failures stay in the outcome slice instead
	// of aborting sibling dispatches.
	outcomes := make([]scanOutcome, len(dispatch))
	var g errgroup.Group
	for i, issue := range dispatch {
		g.Go(func() error {
			outcomes[i] = scanOutcome{
				IssueNumber: issue.Number,
				Err:         s.engine.UpdateTaskReminder(ctx, repoFullName, issue),
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if o.Err != nil {
			slog.Error("reminder dispatch failed", "repo", repoFullName, "issue", o.IssueNumber, "error", o.Err)
		}
	}

	return outcomes, nil
}
