package application

import (
	"github.com/assignwatch/assignwatch/internal/domain/model"
	"github.com/assignwatch/assignwatch/internal/labels"
)

// ineligibility records which fields disqualify an issue from tracking.
// Both the assignment branch and the scan loop use the same check; the
// per-field flags exist so the scan loop can log the exact reason.
type ineligibility struct {
	Draft       bool
	PullRequest bool
	Locked      bool
	NotOpen     bool
	NoPrice     bool
}

// Any reports whether the issue is ineligible.
func (r ineligibility) Any() bool {
	return r.Draft || r.PullRequest || r.Locked || r.NotOpen || r.NoPrice
}

// checkEligibility evaluates the shared eligibility predicate: an issue is
// in scope only when it is open, not a draft, not a pull request, not
// locked, and carries a recognizable price label.
func checkEligibility(issue model.IssueSnapshot) ineligibility {
	_, hasPrice := labels.ParsePrice(issue.Labels)
	return ineligibility{
		Draft:       issue.Draft,
		PullRequest: issue.PullRequest,
		Locked:      issue.Locked,
		NotOpen:     issue.State != "open",
		NoPrice:     !hasPrice,
	}
}
