package model

import "time"

// IssueSnapshot is the transient view of an issue fetched per invocation.
// It carries exactly the fields the eligibility filter and the reminder
// engine inspect; it is never persisted.
type IssueSnapshot struct {
	ID          int64
	Number      int
	Title       string
	State       string // "open" or "closed"
	Draft       bool
	PullRequest bool // True when the "issue" is actually a pull request.
	Locked      bool
	Labels      []string
	Assignees   []string // Assignee logins.
	HTMLURL     string
}

// HasAssignees reports whether at least one assignee holds the issue.
func (i IssueSnapshot) HasAssignees() bool {
	return len(i.Assignees) > 0
}

// IssueComment is a single comment on an issue, used by the reminder engine
// to find the assignees' most recent activity.
type IssueComment struct {
	ID        int64
	Author    string
	Body      string
	CreatedAt time.Time
}

// PostedComment is the transport's receipt for a successfully posted
// comment. A nil receipt means posting was suppressed (for example in dry
// run mode) and no bookkeeping must happen.
type PostedComment struct {
	ID          int64
	IssueNumber int
}

// Notice is a composed advisory ready for posting. Diff always equals Raw;
// the posting transport consumes Diff while Raw is what gets logged.
type Notice struct {
	Raw  string
	Diff string
}
