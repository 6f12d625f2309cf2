// Package github implements the IssueTracker and WorkflowToggler ports
// using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/assignwatch/assignwatch/internal/domain/model"
	"github.com/assignwatch/assignwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.IssueTracker    = (*Client)(nil)
	_ driven.WorkflowToggler = (*Client)(nil)
)

// Client implements the driven ports against the GitHub REST API.
type Client struct {
	gh     *gh.Client
	dryRun bool // Suppresses comment posting; reads are unaffected.
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string, dryRun bool) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client, dryRun: dryRun}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. Intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, dryRun bool) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client, dryRun: dryRun}, nil
}

// ListOpenIssues retrieves all open issues for the given repository. It
// handles pagination automatically and maps go-github types to domain model
// types. Pull requests surfaced by the Issues API are flagged, not dropped.
func (c *Client) ListOpenIssues(ctx context.Context, repoFullName string) ([]model.IssueSnapshot, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.IssueListByRepoOptions{
		State: "open",
		ListOptions: gh.ListOptions{
			PerPage: 100,
		},
	}

	var allIssues []model.IssueSnapshot

	for {
		issues, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing open issues for %s (page %d): %w", repoFullName, opts.ListOptions.Page, err)
		}

		logRateLimit(resp, repoFullName+"/issues", opts.ListOptions.Page, len(issues))

		for _, issue := range issues {
			allIssues = append(allIssues, MapIssue(issue))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}

	if allIssues == nil {
		allIssues = []model.IssueSnapshot{}
	}

	return allIssues, nil
}

// ListComments retrieves all comments of an issue in creation order.
func (c *Client) ListComments(ctx context.Context, repoFullName string, issueNumber int) ([]model.IssueComment, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	var allComments []model.IssueComment

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, issueNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("listing comments for %s#%d (page %d): %w", repoFullName, issueNumber, opts.Page, err)
		}

		for _, comment := range comments {
			allComments = append(allComments, model.IssueComment{
				ID:        comment.GetID(),
				Author:    comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				CreatedAt: comment.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// LastAssignedAt returns the time of the most recent "assigned" event on the
// issue, or ErrNoAssignmentEvent when the history contains none.
func (c *Client) LastAssignedAt(ctx context.Context, repoFullName string, issueNumber int) (time.Time, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return time.Time{}, err
	}

	opts := &gh.ListOptions{PerPage: 100}
	var last time.Time

	for {
		events, resp, err := c.gh.Issues.ListIssueEvents(ctx, owner, repo, issueNumber, opts)
		if err != nil {
			return time.Time{}, fmt.Errorf("listing events for %s#%d (page %d): %w", repoFullName, issueNumber, opts.Page, err)
		}

		for _, event := range events {
			if event.GetEvent() == "assigned" && event.GetCreatedAt().After(last) {
				last = event.GetCreatedAt().Time
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if last.IsZero() {
		return time.Time{}, driven.ErrNoAssignmentEvent
	}
	return last, nil
}

// PostComment posts the notice's diff as an issue comment. In dry run mode
// the comment is logged and suppressed, and a nil receipt is returned.
func (c *Client) PostComment(ctx context.Context, repoFullName string, issueNumber int, notice model.Notice) (*model.PostedComment, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	if c.dryRun {
		slog.Info("dry run, comment suppressed", "repo", repoFullName, "issue", issueNumber, "body", notice.Diff)
		return nil, nil
	}

	comment, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, issueNumber, &gh.IssueComment{
		Body: gh.Ptr(notice.Diff),
	})
	if err != nil {
		return nil, fmt.Errorf("creating comment on %s#%d: %w", repoFullName, issueNumber, err)
	}

	return &model.PostedComment{
		ID:          comment.GetID(),
		IssueNumber: issueNumber,
	}, nil
}

// RemoveAssignees unassigns the given logins from the issue.
func (c *Client) RemoveAssignees(ctx context.Context, repoFullName string, issueNumber int, logins []string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	if _, _, err := c.gh.Issues.RemoveAssignees(ctx, owner, repo, issueNumber, logins); err != nil {
		return fmt.Errorf("removing assignees from %s#%d: %w", repoFullName, issueNumber, err)
	}
	return nil
}

// EnableWorkflow enables the workflow identified by its definition file name.
// Enabling an already-enabled workflow is a no-op at the GitHub end.
func (c *Client) EnableWorkflow(ctx context.Context, owner, repo, workflowFile string) error {
	if _, err := c.gh.Actions.EnableWorkflowByFileName(ctx, owner, repo, workflowFile); err != nil {
		return fmt.Errorf("enabling workflow %s in %s/%s: %w", workflowFile, owner, repo, err)
	}
	return nil
}

// DisableWorkflow disables the workflow identified by its definition file
// name. Disabling an already-disabled workflow is a no-op at the GitHub end.
func (c *Client) DisableWorkflow(ctx context.Context, owner, repo, workflowFile string) error {
	if _, err := c.gh.Actions.DisableWorkflowByFileName(ctx, owner, repo, workflowFile); err != nil {
		return fmt.Errorf("disabling workflow %s in %s/%s: %w", workflowFile, owner, repo, err)
	}
	return nil
}

// MapIssue converts a go-github Issue to a domain IssueSnapshot. Exported so
// the webhook receiver can reuse the same mapping for event payloads.
func MapIssue(issue *gh.Issue) model.IssueSnapshot {
	labelNames := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labelNames = append(labelNames, label.GetName())
	}

	assignees := make([]string, 0, len(issue.Assignees))
	for _, user := range issue.Assignees {
		assignees = append(assignees, user.GetLogin())
	}

	return model.IssueSnapshot{
		ID:          issue.GetID(),
		Number:      issue.GetNumber(),
		Title:       issue.GetTitle(),
		State:       issue.GetState(),
		Draft:       issue.GetDraft(),
		PullRequest: issue.IsPullRequest(),
		Locked:      issue.GetLocked(),
		Labels:      labelNames,
		Assignees:   assignees,
		HTMLURL:     issue.GetHTMLURL(),
	}
}

// logRateLimit emits per-page API telemetry and warns when the remaining
// rate budget runs low.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: %w", fullName, driven.ErrInvalidRepoName)
	}
	return parts[0], parts[1], nil
}
