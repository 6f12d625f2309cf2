package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assignwatch/assignwatch/internal/application"
	"github.com/assignwatch/assignwatch/internal/domain/model"
	"github.com/assignwatch/assignwatch/internal/timefmt"
)

// --- Mock implementations ---

type mockRepoSource struct {
	repos []model.WatchedRepo
	calls int
}

func (m *mockRepoSource) WatchedRepos(_ context.Context) ([]model.WatchedRepo, error) {
	m.calls++
	return m.repos, nil
}

type postedCall struct {
	Repo   string
	Number int
	Notice model.Notice
}

type mockTracker struct {
	issues       []model.IssueSnapshot
	listCalls    int
	posts        []postedCall
	suppressPost bool
	nextID       int64
}

func (m *mockTracker) ListOpenIssues(_ context.Context, _ string) ([]model.IssueSnapshot, error) {
	m.listCalls++
	return m.issues, nil
}

func (m *mockTracker) ListComments(_ context.Context, _ string, _ int) ([]model.IssueComment, error) {
	return nil, nil
}

func (m *mockTracker) LastAssignedAt(_ context.Context, _ string, _ int) (time.Time, error) {
	return time.Now(), nil
}

func (m *mockTracker) PostComment(_ context.Context, repo string, number int, notice model.Notice) (*model.PostedComment, error) {
	m.posts = append(m.posts, postedCall{Repo: repo, Number: number, Notice: notice})
	if m.suppressPost {
		return nil, nil
	}
	m.nextID++
	return &model.PostedComment{ID: m.nextID, IssueNumber: number}, nil
}

func (m *mockTracker) RemoveAssignees(_ context.Context, _ string, _ int, _ []string) error {
	return nil
}

type toggleCall struct {
	Owner, Repo, Workflow string
}

type mockToggler struct {
	enables  []toggleCall
	disables []toggleCall
}

func (m *mockToggler) EnableWorkflow(_ context.Context, owner, repo, workflow string) error {
	m.enables = append(m.enables, toggleCall{owner, repo, workflow})
	return nil
}

func (m *mockToggler) DisableWorkflow(_ context.Context, owner, repo, workflow string) error {
	m.disables = append(m.disables, toggleCall{owner, repo, workflow})
	return nil
}

type mockStore struct {
	state   model.TrackedState
	updates int
}

func newMockStore() *mockStore {
	return &mockStore{state: model.TrackedState{}}
}

func (m *mockStore) Update(_ context.Context, transform func(model.TrackedState) model.TrackedState) error {
	m.updates++
	m.state = transform(m.state.Clone())
	return nil
}

func (m *mockStore) Snapshot(_ context.Context) (model.TrackedState, error) {
	return m.state.Clone(), nil
}

type mockEngine struct {
	dispatched []int
	failFor    map[int]error
}

func (m *mockEngine) UpdateTaskReminder(_ context.Context, _ string, issue model.IssueSnapshot) error {
	m.dispatched = append(m.dispatched, issue.Number)
	if m.failFor != nil {
		return m.failFor[issue.Number]
	}
	return nil
}

// --- Fixtures ---

const (
	testOwner = "acme"
	testRepo  = "widget"
)

func watchedRepos() []model.WatchedRepo {
	return []model.WatchedRepo{{ID: 1, Owner: testOwner, Name: testRepo}}
}

func assignedIssue() model.IssueSnapshot {
	return model.IssueSnapshot{
		ID:        10,
		Number:    42,
		State:     "open",
		Labels:    []string{"Price: 100", "Priority: 2"},
		Assignees: []string{"alice"},
	}
}

type fixture struct {
	source  *mockRepoSource
	tracker *mockTracker
	toggler *mockToggler
	store   *mockStore
	engine  *mockEngine
	svc     *application.Watchdog
}

func newFixture(cfg application.WatchdogConfig) *fixture {
	f := &fixture{
		source:  &mockRepoSource{repos: watchedRepos()},
		tracker: &mockTracker{},
		toggler: &mockToggler{},
		store:   newMockStore(),
		engine:  &mockEngine{},
	}
	f.svc = application.NewWatchdog(f.source, f.tracker, f.toggler, f.store, f.engine, cfg)
	return f
}

func defaultConfig() application.WatchdogConfig {
	return application.WatchdogConfig{
		WarningInterval:    48 * time.Hour,
		DisqualifyInterval: 96 * time.Hour,
		HostOwner:          testOwner,
		HostRepo:           "automation",
	}
}

func assignmentTrigger(issue model.IssueSnapshot) application.Trigger {
	return application.Trigger{
		Kind:   application.TriggerAssignment,
		RepoID: 1,
		Owner:  testOwner,
		Repo:   testRepo,
		Issue:  &issue,
	}
}

func scheduleTrigger() application.Trigger {
	return application.Trigger{
		Kind:   application.TriggerSchedule,
		RepoID: 1,
		Owner:  testOwner,
		Repo:   testRepo,
	}
}

// --- Entry point ---

func TestRunEmptyWatchListShortCircuits(t *testing.T) {
	f := newFixture(defaultConfig())
	f.source.repos = nil

	res, err := f.svc.Run(context.Background(), scheduleTrigger())
	require.NoError(t, err)

	assert.Equal(t, "no watched repositories configured", res.Message)
	assert.Zero(t, f.tracker.listCalls, "scan must not run")
	assert.Empty(t, f.toggler.enables)
	assert.Empty(t, f.toggler.disables)
	assert.Zero(t, f.store.updates, "reconcile must not run")
}

func TestRunMissingOwnerIsHardError(t *testing.T) {
	f := newFixture(defaultConfig())

	trig := scheduleTrigger()
	trig.Owner = ""

	_, err := f.svc.Run(context.Background(), trig)
	require.ErrorIs(t, err, application.ErrMissingOwner)
	assert.Zero(t, f.tracker.listCalls)
}

func TestRunAssignmentPostsNoticeAndRecords(t *testing.T) {
	cfg := defaultConfig()
	cfg.RequirePullRequest = true
	f := newFixture(cfg)
	issue := assignedIssue()
	f.tracker.issues = []model.IssueSnapshot{issue}

	_, err := f.svc.Run(context.Background(), assignmentTrigger(issue))
	require.NoError(t, err)

	// Priority 2 halves both intervals in the composed notice.
	require.NotEmpty(t, f.tracker.posts)
	notice := f.tracker.posts[0].Notice
	assert.Equal(t, notice.Raw, notice.Diff, "transport consumes the diff, which must equal the raw text")
	assert.Contains(t, notice.Raw, timefmt.Duration(cfg.WarningInterval/2))
	assert.Contains(t, notice.Raw, timefmt.Duration(cfg.DisqualifyInterval/2))
	assert.Contains(t, notice.Raw, "pull request")

	records := f.store.state[testOwner+"/"+testRepo]
	require.Len(t, records, 1)
	assert.Equal(t, issue.Number, records[0].IssueNumber)
	assert.NotZero(t, records[0].CommentID)
}

func TestRunAssignmentOmitsPullRequestLineByDefault(t *testing.T) {
	f := newFixture(defaultConfig())
	issue := assignedIssue()

	_, err := f.svc.Run(context.Background(), assignmentTrigger(issue))
	require.NoError(t, err)

	require.NotEmpty(t, f.tracker.posts)
	assert.NotContains(t, f.tracker.posts[0].Notice.Raw, "pull request")
}

func TestRunAssignmentIdempotentUnderReplay(t *testing.T) {
	f := newFixture(defaultConfig())
	issue := assignedIssue()

	for range 2 {
		_, err := f.svc.Run(context.Background(), assignmentTrigger(issue))
		require.NoError(t, err)
	}

	records := f.store.state[testOwner+"/"+testRepo]
	assert.Len(t, records, 1, "replaying the same assignment must not duplicate the record")
}

func TestRunAssignmentSuppressedPostWritesNoRecord(t *testing.T) {
	f := newFixture(defaultConfig())
	f.tracker.suppressPost = true
	issue := assignedIssue()

	_, err := f.svc.Run(context.Background(), assignmentTrigger(issue))
	require.NoError(t, err)

	assert.Empty(t, f.store.state[testOwner+"/"+testRepo])
}

func TestRunNoPriceLabelSkipsEverywhere(t *testing.T) {
	f := newFixture(defaultConfig())
	issue := assignedIssue()
	issue.Labels = []string{"Priority: 2"}
	f.tracker.issues = []model.IssueSnapshot{issue}

	_, err := f.svc.Run(context.Background(), assignmentTrigger(issue))
	require.NoError(t, err)

	assert.Empty(t, f.tracker.posts, "no notice for an unpriced issue")
	assert.Empty(t, f.engine.dispatched, "scan loop must skip it too")
	assert.Empty(t, f.store.state)
	assert.Equal(t, 1, f.tracker.listCalls, "assignment branch falls through to scan")
}

func TestRunUnwatchedRepoSkipsAssignmentBranch(t *testing.T) {
	f := newFixture(defaultConfig())
	issue := assignedIssue()

	trig := assignmentTrigger(issue)
	trig.RepoID = 999

	_, err := f.svc.Run(context.Background(), trig)
	require.NoError(t, err)

	assert.Empty(t, f.tracker.posts)
	assert.Equal(t, 1, f.tracker.listCalls, "scan still runs for the invoking repo")
}

// --- Scan loop ---

func TestRunDispatchesAssignedEligibleIssues(t *testing.T) {
	f := newFixture(defaultConfig())
	a := assignedIssue()
	b := assignedIssue()
	b.Number = 43
	locked := assignedIssue()
	locked.Number = 44
	locked.Locked = true
	f.tracker.issues = []model.IssueSnapshot{a, b, locked}

	res, err := f.svc.Run(context.Background(), scheduleTrigger())
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{42, 43}, f.engine.dispatched)
	assert.Contains(t, res.Message, "2 issues dispatched")
}

func TestRunReportsPartialDispatchFailures(t *testing.T) {
	f := newFixture(defaultConfig())
	a := assignedIssue()
	b := assignedIssue()
	b.Number = 43
	f.tracker.issues = []model.IssueSnapshot{a, b}
	f.engine.failFor = map[int]error{43: errors.New("engine exploded")}

	res, err := f.svc.Run(context.Background(), scheduleTrigger())
	require.NoError(t, err, "one failed dispatch must not abort the invocation")

	assert.ElementsMatch(t, []int{42, 43}, f.engine.dispatched, "siblings still dispatch")
	assert.Contains(t, res.Message, "1 failed")
}

func TestRunPrunesRecordOfUnassignedIssue(t *testing.T) {
	f := newFixture(defaultConfig())
	issue := assignedIssue()
	issue.Assignees = nil
	f.tracker.issues = []model.IssueSnapshot{issue}
	f.store.state = model.TrackedState{
		testOwner + "/" + testRepo: {{CommentID: 9, IssueNumber: issue.Number}},
	}

	_, err := f.svc.Run(context.Background(), scheduleTrigger())
	require.NoError(t, err)

	assert.Empty(t, f.engine.dispatched, "unassigned issues are not dispatched")
	assert.NotContains(t, f.store.state, testOwner+"/"+testRepo, "record pruned and empty bucket removed")
}

// --- Cron reconciler ---

func TestRunEnablesCronWhileStateRemains(t *testing.T) {
	f := newFixture(defaultConfig())
	f.store.state = model.TrackedState{
		testOwner + "/" + testRepo: {{CommentID: 9, IssueNumber: 42}},
	}

	_, err := f.svc.Run(context.Background(), scheduleTrigger())
	require.NoError(t, err)

	require.Len(t, f.toggler.enables, 1)
	assert.Equal(t, toggleCall{testOwner, "automation", "watchdog-cron.yml"}, f.toggler.enables[0])
	assert.Empty(t, f.toggler.disables)
	assert.Len(t, f.store.state[testOwner+"/"+testRepo], 1, "non-empty bucket untouched by prune")
}

func TestRunDisablesCronWhenStateEmpties(t *testing.T) {
	f := newFixture(defaultConfig())
	f.store.state = model.TrackedState{
		testOwner + "/" + testRepo: {},
		"acme/other":               {},
	}

	_, err := f.svc.Run(context.Background(), scheduleTrigger())
	require.NoError(t, err)

	assert.Empty(t, f.store.state, "prune removes all empty buckets")
	assert.Empty(t, f.toggler.enables)
	assert.Len(t, f.toggler.disables, 1, "disable issued exactly once")
}

func TestRunMissingHostRepoSkipsToggleOnly(t *testing.T) {
	cfg := defaultConfig()
	cfg.HostOwner = ""
	cfg.HostRepo = ""
	f := newFixture(cfg)
	f.store.state = model.TrackedState{"acme/other": {}}

	_, err := f.svc.Run(context.Background(), scheduleTrigger())
	require.NoError(t, err)

	assert.Empty(t, f.store.state, "prune phase still runs")
	assert.Empty(t, f.toggler.enables)
	assert.Empty(t, f.toggler.disables)
}
