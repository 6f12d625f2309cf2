// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/assignwatch/assignwatch/internal/domain/model"
	"github.com/assignwatch/assignwatch/internal/domain/port/driven"
)

// ErrMissingOwner indicates a trigger payload without a repository owner.
// Scanning cannot proceed without one, so this propagates as a hard failure.
var ErrMissingOwner = errors.New("trigger payload has no repository owner")

// TriggerKind distinguishes the two external triggers the watchdog reacts to.
type TriggerKind int

const (
	// TriggerSchedule is a generic periodic invocation for one repository.
	TriggerSchedule TriggerKind = iota
	// TriggerAssignment is an "issue assigned" event.
	TriggerAssignment
)

// Trigger is one external invocation. Owner and Repo name the repository
// that raised it; Issue is present only on assignment triggers.
type Trigger struct {
	Kind   TriggerKind
	RepoID int64
	Owner  string
	Repo   string
	Issue  *model.IssueSnapshot
}

// Result is the watchdog's per-invocation outcome.
type Result struct {
	Message string
}

// runMode is the entry point's explicit state selection. The scan and
// reconcile tail always runs unless the watch list is empty.
type runMode int

const (
	runModeNoRepos runMode = iota
	runModeScanOnly
	runModeAssignmentAndScan
)

// WatchdogConfig carries the policy knobs of the watchdog service.
type WatchdogConfig struct {
	WarningInterval    time.Duration
	DisqualifyInterval time.Duration
	RequirePullRequest bool
	HostOwner          string // Empty pair disables the cron toggle phase.
	HostRepo           string
}

// Watchdog enforces the inactivity policy across the watched repositories:
// it posts assignment notices, keeps the reminder bookkeeping
// de-duplicated, dispatches tracked issues to the reminder engine, and
// keeps the scheduled workflow enabled only while tracked state exists.
type Watchdog struct {
	repos   driven.RepoSource
	tracker driven.IssueTracker
	toggler driven.WorkflowToggler
	store   driven.StateStore
	engine  driven.ReminderEngine
	cfg     WatchdogConfig
}

// NewWatchdog creates a Watchdog with all required dependencies.
func NewWatchdog(
	repos driven.RepoSource,
	tracker driven.IssueTracker,
	toggler driven.WorkflowToggler,
	store driven.StateStore,
	engine driven.ReminderEngine,
	cfg WatchdogConfig,
) *Watchdog {
	return &Watchdog{
		repos:   repos,
		tracker: tracker,
		toggler: toggler,
		store:   store,
		engine:  engine,
		cfg:     cfg,
	}
}

// Run handles one external trigger. An assignment trigger for an eligible
// issue in a watched repository posts the assignment notice first; every
// non-idle invocation then scans the invoking repository and reconciles the
// scheduled workflow, in that order.
func (s *Watchdog) Run(ctx context.Context, trig Trigger) (Result, error) {
	watched, err := s.repos.WatchedRepos(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loading watched repositories: %w", err)
	}

	mode := classify(trig, watched)
	if mode == runModeNoRepos {
		slog.Info("no watched repositories configured, nothing to do")
		return Result{Message: "no watched repositories configured"}, nil
	}

	if trig.Owner == "" {
		return Result{}, ErrMissingOwner
	}
	repoFullName := trig.Owner + "/" + trig.Repo

	if mode == runModeAssignmentAndScan {
		if err := s.postAssignmentNotice(ctx, repoFullName, *trig.Issue); err != nil {
			return Result{}, err
		}
	}

	outcomes, err := s.scanRepo(ctx, repoFullName)
	if err != nil {
		return Result{}, err
	}

	if err := s.reconcileCron(ctx); err != nil {
		return Result{}, err
	}

	var failed int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	return Result{
		Message: fmt.Sprintf("scanned %s: %d issues dispatched, %d failed", repoFullName, len(outcomes), failed),
	}, nil
}

// classify selects the entry point's run mode for a trigger.
func classify(trig Trigger, watched []model.WatchedRepo) runMode {
	if len(watched) == 0 {
		return runModeNoRepos
	}
	if trig.Kind != TriggerAssignment || trig.Issue == nil {
		return runModeScanOnly
	}
	for _, repo := range watched {
		if repo.ID == trig.RepoID {
			if checkEligibility(*trig.Issue).Any() {
				return runModeScanOnly
			}
			return runModeAssignmentAndScan
		}
	}
	return runModeScanOnly
}
