package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/assignwatch/assignwatch/internal/domain/model"
)

// cronWorkflowFile is the scheduled workflow definition toggled by the
// reconciler. Enable/disable are idempotent at the GitHub end.
const cronWorkflowFile = "watchdog-cron.yml"

// reconcileCron runs the two reconciliation phases: prune empty buckets
// from the persisted state, then enable the scheduled workflow when any
// tracked state remains and disable it when none does. A missing host
// repository configuration skips the toggle phase but never the prune.
func (s *Watchdog) reconcileCron(ctx context.Context) error {
	if err := s.store.Update(ctx, func(state model.TrackedState) model.TrackedState {
		for key, bucket := range state {
			if len(bucket) == 0 {
				delete(state, key)
			}
		}
		return state
	}); err != nil {
		return fmt.Errorf("pruning reminder state: %w", err)
	}

	if s.cfg.HostOwner == "" || s.cfg.HostRepo == "" {
		slog.Error("host repository not configured, skipping cron workflow toggle")
		return nil
	}

	state, err := s.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("reading reminder state: %w", err)
	}

	if len(state) > 0 {
		if err := s.toggler.EnableWorkflow(ctx, s.cfg.HostOwner, s.cfg.HostRepo, cronWorkflowFile); err != nil {
			return fmt.Errorf("enabling cron workflow: %w", err)
		}
		slog.Info("cron workflow enabled", "buckets", len(state))
		return nil
	}

	if err := s.toggler.DisableWorkflow(ctx, s.cfg.HostOwner, s.cfg.HostRepo, cronWorkflowFile); err != nil {
		return fmt.Errorf("disabling cron workflow: %w", err)
	}
	slog.Info("cron workflow disabled, no tracked state remains")
	return nil
}
