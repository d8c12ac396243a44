package core

// scheduler.go runs profile retention in the background.
//
// The pruner deletes sniff profiles older than the retention window. It is
// long-running and context-aware for graceful shutdown; a failed run is
// logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig holds configuration for the profile pruner.
type RetentionConfig struct {
	ProfileDays   int           // Days to keep profiles (default: 30)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.ProfileDays <= 0 {
		c.ProfileDays = 30
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartProfilePruner prunes once immediately, then every CheckInterval,
// until ctx is cancelled. It returns at once when no database is set.
func (s *Service) StartProfilePruner(ctx context.Context, cfg RetentionConfig) {
	if s.db == nil {
		return
	}
	cfg = cfg.withDefaults()
	slog.Info("profile pruner started",
		"profile_days", cfg.ProfileDays,
		"interval", cfg.CheckInterval.String(),
	)

	s.runPruneJob(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("profile pruner stopped")
			return
		case <-ticker.C:
			s.runPruneJob(ctx, cfg)
		}
	}
}

func (s *Service) runPruneJob(ctx context.Context, cfg RetentionConfig) {
	start := time.Now()
	pruned, err := s.PruneProfiles(ctx, time.Duration(cfg.ProfileDays)*24*time.Hour)
	if err != nil {
		slog.Error("profile prune failed", "error", err)
		return
	}
	slog.Info("pruned old profiles",
		"profiles_pruned", pruned,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
