package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/store"
)

// StatsService owns the usage counters and the recent-activity feed.
type StatsService struct {
	docs   *store.Documents
	clock  Clock
	logger *slog.Logger

	// onUpdate, when set, receives the fresh counters after every recorded
	// usage so the presentation layer can refresh its numbers. Runs outside
	// the store lock.
	onUpdate func(model.UsageStats)
}

// NewStatsService creates a StatsService.
func NewStatsService(docs *store.Documents, clock Clock, logger *slog.Logger) *StatsService {
	return &StatsService{
		docs:   docs,
		clock:  clock,
		logger: logger,
	}
}

// SetOnUpdate registers the stats-refresh callback. Call during wiring.
func (s *StatsService) SetOnUpdate(fn func(model.UsageStats)) {
	s.onUpdate = fn
}

// RecordUsage increments the counter for the feature, recomputes the derived
// total-user count from the directory, persists, and — when an actor is
// known — appends a "used <feature> feature" activity entry.
//
// RecordUsage does not gate on the feature flag; callers consult IsEnabled
// before doing the work whose success they are recording.
func (s *StatsService) RecordUsage(ctx context.Context, actor *model.User, f model.Feature) (model.UsageStats, error) {
	stats, err := s.recordUsage(ctx, actor, f)
	if err != nil {
		return model.UsageStats{}, err
	}
	if s.onUpdate != nil {
		s.onUpdate(stats)
	}
	return stats, nil
}

func (s *StatsService) recordUsage(ctx context.Context, actor *model.User, f model.Feature) (model.UsageStats, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	stats, err := s.docs.Stats(ctx)
	if err != nil {
		return model.UsageStats{}, fmt.Errorf("service/stats: recording %s usage: %w", f, err)
	}

	stats.Record(f)

	users, _, err := s.docs.Users(ctx)
	if err != nil {
		return model.UsageStats{}, fmt.Errorf("service/stats: recording %s usage: %w", f, err)
	}
	stats.TotalUsers = int64(len(users))

	if err := s.docs.SaveStats(ctx, stats); err != nil {
		return model.UsageStats{}, fmt.Errorf("service/stats: recording %s usage: %w", f, err)
	}

	if actor != nil {
		if err := appendActivity(ctx, s.docs, s.clock.Now(), actor.DisplayName(), fmt.Sprintf("used %s feature", f)); err != nil {
			return model.UsageStats{}, fmt.Errorf("service/stats: recording %s usage: %w", f, err)
		}
	}

	s.logger.Debug("usage recorded", slog.String("feature", string(f)))

	return stats, nil
}

// Snapshot returns the current counters with TotalUsers freshly derived from
// the directory size. The recomputed value is persisted, so stats are saved
// on every dashboard refresh.
func (s *StatsService) Snapshot(ctx context.Context) (model.UsageStats, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	stats, err := s.docs.Stats(ctx)
	if err != nil {
		return model.UsageStats{}, fmt.Errorf("service/stats: %w", err)
	}

	users, _, err := s.docs.Users(ctx)
	if err != nil {
		return model.UsageStats{}, fmt.Errorf("service/stats: %w", err)
	}
	stats.TotalUsers = int64(len(users))

	if err := s.docs.SaveStats(ctx, stats); err != nil {
		return model.UsageStats{}, fmt.Errorf("service/stats: %w", err)
	}

	return stats, nil
}

// AppendActivity records an arbitrary actor/action pair in the feed.
func (s *StatsService) AppendActivity(ctx context.Context, actor, action string) error {
	s.docs.Lock()
	defer s.docs.Unlock()

	if err := appendActivity(ctx, s.docs, s.clock.Now(), actor, action); err != nil {
		return fmt.Errorf("service/stats: appending activity: %w", err)
	}
	return nil
}

// RecentActivity returns the most recent n entries, newest first. n <= 0 or
// n larger than the feed returns everything.
func (s *StatsService) RecentActivity(ctx context.Context, n int) ([]model.ActivityEntry, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	entries, err := s.docs.Activities(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/stats: reading activity: %w", err)
	}

	// Stored oldest-first; reverse into display order.
	out := make([]model.ActivityEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}
