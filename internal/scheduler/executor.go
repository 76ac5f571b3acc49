package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// executeJob runs a single job with a timeout and reports the outcome.
func (s *Scheduler) executeJob(name string) {
	fn, ok := s.funcs[name]
	if !ok {
		s.logger.Error("unknown job", "job", name)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	payload := map[string]string{
		"job":         name,
		"duration_ms": strconv.FormatInt(elapsed.Milliseconds(), 10),
	}
	if err != nil {
		s.logger.Error("job failed", "job", name, "duration", elapsed, "error", err)
		payload["error"] = err.Error()
		s.publish(EventJobFailed, payload)
		return
	}
	s.logger.Debug("job finished", "job", name, "duration", elapsed)
	s.publish(EventJobFinished, payload)
}

// reportStats writes the API call statistics and cache usage to the system log.
func (s *Scheduler) reportStats(_ context.Context) error {
	snap := s.cfg.Stats.Snapshot()

	var calls int64
	for _, name := range s.cfg.Stats.Endpoints() {
		st := snap.APICalls[name]
		calls += st.CallCount
		s.logger.Info("api call statistics",
			"endpoint", name,
			"calls", st.CallCount,
			"avg_ms", st.AvgTimeMs,
			"max_ms", st.MaxTimeMs,
		)
	}

	attrs := []any{"uptime_ms", snap.UptimeMs, "endpoints", len(snap.APICalls), "calls", calls}
	if s.cfg.Game != nil {
		cs := s.cfg.Game.CacheStats()
		attrs = append(attrs, "cache_hits", cs.Hits, "cache_misses", cs.Misses, "cache_hit_rate", cs.HitRate)
	}
	s.logger.Info("statistics report", attrs...)
	return nil
}

// pruneMatches deletes match records beyond the retention limit.
func (s *Scheduler) pruneMatches(ctx context.Context) error {
	removed, err := s.cfg.Matches.Prune(ctx, s.cfg.Retention)
	if err != nil {
		return fmt.Errorf("pruning matches: %w", err)
	}
	if removed > 0 {
		s.logger.Info("pruned match records", "removed", removed, "kept", s.cfg.Retention)
	}
	return nil
}

func (s *Scheduler) publish(eventType string, payload map[string]string) {
	if s.cfg.EventPublisher == nil {
		return
	}
	s.cfg.EventPublisher.Publish(eventType, payload)
}
