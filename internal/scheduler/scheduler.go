// Package scheduler runs periodic maintenance jobs: a statistics report written to
// the system log and pruning of old match records.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/shaharia-lab/oxo/internal/metrics"
	"github.com/shaharia-lab/oxo/internal/service"
)

// EventPublisher allows the scheduler to emit events without depending on a
// concrete event bus implementation.
type EventPublisher interface {
	Publish(eventType string, payload map[string]string)
}

// Event type constants for job lifecycle notifications.
const (
	EventJobFinished = "scheduler.job.finished"
	EventJobFailed   = "scheduler.job.failed"
)

// Job names.
const (
	JobStatsReport = "stats-report"
	JobMatchPrune  = "match-prune"
)

// Config holds the scheduler configuration.
type Config struct {
	// Stats is reported by the stats job. Required.
	Stats *metrics.Registry
	// Game adds cache statistics to the report. Optional.
	Game service.GameService
	// Matches enables the prune job. Optional.
	Matches service.MatchService
	// Interval between runs of every job. Defaults to 5m.
	Interval time.Duration
	// Retention is the number of newest matches kept by pruning.
	Retention int
	// JobTimeout bounds a single job run. Defaults to 30s.
	JobTimeout time.Duration
	Logger     *slog.Logger
	// EventPublisher is optional. When set, job lifecycle events are published.
	EventPublisher EventPublisher
}

// Scheduler manages the maintenance jobs using gocron.
type Scheduler struct {
	cron   gocron.Scheduler
	cfg    Config
	jobs   map[string]uuid.UUID // job name → gocron job UUID
	funcs  map[string]func(context.Context) error
	mu     sync.Mutex
	logger *slog.Logger
}

// New creates a new Scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Stats == nil {
		return nil, fmt.Errorf("scheduler requires a stats registry")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}

	s := &Scheduler{
		cron:   cron,
		cfg:    cfg,
		jobs:   make(map[string]uuid.UUID),
		funcs:  make(map[string]func(context.Context) error),
		logger: cfg.Logger,
	}
	s.funcs[JobStatsReport] = s.reportStats
	if cfg.Matches != nil {
		s.funcs[JobMatchPrune] = s.pruneMatches
	}
	return s, nil
}

// Start schedules every job and starts the gocron scheduler.
func (s *Scheduler) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range s.jobNamesLocked() {
		jobName := name
		job, err := s.cron.NewJob(
			gocron.DurationJob(s.cfg.Interval),
			gocron.NewTask(func() { s.executeJob(jobName) }),
			gocron.WithName(jobName),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("scheduling job %q: %w", jobName, err)
		}
		s.jobs[jobName] = job.ID()
	}

	s.cron.Start()
	s.logger.Info("maintenance scheduler started", "jobs", len(s.jobs), "interval", s.cfg.Interval)
	return nil
}

// Stop shuts down the gocron scheduler.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// JobNames returns the configured job names in sorted order.
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobNamesLocked()
}

func (s *Scheduler) jobNamesLocked() []string {
	names := make([]string, 0, len(s.funcs))
	for name := range s.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
