// Package metrics records API call statistics. Every call is kept in an in-process
// registry (served as JSON by the performance endpoint) and mirrored to Prometheus.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APICallDuration observes handler latency per endpoint name.
	APICallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oxo_api_call_duration_seconds",
		Help:    "Duration of OXO API calls",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"endpoint"})

	// HTTPRequests counts every request served by the HTTP server.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oxo_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "status"})

	// GamesFinished counts finished games by outcome ("win" or "draw").
	GamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oxo_games_finished_total",
		Help: "Total number of finished games",
	}, []string{"outcome"})

	// StateCacheLookups counts game state cache lookups by result ("hit" or "miss").
	StateCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oxo_state_cache_lookups_total",
		Help: "Game state cache lookups",
	}, []string{"result"})

	// EventsDropped counts events discarded because the event bus buffer was full.
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oxo_eventbus_dropped_total",
		Help: "Events dropped by the event bus",
	}, []string{"event"})
)

// RecordGameFinished increments the finished games counter.
func RecordGameFinished(drawn bool) {
	outcome := "win"
	if drawn {
		outcome = "draw"
	}
	GamesFinished.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup increments the state cache counter.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	StateCacheLookups.WithLabelValues(result).Inc()
}

// CallStat summarizes the calls made to one endpoint.
type CallStat struct {
	CallCount   int64   `json:"callCount"`
	TotalTimeMs int64   `json:"totalTimeMs"`
	MinTimeMs   int64   `json:"minTimeMs"`
	MaxTimeMs   int64   `json:"maxTimeMs"`
	AvgTimeMs   float64 `json:"avgTimeMs"`
}

type callStat struct {
	mu    sync.Mutex
	count int64
	total int64
	min   int64
	max   int64
}

func (s *callStat) record(ms int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	s.total += ms
	s.min = min(s.min, ms)
	s.max = max(s.max, ms)
}

func (s *callStat) snapshot() CallStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := CallStat{CallCount: s.count, TotalTimeMs: s.total, MaxTimeMs: s.max}
	if s.min != math.MaxInt64 {
		out.MinTimeMs = s.min
	}
	if s.count > 0 {
		out.AvgTimeMs = float64(s.total) / float64(s.count)
	}
	return out
}

// Snapshot is the performance document.
type Snapshot struct {
	UptimeMs int64               `json:"uptime"`
	APICalls map[string]CallStat `json:"apiCalls"`
}

// Registry keeps per-endpoint call statistics since start.
type Registry struct {
	mu      sync.RWMutex
	start   time.Time
	entries map[string]*callStat
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		start:   time.Now(),
		entries: make(map[string]*callStat),
		now:     time.Now,
	}
}

// Record adds one call of the given duration to endpoint.
func (r *Registry) Record(endpoint string, d time.Duration) {
	APICallDuration.WithLabelValues(endpoint).Observe(d.Seconds())

	r.mu.RLock()
	s, ok := r.entries[endpoint]
	r.mu.RUnlock()
	if !ok {
		r.mu.Lock()
		if s, ok = r.entries[endpoint]; !ok {
			s = &callStat{min: math.MaxInt64}
			r.entries[endpoint] = s
		}
		r.mu.Unlock()
	}
	s.record(d.Milliseconds())
}

// Track returns a func that records the time elapsed since Track was called.
//
//	defer reg.Track("getGameState")()
func (r *Registry) Track(endpoint string) func() {
	start := r.now()
	return func() { r.Record(endpoint, r.now().Sub(start)) }
}

// Snapshot returns uptime and a copy of every endpoint's statistics.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := Snapshot{
		UptimeMs: r.now().Sub(r.start).Milliseconds(),
		APICalls: make(map[string]CallStat, len(r.entries)),
	}
	for name, s := range r.entries {
		out.APICalls[name] = s.snapshot()
	}
	return out
}

// Endpoints returns the recorded endpoint names in sorted order.
func (r *Registry) Endpoints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
