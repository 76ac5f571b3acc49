package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RecordAndSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Record("makeMove", 10*time.Millisecond)
	r.Record("makeMove", 30*time.Millisecond)
	r.Record("getGameState", 2*time.Millisecond)

	snap := r.Snapshot()
	require.Len(t, snap.APICalls, 2)

	move := snap.APICalls["makeMove"]
	assert.Equal(t, int64(2), move.CallCount)
	assert.Equal(t, int64(40), move.TotalTimeMs)
	assert.Equal(t, int64(10), move.MinTimeMs)
	assert.Equal(t, int64(30), move.MaxTimeMs)
	assert.InDelta(t, 20.0, move.AvgTimeMs, 0.0001)

	assert.Equal(t, []string{"getGameState", "makeMove"}, r.Endpoints())
}

func TestRegistry_EmptySnapshot(t *testing.T) {
	r := NewRegistry()
	snap := r.Snapshot()
	assert.Empty(t, snap.APICalls)
	assert.GreaterOrEqual(t, snap.UptimeMs, int64(0))
}

func TestRegistry_Track(t *testing.T) {
	r := NewRegistry()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	done := r.Track("reset")
	now = now.Add(25 * time.Millisecond)
	done()

	stat := r.Snapshot().APICalls["reset"]
	assert.Equal(t, int64(1), stat.CallCount)
	assert.Equal(t, int64(25), stat.MinTimeMs)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Record("state", time.Millisecond)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), r.Snapshot().APICalls["state"].CallCount)
}

func TestMetricsEndpoint(t *testing.T) {
	NewRegistry().Record("init", time.Millisecond)
	RecordGameFinished(false)
	RecordGameFinished(true)
	RecordCacheLookup(true)
	HTTPRequests.WithLabelValues("GET", "200").Inc()

	server := httptest.NewServer(promhttp.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	for _, name := range []string{
		"oxo_api_call_duration_seconds",
		"oxo_http_requests_total",
		"oxo_games_finished_total",
		"oxo_state_cache_lookups_total",
	} {
		assert.Contains(t, string(body), name)
	}
}
