// Package benchmark runs the performance demonstration served by the API: the scan and
// directional win checkers compared on a crowded large board, and the game service with
// and without its state cache under a read-heavy workload.
package benchmark

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/shaharia-lab/oxo/internal/game"
	"github.com/shaharia-lab/oxo/internal/service"
)

var tracer = otel.Tracer("github.com/shaharia-lab/oxo/internal/benchmark")

// Config sizes both benchmarks.
type Config struct {
	BoardSize       int
	WinThreshold    int
	Samples         int
	Warmup          int
	ReadIterations  int
	WriteOperations int
	CacheBoardSize  int
}

// DefaultConfig returns the sizes used by the demonstration endpoint.
func DefaultConfig() Config {
	return Config{
		BoardSize:       19,
		WinThreshold:    5,
		Samples:         1000,
		Warmup:          1000,
		ReadIterations:  1000,
		WriteOperations: 10,
		CacheBoardSize:  5,
	}
}

// AlgorithmResult compares average win check time per call. The JSON names are the ones
// the frontend renders: "original" is the scan checker, "optimized" the directional one.
type AlgorithmResult struct {
	BoardSize          string  `json:"boardSize"`
	Samples            int     `json:"samples"`
	ScanTimeNs         int64   `json:"originalTimeNs"`
	DirectionalTimeNs  int64   `json:"optimizedTimeNs"`
	ImprovementPercent float64 `json:"improvementPercent"`
}

// CacheResult compares total state read time with and without the state cache.
type CacheResult struct {
	ReadIterations     int                `json:"readIterations"`
	WriteOperations    int                `json:"writeOperations"`
	NoCacheTimeNs      int64              `json:"noCacheTimeNs"`
	WithCacheTimeNs    int64              `json:"withCacheTimeNs"`
	ImprovementPercent float64            `json:"improvementPercent"`
	CacheStats         service.CacheStats `json:"cacheStats"`
}

// Results is the demonstration document.
type Results struct {
	Algorithm AlgorithmResult `json:"algorithmBenchmark"`
	Cache     CacheResult     `json:"cacheBenchmark"`
}

// Runner executes the demonstration.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// NewRunner validates cfg and returns a Runner.
func NewRunner(cfg Config, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case cfg.BoardSize < game.MinBoardSize || cfg.BoardSize > game.MaxBoardSize:
		return nil, fmt.Errorf("board size %d out of range [%d, %d]", cfg.BoardSize, game.MinBoardSize, game.MaxBoardSize)
	case cfg.CacheBoardSize < game.MinBoardSize || cfg.CacheBoardSize > 9:
		return nil, fmt.Errorf("cache board size %d out of range [%d, 9]", cfg.CacheBoardSize, game.MinBoardSize)
	case cfg.Samples <= 0:
		return nil, fmt.Errorf("samples must be positive, got %d", cfg.Samples)
	case cfg.WriteOperations <= 0 || cfg.ReadIterations < cfg.WriteOperations:
		return nil, fmt.Errorf("need 0 < writes (%d) <= reads (%d)", cfg.WriteOperations, cfg.ReadIterations)
	}
	return &Runner{cfg: cfg, logger: logger}, nil
}

// Run executes the algorithm benchmark followed by the cache benchmark.
func (r *Runner) Run(ctx context.Context) (*Results, error) {
	ctx, span := tracer.Start(ctx, "benchmark.Run")
	defer span.End()

	start := time.Now()
	r.logger.Info("running performance demonstration", "board_size", r.cfg.BoardSize, "samples", r.cfg.Samples)

	_, algoSpan := tracer.Start(ctx, "benchmark.algorithm")
	algo := r.runAlgorithm()
	algoSpan.SetAttributes(attribute.Float64("improvement_percent", algo.ImprovementPercent))
	algoSpan.End()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("algorithm benchmark: %w", err)
	}

	cacheCtx, cacheSpan := tracer.Start(ctx, "benchmark.cache")
	cache := r.runCache(cacheCtx)
	cacheSpan.SetAttributes(attribute.Float64("improvement_percent", cache.ImprovementPercent))
	cacheSpan.End()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cache benchmark: %w", err)
	}

	r.logger.Info("performance demonstration completed",
		"algorithm_improvement", algo.ImprovementPercent,
		"cache_improvement", cache.ImprovementPercent,
		"duration", time.Since(start),
	)
	return &Results{Algorithm: algo, Cache: cache}, nil
}

func (r *Runner) runAlgorithm() AlgorithmResult {
	scan := r.timeChecker(game.ScanChecker{})
	directional := r.timeChecker(game.DirectionalChecker{})
	return AlgorithmResult{
		BoardSize:          fmt.Sprintf("%dx%d", r.cfg.BoardSize, r.cfg.BoardSize),
		Samples:            r.cfg.Samples,
		ScanTimeNs:         scan,
		DirectionalTimeNs:  directional,
		ImprovementPercent: improvement(scan, directional),
	}
}

// timeChecker returns the average nanoseconds per CheckWinner call.
func (r *Runner) timeChecker(checker game.WinChecker) int64 {
	size := r.cfg.BoardSize
	g := game.New(size, size, r.cfg.WinThreshold, checker)
	fillPattern(g)

	center := size / 2
	for i := 0; i < r.cfg.Warmup; i++ {
		g.CheckWinner(center, center)
	}

	var total time.Duration
	for i := 0; i < r.cfg.Samples; i++ {
		row := (center + i%5) % size
		col := (center + i%7) % size
		start := time.Now()
		g.CheckWinner(row, col)
		total += time.Since(start)
	}
	return total.Nanoseconds() / int64(r.cfg.Samples)
}

// fillPattern places the first two players on an 8x8 block offset by (5, 5), forming
// many short near-winning lines.
func fillPattern(g *game.Game) {
	players := g.Players()
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			row, col := i+5, j+5
			if row >= g.Rows() || col >= g.Cols() {
				continue
			}
			switch {
			case (i+j)%3 == 0:
				g.SetCell(row, col, players[0])
			case (i+j)%5 == 0:
				g.SetCell(row, col, players[1])
			}
		}
	}
}

func (r *Runner) runCache(ctx context.Context) CacheResult {
	uncached := service.NewGameService(service.GameOptions{Logger: r.logger})
	cached := service.NewGameService(service.GameOptions{CacheState: true, Logger: r.logger})

	noCache := r.timeReads(ctx, uncached)
	withCache := r.timeReads(ctx, cached)

	return CacheResult{
		ReadIterations:     r.cfg.ReadIterations,
		WriteOperations:    r.cfg.WriteOperations,
		NoCacheTimeNs:      noCache,
		WithCacheTimeNs:    withCache,
		ImprovementPercent: improvement(noCache, withCache),
		CacheStats:         cached.CacheStats(),
	}
}

// timeReads interleaves writes with bursts of state reads and returns the total read time.
func (r *Runner) timeReads(ctx context.Context, svc service.GameService) int64 {
	size := r.cfg.CacheBoardSize
	svc.SetBoardSize(ctx, size, size)

	readsPerWrite := r.cfg.ReadIterations / r.cfg.WriteOperations
	var total time.Duration
	for w := 0; w < r.cfg.WriteOperations; w++ {
		command := fmt.Sprintf("%c%d", 'a'+w%size, w%size+1)
		// Rejected moves (taken cells, finished game) still invalidate the cache.
		_, _ = svc.Move(ctx, command)

		for i := 0; i < readsPerWrite; i++ {
			start := time.Now()
			svc.State(ctx)
			total += time.Since(start)
		}
	}
	return total.Nanoseconds()
}

func improvement(before, after int64) float64 {
	if before <= 0 || after <= 0 {
		return 0
	}
	return 100 * float64(before-after) / float64(before)
}
