package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/oxo/internal/api"
	"github.com/shaharia-lab/oxo/internal/benchmark"
	"github.com/shaharia-lab/oxo/internal/build"
	"github.com/shaharia-lab/oxo/internal/config"
	"github.com/shaharia-lab/oxo/internal/eventbus"
	"github.com/shaharia-lab/oxo/internal/logger"
	"github.com/shaharia-lab/oxo/internal/metrics"
	"github.com/shaharia-lab/oxo/internal/scheduler"
	"github.com/shaharia-lab/oxo/internal/server"
	"github.com/shaharia-lab/oxo/internal/service"
	"github.com/shaharia-lab/oxo/internal/storage"
	"github.com/shaharia-lab/oxo/internal/telemetry"
)

// NewServeCmd returns the "serve" subcommand that starts the game API server.
func NewServeCmd(cfg *config.AppConfig) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the OXO game API server",
		Long: `Start the game API server. Routes are mounted under /api/oxo, which is where
the dev server proxy forwards /api requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				cfg.APIPort = port
			}

			logFile := filepath.Join(cfg.LogDir(), "system.log")
			printBanner(cmd.OutOrStdout(), fmt.Sprintf("OXO %s game API running.", build.Version), []bannerLine{
				{"URL", fmt.Sprintf("http://localhost:%d%s", cfg.APIPort, server.APIPrefix)},
				{"Data", cfg.DBPath()},
				{"Logs", logFile},
			})

			if err := runServe(cfg); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "An error occurred: %v\nPlease check the logs at: %s\n", err, logFile)
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", cfg.APIPort, "API server port (overrides OXO_API_PORT env var)")
	return cmd
}

func runServe(cfg *config.AppConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, dir := range []string{cfg.DataDir, cfg.LogDir()} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	sysLogger, logCloser, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logCloser.Close() //nolint:errcheck

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    "oxo-api",
		ServiceVersion: build.Version,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer flushTracing(shutdownTracing, sysLogger)

	sysLogger.Info("oxo api starting", append([]any{
		slog.Int("port", cfg.APIPort),
		slog.String("data_dir", cfg.DataDir),
		slog.Bool("state_cache", cfg.StateCache),
	}, build.LogAttrs()...)...)

	db, fresh, err := storage.NewSQLiteDB(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if fresh {
		sysLogger.Info("created match database", "path", cfg.DBPath())
	}

	bus := eventbus.New(0, sysLogger)
	defer bus.Close()

	matchSvc := service.NewMatchService(storage.NewSQLiteMatchStore(db), sysLogger)
	bus.Subscribe(eventbus.Only(service.MatchRecorder(matchSvc, sysLogger), eventbus.GameFinished))

	gameSvc := service.NewGameService(service.GameOptions{
		CacheState:    cfg.StateCache,
		RecordMetrics: true,
		Publisher:     bus,
		Logger:        sysLogger,
	})

	demo, err := benchmark.NewRunner(benchmark.DefaultConfig(), sysLogger)
	if err != nil {
		return fmt.Errorf("configuring demonstration: %w", err)
	}

	stats := metrics.NewRegistry()
	apiSrv := api.New(gameSvc, matchSvc, stats, demo, sysLogger)

	sched, err := scheduler.New(scheduler.Config{
		Stats:          stats,
		Game:           gameSvc,
		Matches:        matchSvc,
		Interval:       cfg.StatsInterval,
		Retention:      cfg.MatchRetention,
		Logger:         sysLogger,
		EventPublisher: bus,
	})
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			sysLogger.Warn("stopping scheduler", "error", err)
		}
	}()

	srv, err := server.New(server.Options{
		Port:        cfg.APIPort,
		API:         apiSrv,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      sysLogger,
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}
