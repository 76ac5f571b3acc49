package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/oxo/internal/build"
	"github.com/shaharia-lab/oxo/internal/config"
	"github.com/shaharia-lab/oxo/internal/devproxy"
	"github.com/shaharia-lab/oxo/internal/logger"
	"github.com/shaharia-lab/oxo/internal/server"
	"github.com/shaharia-lab/oxo/internal/telemetry"
	"github.com/shaharia-lab/oxo/internal/ui"
)

// NewWebCmd returns the "web" subcommand that starts the dev server.
func NewWebCmd(cfg *config.AppConfig) *cobra.Command {
	var (
		port       int
		mode       string
		apiBaseURL string
		theme      string
		noBrowser  bool
	)

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Start the OXO dev server",
		Long: `Start the dev server which serves the OXO single-page app. In development
mode requests under /api are forwarded to VITE_API_BASE_URL with the path
rewritten to /api/oxo. Open http://localhost:<port> in your browser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("mode") {
				cfg.Mode = mode
			}
			if cmd.Flags().Changed("api-base-url") {
				cfg.APIBaseURL = apiBaseURL
			}
			if cmd.Flags().Changed("theme") {
				cfg.Theme = theme
			}

			table := devproxy.TableFor(devproxy.Configure(cfg.ProxyMode(), cfg.ProxyOptions()))

			serverURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
			logFile := filepath.Join(cfg.LogDir(), "system.log")
			printBanner(cmd.OutOrStdout(), fmt.Sprintf("OXO %s dev server running.", build.Version), []bannerLine{
				{"URL", serverURL},
				{"Mode", cfg.Mode},
				{"Proxy", proxySummary(table)},
				{"Logs", logFile},
			})

			if err := runWeb(cfg, table, noBrowser); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "An error occurred: %v\nPlease check the logs at: %s\n", err, logFile)
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", cfg.Port, "HTTP server port (overrides PORT env var)")
	cmd.Flags().StringVar(&mode, "mode", cfg.Mode, "Build mode: development or production (overrides OXO_MODE env var)")
	cmd.Flags().StringVar(&apiBaseURL, "api-base-url", cfg.APIBaseURL, "Proxy target for /api (overrides VITE_API_BASE_URL env var)")
	cmd.Flags().StringVar(&theme, "theme", cfg.Theme, "Stylesheet theme (overrides OXO_THEME env var)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not automatically open the browser on startup")

	return cmd
}

func runWeb(cfg *config.AppConfig, table devproxy.Table, noBrowser bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(cfg.LogDir(), 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", cfg.LogDir(), err)
	}

	sysLogger, logCloser, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logCloser.Close() //nolint:errcheck

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    "oxo-web",
		ServiceVersion: build.Version,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer flushTracing(shutdownTracing, sysLogger)

	sysLogger.Info("oxo web starting", append([]any{
		slog.Int("port", cfg.Port),
		slog.String("mode", cfg.Mode),
		slog.Int("proxy_rules", len(table)),
	}, build.LogAttrs()...)...)

	srv, err := server.New(server.Options{
		Port:       cfg.Port,
		ProxyTable: table,
		FrontendFS: WebFS,
		ViteURL:    cfg.ViteURL,
		Shell:      ui.Shell{Title: ui.DefaultShell().Title, Theme: cfg.Theme},
		Logger:     sysLogger,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	sysLogger.Info("server ready", "url", url)

	if !noBrowser {
		go openBrowser(url)
	}

	return srv.Run(ctx)
}

func proxySummary(table devproxy.Table) string {
	rule, ok := table[devproxy.PathPrefix]
	if !ok {
		return "disabled"
	}
	return fmt.Sprintf("%s -> %s%s", rule.PathPrefix, rule.Target, rule.Rewrite(rule.PathPrefix))
}

func flushTracing(shutdown telemetry.ShutdownFunc, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn("flushing traces failed", "error", err)
	}
}

func openBrowser(url string) {
	time.Sleep(600 * time.Millisecond)
	ctx := context.Background()
	var c *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		c = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		c = exec.CommandContext(ctx, "open", url)
	default:
		c = exec.CommandContext(ctx, "xdg-open", url)
	}
	_ = c.Start()
}
