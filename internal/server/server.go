// Package server assembles the HTTP server shared by the web and serve commands.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaharia-lab/oxo/internal/api"
	"github.com/shaharia-lab/oxo/internal/devproxy"
	"github.com/shaharia-lab/oxo/internal/metrics"
	"github.com/shaharia-lab/oxo/internal/ui"
)

// APIPrefix is where the game API is mounted.
const APIPrefix = "/api/oxo"

// Options configures a Server. Every component is optional.
type Options struct {
	Port int

	// API is mounted at APIPrefix.
	API *api.Server

	// ProxyTable is applied ahead of routing; matching requests are forwarded.
	ProxyTable devproxy.Table

	// CORSOrigins enables CORS for the listed origins.
	CORSOrigins []string

	// FrontendFS holds the built SPA assets. When nil and ViteURL is set, non-API
	// requests are proxied to the Vite dev server instead.
	FrontendFS fs.FS
	ViteURL    string
	Shell      ui.Shell

	Logger *slog.Logger
}

// Server is the HTTP server for the OXO dev server and game API.
type Server struct {
	logger     *slog.Logger
	handler    http.Handler
	httpServer *http.Server
}

// New creates a new Server.
func New(opts Options) (*Server, error) {
	s := &Server{logger: opts.Logger}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(requestMetrics)

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if len(opts.ProxyTable) > 0 {
		proxy, err := devproxy.Middleware(opts.ProxyTable, s.logger)
		if err != nil {
			return nil, fmt.Errorf("building dev proxy: %w", err)
		}
		r.Use(proxy)
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	if opts.API != nil {
		r.Route(APIPrefix, func(r chi.Router) {
			opts.API.Mount(r)
		})
	}

	// Static files + shell fallback, or the Vite dev server
	spa, err := s.spaHandler(opts)
	if err != nil {
		return nil, err
	}
	if spa != nil {
		r.Handle("/*", spa)
	}

	s.handler = otelhttp.NewHandler(r, "oxo",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }),
	)
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the HTTP server and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}
	s.logger.Info("server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// requestLogger is a chi middleware that logs each incoming request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		attrs := []any{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		}
		if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
			attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
		}
		s.logger.Info("http request", attrs...)
	})
}

func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
	})
}

// spaHandler serves the embedded SPA, or proxies to the Vite dev server when no
// assets are embedded. It returns nil when neither is configured.
func (s *Server) spaHandler(opts Options) (http.Handler, error) {
	if opts.FrontendFS != nil {
		return ui.NewHandler(opts.FrontendFS, opts.Shell, s.logger), nil
	}
	if opts.ViteURL == "" {
		return nil, nil
	}
	h, err := ui.NewDevServerProxy(opts.ViteURL, s.logger)
	if err != nil {
		return nil, fmt.Errorf("building vite proxy: %w", err)
	}
	return h, nil
}
