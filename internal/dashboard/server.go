// Package dashboard serves the web dashboard, the snapshot API and /metrics.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"MayerSentinel/internal/metrics"
	"MayerSentinel/internal/notifier"
	"MayerSentinel/internal/pipeline"
	"MayerSentinel/internal/state"
)

//go:embed templates/index.html
var templateFS embed.FS

// Runner produces one pipeline snapshot per request.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Snapshot, error)
}

// Options controls page rendering.
type Options struct {
	Symbol      string
	MetricsDays int
	Refresh     time.Duration
}

// Asset is the display name of the configured ticker.
func (o Options) Asset() string { return notifier.AssetName(o.Symbol) }

// Server renders the dashboard. Every page load runs the full pipeline.
type Server struct {
	runner Runner
	flags  state.Store
	opts   Options
	tmpl   *template.Template
	log    zerolog.Logger
}

// NewServer parses the embedded template.
func NewServer(runner Runner, flags state.Store, opts Options, log zerolog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if opts.MetricsDays <= 0 {
		opts.MetricsDays = 1
	}
	if opts.Refresh <= 0 {
		opts.Refresh = time.Hour
	}
	return &Server{runner: runner, flags: flags, opts: opts, tmpl: tmpl, log: log}, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /notify", s.handleNotify)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("dashboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("dashboard shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap, runErr := s.runner.Run(r.Context())
	page := newPage(snap, s.opts)
	if runErr != nil {
		s.log.Warn().Err(runErr).Msg("dashboard run failed")
		page.OK = false
		page.Message = runErr.Error()
	}

	enabled, err := s.flags.Get(state.KeySendTelegram)
	if err != nil {
		s.log.Error().Err(err).Msg("read notification flag")
		page.FlagError = err.Error()
	}
	page.NotifyEnabled = enabled

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, page); err != nil {
		s.log.Error().Err(err).Msg("render dashboard")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	enabled := false
	if v := r.PostForm.Get("enabled"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "enabled must be a boolean", http.StatusBadRequest)
			return
		}
		enabled = b
	}
	if err := s.flags.Set(state.KeySendTelegram, enabled); err != nil {
		s.log.Error().Err(err).Msg("write notification flag")
		http.Error(w, "could not save setting", http.StatusInternalServerError)
		return
	}
	s.log.Info().Bool("enabled", enabled).Msg("notification flag updated")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.runner.Run(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
