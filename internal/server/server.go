// Package server exposes the studio over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"

	"postcraft/internal/logging"
	"postcraft/internal/state"
	"postcraft/internal/studio"
)

// maxBodyBytes bounds request bodies; reference images arrive as data URIs.
const maxBodyBytes = 32 << 20

// Options configures a Server.
type Options struct {
	Addr              string
	MaxConns          int // 0 = unlimited
	ShutdownTimeout   time.Duration
	AuthUser          string
	AuthPasswordHash  string
	CredentialsPath   string // where POST /api/credentials persists keys
	DefaultVariations int
	InitialState      func() state.App // optional; overrides DefaultVariations
}

// Server serves the HTTP API.
type Server struct {
	studio *studio.Studio
	opts   Options
	mux    *http.ServeMux
}

// New creates a server for s.
func New(s *studio.Studio, opts Options) *Server {
	if opts.DefaultVariations == 0 {
		opts.DefaultVariations = 2
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	srv := &Server{studio: s, opts: opts, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/templates", s.handleTemplates)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /api/state", s.handleInitialState)
	s.mux.HandleFunc("POST /api/preview", s.handlePreview)
	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("POST /api/captions", s.handleCaptions)
	s.mux.HandleFunc("GET /api/gallery", s.handleGalleryList)
	s.mux.HandleFunc("DELETE /api/gallery", s.handleGalleryClear)
	s.mux.HandleFunc("DELETE /api/gallery/{id}", s.handleGalleryDelete)
	s.mux.HandleFunc("GET /api/presets", s.handlePresetList)
	s.mux.HandleFunc("POST /api/presets", s.handlePresetSave)
	s.mux.HandleFunc("GET /api/presets/{id}", s.handlePresetGet)
	s.mux.HandleFunc("POST /api/presets/{id}/apply", s.handlePresetApply)
	s.mux.HandleFunc("DELETE /api/presets/{id}", s.handlePresetDelete)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/credentials", s.handleCredentials)
	s.mux.HandleFunc("GET /api/usage", s.handleUsage)
}

// Handler returns the API with auth and request logging applied.
func (s *Server) Handler() http.Handler {
	return logRequests(requireAuth(s.opts.AuthUser, s.opts.AuthPasswordHash, s.mux))
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.opts.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.opts.MaxConns)
	}

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logging.Server("listening on %s (max conns %d, auth %v)", ln.Addr(), s.opts.MaxConns, s.opts.AuthUser != "")
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	logging.Server("shutting down")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errChan
}

func (s *Server) initialState() state.App {
	if s.opts.InitialState != nil {
		return s.opts.InitialState()
	}
	return state.Initial(s.opts.DefaultVariations)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Get(logging.CategoryServer).Debug("%s %s -> %d (%v)", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
