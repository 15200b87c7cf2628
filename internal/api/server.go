package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sheetslug/internal/logging"
	"sheetslug/internal/records"
	"sheetslug/internal/sheet"
)

const suggestionLimit = 5

// RecordLoader is the subset of sheet.Loader the server drives.
type RecordLoader interface {
	LoadResult(ctx context.Context) (sheet.Result, error)
	Refresh(ctx context.Context) (sheet.Result, error)
}

// Options configures a Server.
type Options struct {
	Token     string
	SourceURL string
	Logger    *slog.Logger
	// Now overrides the clock used for uptime reporting.
	Now func() time.Time
}

// Server exposes records over HTTP.
type Server struct {
	loader    RecordLoader
	logger    *slog.Logger
	sourceURL string
	now       func() time.Time
	startedAt time.Time
	router    *chi.Mux

	mu      sync.Mutex
	last    *sheet.Result
	lastErr string
}

// NewServer builds the router for loader.
func NewServer(loader RecordLoader, opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		loader:    loader,
		logger:    logging.NewComponentLogger(opts.Logger, "api-server"),
		sourceURL: opts.SourceURL,
		now:       now,
		startedAt: now(),
		router:    chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(authMiddleware(strings.TrimSpace(opts.Token)))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/records", s.handleRecords)
		r.Get("/records/{slug}", s.handleRecord)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/status", s.handleStatus)
	})
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on bind until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, bind string) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	res, ok := s.load(w, r, false)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, listResponse(res))
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	res, ok := s.load(w, r, false)
	if !ok {
		return
	}
	if rec, found := records.FindBySlug(res.Records, slug); found {
		s.writeJSON(w, http.StatusOK, RecordResponse{Record: rec})
		return
	}

	matches := records.Suggest(res.Records, slug, suggestionLimit)
	suggestions := make([]string, 0, len(matches))
	for _, rec := range matches {
		suggestions = append(suggestions, rec.Slug)
	}
	s.writeJSON(w, http.StatusNotFound, NotFoundResponse{
		Error:       "record not found",
		Slug:        slug,
		Suggestions: suggestions,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, ok := s.load(w, r, true)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, FromResult(res))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		SourceURL:     s.sourceURL,
		StartedAt:     formatTime(s.startedAt),
		UptimeSeconds: int64(s.now().Sub(s.startedAt).Seconds()),
		LastError:     s.lastErr,
	}
	if s.last != nil {
		summary := FromResult(*s.last)
		resp.LastLoad = &summary
	}
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, resp)
}

// load runs one serialised load and writes the error response on failure.
func (s *Server) load(w http.ResponseWriter, r *http.Request, refresh bool) (sheet.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res sheet.Result
		err error
	)
	if refresh {
		res, err = s.loader.Refresh(r.Context())
	} else {
		res, err = s.loader.LoadResult(r.Context())
	}
	if err != nil {
		s.lastErr = err.Error()
		logging.ErrorWithContext(s.logger, "sheet load failed", "api_load_failed",
			logging.String(logging.FieldRequestID, middleware.GetReqID(r.Context())),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check source.url and network access"))
		status := http.StatusInternalServerError
		if errors.Is(err, sheet.ErrFetch) {
			status = http.StatusBadGateway
		}
		s.writeError(w, status, err.Error())
		return sheet.Result{}, false
	}
	s.last = &res
	s.lastErr = ""
	return res, true
}

func listResponse(res sheet.Result) RecordListResponse {
	recs := res.Records
	if recs == nil {
		recs = []records.Record{}
	}
	return RecordListResponse{LoadSummary: FromResult(res), Records: recs}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("api request",
			logging.String(logging.FieldRequestID, middleware.GetReqID(r.Context())),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("elapsed", time.Since(started)))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
