package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rebeliceyang/lazyseg/internal/logging"
	"github.com/rebeliceyang/lazyseg/internal/segment"
	"github.com/rebeliceyang/lazyseg/internal/view"
)

// Source loads datasets and lists the tables it can load
type Source interface {
	view.Source
	Tables(ctx context.Context) ([]string, error)
}

// Server exposes analysis, preview and segment operations over HTTP
type Server struct {
	router   *mux.Router
	source   Source
	segments *segment.Service
	logger   *logging.Logger
}

// NewServer creates a new API server
func NewServer(source Source, segments *segment.Service, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Noop()
	}
	s := &Server{
		router:   mux.NewRouter(),
		source:   source,
		segments: segments,
		logger:   logger,
	}
	s.RegisterRoutes()
	return s
}

// RegisterRoutes registers all API routes
func (s *Server) RegisterRoutes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/healthz", s.Health).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tables", s.ListTables).Methods("GET")
	api.HandleFunc("/tables/{table}/columns", s.GetColumns).Methods("GET")
	api.HandleFunc("/tables/{table}/preview", s.Preview).Methods("POST")

	api.HandleFunc("/segments", s.ListSegments).Methods("GET")
	api.HandleFunc("/segments", s.CreateSegment).Methods("POST")
	api.HandleFunc("/segments/{id}", s.GetSegment).Methods("GET")
	api.HandleFunc("/segments/{id}", s.UpdateSegment).Methods("PUT")
	api.HandleFunc("/segments/{id}", s.DeleteSegment).Methods("DELETE")
}

// Handler returns the HTTP handler for the API server
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs method, path, status and duration of every request
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.DebugContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
