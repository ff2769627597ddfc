package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/scheduled/pkg/cache"
	"github.com/dmitrymomot/scheduled/pkg/health"
)

// HandlerFunc is an http handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Options tunes request handling.
type Options struct {
	CNAMETarget     string
	CORSOrigins     []string
	MaxUploadBytes  int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	// RequestTimeout bounds every /api request, DNS lookups included.
	RequestTimeout  time.Duration
	SessionTTL      time.Duration
	FirstCheckDelay time.Duration
	PreviewLimit    int
}

// Deps are the collaborators behind the routes. Archive is optional.
type Deps struct {
	Sessions     cache.Cache[ImportSession]
	Appointments AppointmentStore
	Archive      Archive
	Domains      DomainStore
	Verifier     DomainVerifier
	Connectivity ConnectivityChecker
	Jobs         Enqueuer
	Checks       health.Checks
}

type Server struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
	router chi.Router
}

func New(deps Deps, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 60 * time.Second
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}

	s := &Server{deps: deps, opts: opts, logger: log}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID, middleware.RealIP, s.requestLogger, s.recoverer, corsHandler(s.opts.CORSOrigins))
	r.NotFound(s.handle(func(http.ResponseWriter, *http.Request) error {
		return ErrNotFound("route not found", WithErrorCode("route_not_found"))
	}))
	r.MethodNotAllowed(s.handle(func(http.ResponseWriter, *http.Request) error {
		return NewHTTPError(http.StatusMethodNotAllowed, "method not allowed")
	}))

	r.Get("/health/live", health.Liveness())
	r.Get("/health/ready", health.Readiness(s.deps.Checks, 0, s.logger))

	r.Route("/api/businesses/{businessID}", func(r chi.Router) {
		r.Use(businessContext, middleware.Timeout(s.opts.RequestTimeout))

		r.Post("/imports", s.handle(s.createImport))
		r.Post("/imports/{importID}/commit", s.handle(s.commitImport))

		r.Post("/domains", s.handle(s.createDomain))
		r.Get("/domains/{domainID}", s.handle(s.getDomain))
		r.Post("/domains/{domainID}/verify", s.handle(s.verifyDomain))
		r.Get("/domains/{domainID}/connectivity", s.handle(s.checkConnectivity))
	})
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is canceled, then drains connections
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.renderError(w, r, err)
		}
	}
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr, ok := AsHTTPError(err)
	if !ok {
		httpErr = ErrInternal("internal server error", WithError(err))
	}

	if httpErr.Code >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", slog.Any("error", err))
	}

	writeJSON(w, httpErr.Code, errorBody{
		Error:     httpErr.Message,
		Code:      httpErr.ErrorCode,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrBadRequest("invalid JSON body", WithErrorCode("invalid_json"), WithError(err))
	}
	return nil
}
