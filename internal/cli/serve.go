package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/htfab/tt-multiplexer/pkg/buildinfo"
	"github.com/htfab/tt-multiplexer/pkg/cache"
	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/floorplan"
	"github.com/htfab/tt-multiplexer/pkg/observability"
	"github.com/htfab/tt-multiplexer/pkg/pipeline"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

const (
	maxRequestBytes = 1 << 20
	requestTimeout  = time.Minute
	shutdownTimeout = 10 * time.Second
)

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the floorplanner over HTTP",
		Long: `Serve the floorplanner over HTTP.

  GET  /healthz     liveness and build information
  GET  /v1/tracks   pin tables of the configuration
  POST /v1/place    place a module list and render it

POST /v1/place takes {"modules": [...], "formats": ["svg"], "hier": false}
and returns the frozen module table, the layout, the macro instances and
the requested artifacts (base64 encoded).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()
			runner.Keyer = cache.NewScopedKeyer("serve:")

			srv := &http.Server{
				Addr:              addr,
				Handler:           newServer(cfg, runner, c.Logger).routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			c.Logger.Info("serving", "addr", addr)

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				return ctx.Err()
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// server answers API requests. Every request runs its own pipeline; only
// the configuration and the runner are shared.
type server struct {
	cfg    *config.Config
	runner *pipeline.Runner
	logger *log.Logger
}

func newServer(cfg *config.Config, runner *pipeline.Runner, logger *log.Logger) *server {
	return &server{cfg: cfg, runner: runner, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/tracks", s.handleTracks)
		r.Post("/place", s.handlePlace)
	})
	return r
}

type ctxKey int

const requestIDKey ctxKey = 0

// requestID tags every request with a UUID, reusing a valid incoming
// X-Request-ID header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		observability.Server().OnRequest(r.Context(), r.Method, route, ww.Status(), elapsed)
		s.logger.Debug("request",
			"id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", elapsed.Round(time.Microsecond))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *server) handleTracks(w http.ResponseWriter, r *http.Request) {
	l, err := floorplan.NewLayout(s.cfg, floorplan.WithLogger(s.logger))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// placeRequest is the body of POST /v1/place.
type placeRequest struct {
	Modules []placer.ModuleSlot `json:"modules"`
	Formats []string            `json:"formats,omitempty"`
	Hier    bool                `json:"hier,omitempty"`
	Labels  bool                `json:"labels,omitempty"`
	NoPins  bool                `json:"no_pins,omitempty"`
}

type placeResponse struct {
	RequestID string            `json:"request_id"`
	Hash      string            `json:"hash"`
	Cached    bool              `json:"cached"`
	Summary   pipeline.Summary  `json:"summary"`
	Artifacts map[string][]byte `json:"artifacts"`
}

func (s *server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	for i := range req.Modules {
		// Same defaults as the YAML module list.
		if req.Modules[i].Width == 0 {
			req.Modules[i].Width = 1
		}
		if req.Modules[i].Height == 0 {
			req.Modules[i].Height = 1
		}
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Config:  s.cfg,
		Modules: req.Modules,
		Formats: req.Formats,
		Hier:    req.Hier,
		Labels:  req.Labels,
		NoPins:  req.NoPins,
		Logger:  s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, placeResponse{
		RequestID: requestIDFrom(r.Context()),
		Hash:      res.Hash,
		Cached:    res.CacheInfo.PlaceHit,
		Summary:   res.Summary,
		Artifacts: res.Artifacts,
	})
}

type errorResponse struct {
	RequestID string      `json:"request_id"`
	Code      errors.Code `json:"code"`
	Error     string      `json:"error"`
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", requestIDFrom(r.Context()), "err", err)
	}
	writeJSON(w, status, errorResponse{
		RequestID: requestIDFrom(r.Context()),
		Code:      code,
		Error:     errors.UserMessage(err),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidModule, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPinSpec:
		return http.StatusBadRequest
	case errors.ErrCodePlacementFailed, errors.ErrCodeTrackSaturation, errors.ErrCodePinLayoutMismatch:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
