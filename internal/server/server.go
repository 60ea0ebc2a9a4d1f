package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/raysh454/vexora/internal/app"
	"github.com/raysh454/vexora/internal/history"
	"github.com/raysh454/vexora/internal/interfaces"
	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/metrics"
	"github.com/raysh454/vexora/internal/policy"
)

// maxLoggedBody caps how much of a JSON request body is logged.
const maxLoggedBody = 4 << 10

// Deps are the services the API exposes. History may be nil, in which case
// nothing is saved and the history routes answer 503.
type Deps struct {
	Analyzer interfaces.Analyzer
	History  *history.Store
	Orch     *app.Orchestrator
	Policy   *policy.Store
	Metrics  *metrics.Metrics
	Logger   logging.Logger
}

// Server is the HTTP + WebSocket API surface for Vexora.
type Server struct {
	cfg      app.ServerConfig
	deps     Deps
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer builds the router over deps.
func NewServer(cfg app.ServerConfig, deps Deps) (*Server, error) {
	if deps.Analyzer == nil {
		return nil, errors.New("server: analyzer is required")
	}
	if deps.Orch == nil {
		return nil, errors.New("server: orchestrator is required")
	}
	if deps.Policy == nil {
		deps.Policy = policy.NewStore(policy.Default())
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	} else {
		logger = logger.With(logging.Field{Key: "component", Value: "server"})
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = app.DefaultConfig().Server.MaxUploadBytes
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: chi.NewRouter(),
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(cfg.AllowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
	s.routes()
	return s, nil
}

// FromApplication builds a server over an Application's services.
func FromApplication(a *app.Application) (*Server, error) {
	return NewServer(a.Config.Server, Deps{
		Analyzer: a.Analyzer,
		History:  a.History,
		Orch:     a.Orch,
		Policy:   a.Policy,
		Metrics:  a.Metrics,
		Logger:   a.Logger,
	})
}

func (s *Server) routes() {
	r := s.router

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}))

	// Operational endpoints stay outside the limiter.
	r.Get("/healthz", s.handleHealth)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics.Handler())
	}
	r.Get("/swagger/*", swaggerHandler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(newClientLimiter(s.cfg.RateLimit, s.cfg.RateBurst).middleware)
		}

		// Analysis
		r.Post("/analyze/url", s.handleAnalyzeURL)
		r.Post("/analyze/text", s.handleAnalyzeText)
		r.Post("/analyze/image", s.handleAnalyzeImage)
		r.Post("/analyze/video", s.handleAnalyzeVideo)

		// History
		r.Get("/history", s.handleListHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Get("/history/{id}", s.handleGetHistory)
		r.Get("/history/{id}/compare/{other}", s.handleCompareHistory)

		// Jobs over REST
		r.Post("/jobs/batch", s.handleStartBatchJob)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{jobID}", s.handleGetJob)
		r.Delete("/jobs/{jobID}", s.handleCancelJob)

		// WebSocket for job progress
		r.Get("/ws/batch", s.handleBatchWS)

		r.Get("/policy", s.handleGetPolicy)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && r.Method == http.MethodPost && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
		head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
		fields = append(fields, logging.Field{Key: "body", Value: string(head)})
		r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// replayBody puts the logged head of a request body back in front of the rest.
type replayBody struct {
	io.Reader
	io.Closer
}

// decodeJSON decodes the request body into v, answering 413 when the body
// exceeds the configured limit and 400 for anything else.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      0, // allow streaming
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- Meta handlers ---

// handleHealth godoc
// @Summary Liveness check
// @Tags meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", PolicyVersion: s.deps.Policy.Current().Version})
}

// handleGetPolicy godoc
// @Summary Active detection policy
// @Tags meta
// @Produce json
// @Success 200 {object} policy.Policy
// @Router /policy [get]
func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Policy.Current())
}
