package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/summarize"
	"github.com/aretw0/summarize/internal/logging"
	"github.com/aretw0/summarize/internal/presentation/graph"
	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/runner"
	"github.com/aretw0/summarize/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// maxConfigSize bounds the body of POST /trials.
const maxConfigSize = 1 << 20

// Engine defines the interface of the summarize engine used by the handlers.
type Engine interface {
	Start(ctx context.Context, cfg domain.TrialConfig) (*domain.TrialState, error)
	State(ctx context.Context, trialID string) (*domain.TrialState, error)
	Submit(ctx context.Context, trialID string, position int, text string) (*domain.TrialState, error)
	Finish(ctx context.Context, trialID string) (domain.TrialResult, error)
	Observe(trialID string, o domain.StateObserver) error
	Trials() []string
}

var _ Engine = (*summarize.Engine)(nil)

// Server serves trials as HTML forms and as a JSON API.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	logger       *slog.Logger
	origins      []string
	metrics      http.Handler
	maxInputSize int
	basePath     string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAllowedOrigins sets the CORS allowed origins. The default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxInputSize overrides the response size limit, in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// WithBasePath sets the prefix used for links when the handler is mounted below the root.
func WithBasePath(p string) Option {
	return func(s *Server) {
		s.basePath = strings.TrimRight(p, "/")
	}
}

// NewServer creates a Server without routes, see Handler.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		Engine:       engine,
		logger:       logging.NewNop(),
		origins:      []string{"*"},
		maxInputSize: runner.MaxInputSize(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Handler()
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/trials", func(r chi.Router) {
		r.Get("/", s.ListTrials)
		r.Post("/", s.CreateTrial)
		r.Route("/{trialID}", func(r chi.Router) {
			r.Get("/", s.GetTrialPage)
			r.Post("/", s.PostTrialForm)
			r.Get("/done", s.GetDonePage)
			r.Get("/state", s.GetTrialState)
			r.Get("/graph", s.GetTrialGraph)
			r.Get("/events", s.SubscribeEvents)
			r.Post("/questions/{position}", s.SubmitResponse)
			r.Post("/finish", s.FinishTrial)
		})
	})
	return r
}

type createTrialResponse struct {
	TrialID string             `json:"trial_id"`
	URL     string             `json:"url"`
	State   *domain.TrialState `json:"state"`
}

type submitRequest struct {
	Response string `json:"response"`
}

// CreateTrial handles POST /trials. The body is a TrialConfig or an experiment runner parameter map.
func (s *Server) CreateTrial(w http.ResponseWriter, r *http.Request) {
	var params map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxConfigSize)).Decode(&params); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg, err := schema.DecodeTrialConfig(params)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Invalid trial configuration", err)
		return
	}

	state, err := s.Engine.Start(r.Context(), cfg)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.broadcastChanges(state.TrialID)

	url := s.basePath + "/trials/" + state.TrialID
	w.Header().Set("Location", url)
	writeJSON(w, http.StatusCreated, createTrialResponse{TrialID: state.TrialID, URL: url, State: state})
	s.logger.Info("Trial created", "trial_id", state.TrialID, "questions", len(state.Questions))
}

// ListTrials handles GET /trials.
func (s *Server) ListTrials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"trials": s.Engine.Trials()})
}

// GetTrialPage handles GET /trials/{trialID}.
func (s *Server) GetTrialPage(w http.ResponseWriter, r *http.Request) {
	state, err := s.Engine.State(r.Context(), chi.URLParam(r, "trialID"))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.renderPage(w, "trial.html.tmpl", newTrialView(state, s.basePath))
}

// GetDonePage handles GET /trials/{trialID}/done.
func (s *Server) GetDonePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "done.html.tmpl", nil)
}

// PostTrialForm handles the form post of GET /trials/{trialID}.
// Every outcome redirects (Post/Redirect/Get); the trial state carries any message to show.
func (s *Server) PostTrialForm(w http.ResponseWriter, r *http.Request) {
	trialID := chi.URLParam(r, "trialID")
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Invalid form", err)
		return
	}
	page := s.basePath + "/trials/" + trialID

	if r.PostForm.Has("finish") {
		result, err := s.Engine.Finish(r.Context(), trialID)
		switch {
		case errors.Is(err, domain.ErrFinishLocked):
			http.Redirect(w, r, page, http.StatusSeeOther)
			return
		case err != nil && result.TrialID == "":
			s.writeEngineError(w, r, err)
			return
		case err != nil:
			s.logger.Error("Form: host runner failed", "trial_id", trialID, "error", err)
		}
		s.Streams.Close(trialID)
		http.Redirect(w, r, page+"/done", http.StatusSeeOther)
		return
	}

	position, err := strconv.Atoi(r.PostForm.Get("submit"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Missing question position", err)
		return
	}
	state, err := s.Engine.State(r.Context(), trialID)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if position < 0 || position >= len(state.Questions) {
		s.writeEngineError(w, r, domain.ErrUnknownPosition)
		return
	}

	text, err := runner.SanitizeInputLimit(r.PostForm.Get(state.Questions[position].IDs().Input), s.maxInputSize)
	if err != nil {
		s.writeInputError(w, r, err)
		return
	}

	_, err = s.Engine.Submit(r.Context(), trialID, position, text)
	var vErr *domain.ValidationError
	switch {
	case err == nil, errors.As(err, &vErr):
	case errors.Is(err, domain.ErrAlreadyAnswered), errors.Is(err, domain.ErrNotEnabled):
		s.logger.Debug("Form: stale submit ignored", "trial_id", trialID, "position", position, "error", err)
	default:
		s.writeEngineError(w, r, err)
		return
	}
	http.Redirect(w, r, page, http.StatusSeeOther)
}

// GetTrialState handles GET /trials/{trialID}/state.
func (s *Server) GetTrialState(w http.ResponseWriter, r *http.Request) {
	state, err := s.Engine.State(r.Context(), chi.URLParam(r, "trialID"))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// GetTrialGraph handles GET /trials/{trialID}/graph with a Mermaid flowchart of the progression.
func (s *Server) GetTrialGraph(w http.ResponseWriter, r *http.Request) {
	state, err := s.Engine.State(r.Context(), chi.URLParam(r, "trialID"))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(state))
}

// SubmitResponse handles POST /trials/{trialID}/questions/{position}.
func (s *Server) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	trialID := chi.URLParam(r, "trialID")
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		s.writeEngineError(w, r, domain.ErrUnknownPosition)
		return
	}

	var body submitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, int64(s.maxInputSize)+1024)).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	text, err := runner.SanitizeInputLimit(body.Response, s.maxInputSize)
	if err != nil {
		s.writeInputError(w, r, err)
		return
	}

	state, err := s.Engine.Submit(r.Context(), trialID, position, text)
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   vErr.Error(),
			Message: vErr.Message(),
			State:   state,
		})
		return
	}
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// FinishTrial handles POST /trials/{trialID}/finish.
func (s *Server) FinishTrial(w http.ResponseWriter, r *http.Request) {
	trialID := chi.URLParam(r, "trialID")
	result, err := s.Engine.Finish(r.Context(), trialID)
	if err != nil && result.TrialID == "" {
		s.writeEngineError(w, r, err)
		return
	}
	s.Streams.Close(trialID)
	if err != nil {
		// Finished, but the host runner failed. The result is reported only once.
		s.logger.Error("Finish: host runner failed", "trial_id", trialID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "result": result})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":         "summarize-http",
		"version":     strings.TrimSpace(summarize.Version),
		"live_trials": len(s.Engine.Trials()),
	})
}

// broadcastChanges streams state diffs of trialID to its SSE subscribers.
func (s *Server) broadcastChanges(trialID string) {
	err := s.Engine.Observe(trialID, func(prev, next *domain.TrialState) {
		if !s.Streams.HasSubscribers(trialID) {
			return
		}
		diff := domain.Diff(prev, next)
		if diff == nil {
			return
		}
		if bytes, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(trialID, string(bytes))
		}
	})
	if err != nil {
		s.logger.Warn("Cannot observe trial", "trial_id", trialID, "error", err)
	}
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Template execution failed", "template", name, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
