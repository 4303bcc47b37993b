package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/runner"
	"github.com/aretw0/summarize/pkg/schema"
)

type errorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message,omitempty"`
	Details []string           `json:"details,omitempty"`
	State   *domain.TrialState `json:"state,omitempty"`
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	var vErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrTrialNotFound), errors.Is(err, domain.ErrUnknownPosition):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrNotEnabled),
		errors.Is(err, domain.ErrTrialFinished),
		errors.Is(err, domain.ErrFinishLocked):
		return http.StatusConflict
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, runner.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, runner.ErrInvalidUTF8), len(schema.ValidationErrors(err)) > 0:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeInputError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Input rejected", "path", r.URL.Path, "error", err)
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	s.logger.Warn(msg, "method", r.Method, "path", r.URL.Path, "error", err)
	resp := errorResponse{Error: msg, Message: err.Error()}
	for _, e := range schema.ValidationErrors(err) {
		resp.Details = append(resp.Details, e.Error())
	}
	writeJSON(w, status, resp)
}
