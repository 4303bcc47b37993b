package ports

import (
	"context"
	"encoding/json"
)

// ScoreRequest is the body posted to the scoring service.
type ScoreRequest struct {
	Context         string `json:"context"`
	Question        string `json:"question"`
	StudentResponse string `json:"student_response"`
}

// Scorer evaluates a recorded response.
// Any returned error is treated by the engine as a soft failure: the question
// still counts as answered.
type Scorer interface {
	// Score returns the opaque JSON assessment produced by the service.
	Score(ctx context.Context, req ScoreRequest) (json.RawMessage, error)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(ctx context.Context, req ScoreRequest) (json.RawMessage, error)

// Score calls f(ctx, req).
func (f ScorerFunc) Score(ctx context.Context, req ScoreRequest) (json.RawMessage, error) {
	return f(ctx, req)
}
