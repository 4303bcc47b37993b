package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/summarize"
	"github.com/aretw0/summarize/pkg/adapters/memory"
	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/ports"
	"github.com/aretw0/summarize/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ runner.Engine = (*summarize.Engine)(nil)

const validAnswer = "This is a sufficiently long answer."

func newEngine(t *testing.T, score ports.ScorerFunc) (*summarize.Engine, *memory.Recorder) {
	t.Helper()
	rec := memory.NewRecorder()
	return summarize.New(summarize.WithScorer(score), summarize.WithHost(rec)), rec
}

func okScorer(ctx context.Context, req ports.ScoreRequest) (json.RawMessage, error) {
	return json.RawMessage(`{"Main Idea":"Good","Details":"Fair"}`), nil
}

var cfg = domain.TrialConfig{
	Preamble: "# Read the text",
	Questions: []domain.QuestionSpec{
		{Prompt: "<p>First <b>passage</b></p>", Name: "q1", Placeholder: "your summary"},
		{Prompt: "Second passage", Name: "q2"},
	},
	ButtonLabel: "Continue",
}

func TestRunner_TextFlow(t *testing.T) {
	eng, rec := newEngine(t, okScorer)
	in := strings.NewReader("too short\n" + validAnswer + "\n" + validAnswer + "\n\n")
	out := &bytes.Buffer{}

	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(in, out)))
	result, err := r.Run(context.Background(), eng, cfg)
	require.NoError(t, err)

	assert.Equal(t, []domain.ResponseRecord{
		{Name: "q1", Response: validAnswer},
		{Name: "q2", Response: validAnswer},
	}, result.Response)
	require.Equal(t, 1, rec.Len())
	assert.Empty(t, eng.Trials(), "finished trials leave the registry")

	text := out.String()
	assert.Contains(t, text, "# Read the text")
	assert.Contains(t, text, "First passage")
	assert.Contains(t, text, "(your summary)")
	assert.Contains(t, text, domain.MessagePrompt)
	assert.Contains(t, text, "[!] "+domain.MessageRejected)
	assert.Contains(t, text, "[ok] "+domain.MessageRecorded)
	assert.Contains(t, text, "| Main Idea | Good |")
	assert.Contains(t, text, "Press Enter to continue.")
	assert.Equal(t, 1, strings.Count(text, "First passage"), "a rejected answer does not repeat the prompt")
}

func TestRunner_ScoringFailure(t *testing.T) {
	eng, _ := newEngine(t, func(ctx context.Context, req ports.ScoreRequest) (json.RawMessage, error) {
		return nil, errors.New("service down")
	})
	in := strings.NewReader(validAnswer + "\n" + validAnswer + "\n")
	out := &bytes.Buffer{}

	result, err := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(in, out))).Run(context.Background(), eng, cfg)
	require.NoError(t, err, "EOF at the confirmation still finishes")
	assert.Len(t, result.Response, 2)
	assert.Contains(t, out.String(), "[!] "+domain.MessageScoreFail)
}

func TestRunner_InputClosedEarly(t *testing.T) {
	eng, rec := newEngine(t, okScorer)
	in := strings.NewReader(validAnswer + "\n")

	_, err := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(in, io.Discard))).Run(context.Background(), eng, cfg)
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, rec.Len())
}

func TestRunner_InputTooLarge(t *testing.T) {
	eng, _ := newEngine(t, okScorer)
	long := strings.Repeat("word ", 20)
	in := strings.NewReader(long + "\n" + validAnswer + "\n" + validAnswer + "\n\n")
	out := &bytes.Buffer{}

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(in, out)),
		runner.WithMaxInputSize(50),
	)
	result, err := r.Run(context.Background(), eng, cfg)
	require.NoError(t, err)
	assert.Equal(t, validAnswer, result.Response[0].Response)
	assert.Contains(t, out.String(), runner.ErrInputTooLarge.Error())
}

func TestRunner_JSONFlow(t *testing.T) {
	eng, _ := newEngine(t, okScorer)
	in := strings.NewReader(`"` + validAnswer + `"` + "\n" + `{"response":"` + validAnswer + `"}` + "\n" + `""` + "\n")
	out := &bytes.Buffer{}

	result, err := runner.NewRunner(runner.WithInputHandler(runner.NewJSONHandler(in, out))).Run(context.Background(), eng, cfg)
	require.NoError(t, err)
	assert.Len(t, result.Response, 2)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	var last []domain.ActionRequest
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	require.Len(t, last, 1)
	assert.Equal(t, domain.ActionRequestInput, last[0].Type)
	assert.Contains(t, lines[len(lines)-1], `"type":"confirm"`)
}

func TestRunner_Cancelled(t *testing.T) {
	eng, _ := newEngine(t, okScorer)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(pr, io.Discard))).Run(ctx, eng, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}
