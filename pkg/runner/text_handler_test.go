package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	needs, err := h.Output(context.Background(), []domain.ActionRequest{
		{Type: domain.ActionRenderContent, Payload: "Hello"},
		{Type: domain.ActionShowStatus, Payload: domain.StatusMessage{Text: "Saved", Kind: domain.MessageSuccess}},
		{Type: domain.ActionShowResult, Payload: domain.ResultMessage{Score: json.RawMessage(`{"x":1}`)}},
	})
	require.NoError(t, err)
	assert.False(t, needs)
	assert.Contains(t, out.String(), "Rendered: Hello")
	assert.Contains(t, out.String(), "[ok] Saved")
	assert.Contains(t, out.String(), "Rendered: ```json")

	needs, err = h.Output(context.Background(), []domain.ActionRequest{
		{Type: domain.ActionRequestInput, Payload: domain.InputRequest{Type: domain.InputConfirm, Label: "Continue"}},
	})
	require.NoError(t, err)
	assert.True(t, needs)
	assert.Contains(t, out.String(), "Press Enter to continue.")
}

func TestTextHandler_Input(t *testing.T) {
	h := NewTextHandler(strings.NewReader("first line\r\nsecond"), io.Discard)

	val, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first line", val)

	val, err = h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", val)

	_, err = h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	h := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	go cancel()
	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONHandler_Input(t *testing.T) {
	h := NewJSONHandler(strings.NewReader("\"quoted\"\n{\"response\":\"object\"}\nraw text"), io.Discard)

	for _, want := range []string{"quoted", "object", "raw text"} {
		got, err := h.Input(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestResultMarkdown(t *testing.T) {
	md := ResultMarkdown(json.RawMessage(`{"Wording":"Good | mostly","Cohesion":"Fair"}`))
	assert.Contains(t, md, "| Criterion | Rating |")
	assert.Contains(t, md, `| Wording | Good \| mostly |`)

	md = ResultMarkdown(json.RawMessage(`{"score":0.8}`))
	assert.Equal(t, "```json\n{\n  \"score\": 0.8\n}\n```\n", md)
}
