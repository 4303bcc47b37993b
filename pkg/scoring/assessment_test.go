package scoring_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/summarize/pkg/scoring"
	"github.com/stretchr/testify/assert"
)

func TestRatings(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []scoring.Rating
		ok      bool
	}{
		{
			name:    "Known Keys In Display Order",
			payload: `{"Wording":"Poor","Main Idea":"Excellent","extra":1}`,
			want: []scoring.Rating{
				{Criterion: "Main Idea", Value: "Excellent"},
				{Criterion: "Wording", Value: "Poor"},
			},
			ok: true,
		},
		{name: "Fallback Error Object", payload: `{"error":"raw model output"}`},
		{name: "Non String Values", payload: `{"Details":3}`},
		{name: "Array", payload: `["Good"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := scoring.Ratings(json.RawMessage(tt.payload))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPretty(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", scoring.Pretty(json.RawMessage(`{"a":1}`)))
	assert.Equal(t, "not json", scoring.Pretty(json.RawMessage("not json")))
}
