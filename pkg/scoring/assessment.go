package scoring

import (
	"bytes"
	"encoding/json"
)

// Criteria are the assessment keys produced by the reference scoring service, in display order.
var Criteria = []string{
	"Main Idea",
	"Details",
	"Cohesion",
	"Wording",
	"Objective language",
	"Language beyond source text",
}

// Rating is one row of a recognized assessment.
type Rating struct {
	Criterion string
	Value     string
}

// Ratings extracts the known criteria from payload.
// It returns false unless payload is an object holding at least one known criterion
// with a string value; callers then fall back to showing the raw JSON.
func Ratings(payload json.RawMessage) ([]Rating, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, false
	}

	var out []Rating
	for _, key := range Criteria {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		out = append(out, Rating{Criterion: key, Value: value})
	}
	return out, len(out) > 0
}

// Pretty indents payload with two spaces. Invalid JSON is returned unchanged.
func Pretty(payload json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return string(payload)
	}
	return buf.String()
}
