package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ValidationError is one field of a trial configuration that could not be accepted.
type ValidationError struct {
	Key    string // dotted path with JSON names, e.g. "questions[0].prompt"
	Reason string
	Value  any // offending value, nil when empty
}

func (e *ValidationError) Error() string {
	key := e.Key
	if key == "" {
		key = "config"
	}
	if e.Value == nil {
		return key + ": " + e.Reason
	}
	return fmt.Sprintf("%s: %s (got %v)", key, e.Reason, e.Value)
}

// Question returns the question index named by the key, or -1 for trial-level fields.
func (e *ValidationError) Question() int {
	rest, ok := strings.CutPrefix(e.Key, "questions[")
	if !ok {
		return -1
	}
	idx, _, ok := strings.Cut(rest, "]")
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(idx)
	if err != nil {
		return -1
	}
	return n
}

// AggregateError collects every failure of one decode or validation pass.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "invalid trial config"
	case 1:
		return "invalid trial config: " + e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "invalid trial config (%d problems)", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// Messages returns one line per failure.
func (e *AggregateError) Messages() []string {
	out := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err.Error()
	}
	return out
}

// ValidationErrors returns the failures carried by err, or nil if err is not a
// configuration error.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
