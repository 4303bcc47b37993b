package domain

import (
	"errors"
	"fmt"
)

// ErrTrialNotFound is returned when a trial ID is unknown or was evicted.
var ErrTrialNotFound = errors.New("trial not found")

// ErrTrialFinished is returned for any interaction after the trial finished.
var ErrTrialFinished = errors.New("trial already finished")

// ErrNotEnabled is returned when a position that is still locked is submitted.
var ErrNotEnabled = errors.New("question not enabled")

// ErrAlreadyAnswered is returned when a position already holds a recorded response.
var ErrAlreadyAnswered = errors.New("question already answered")

// ErrUnknownPosition is returned for positions outside the question order.
var ErrUnknownPosition = errors.New("unknown question position")

// ErrFinishLocked is returned when finishing before every question is answered.
var ErrFinishLocked = errors.New("finish control not enabled")

// ErrInvalidOrder is returned when a shuffler does not return a permutation.
var ErrInvalidOrder = errors.New("question order is not a permutation")

// ValidationError is a recoverable rejection of a response that is too short.
type ValidationError struct {
	Position int
	Length   int // Runes in the trimmed response
	Words    int // Whitespace separated tokens
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("response at position %d rejected: %d chars, %d words", e.Position, e.Length, e.Words)
}

// Message returns the text shown to the participant.
func (e *ValidationError) Message() string {
	return MessageRejected
}
