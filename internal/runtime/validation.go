package runtime

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/summarize/pkg/domain"
)

// Minimum response size accepted by the quality gate.
const (
	MinResponseChars = 10
	MinResponseWords = 4
)

// ValidateResponse trims text and applies the length and word-count gate.
// It returns the trimmed text, or a *domain.ValidationError.
func ValidateResponse(position int, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	length := utf8.RuneCountInString(trimmed)
	words := len(strings.Fields(trimmed))

	if length < MinResponseChars || words < MinResponseWords {
		return "", &domain.ValidationError{
			Position: position,
			Length:   length,
			Words:    words,
		}
	}
	return trimmed, nil
}
