package runtime

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/ports"
)

// MathShuffler is the default Shuffler, a Fisher-Yates shuffle over math/rand/v2.
type MathShuffler struct{}

// Shuffle returns a shuffled copy of indices.
func (MathShuffler) Shuffle(indices []int) []int {
	out := slices.Clone(indices)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// QuestionOrder returns the display order for n questions.
// The identity order is used unless randomize is set.
func QuestionOrder(n int, randomize bool, shuffler ports.Shuffler) ([]int, error) {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if !randomize || n < 2 {
		return order, nil
	}
	if shuffler == nil {
		shuffler = MathShuffler{}
	}

	shuffled := shuffler.Shuffle(slices.Clone(order))
	if !isPermutation(shuffled, n) {
		return nil, fmt.Errorf("shuffler returned %v for %d questions: %w", shuffled, n, domain.ErrInvalidOrder)
	}
	return shuffled, nil
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, i := range order {
		if i < 0 || i >= n || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}
