package ports

// Shuffler permutes question indices.
// Implementations must return a permutation of the input; the engine rejects
// anything else with domain.ErrInvalidOrder.
type Shuffler interface {
	Shuffle(indices []int) []int
}

// ShufflerFunc adapts a plain function to the Shuffler interface.
type ShufflerFunc func(indices []int) []int

// Shuffle calls f(indices).
func (f ShufflerFunc) Shuffle(indices []int) []int {
	return f(indices)
}
