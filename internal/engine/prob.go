package engine

import (
	"fmt"
	"math/rand"
)

// ProbabilityModel wraps an explicitly seeded random source. Every sample
// advances the same source, so a run is fully reproducible given its seed.
// There is no global randomness anywhere in the engine.
type ProbabilityModel struct {
	rng *rand.Rand
}

func NewProbabilityModel(seed int64) *ProbabilityModel {
	return &ProbabilityModel{rng: rand.New(rand.NewSource(seed))}
}

// Categorical draws an index from the given weights. Weights need not sum to
// one but must be non-negative with positive total mass.
func (m *ProbabilityModel) Categorical(weights []float64) (int, error) {
	if len(weights) == 0 {
		return 0, fmt.Errorf("%w: no weights", ErrInvalidDistribution)
	}
	total := 0.0
	last := -1
	for i, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("%w: negative weight %f at index %d", ErrInvalidDistribution, w, i)
		}
		if w > 0 {
			last = i
		}
		total += w
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: zero total weight", ErrInvalidDistribution)
	}

	draw := m.rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if draw < cum {
			return i, nil
		}
	}
	// Float rounding can leave draw at or above the accumulated total; fall
	// back to the last bucket with positive mass.
	return last, nil
}

// Bernoulli draws a single trial with success probability p.
func (m *ProbabilityModel) Bernoulli(p float64) (bool, error) {
	if p < 0 || p > 1 {
		return false, fmt.Errorf("%w: bernoulli p=%f outside [0,1]", ErrInvalidDistribution, p)
	}
	return m.rng.Float64() < p, nil
}
