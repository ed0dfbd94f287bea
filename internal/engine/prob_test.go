package engine

import (
	"errors"
	"testing"
)

func TestCategoricalRejectsBadWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
	}{
		{name: "empty", weights: nil},
		{name: "negative", weights: []float64{0.5, -0.1, 0.6}},
		{name: "all zero", weights: []float64{0, 0, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewProbabilityModel(1)
			if _, err := m.Categorical(tc.weights); !errors.Is(err, ErrInvalidDistribution) {
				t.Fatalf("Categorical(%v) err=%v, want ErrInvalidDistribution", tc.weights, err)
			}
		})
	}
}

func TestCategoricalNeverPicksZeroWeight(t *testing.T) {
	m := NewProbabilityModel(7)
	weights := []float64{1, 0, 3}
	for i := 0; i < 1000; i++ {
		idx, err := m.Categorical(weights)
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		if idx == 1 {
			t.Fatalf("draw %d picked zero-weight bucket", i)
		}
		if idx < 0 || idx > 2 {
			t.Fatalf("draw %d out of range: %d", i, idx)
		}
	}
}

func TestBernoulliBounds(t *testing.T) {
	m := NewProbabilityModel(3)
	if _, err := m.Bernoulli(-0.01); !errors.Is(err, ErrInvalidDistribution) {
		t.Fatalf("p=-0.01 err=%v, want ErrInvalidDistribution", err)
	}
	if _, err := m.Bernoulli(1.01); !errors.Is(err, ErrInvalidDistribution) {
		t.Fatalf("p=1.01 err=%v, want ErrInvalidDistribution", err)
	}
	for i := 0; i < 100; i++ {
		if ok, err := m.Bernoulli(0); err != nil || ok {
			t.Fatalf("p=0 returned (%v, %v), want (false, nil)", ok, err)
		}
		if ok, err := m.Bernoulli(1); err != nil || !ok {
			t.Fatalf("p=1 returned (%v, %v), want (true, nil)", ok, err)
		}
	}
}

func TestSamplingDeterministicGivenSeed(t *testing.T) {
	a := NewProbabilityModel(42)
	b := NewProbabilityModel(42)
	weights := []float64{0.2, 0.3, 0.5}
	for i := 0; i < 500; i++ {
		ai, err := a.Categorical(weights)
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		bi, err := b.Categorical(weights)
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		if ai != bi {
			t.Fatalf("draw %d diverged: %d vs %d", i, ai, bi)
		}
		ab, _ := a.Bernoulli(0.4)
		bb, _ := b.Bernoulli(0.4)
		if ab != bb {
			t.Fatalf("bernoulli draw %d diverged", i)
		}
	}
}
