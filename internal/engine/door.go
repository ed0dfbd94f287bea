package engine

import (
	"fmt"
	"math"
)

// WeightFunc maps a non-negative distance to a dispatch weight. Any function
// plugged in here must be non-negative and monotone decreasing in distance,
// so that nearer elevators are always at least as likely to be chosen.
type WeightFunc func(distance float64) float64

// InverseDistanceWeight is the default dispatch weighting, 1/(1+d).
func InverseDistanceWeight(d float64) float64 {
	return 1.0 / (1.0 + d)
}

// ExponentialDecayWeight builds a weighting exp(-lambda*d).
func ExponentialDecayWeight(lambda float64) WeightFunc {
	return func(d float64) float64 {
		return math.Exp(-lambda * d)
	}
}

// Door is a named entry point into the building. Its fixed position weights
// elevator choice for people arriving through it: the closer an elevator's
// home position is to the door, the higher its weight.
type Door struct {
	Name        string
	Position    float64
	ArrivalProb float64

	weight WeightFunc
}

// ElevatorWeights computes one non-negative weight per elevator, aligned to
// the given slice. Pure function of the door position and elevator homes.
func (d *Door) ElevatorWeights(elevators []*Elevator) ([]float64, error) {
	if len(elevators) == 0 {
		return nil, fmt.Errorf("%w: door %q has no elevators to weight", ErrEmptyElevatorSet, d.Name)
	}
	weights := make([]float64, len(elevators))
	for i, e := range elevators {
		weights[i] = d.weight(math.Abs(d.Position - e.home))
	}
	return weights, nil
}
