package engine

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testElevatorAt(index int, home float64) *Elevator {
	return newElevator(index, ElevatorConfig{
		Name: "e" + string(rune('A'+index)), Home: home, EnergyUp: 1, EnergyDown: 1,
	}, 10, testLogger())
}

func TestDoorWeightsEmptyElevatorSet(t *testing.T) {
	d := &Door{Name: "main", Position: 0, weight: InverseDistanceWeight}
	if _, err := d.ElevatorWeights(nil); !errors.Is(err, ErrEmptyElevatorSet) {
		t.Fatalf("err=%v, want ErrEmptyElevatorSet", err)
	}
}

func TestDoorWeightsDecreaseWithDistance(t *testing.T) {
	elevators := []*Elevator{
		testElevatorAt(0, 1),
		testElevatorAt(1, 4),
		testElevatorAt(2, 9),
	}
	for _, wf := range []struct {
		name string
		fn   WeightFunc
	}{
		{name: "inverse", fn: InverseDistanceWeight},
		{name: "exponential", fn: ExponentialDecayWeight(0.5)},
	} {
		t.Run(wf.name, func(t *testing.T) {
			d := &Door{Name: "main", Position: 0, weight: wf.fn}
			weights, err := d.ElevatorWeights(elevators)
			if err != nil {
				t.Fatalf("ElevatorWeights: %v", err)
			}
			if len(weights) != len(elevators) {
				t.Fatalf("got %d weights for %d elevators", len(weights), len(elevators))
			}
			for i, w := range weights {
				if w < 0 {
					t.Fatalf("weight %d is negative: %f", i, w)
				}
				if i > 0 && weights[i-1] <= w {
					t.Fatalf("weights not decreasing with distance: %v", weights)
				}
			}
		})
	}
}
