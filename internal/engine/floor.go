package engine

import (
	"fmt"
	"math"
)

// distTolerance is the floating point slack allowed when checking that a
// transition distribution sums to one.
const distTolerance = 1e-9

// TransitionKind enumerates the outcomes a resident can sample each tick.
type TransitionKind int

const (
	TransitionStay TransitionKind = iota
	TransitionRequest
	TransitionLeave
)

// Transition is one sampled outcome; Target is meaningful only for
// TransitionRequest.
type Transition struct {
	Kind   TransitionKind
	Target int
}

// TransitionDist is the per-floor categorical distribution over
// stay / go-to-floor / leave. Stay + sum(To) + Leave must equal one, To must
// have one entry per floor with zero mass on the floor's own index, and Leave
// must be zero everywhere except the ground floor.
type TransitionDist struct {
	Stay  float64
	To    []float64
	Leave float64
}

func (d TransitionDist) validate(floor, floorCount int) error {
	if len(d.To) != floorCount {
		return fmt.Errorf("%w: floor %d has %d destination weights, want %d",
			ErrInvalidDistribution, floor, len(d.To), floorCount)
	}
	if d.Stay < 0 || d.Leave < 0 {
		return fmt.Errorf("%w: floor %d has negative stay/leave probability", ErrInvalidDistribution, floor)
	}
	sum := d.Stay + d.Leave
	for i, p := range d.To {
		if p < 0 {
			return fmt.Errorf("%w: floor %d has negative destination probability for floor %d",
				ErrInvalidDistribution, floor, i)
		}
		sum += p
	}
	if d.To[floor] != 0 {
		return fmt.Errorf("%w: floor %d assigns mass to itself", ErrInvalidDistribution, floor)
	}
	if floor != 0 && d.Leave != 0 {
		return fmt.Errorf("%w: floor %d allows leaving off the ground floor", ErrInvalidDistribution, floor)
	}
	if math.Abs(sum-1.0) > distTolerance {
		return fmt.Errorf("%w: floor %d probabilities sum to %f, want 1", ErrInvalidDistribution, floor, sum)
	}
	return nil
}

// Floor holds the set of persons currently resident on it. Residents are kept
// in admission order so per-tick sampling consumes randomness in a
// reproducible sequence.
type Floor struct {
	index     int
	dist      TransitionDist
	residents map[string]*Person
	order     []string
}

func newFloor(index int, dist TransitionDist) *Floor {
	return &Floor{
		index:     index,
		dist:      dist,
		residents: make(map[string]*Person),
	}
}

// Admit adds a person to the floor's resident set.
func (f *Floor) Admit(p *Person) {
	f.residents[p.ID] = p
	f.order = append(f.order, p.ID)
}

// Remove detaches a person from the floor, e.g. on boarding or exit.
func (f *Floor) Remove(id string) (*Person, error) {
	p, ok := f.residents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q on floor %d", ErrPersonNotFound, id, f.index)
	}
	delete(f.residents, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return p, nil
}

// Len returns the number of residents.
func (f *Floor) Len() int {
	return len(f.residents)
}

// Persons returns the residents in admission order.
func (f *Floor) Persons() []*Person {
	out := make([]*Person, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.residents[id])
	}
	return out
}

// SampleTransition draws one outcome from the floor's transition
// distribution. A Leave sampled off the ground floor means the distribution
// was misconfigured and is reported as ErrInvalidTransition; validation at
// construction makes this unreachable.
func (f *Floor) SampleTransition(p *Person, model *ProbabilityModel) (Transition, error) {
	weights := make([]float64, 0, len(f.dist.To)+2)
	weights = append(weights, f.dist.Stay)
	weights = append(weights, f.dist.To...)
	weights = append(weights, f.dist.Leave)

	idx, err := model.Categorical(weights)
	if err != nil {
		return Transition{}, err
	}
	switch {
	case idx == 0:
		return Transition{Kind: TransitionStay}, nil
	case idx == len(weights)-1:
		if f.index != 0 {
			return Transition{}, fmt.Errorf("%w: person %q sampled leave on floor %d",
				ErrInvalidTransition, p.ID, f.index)
		}
		return Transition{Kind: TransitionLeave}, nil
	default:
		return Transition{Kind: TransitionRequest, Target: idx - 1}, nil
	}
}
