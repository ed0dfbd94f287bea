package engine

import (
	"fmt"
	"log/slog"
)

// ElevatorConfig describes one elevator car.
type ElevatorConfig struct {
	Name string
	// Home is the elevator's lobby position on the same axis as door
	// positions; doors weight elevator choice by distance to it.
	Home               float64
	InitialFloor       int
	EnergyUp           float64
	EnergyDown         float64
	EnergyPerPassenger float64
}

// DoorConfig describes one building entrance.
type DoorConfig struct {
	Name        string
	Position    float64
	ArrivalProb float64
}

// Config is the already-validated-in-memory configuration the engine accepts;
// parsing external representations is the config loader's job.
type Config struct {
	FloorCount  int
	Elevators   []ElevatorConfig
	Doors       []DoorConfig
	Transitions []TransitionDist
	Seed        int64
	// Weight is the dispatch weighting policy; nil selects
	// InverseDistanceWeight.
	Weight WeightFunc
}

// Building owns all floors, elevators and doors and drives the five-phase
// tick: arrivals, dispatch, elevator steps, floor transitions, exits. All
// processing is single-threaded; one tick completes fully before the next
// begins.
type Building struct {
	log   *slog.Logger
	model *ProbabilityModel

	floors    []*Floor
	elevators []*Elevator
	doors     []*Door
	metrics   *MetricsAggregator
	weight    WeightFunc

	tick       int
	nextID     int
	population int

	// pendingDispatch holds persons admitted in the arrival phase of the
	// current tick, in arrival order, alongside the door each came through.
	pendingDispatch []*Person
	arrivalDoors    []*Door
}

// New validates the configuration and constructs a Building. No partial
// Building is ever returned: any validation failure is fatal.
func New(cfg Config, log *slog.Logger) (*Building, error) {
	if cfg.FloorCount <= 0 {
		return nil, fmt.Errorf("%w: floor count %d", ErrInvalidConfiguration, cfg.FloorCount)
	}
	if len(cfg.Elevators) == 0 {
		return nil, fmt.Errorf("%w: no elevators", ErrInvalidConfiguration)
	}
	if len(cfg.Doors) == 0 {
		return nil, fmt.Errorf("%w: no doors", ErrInvalidConfiguration)
	}
	if len(cfg.Transitions) != cfg.FloorCount {
		return nil, fmt.Errorf("%w: %d transition distributions for %d floors",
			ErrInvalidConfiguration, len(cfg.Transitions), cfg.FloorCount)
	}

	names := make(map[string]struct{}, len(cfg.Elevators))
	for _, ec := range cfg.Elevators {
		if ec.Name == "" {
			return nil, fmt.Errorf("%w: elevator with empty name", ErrInvalidConfiguration)
		}
		if _, dup := names[ec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate elevator name %q", ErrInvalidConfiguration, ec.Name)
		}
		names[ec.Name] = struct{}{}
		if ec.InitialFloor < 0 || ec.InitialFloor >= cfg.FloorCount {
			return nil, fmt.Errorf("%w: elevator %q starts on floor %d of %d",
				ErrInvalidConfiguration, ec.Name, ec.InitialFloor, cfg.FloorCount)
		}
		if ec.EnergyUp < 0 || ec.EnergyDown < 0 || ec.EnergyPerPassenger < 0 {
			return nil, fmt.Errorf("%w: elevator %q has negative energy cost", ErrInvalidConfiguration, ec.Name)
		}
	}

	arrivalsPossible := false
	for _, dc := range cfg.Doors {
		if dc.ArrivalProb < 0 || dc.ArrivalProb > 1 {
			return nil, fmt.Errorf("%w: door %q arrival probability %f",
				ErrInvalidConfiguration, dc.Name, dc.ArrivalProb)
		}
		if dc.ArrivalProb > 0 {
			arrivalsPossible = true
		}
	}

	for i, dist := range cfg.Transitions {
		if err := dist.validate(i, cfg.FloorCount); err != nil {
			return nil, err
		}
	}
	if arrivalsPossible {
		mass := 0.0
		for _, p := range cfg.Transitions[0].To {
			mass += p
		}
		if mass <= 0 {
			return nil, fmt.Errorf("%w: arrivals enabled but ground floor has no destination mass",
				ErrInvalidConfiguration)
		}
	}

	weight := cfg.Weight
	if weight == nil {
		weight = InverseDistanceWeight
	}

	b := &Building{
		log:     log.With("component", "building"),
		model:   NewProbabilityModel(cfg.Seed),
		metrics: NewMetricsAggregator(),
		weight:  weight,
	}
	for i := 0; i < cfg.FloorCount; i++ {
		b.floors = append(b.floors, newFloor(i, cfg.Transitions[i]))
	}
	for i, ec := range cfg.Elevators {
		b.elevators = append(b.elevators, newElevator(i, ec, cfg.FloorCount, log))
	}
	for _, dc := range cfg.Doors {
		b.doors = append(b.doors, &Door{
			Name:        dc.Name,
			Position:    dc.Position,
			ArrivalProb: dc.ArrivalProb,
			weight:      weight,
		})
	}
	b.log.Info("building constructed",
		"floors", cfg.FloorCount, "elevators", len(cfg.Elevators), "doors", len(cfg.Doors), "seed", cfg.Seed)
	return b, nil
}

// CurrentTick returns the number of completed ticks.
func (b *Building) CurrentTick() int { return b.tick }

// Population returns the number of persons currently inside the building.
func (b *Building) Population() int { return b.population }

// Metrics returns a read-only snapshot of the run metrics.
func (b *Building) Metrics() Metrics { return b.metrics.Snapshot() }

// Occupancy returns the resident count per floor.
func (b *Building) Occupancy() []int {
	out := make([]int, len(b.floors))
	for i, f := range b.floors {
		out[i] = f.Len()
	}
	return out
}

// ElevatorState is a point-in-time view of one car for external reporters.
type ElevatorState struct {
	Name             string  `json:"name"`
	Floor            int     `json:"floor"`
	QueueLen         int     `json:"queueLen"`
	Onboard          int     `json:"onboard"`
	CumulativeEnergy float64 `json:"cumulativeEnergy"`
}

// ElevatorStates returns a snapshot per elevator in index order.
func (b *Building) ElevatorStates() []ElevatorState {
	out := make([]ElevatorState, len(b.elevators))
	for i, e := range b.elevators {
		out[i] = ElevatorState{
			Name:             e.Name(),
			Floor:            e.CurrentFloor(),
			QueueLen:         e.QueueLen(),
			Onboard:          e.OnboardCount(),
			CumulativeEnergy: e.CumulativeEnergy(),
		}
	}
	return out
}

// Tick runs the five phases of one simulation step in their fixed order and
// reports what happened. Runtime errors out of a phase indicate an engine
// invariant violation; the run must be aborted.
func (b *Building) Tick() (TickReport, error) {
	rep := TickReport{Tick: b.tick}

	if err := b.arrivalPhase(&rep); err != nil {
		return rep, err
	}
	if err := b.dispatchPhase(&rep); err != nil {
		return rep, err
	}
	if err := b.stepPhase(&rep); err != nil {
		return rep, err
	}
	if err := b.transitionPhase(&rep); err != nil {
		return rep, err
	}
	if err := b.exitPhase(&rep); err != nil {
		return rep, err
	}

	rep.Population = b.population
	b.tick++
	return rep, nil
}

// arrivalPhase samples one Bernoulli trial per door and admits new persons to
// the ground floor.
func (b *Building) arrivalPhase(rep *TickReport) error {
	for _, d := range b.doors {
		arrived, err := b.model.Bernoulli(d.ArrivalProb)
		if err != nil {
			return err
		}
		if !arrived {
			continue
		}
		b.nextID++
		p := newPerson(fmt.Sprintf("p-%d", b.nextID))
		b.floors[0].Admit(p)
		b.population++
		rep.Arrivals++
		b.pendingDispatch = append(b.pendingDispatch, p)
		b.arrivalDoors = append(b.arrivalDoors, d)
		b.log.Debug("person arrived", "person", p.ID, "door", d.Name, "tick", b.tick)
	}
	return nil
}

// dispatchPhase serves the persons admitted this tick: each samples a
// destination from the ground floor's distribution and an elevator from the
// arrival door's distance weights, then the request is issued and the wait
// clock starts.
func (b *Building) dispatchPhase(rep *TickReport) error {
	for i, p := range b.pendingDispatch {
		dest, err := b.model.Categorical(b.floors[0].dist.To)
		if err != nil {
			return err
		}
		weights, err := b.arrivalDoors[i].ElevatorWeights(b.elevators)
		if err != nil {
			return err
		}
		if err := b.issueRequest(p, 0, dest, weights); err != nil {
			return err
		}
		rep.Dispatches++
	}
	b.pendingDispatch = b.pendingDispatch[:0]
	b.arrivalDoors = b.arrivalDoors[:0]
	return nil
}

// stepPhase advances every elevator in ascending index order so ties resolve
// reproducibly.
func (b *Building) stepPhase(rep *TickReport) error {
	for _, e := range b.elevators {
		res, err := e.Step(b.tick, b.floors, b.metrics)
		if err != nil {
			return err
		}
		rep.EnergyDelta += res.EnergyDelta
		rep.Boardings += res.Boardings
		rep.Alightings += res.Alightings
		rep.WaitSamples = append(rep.WaitSamples, res.WaitSamples...)
	}
	return nil
}

// transitionPhase samples a transition for every resident without an
// outstanding request, floor by floor in ascending order. RequestFloor
// immediately issues an elevator request; Leave marks ground-floor residents
// for the exit phase.
func (b *Building) transitionPhase(rep *TickReport) error {
	for _, f := range b.floors {
		for _, p := range f.Persons() {
			if p.Waiting() || p.Leaving {
				continue
			}
			tr, err := f.SampleTransition(p, b.model)
			if err != nil {
				return err
			}
			switch tr.Kind {
			case TransitionStay:
			case TransitionLeave:
				p.Leaving = true
			case TransitionRequest:
				weights, err := b.floorWeights(f.index)
				if err != nil {
					return err
				}
				if err := b.issueRequest(p, f.index, tr.Target, weights); err != nil {
					return err
				}
				rep.Dispatches++
			}
		}
	}
	return nil
}

// exitPhase removes ground-floor residents who sampled Leave and destroys
// them.
func (b *Building) exitPhase(rep *TickReport) error {
	ground := b.floors[0]
	for _, p := range ground.Persons() {
		if !p.Leaving {
			continue
		}
		if _, err := ground.Remove(p.ID); err != nil {
			return err
		}
		b.population--
		rep.Departures++
		b.log.Debug("person left", "person", p.ID, "tick", b.tick)
	}
	return nil
}

// issueRequest picks an elevator by categorical draw over the given weights,
// records the assignment on the person and enqueues the pickup. The wait
// clock starts now, at request time, not at boarding.
func (b *Building) issueRequest(p *Person, fromFloor, dest int, weights []float64) error {
	idx, err := b.model.Categorical(weights)
	if err != nil {
		return err
	}
	e := b.elevators[idx]
	if err := e.Request(fromFloor, dest, b.tick); err != nil {
		return err
	}
	p.Dest = dest
	p.WaitStart = b.tick
	p.Assigned = idx
	b.log.Debug("request dispatched",
		"person", p.ID, "from", fromFloor, "to", dest, "elevator", e.Name(), "tick", b.tick)
	return nil
}

// floorWeights weights each elevator for a request originating on the given
// floor by the distance between the car's current floor and that floor.
func (b *Building) floorWeights(floor int) ([]float64, error) {
	if len(b.elevators) == 0 {
		return nil, ErrEmptyElevatorSet
	}
	weights := make([]float64, len(b.elevators))
	for i, e := range b.elevators {
		d := float64(e.CurrentFloor() - floor)
		if d < 0 {
			d = -d
		}
		weights[i] = b.weight(d)
	}
	return weights, nil
}

// Run drives nTicks consecutive ticks.
func (b *Building) Run(nTicks int) (RunSummary, error) {
	return b.run(nTicks, false)
}

// RunDrain ticks until the building is empty with no pending elevator work,
// or until maxTicks have elapsed.
func (b *Building) RunDrain(maxTicks int) (RunSummary, error) {
	return b.run(maxTicks, true)
}

func (b *Building) run(nTicks int, drain bool) (RunSummary, error) {
	sum := RunSummary{}
	for i := 0; i < nTicks; i++ {
		if drain && b.Drained() {
			sum.Drained = true
			break
		}
		rep, err := b.Tick()
		if err != nil {
			return sum, err
		}
		sum.Ticks++
		sum.Arrivals += rep.Arrivals
		sum.Departures += rep.Departures
		sum.Boardings += rep.Boardings
		sum.TotalEnergy += rep.EnergyDelta
	}
	if drain && b.Drained() {
		sum.Drained = true
	}
	if sum.Ticks > 0 {
		sum.MeanEnergyPerTick = sum.TotalEnergy / float64(sum.Ticks)
	}
	sum.Metrics = b.metrics.Snapshot()
	return sum, nil
}

// Drained reports whether the building is empty with no pending elevator
// work.
func (b *Building) Drained() bool {
	if b.population != 0 {
		return false
	}
	for _, e := range b.elevators {
		if !e.Idle() {
			return false
		}
	}
	return true
}
