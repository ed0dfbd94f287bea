package engine

import (
	"fmt"
	"log/slog"
)

// target is one queued stop together with the tick it was enqueued on. The
// enqueue tick gates same-floor pickups: a hail from the floor the elevator
// is already on is serviced on the following tick, never the tick it was
// issued.
type target struct {
	floor int
	tick  int
}

// Elevator is a shared car with a FIFO destination queue. It moves at most
// one floor per tick toward the head of the queue and charges energy per
// floor moved: energyUp or energyDown for the car plus energyPerPassenger for
// each person on board. Idling costs nothing.
type Elevator struct {
	index int
	name  string
	home  float64
	log   *slog.Logger

	floor      int
	floorCount int
	targets    []target

	onboard map[string]*Person
	order   []string

	energyUp           float64
	energyDown         float64
	energyPerPassenger float64
	energy             float64
}

func newElevator(index int, cfg ElevatorConfig, floorCount int, log *slog.Logger) *Elevator {
	return &Elevator{
		index:              index,
		name:               cfg.Name,
		home:               cfg.Home,
		log:                log.With("component", "elevator", "elevator", cfg.Name),
		floor:              cfg.InitialFloor,
		floorCount:         floorCount,
		onboard:            make(map[string]*Person),
		energyUp:           cfg.EnergyUp,
		energyDown:         cfg.EnergyDown,
		energyPerPassenger: cfg.EnergyPerPassenger,
	}
}

func (e *Elevator) Name() string              { return e.name }
func (e *Elevator) CurrentFloor() int         { return e.floor }
func (e *Elevator) CumulativeEnergy() float64 { return e.energy }
func (e *Elevator) QueueLen() int             { return len(e.targets) }
func (e *Elevator) OnboardCount() int         { return len(e.onboard) }

// Idle reports whether the elevator has nothing queued and no passengers.
func (e *Elevator) Idle() bool {
	return len(e.targets) == 0 && len(e.onboard) == 0
}

// Request enqueues a pickup at fromFloor for a trip to targetFloor. Both
// floors must be in range; an out-of-range request is rejected with
// ErrInvalidFloor and leaves the queue untouched. Re-requesting a floor that
// is already queued is a no-op.
func (e *Elevator) Request(fromFloor, targetFloor, tick int) error {
	if fromFloor < 0 || fromFloor >= e.floorCount {
		return fmt.Errorf("%w: pickup floor %d, building has %d floors", ErrInvalidFloor, fromFloor, e.floorCount)
	}
	if targetFloor < 0 || targetFloor >= e.floorCount {
		return fmt.Errorf("%w: target floor %d, building has %d floors", ErrInvalidFloor, targetFloor, e.floorCount)
	}
	e.enqueue(fromFloor, tick)
	return nil
}

func (e *Elevator) enqueue(floor, tick int) {
	for _, t := range e.targets {
		if t.floor == floor {
			return
		}
	}
	e.targets = append(e.targets, target{floor: floor, tick: tick})
}

// StepResult summarizes one elevator tick for the orchestrator.
type StepResult struct {
	MovedFloors int
	EnergyDelta float64
	Boardings   int
	Alightings  int
	WaitSamples []int
}

// Step advances the elevator by one tick. If the head target was reached on
// an earlier tick the doors open first (passengers exchange without
// movement); then the car moves at most one floor toward the head of the
// queue, accruing energy, and exchanges passengers on arrival.
func (e *Elevator) Step(tick int, floors []*Floor, metrics *MetricsAggregator) (StepResult, error) {
	res := StepResult{}
	if len(e.targets) == 0 {
		return res, nil
	}

	if head := e.targets[0]; head.floor == e.floor {
		if head.tick >= tick {
			// Hailed from this very floor this tick; doors open next tick.
			return res, nil
		}
		if err := e.exchange(tick, floors[e.floor], metrics, &res); err != nil {
			return res, err
		}
	}

	if len(e.targets) == 0 {
		return res, nil
	}
	head := e.targets[0]
	if head.floor == e.floor {
		return res, nil
	}

	delta := e.energyDown
	if head.floor > e.floor {
		e.floor++
		delta = e.energyUp
	} else {
		e.floor--
	}
	delta += e.energyPerPassenger * float64(len(e.onboard))
	e.energy += delta
	res.MovedFloors++
	res.EnergyDelta += delta
	metrics.RecordEnergy(e.name, delta)

	if e.targets[0].floor == e.floor {
		if err := e.exchange(tick, floors[e.floor], metrics, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// exchange opens the doors at the current floor: the head target is dequeued,
// passengers destined here alight, and residents dispatched to this elevator
// board. Boarding clears the wait clock and emits one wait-time sample per
// boarder.
func (e *Elevator) exchange(tick int, floor *Floor, metrics *MetricsAggregator, res *StepResult) error {
	e.targets = e.targets[1:]

	for _, id := range append([]string(nil), e.order...) {
		p := e.onboard[id]
		if p.Dest != e.floor {
			continue
		}
		e.removeOnboard(id)
		p.Dest = -1
		floor.Admit(p)
		res.Alightings++
	}

	for _, p := range floor.Persons() {
		if p.Assigned != e.index {
			continue
		}
		if _, err := floor.Remove(p.ID); err != nil {
			return err
		}
		wait := tick - p.WaitStart
		metrics.RecordWait(wait)
		res.WaitSamples = append(res.WaitSamples, wait)
		res.Boardings++
		p.WaitStart = -1
		p.Assigned = -1
		e.onboard[p.ID] = p
		e.order = append(e.order, p.ID)
		e.enqueue(p.Dest, tick)
	}

	e.log.Debug("doors opened", "floor", e.floor, "tick", tick,
		"boarded", res.Boardings, "alighted", res.Alightings)
	return nil
}

func (e *Elevator) removeOnboard(id string) {
	delete(e.onboard, id)
	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			return
		}
	}
}
