package engine

// Person is an ephemeral occupant of the building. Location is tracked by
// whichever Floor or Elevator currently owns the Person; ownership transfers
// whole within a single tick phase, never split.
type Person struct {
	ID string

	// Dest is the destination floor of the current trip, -1 when the person
	// has no pending trip.
	Dest int

	// WaitStart is the tick the current elevator request was issued, -1 when
	// the person is not waiting.
	WaitStart int

	// Assigned is the index of the elevator dispatched to serve the current
	// request, -1 when none.
	Assigned int

	// Leaving marks a ground-floor resident who sampled Leave this tick and
	// exits during the exit phase.
	Leaving bool
}

func newPerson(id string) *Person {
	return &Person{ID: id, Dest: -1, WaitStart: -1, Assigned: -1}
}

// Waiting reports whether the person has an outstanding elevator request.
func (p *Person) Waiting() bool {
	return p.Assigned >= 0
}
