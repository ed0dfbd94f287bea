package engine

import "errors"

// Sentinel errors returned by the engine. Configuration errors are fatal at
// construction; ErrPersonNotFound and ErrInvalidTransition signal an engine
// invariant violation and abort the run.
var (
	ErrInvalidDistribution  = errors.New("invalid probability distribution")
	ErrInvalidConfiguration = errors.New("invalid building configuration")
	ErrInvalidFloor         = errors.New("target floor out of range")
	ErrPersonNotFound       = errors.New("person not found")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrEmptyElevatorSet     = errors.New("empty elevator set")
)
