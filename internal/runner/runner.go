// Package runner drives a Building through its tick loop on a goroutine,
// folding each report into the Prometheus counters and publishing it through
// the circuit breaker. The HTTP API reads live state through the runner's
// snapshot accessors.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/whatsacomputertho/elevator-optimization/internal/breaker"
	"github.com/whatsacomputertho/elevator-optimization/internal/engine"
	"github.com/whatsacomputertho/elevator-optimization/internal/observability"
	"github.com/whatsacomputertho/elevator-optimization/internal/telemetry"
)

// Config controls how long and how fast the loop runs.
type Config struct {
	// Ticks is the tick budget; 0 means unbounded.
	Ticks int
	// Drain stops the run early once the building is empty and every
	// elevator is idle.
	Drain bool
	// Interval is the wall-clock pacing between ticks; 0 runs flat out.
	Interval time.Duration
}

// Status is a point-in-time view of a run for the HTTP API.
type Status struct {
	RunID      string                 `json:"runId"`
	Tick       int                    `json:"tick"`
	Running    bool                   `json:"running"`
	Population int                    `json:"population"`
	Occupancy  []int                  `json:"occupancy"`
	Elevators  []engine.ElevatorState `json:"elevators"`
}

// Runner owns one simulation run end to end.
type Runner struct {
	log   *slog.Logger
	cfg   Config
	runID string

	pub telemetry.Publisher
	br  *breaker.Breaker
	obs *observability.Metrics

	mu       sync.Mutex
	building *engine.Building
	summary  engine.RunSummary
	running  bool
	runErr   error

	done chan struct{}
}

// New assembles a runner around an already-constructed building. The run id
// tells downstream consumers runs apart; pass "" to mint a fresh one.
func New(b *engine.Building, cfg Config, runID string, pub telemetry.Publisher, br *breaker.Breaker, obs *observability.Metrics, log *slog.Logger) *Runner {
	if runID == "" {
		runID = uuid.New().String()
	}
	return &Runner{
		log:      log.With("component", "runner", "runId", runID),
		cfg:      cfg,
		runID:    runID,
		pub:      pub,
		br:       br,
		obs:      obs,
		building: b,
		done:     make(chan struct{}),
	}
}

// RunID returns the identifier stamped on every published report.
func (r *Runner) RunID() string { return r.runID }

// Done is closed when the loop has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Err returns the error that aborted the run, if any. Valid after Done.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runErr
}

// Start launches the tick loop. It returns immediately; the loop exits on
// context cancellation, on exhausting the tick budget, on drain, or on the
// first engine error.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	r.running = true
	r.mu.Unlock()
	r.log.Info("run starting", "ticks", r.cfg.Ticks, "drain", r.cfg.Drain, "interval", r.cfg.Interval.String())

	go r.loop(ctx)
}

func (r *Runner) loop(ctx context.Context) {
	defer func() {
		r.mu.Lock()
		r.running = false
		if r.summary.Ticks > 0 {
			r.summary.MeanEnergyPerTick = r.summary.TotalEnergy / float64(r.summary.Ticks)
		}
		r.summary.Metrics = r.building.Metrics()
		r.mu.Unlock()
		close(r.done)
		r.log.Info("run finished",
			"ticks", r.summary.Ticks, "arrivals", r.summary.Arrivals,
			"departures", r.summary.Departures, "totalEnergy", r.summary.TotalEnergy,
			"drained", r.summary.Drained)
	}()

	var ticker *time.Ticker
	if r.cfg.Interval > 0 {
		ticker = time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()
	}

	for done := 0; r.cfg.Ticks == 0 || done < r.cfg.Ticks; done++ {
		select {
		case <-ctx.Done():
			r.log.Info("run cancelled", "tick", done)
			return
		default:
		}

		if !r.step(ctx) {
			return
		}

		r.mu.Lock()
		drained := r.cfg.Drain && r.building.Drained()
		if drained {
			r.summary.Drained = true
		}
		r.mu.Unlock()
		if drained {
			r.log.Info("building drained", "tick", done+1)
			return
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				r.log.Info("run cancelled", "tick", done+1)
				return
			case <-ticker.C:
			}
		}
	}
}

// step runs exactly one tick and fans the report out. Returns false when the
// run must stop.
func (r *Runner) step(ctx context.Context) bool {
	r.mu.Lock()
	rep, err := r.building.Tick()
	if err != nil {
		r.runErr = err
		r.mu.Unlock()
		r.log.Error("tick failed", "tick", rep.Tick, "err", err)
		return false
	}
	r.summary.Ticks++
	r.summary.Arrivals += rep.Arrivals
	r.summary.Departures += rep.Departures
	r.summary.Boardings += rep.Boardings
	r.summary.TotalEnergy += rep.EnergyDelta
	r.mu.Unlock()

	r.obs.ObserveTick(rep)

	msg := telemetry.NewTickReportMessage(r.runID, rep, time.Now())
	err = r.br.Execute(ctx, func(ctx context.Context) error {
		return r.pub.Publish(ctx, msg)
	})
	if err != nil {
		if errors.Is(err, breaker.ErrOpen) {
			r.log.Debug("report dropped, breaker open", "tick", rep.Tick)
		} else {
			r.log.Warn("publish failed", "tick", rep.Tick, "err", err)
		}
	}
	return true
}

// Status snapshots the live run for the HTTP API.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		RunID:      r.runID,
		Tick:       r.building.CurrentTick(),
		Running:    r.running,
		Population: r.building.Population(),
		Occupancy:  r.building.Occupancy(),
		Elevators:  r.building.ElevatorStates(),
	}
}

// MetricsSummary snapshots the engine's aggregated wait and energy metrics.
func (r *Runner) MetricsSummary() engine.Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.building.Metrics()
}

// Summary returns the run totals. Fully populated once Done is closed, but
// safe to call mid-run.
func (r *Runner) Summary() engine.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := r.summary
	if sum.Ticks > 0 {
		sum.MeanEnergyPerTick = sum.TotalEnergy / float64(sum.Ticks)
	}
	sum.Metrics = r.building.Metrics()
	return sum
}
