package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/whatsacomputertho/elevator-optimization/internal/breaker"
	"github.com/whatsacomputertho/elevator-optimization/internal/engine"
	"github.com/whatsacomputertho/elevator-optimization/internal/observability"
	"github.com/whatsacomputertho/elevator-optimization/internal/telemetry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBuilding(t *testing.T, arrivalProb float64) *engine.Building {
	t.Helper()
	cfg := engine.Config{
		FloorCount: 2,
		Elevators: []engine.ElevatorConfig{
			{Name: "A", EnergyUp: 2, EnergyDown: 1},
		},
		Doors: []engine.DoorConfig{
			{Name: "main", ArrivalProb: arrivalProb},
		},
		Transitions: []engine.TransitionDist{
			{Stay: 0.5, To: []float64{0, 0.4}, Leave: 0.1},
			{Stay: 0.7, To: []float64{0.3, 0}},
		},
		Seed: 7,
	}
	b, err := engine.New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

// capturePublisher records every message. Reads happen only after Done, so
// the channel close orders them after the writes.
type capturePublisher struct {
	msgs []telemetry.TickReportMessage
}

func (c *capturePublisher) Publish(_ context.Context, msg telemetry.TickReportMessage) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, telemetry.TickReportMessage) error {
	f.calls++
	return errors.New("broker down")
}

func (f *failingPublisher) Close() error { return nil }

func waitDone(t *testing.T, r *Runner) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not finish in time")
	}
}

func TestRunnerCompletesTickBudget(t *testing.T) {
	r := New(testBuilding(t, 0.5), Config{Ticks: 50}, "",
		telemetry.NopPublisher{}, breaker.New("pub", breaker.Config{}, testLogger()),
		observability.NewMetrics(), testLogger())

	r.Start(context.Background())
	waitDone(t, r)

	if err := r.Err(); err != nil {
		t.Fatalf("run error: %v", err)
	}
	sum := r.Summary()
	if sum.Ticks != 50 {
		t.Errorf("Ticks = %d, want 50", sum.Ticks)
	}
	st := r.Status()
	if st.Running {
		t.Error("Running still true after Done")
	}
	if st.Tick != 50 {
		t.Errorf("Tick = %d, want 50", st.Tick)
	}
	if st.Population != sum.Arrivals-sum.Departures {
		t.Errorf("Population = %d, want arrivals-departures = %d",
			st.Population, sum.Arrivals-sum.Departures)
	}
}

func TestRunnerPublishesEveryTick(t *testing.T) {
	pub := &capturePublisher{}
	r := New(testBuilding(t, 0.5), Config{Ticks: 20}, "",
		pub, breaker.New("pub", breaker.Config{}, testLogger()),
		observability.NewMetrics(), testLogger())

	r.Start(context.Background())
	waitDone(t, r)

	if len(pub.msgs) != 20 {
		t.Fatalf("published %d messages, want 20", len(pub.msgs))
	}
	for i, msg := range pub.msgs {
		if msg.RunID != r.RunID() {
			t.Fatalf("message %d has run id %q, want %q", i, msg.RunID, r.RunID())
		}
		if msg.Tick != i {
			t.Fatalf("message %d has tick %d", i, msg.Tick)
		}
	}
}

func TestRunnerDrainStopsEarly(t *testing.T) {
	// No arrivals: the building is empty and idle after the first tick.
	r := New(testBuilding(t, 0), Config{Ticks: 100, Drain: true}, "",
		telemetry.NopPublisher{}, breaker.New("pub", breaker.Config{}, testLogger()),
		observability.NewMetrics(), testLogger())

	r.Start(context.Background())
	waitDone(t, r)

	sum := r.Summary()
	if !sum.Drained {
		t.Error("Drained = false, want true")
	}
	if sum.Ticks != 1 {
		t.Errorf("Ticks = %d, want 1", sum.Ticks)
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(testBuilding(t, 0.5), Config{Ticks: 0, Interval: time.Millisecond}, "",
		telemetry.NopPublisher{}, breaker.New("pub", breaker.Config{}, testLogger()),
		observability.NewMetrics(), testLogger())

	r.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	waitDone(t, r)

	if r.Summary().Ticks == 0 {
		t.Error("expected at least one tick before cancellation")
	}
}

func TestRunnerSurvivesFailingPublisher(t *testing.T) {
	pub := &failingPublisher{}
	br := breaker.New("pub", breaker.Config{MaxFailures: 2, ResetTimeout: time.Hour}, testLogger())
	r := New(testBuilding(t, 0.5), Config{Ticks: 10}, "",
		pub, br, observability.NewMetrics(), testLogger())

	r.Start(context.Background())
	waitDone(t, r)

	if err := r.Err(); err != nil {
		t.Fatalf("publish failures must not abort the run: %v", err)
	}
	if r.Summary().Ticks != 10 {
		t.Errorf("Ticks = %d, want 10", r.Summary().Ticks)
	}
	if br.State() != breaker.Open {
		t.Errorf("breaker state = %v, want open", br.State())
	}
	// Two failed calls open the circuit; the rest fast-fail.
	if pub.calls != 2 {
		t.Errorf("publisher called %d times, want 2", pub.calls)
	}
}
