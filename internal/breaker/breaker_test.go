package breaker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func failing(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := New("test", Config{MaxFailures: 3, ResetTimeout: time.Minute}, testLogger())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		if err := b.Execute(context.Background(), failing(boom)); !errors.Is(err, boom) {
			t.Fatalf("call %d: err=%v, want boom", i, err)
		}
	}
	if b.State() != Open {
		t.Fatalf("state=%v after %d failures, want open", b.State(), 3)
	}

	called := false
	err := b.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("err=%v while open, want ErrOpen", err)
	}
	if called {
		t.Fatal("op invoked while circuit open")
	}
}

func TestBreakerClosesAfterSuccessfulProbe(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, ResetTimeout: time.Minute}, testLogger())
	now := time.Unix(1000, 0)
	b.now = func() time.Time { return now }

	if err := b.Execute(context.Background(), failing(errors.New("boom"))); err == nil {
		t.Fatal("expected failure")
	}
	if b.State() != Open {
		t.Fatalf("state=%v, want open", b.State())
	}

	// Before the reset timeout: still fast-failing.
	now = now.Add(30 * time.Second)
	if err := b.Execute(context.Background(), failing(nil)); !errors.Is(err, ErrOpen) {
		t.Fatalf("err=%v before timeout, want ErrOpen", err)
	}

	// After the timeout a successful probe closes the circuit.
	now = now.Add(time.Minute)
	if err := b.Execute(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("probe err=%v, want nil", err)
	}
	if b.State() != Closed {
		t.Fatalf("state=%v after probe, want closed", b.State())
	}
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, ResetTimeout: time.Second}, testLogger())
	now := time.Unix(2000, 0)
	b.now = func() time.Time { return now }

	boom := errors.New("boom")
	_ = b.Execute(context.Background(), failing(boom))

	now = now.Add(2 * time.Second)
	if err := b.Execute(context.Background(), failing(boom)); !errors.Is(err, boom) {
		t.Fatalf("probe err=%v, want boom", err)
	}
	if b.State() != Open {
		t.Fatalf("state=%v after failed probe, want open", b.State())
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := New("test", Config{MaxFailures: 2, ResetTimeout: time.Minute}, testLogger())
	boom := errors.New("boom")

	_ = b.Execute(context.Background(), failing(boom))
	if err := b.Execute(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("err=%v, want nil", err)
	}
	_ = b.Execute(context.Background(), failing(boom))
	if b.State() != Closed {
		t.Fatalf("state=%v, want closed after interleaved success", b.State())
	}
}
