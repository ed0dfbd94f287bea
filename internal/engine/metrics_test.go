package engine

import (
	"reflect"
	"testing"
)

func TestMetricsSnapshot(t *testing.T) {
	a := NewMetricsAggregator()
	a.RecordEnergy("A", 2)
	a.RecordEnergy("B", 1)
	a.RecordEnergy("A", 2.5)
	a.RecordWait(3)
	a.RecordWait(1)

	got := a.Snapshot()
	if got.TotalEnergy != 5.5 {
		t.Fatalf("TotalEnergy=%f, want 5.5", got.TotalEnergy)
	}
	if got.PerElevatorEnergy["A"] != 4.5 || got.PerElevatorEnergy["B"] != 1 {
		t.Fatalf("per-elevator energy %v", got.PerElevatorEnergy)
	}
	if got.SampleCount != 2 || got.MeanWaitTime != 2 || got.MaxWaitTime != 3 {
		t.Fatalf("wait stats: count=%d mean=%f max=%d", got.SampleCount, got.MeanWaitTime, got.MaxWaitTime)
	}

	// Snapshot must not alias internal state.
	got.PerElevatorEnergy["A"] = 0
	if a.Snapshot().PerElevatorEnergy["A"] != 4.5 {
		t.Fatal("snapshot aliases aggregator state")
	}
}

func TestMetricsEmptySnapshot(t *testing.T) {
	got := NewMetricsAggregator().Snapshot()
	if got.TotalEnergy != 0 || got.MeanWaitTime != 0 || got.SampleCount != 0 {
		t.Fatalf("empty snapshot not zero: %+v", got)
	}
}

func TestMetricsMergeCommutative(t *testing.T) {
	build := func() (*MetricsAggregator, *MetricsAggregator) {
		a := NewMetricsAggregator()
		a.RecordEnergy("A", 3)
		a.RecordWait(2)
		b := NewMetricsAggregator()
		b.RecordEnergy("A", 1)
		b.RecordEnergy("B", 4)
		b.RecordWait(5)
		b.RecordWait(1)
		return a, b
	}

	a1, b1 := build()
	a1.Merge(b1)
	a2, b2 := build()
	b2.Merge(a2)

	if !reflect.DeepEqual(a1.Snapshot(), b2.Snapshot()) {
		t.Fatalf("merge order matters:\n%+v\n%+v", a1.Snapshot(), b2.Snapshot())
	}
}
