package engine

// Metrics is a read-only snapshot of the aggregator, safe to hold across
// ticks.
type Metrics struct {
	TotalEnergy       float64            `json:"totalEnergy"`
	PerElevatorEnergy map[string]float64 `json:"perElevatorEnergy"`
	MeanWaitTime      float64            `json:"meanWaitTime"`
	MaxWaitTime       int                `json:"maxWaitTime"`
	SampleCount       int                `json:"sampleCount"`
}

// MetricsAggregator accumulates energy-by-elevator and wait-time samples over
// a run. It is append-only: only the tick orchestrator writes to it, and
// Snapshot never mutates state. Merging two aggregators is commutative, so
// parallel independent runs can reduce into one sink in any order.
type MetricsAggregator struct {
	totalEnergy float64
	perElevator map[string]float64
	waitSum     int64
	waitCount   int
	waitMax     int
}

func NewMetricsAggregator() *MetricsAggregator {
	return &MetricsAggregator{perElevator: make(map[string]float64)}
}

// RecordEnergy accumulates one per-floor energy delta for the named elevator.
func (a *MetricsAggregator) RecordEnergy(elevator string, delta float64) {
	a.totalEnergy += delta
	a.perElevator[elevator] += delta
}

// RecordWait appends one wait-time sample, in ticks.
func (a *MetricsAggregator) RecordWait(ticks int) {
	a.waitSum += int64(ticks)
	a.waitCount++
	if ticks > a.waitMax {
		a.waitMax = ticks
	}
}

// Merge folds another aggregator into this one.
func (a *MetricsAggregator) Merge(other *MetricsAggregator) {
	a.totalEnergy += other.totalEnergy
	for name, e := range other.perElevator {
		a.perElevator[name] += e
	}
	a.waitSum += other.waitSum
	a.waitCount += other.waitCount
	if other.waitMax > a.waitMax {
		a.waitMax = other.waitMax
	}
}

// Snapshot returns the current totals; callable at any tick boundary.
func (a *MetricsAggregator) Snapshot() Metrics {
	per := make(map[string]float64, len(a.perElevator))
	for name, e := range a.perElevator {
		per[name] = e
	}
	mean := 0.0
	if a.waitCount > 0 {
		mean = float64(a.waitSum) / float64(a.waitCount)
	}
	return Metrics{
		TotalEnergy:       a.totalEnergy,
		PerElevatorEnergy: per,
		MeanWaitTime:      mean,
		MaxWaitTime:       a.waitMax,
		SampleCount:       a.waitCount,
	}
}
