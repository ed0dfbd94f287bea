package engine

// TickReport summarizes the events of one tick for external reporters. The
// engine itself never reads it back.
type TickReport struct {
	Tick        int     `json:"tick"`
	Arrivals    int     `json:"arrivals"`
	Departures  int     `json:"departures"`
	Dispatches  int     `json:"dispatches"`
	Boardings   int     `json:"boardings"`
	Alightings  int     `json:"alightings"`
	EnergyDelta float64 `json:"energyDelta"`
	WaitSamples []int   `json:"waitSamples,omitempty"`
	Population  int     `json:"population"`
}

// RunSummary aggregates a whole run of repeated ticks.
type RunSummary struct {
	Ticks             int     `json:"ticks"`
	Arrivals          int     `json:"arrivals"`
	Departures        int     `json:"departures"`
	Boardings         int     `json:"boardings"`
	TotalEnergy       float64 `json:"totalEnergy"`
	MeanEnergyPerTick float64 `json:"meanEnergyPerTick"`
	Drained           bool    `json:"drained"`
	Metrics           Metrics `json:"metrics"`
}
