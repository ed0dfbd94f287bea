// Package telemetry publishes per-tick simulation reports to an external
// broker so that downstream aggregation can consume them. Kafka and MQTT
// transports are supported; the engine itself never depends on any of this.
package telemetry

import (
	"context"
	"time"

	"github.com/whatsacomputertho/elevator-optimization/internal/engine"
)

// TickReportMessage is the wire form of one tick report.
type TickReportMessage struct {
	RunID       string    `json:"runId"`
	Tick        int       `json:"tick"`
	Arrivals    int       `json:"arrivals"`
	Departures  int       `json:"departures"`
	Boardings   int       `json:"boardings"`
	Alightings  int       `json:"alightings"`
	EnergyDelta float64   `json:"energyDelta"`
	WaitSamples []int     `json:"waitSamples,omitempty"`
	Population  int       `json:"population"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTickReportMessage wraps an engine report for publication.
func NewTickReportMessage(runID string, rep engine.TickReport, now time.Time) TickReportMessage {
	return TickReportMessage{
		RunID:       runID,
		Tick:        rep.Tick,
		Arrivals:    rep.Arrivals,
		Departures:  rep.Departures,
		Boardings:   rep.Boardings,
		Alightings:  rep.Alightings,
		EnergyDelta: rep.EnergyDelta,
		WaitSamples: rep.WaitSamples,
		Population:  rep.Population,
		Timestamp:   now,
	}
}

// Publisher sends tick reports to a broker.
type Publisher interface {
	Publish(ctx context.Context, msg TickReportMessage) error
	Close() error
}

// NopPublisher drops every message; used when telemetry is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, TickReportMessage) error { return nil }
func (NopPublisher) Close() error                                     { return nil }
