// Package metrics exposes Prometheus instruments for beacon monitoring and
// advertising.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values.
const (
	ResultMatched = "matched"
	ResultIgnored = "ignored"

	TransitionEnter = "enter"
	TransitionExit  = "exit"
)

// Metrics holds the fence instruments.
// All methods are safe on a nil *Metrics and do nothing.
type Metrics struct {
	Readings    *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	Inside      prometheus.Gauge
	Distance    prometheus.Gauge
	Advertising prometheus.Gauge
}

// New creates the instruments and registers them on reg.
// A nil reg registers on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Readings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "beaconfence_readings_total",
			Help: "Readings delivered by the scanner, by whether they matched the monitored beacon",
		}, []string{"result"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "beaconfence_region_transitions_total",
			Help: "Region enter and exit transitions",
		}, []string{"transition"}),
		Inside: factory.NewGauge(prometheus.GaugeOpts{
			Name: "beaconfence_inside",
			Help: "Whether the monitored beacon is currently in range (1) or not (0)",
		}),
		Distance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "beaconfence_distance_meters",
			Help: "Last estimated distance to the monitored beacon, -1 when unknown",
		}),
		Advertising: factory.NewGauge(prometheus.GaugeOpts{
			Name: "beaconfence_advertising",
			Help: "Whether the emitter is advertising (1) or idle (0)",
		}),
	}
}

// ObserveReading counts one reading.
func (m *Metrics) ObserveReading(matched bool) {
	if m == nil {
		return
	}
	result := ResultIgnored
	if matched {
		result = ResultMatched
	}
	m.Readings.WithLabelValues(result).Inc()
}

// RecordEnter counts an enter transition and marks the beacon in range.
func (m *Metrics) RecordEnter() {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(TransitionEnter).Inc()
	m.Inside.Set(1)
}

// RecordExit counts an exit transition and marks the beacon out of range.
func (m *Metrics) RecordExit() {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(TransitionExit).Inc()
	m.Inside.Set(0)
}

// SetDistance records the last distance estimate in meters.
func (m *Metrics) SetDistance(meters float64) {
	if m == nil {
		return
	}
	m.Distance.Set(meters)
}

// SetAdvertising records the emitter state.
func (m *Metrics) SetAdvertising(advertising bool) {
	if m == nil {
		return
	}
	if advertising {
		m.Advertising.Set(1)
	} else {
		m.Advertising.Set(0)
	}
}
