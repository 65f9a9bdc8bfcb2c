// Package metrics collects Prometheus counters for pet account operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the service layer reports to.
type Recorder interface {
	RecordPetOperation(operation string, err error)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	petOperations *prometheus.CounterVec
}

// NewCollector registers the collector's metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		petOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "animalsquad_pet_operations_total",
			Help: "Pet account operations by outcome.",
		}, []string{"operation", "result"}),
	}
	reg.MustRegister(c.petOperations)
	return c
}

// RecordPetOperation counts one operation as success or error.
func (c *Collector) RecordPetOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	c.petOperations.WithLabelValues(operation, result).Inc()
}

// Nop discards everything.
type Nop struct{}

// RecordPetOperation implements Recorder.
func (Nop) RecordPetOperation(string, error) {}

// Handler serves the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
