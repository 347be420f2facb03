// Copyright (c) 2026 Meridia Health. All rights reserved.

/*
Package metrics provides Prometheus instrumentation for the sync API.

It exposes a small [Collector] facade so domain services record events through
an interface rather than touching Prometheus primitives directly.

Exposed series:

  - meridia_preference_upserts_total: Accepted preference document writes.
  - meridia_preference_reads_total: Preference document reads, by source (cache/database/default).
  - meridia_http_status_total: Responses by HTTP status code.
*/
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface domain services use to record metric events.
type Recorder interface {
	RecordUpsert()
	RecordRead(source string)
	RecordHTTPStatus(statusCode int)
}

// Read sources recorded by [Recorder.RecordRead].
const (
	ReadSourceCache    = "cache"
	ReadSourceDatabase = "database"
	ReadSourceDefault  = "default"
)

// Collector is the Prometheus-backed [Recorder] implementation.
type Collector struct {
	upserts    prometheus.Counter
	reads      *prometheus.CounterVec
	httpStatus *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its series on the registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upserts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meridia_preference_upserts_total",
			Help: "Total accepted preference document writes.",
		}),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meridia_preference_reads_total",
			Help: "Total preference document reads by source.",
		}, []string{"source"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meridia_http_status_total",
			Help: "Total HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.upserts, c.reads, c.httpStatus)

	return c
}

// RecordUpsert counts an accepted preference document write.
func (c *Collector) RecordUpsert() {
	c.upserts.Inc()
}

// RecordRead counts a preference document read from the given source.
func (c *Collector) RecordRead(source string) {
	c.reads.WithLabelValues(source).Inc()
}

// RecordHTTPStatus counts a finished response by its status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the Prometheus scrape handler for the registry.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop is a [Recorder] that discards all events. Useful in tests and in the
// companion binary where no scrape endpoint exists.
type Noop struct{}

// RecordUpsert implements [Recorder].
func (Noop) RecordUpsert() {}

// RecordRead implements [Recorder].
func (Noop) RecordRead(string) {}

// RecordHTTPStatus implements [Recorder].
func (Noop) RecordHTTPStatus(int) {}
