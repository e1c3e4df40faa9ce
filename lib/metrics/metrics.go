// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics defines the bot's Prometheus collectors.
//
// All methods on a nil *Metrics are no-ops, so components take an
// optional *Metrics and record unconditionally.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "partycrusher"

// Metrics holds the collectors and the registry they are registered in.
type Metrics struct {
	registry *prometheus.Registry

	listingsOpen    prometheus.Gauge
	listingsCreated prometheus.Counter
	listingsPruned  prometheus.Counter
	transitions     *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	resolverLookups *prometheus.CounterVec
	resolverEvicted prometheus.Counter
	surfaceLatency  *prometheus.HistogramVec
	surfaceFailures *prometheus.CounterVec
}

// New creates the collectors in a fresh registry, together with the
// standard Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		listingsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listings_open",
			Help:      "Listings currently accepting actions.",
		}),
		listingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Listings published.",
		}),
		listingsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_pruned_total",
			Help:      "Terminal listings dropped by the retention sweep.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_actions_total",
			Help:      "Successful listing mutations by action.",
		}, []string{"action"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_rejections_total",
			Help:      "Rejected listing actions by reason.",
		}, []string{"reason"}),
		resolverLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_resolver_lookups_total",
			Help:      "Role handle lookups by result (hit, miss, error).",
		}, []string{"result"}),
		resolverEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_resolver_evictions_total",
			Help:      "Rooms evicted from the role handle cache.",
		}),
		surfaceLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "surface_request_seconds",
			Help:      "Latency of homeserver requests made for a listing, by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		surfaceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surface_failures_total",
			Help:      "Failed homeserver requests made for a listing, by operation.",
		}, []string{"operation"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.listingsOpen,
		m.listingsCreated,
		m.listingsPruned,
		m.transitions,
		m.rejections,
		m.resolverLookups,
		m.resolverEvicted,
		m.surfaceLatency,
		m.surfaceFailures,
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ListingCreated records a published listing.
func (m *Metrics) ListingCreated() {
	if m == nil {
		return
	}
	m.listingsCreated.Inc()
	m.listingsOpen.Inc()
}

// ListingTerminated records an Open listing becoming Closed or Expired.
func (m *Metrics) ListingTerminated(action string) {
	if m == nil {
		return
	}
	m.listingsOpen.Dec()
	m.transitions.WithLabelValues(action).Inc()
}

// ListingsPruned records listings removed by the retention sweep.
func (m *Metrics) ListingsPruned(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.listingsPruned.Add(float64(count))
}

// Action records a successful non-terminal mutation.
func (m *Metrics) Action(action string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action).Inc()
}

// Rejection records an action refused with a user-facing reason.
func (m *Metrics) Rejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// ObserveLookup records a role handle lookup. result is "hit",
// "miss", or "error".
func (m *Metrics) ObserveLookup(result string) {
	if m == nil {
		return
	}
	m.resolverLookups.WithLabelValues(result).Inc()
}

// ObserveEviction records a room dropped from the role handle cache.
func (m *Metrics) ObserveEviction() {
	if m == nil {
		return
	}
	m.resolverEvicted.Inc()
}

// ObserveSurface records one homeserver request made for a listing.
func (m *Metrics) ObserveSurface(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.surfaceLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if err != nil {
		m.surfaceFailures.WithLabelValues(operation).Inc()
	}
}
