// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics holds the Prometheus collectors of the drawer-sync client.
//
// A nil *Metrics is valid: every method is a no-op, so components can be
// constructed without metrics in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "drawer_sync"

type Metrics struct {
	registry *prometheus.Registry

	channelConnected prometheus.Gauge
	reconnects       prometheus.Counter
	inbound          *prometheus.CounterVec
	duplicates       prometheus.Counter

	pendingOperations prometheus.Gauge
	replays           *prometheus.CounterVec
	droppedOperations prometheus.Counter

	conflicts        prometheus.Gauge
	conflictsCreated prometheus.Counter

	peers           *prometheus.GaugeVec
	peersGone       prometheus.Counter
	presenceSent    prometheus.Counter
	presenceDropped *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// channelConnected is 1 while the room channel is open.
		channelConnected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "connected",
			Help:      "Whether the room channel is currently open",
		}),
		reconnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "reconnects_total",
			Help:      "Scheduled reconnect attempts of the room channel",
		}),
		// Labels: type (wire message type)
		inbound: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "inbound_messages_total",
			Help:      "Inbound room messages by type",
		}, []string{"type"}),
		duplicates: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "duplicate_frames_total",
			Help:      "Inbound frames dropped as duplicates",
		}),

		pendingOperations: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "pending_operations",
			Help:      "Mutations waiting to be replayed",
		}),
		// Labels: result (ok, failed, conflict, redundant)
		replays: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "replays_total",
			Help:      "Replay attempts of queued mutations by result",
		}, []string{"result"}),
		droppedOperations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "dropped_operations_total",
			Help:      "Queued mutations dropped after exhausting retries",
		}),

		conflicts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "conflicts",
			Name:      "open",
			Help:      "Unresolved conflicts, active one included",
		}),
		conflictsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conflicts",
			Name:      "created_total",
			Help:      "Conflicts detected between queued and remote writes",
		}),

		// Labels: state (peer negotiation state)
		peers: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "presence",
			Name:      "peers",
			Help:      "Presence peer sessions by state",
		}, []string{"state"}),
		peersGone: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "presence",
			Name:      "peers_gone_total",
			Help:      "Peer sessions torn down after exhausting reconnects",
		}),
		presenceSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "presence",
			Name:      "sent_total",
			Help:      "Presence payloads broadcast to peers",
		}),
		// Labels: reason (rate_limited, touch, no_peers)
		presenceDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "presence",
			Name:      "dropped_total",
			Help:      "Presence payloads not broadcast by reason",
		}, []string{"reason"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ChannelConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.channelConnected.Set(1)
		return
	}
	m.channelConnected.Set(0)
}

func (m *Metrics) Reconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) Inbound(messageType string) {
	if m == nil {
		return
	}
	m.inbound.WithLabelValues(messageType).Inc()
}

func (m *Metrics) Duplicate() {
	if m == nil {
		return
	}
	m.duplicates.Inc()
}

func (m *Metrics) PendingOperations(n int) {
	if m == nil {
		return
	}
	m.pendingOperations.Set(float64(n))
}

// Replay counts one replay outcome.
func (m *Metrics) Replay(result string) {
	if m == nil {
		return
	}
	m.replays.WithLabelValues(result).Inc()
}

func (m *Metrics) DroppedOperation() {
	if m == nil {
		return
	}
	m.droppedOperations.Inc()
}

func (m *Metrics) OpenConflicts(n int) {
	if m == nil {
		return
	}
	m.conflicts.Set(float64(n))
}

func (m *Metrics) ConflictCreated() {
	if m == nil {
		return
	}
	m.conflictsCreated.Inc()
}

// PeerTransition moves one peer session from state from to state to. An
// empty from or to leaves that side untouched.
func (m *Metrics) PeerTransition(from, to string) {
	if m == nil {
		return
	}
	if from != "" {
		m.peers.WithLabelValues(from).Dec()
	}
	if to != "" {
		m.peers.WithLabelValues(to).Inc()
	}
}

func (m *Metrics) PeerGone() {
	if m == nil {
		return
	}
	m.peersGone.Inc()
}

func (m *Metrics) PresenceSent() {
	if m == nil {
		return
	}
	m.presenceSent.Inc()
}

func (m *Metrics) PresenceDropped(reason string) {
	if m == nil {
		return
	}
	m.presenceDropped.WithLabelValues(reason).Inc()
}
