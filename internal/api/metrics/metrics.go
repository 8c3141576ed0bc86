// Package metrics defines and registers all custom Prometheus metrics for the
// listing API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics register themselves with the default registry at init via promauto;
// importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "listing"

// SearchesTotal counts listing searches.
// Label:
//   - cache: "hit" (served from cache), "miss" (queried and cached), or
//     "bypass" (cache unavailable)
var SearchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Total number of listing searches, labelled by cache outcome.",
	},
	[]string{"cache"},
)

// TogglesTotal counts favorite/comparison toggles.
// Labels:
//   - list: "favorites" or "comparisons"
//   - action: "added" or "removed"
var TogglesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "toggles_total",
		Help:      "Total number of favorite and comparison toggles.",
	},
	[]string{"list", "action"},
)

// MessagesSentTotal counts persisted messages.
// Label:
//   - source: "rest" or "socket"
var MessagesSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of messages persisted, by entry point.",
	},
	[]string{"source"},
)

// MessagesRelayedTotal counts envelopes delivered to live sessions.
var MessagesRelayedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_relayed_total",
		Help:      "Total number of envelopes delivered to connected sessions.",
	},
)

// SocketConnections tracks currently open relay connections.
var SocketConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "socket_connections",
		Help:      "Current number of open relay connections.",
	},
)
