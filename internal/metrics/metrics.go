/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package metrics holds the Prometheus instruments the router exposes.
// Registered with the global registry at init, grounded on the same pattern
// AdeptTravel-adept-framework uses for its tenant cache metrics: plain
// package-level collectors, MustRegister once, no wiring required by callers
// beyond importing the package.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ActiveComponents is the number of live component connections.
	ActiveComponents = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jxrouter_active_components",
		Help: "Number of component connections currently registered.",
	})

	// BoundRoutes is the number of domains currently bound to a component.
	BoundRoutes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jxrouter_bound_routes",
		Help: "Number of domain names currently bound in the route table.",
	})

	// ThrottledComponents is the number of components currently queuing
	// outbound stanzas instead of writing them immediately.
	ThrottledComponents = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jxrouter_throttled_components",
		Help: "Number of components currently throttled.",
	})

	// DispatchTotal counts delivered route stanzas by kind: unicast or
	// broadcast. Log-sink copies and dropped routes are not counted.
	DispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jxrouter_dispatch_total",
		Help: "Cumulative count of route dispatch outcomes by kind.",
	}, []string{"kind"})

	// BounceTotal counts bounced stanzas by the three-digit error code
	// attached to the reply.
	BounceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jxrouter_bounce_total",
		Help: "Cumulative count of bounced stanzas by error code.",
	}, []string{"code"})

	// ConnectionsTotal counts accepted and rejected connection attempts.
	ConnectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jxrouter_connections_total",
		Help: "Cumulative count of inbound connection attempts by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		ActiveComponents,
		BoundRoutes,
		ThrottledComponents,
		DispatchTotal,
		BounceTotal,
		ConnectionsTotal,
	)
}
