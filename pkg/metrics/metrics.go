// Package metrics exposes the hub's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gamehub_connections_active",
		Help: "Number of live websocket connections.",
	})

	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gamehub_rooms_active",
		Help: "Number of tracked rooms.",
	})

	StateUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamehub_state_updates_total",
		Help: "State updates by how the replication protocol applied them.",
	}, []string{"outcome"})

	InputsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamehub_inputs_relayed_total",
		Help: "Input events fanned out to rooms.",
	})
)

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
