package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveConnections tracks admitted websocket connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "board_ws_connections",
		Help: "Number of open authenticated websocket connections.",
	})

	// ActiveRooms tracks rooms with at least one member.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "board_ws_rooms",
		Help: "Number of rooms with at least one member.",
	})

	// EventsIn counts inbound events by type ("join-room", "leave-room",
	// "draw", "malformed", "unknown").
	EventsIn = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_ws_events_in_total",
		Help: "Inbound websocket events processed by the hub.",
	}, []string{"type"})

	// DroppedSends counts outbound events dropped because a peer's send
	// buffer was full.
	DroppedSends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_ws_dropped_sends_total",
		Help: "Outbound events dropped due to a slow or dead peer.",
	})

	// AuthRejects counts connection attempts closed for a bad credential.
	AuthRejects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_ws_auth_rejects_total",
		Help: "Websocket connections rejected at admission.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
