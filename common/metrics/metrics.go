package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess      = "success"
	OutcomeInsufficient = "insufficient"
	OutcomeError        = "error"
	OutcomeRejected     = "rejected"
)

var (
	OrdersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Order placement attempts by outcome",
		},
		[]string{"outcome"},
	)

	InventoryReservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_reservations_total",
			Help: "Inventory reservation attempts by outcome",
		},
		[]string{"outcome"},
	)

	InventoryReleases = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_releases_total",
			Help: "Reservations returned to inventory",
		},
	)

	LifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_transitions_total",
			Help: "Status transitions by entity and outcome",
		},
		[]string{"entity", "outcome"},
	)

	OrderPlacementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_placement_duration_seconds",
			Help:    "Duration of order placement",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)
)

// HttpRequestDuration is labelled the way promhttp.InstrumentHandlerDuration expects.
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"code", "method"},
)
