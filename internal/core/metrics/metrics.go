package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WeighingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depot_weighings_total",
		Help: "Total number of parcel weighings by verification status.",
	},
		[]string{"status"},
	)

	SortedParcelsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depot_sorted_parcels_total",
		Help: "Total number of parcels routed to a sorting zone.",
	},
		[]string{"zone"},
	)

	PaymentIntentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depot_payment_intents_created_total",
		Help: "Total number of weight-supplement payment intents created.",
	})

	ArrivalScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depot_arrival_scans_total",
		Help: "Total number of arrival scans recorded.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depot_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)
)
