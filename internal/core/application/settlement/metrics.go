package settlement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settledFillsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "settled",
		Name:      "fills_total",
		Help:      "Number of committed counter fills.",
	})
	settledVolumeCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settled",
		Name:      "volume_total",
		Help:      "Gross settled volume by asset.",
	}, []string{"asset"})
	collectedFeesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settled",
		Name:      "fees_total",
		Help:      "Fees moved to the fee account by asset.",
	}, []string{"asset"})
	cancelledOrdersCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "settled",
		Name:      "cancelled_orders_total",
		Help:      "Number of cancelled orders.",
	})
)
