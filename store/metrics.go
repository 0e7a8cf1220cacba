package store

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	opsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mascot_store_operations_total",
			Help: "Record store operations by outcome",
		},
		[]string{"op", "kind", "status"},
	)
	failoversTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mascot_store_failovers_total",
			Help: "Remote backend failures that fell back to the cache",
		},
	)
	sweptTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mascot_store_swept_entries_total",
			Help: "Expired entries removed by the sweeper",
		},
		[]string{"collection"},
	)
	backendConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mascot_store_backend_connected",
			Help: "1 when the remote backend is connected, 0 otherwise",
		},
	)
)

func init() {
	prometheus.MustRegister(opsTotal)
	prometheus.MustRegister(failoversTotal)
	prometheus.MustRegister(sweptTotal)
	prometheus.MustRegister(backendConnected)
}

func setStateGauge(state State) {
	if state == StateConnected {
		backendConnected.Set(1)
	} else {
		backendConnected.Set(0)
	}
}
