package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warupay",
		Name:      "operations_total",
		Help:      "Asset operations by name and outcome.",
	}, []string{"operation", "outcome"})

	submissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "warupay",
		Name:      "transaction_submissions_total",
		Help:      "Signed transactions sent to the ledger, retries included.",
	})
)
