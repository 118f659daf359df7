package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SendsTotal counts successful outbound transfers by destination chain
	SendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_sends_total",
			Help: "Total number of successful outbound transfers",
		},
		[]string{"to_chain"},
	)

	// FulfillmentsTotal counts successful inbound fulfillments by source chain
	FulfillmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_fulfillments_total",
			Help: "Total number of successful inbound fulfillments",
		},
		[]string{"from_chain"},
	)

	// RejectionsTotal counts rejected operations by operation and error code
	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_rejections_total",
			Help: "Total number of rejected bridge operations",
		},
		[]string{"operation", "code"},
	)

	// FeesCollected accumulates fees taken, in converted token units
	FeesCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_fees_collected_total",
			Help: "Total fees collected by operation",
		},
		[]string{"operation"},
	)

	// CustodyBalance tracks the custody account balance per instance
	CustodyBalance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_custody_balance",
			Help: "Current custody balance by owner and token",
		},
		[]string{"owner", "token"},
	)

	// RequestDuration tracks HTTP request handling time
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_request_duration_seconds",
			Help:    "Request handling duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
