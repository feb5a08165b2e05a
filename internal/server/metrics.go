package server

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	asksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskrag_asks_total",
		Help: "Questions answered, by strategy.",
	}, []string{"mode"})

	gatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskrag_gate_total",
		Help: "Gate refusals, by gate name.",
	}, []string{"gate"})

	fallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "riskrag_fallback_total",
		Help: "Answers served by the extractive fallback.",
	})

	askSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "riskrag_ask_seconds",
		Help:    "Ask latency.",
		Buckets: prometheus.DefBuckets,
	})
)

// gateLabel bounds label cardinality: reasons carry measured values in
// parentheses, the metric keeps only the gate name.
func gateLabel(reason string) string {
	if i := strings.IndexByte(reason, '('); i > 0 {
		return reason[:i]
	}
	return reason
}
