package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics counts money-movement outcomes per fulfiller kind.
type SettlementMetrics struct {
	settlements *prometheus.CounterVec
	reversals   *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_settlements_total",
		Help: "Completed forward settlements.",
	}, []string{"fulfiller"})
	reversals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_reversals_total",
		Help: "Completed settlement reversals.",
	}, []string{"trigger"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_settlement_rejections_total",
		Help: "Settlement attempts rejected by an idempotency or state guard.",
	}, []string{"reason"})
	reg.MustRegister(settlements, reversals, rejected)
	return &SettlementMetrics{
		settlements: settlements,
		reversals:   reversals,
		rejected:    rejected,
	}
}

// IncSettlement increments the settlement counter for the fulfiller kind.
func (m *SettlementMetrics) IncSettlement(fulfiller string) {
	if m == nil || m.settlements == nil {
		return
	}
	m.settlements.WithLabelValues(normalizeLabel(fulfiller)).Inc()
}

// IncReversal increments the reversal counter for the trigger (cancel/return).
func (m *SettlementMetrics) IncReversal(trigger string) {
	if m == nil || m.reversals == nil {
		return
	}
	m.reversals.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncRejected increments the guard-rejection counter.
func (m *SettlementMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
