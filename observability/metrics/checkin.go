package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type CheckinMetrics struct {
	operations *prometheus.CounterVec
	payouts    *prometheus.CounterVec
}

var (
	checkinOnce     sync.Once
	checkinRegistry *CheckinMetrics
)

func Checkin() *CheckinMetrics {
	checkinOnce.Do(func() {
		checkinRegistry = &CheckinMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "checkin_operations_total",
				Help: "Count of engine operations by name and result.",
			}, []string{"op", "result"}),
			payouts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "checkin_promoter_payouts_total",
				Help: "Count of promoter distributions by settlement currency.",
			}, []string{"currency"}),
		}
		prometheus.MustRegister(
			checkinRegistry.operations,
			checkinRegistry.payouts,
		)
	})
	return checkinRegistry
}

func (m *CheckinMetrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
}

func (m *CheckinMetrics) ObservePayout(paidInUSD bool) {
	if m == nil {
		return
	}
	currency := "long"
	if paidInUSD {
		currency = "usd"
	}
	m.payouts.WithLabelValues(currency).Inc()
}
