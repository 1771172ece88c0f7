package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics counts attempt outcomes and times each orchestration step.
// A nil *CheckoutMetrics is valid and records nothing.
type CheckoutMetrics struct {
	Attempts  *prometheus.CounterVec
	StepTime  *prometheus.HistogramVec
	Cancelled prometheus.Counter
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "appecomm",
		Subsystem: "checkout",
		Name:      "attempts_total",
		Help:      "Checkout attempts by terminal outcome.",
	}, []string{"outcome"})
	stepTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "appecomm",
		Subsystem: "checkout",
		Name:      "step_duration_ms",
		Help:      "Orchestration step latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"step"})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "appecomm",
		Subsystem: "checkout",
		Name:      "cancellations_total",
		Help:      "User-initiated cancellations.",
	})

	reg.MustRegister(attempts, stepTime, cancelled)
	return &CheckoutMetrics{Attempts: attempts, StepTime: stepTime, Cancelled: cancelled}
}

func (m *CheckoutMetrics) IncOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(outcome).Inc()
}

func (m *CheckoutMetrics) ObserveStep(step string, d time.Duration) {
	if m == nil {
		return
	}
	m.StepTime.WithLabelValues(step).Observe(float64(d.Milliseconds()))
}

func (m *CheckoutMetrics) IncCancelled() {
	if m == nil {
		return
	}
	m.Cancelled.Inc()
}
