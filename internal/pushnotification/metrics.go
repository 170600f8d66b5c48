package pushnotification

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	deliveries *prometheus.CounterVec
	pruned     prometheus.Counter
}

// NewMetrics registers the delivery counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leavepush",
			Subsystem: "push",
			Name:      "deliveries_total",
			Help:      "Push deliveries by outcome.",
		}, []string{"result"}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leavepush",
			Subsystem: "push",
			Name:      "subscriptions_pruned_total",
			Help:      "Subscriptions removed after the push service reported them gone.",
		}),
	}
	reg.MustRegister(m.deliveries, m.pruned)
	return m
}

func (m *Metrics) observe(o Outcome) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(string(o)).Inc()
	if o == OutcomeGone {
		m.pruned.Inc()
	}
}
