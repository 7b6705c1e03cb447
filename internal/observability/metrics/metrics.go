package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the chat intake flow.
type IntakeMetrics struct {
	turnsTotal       *prometheus.CounterVec
	escalationsTotal *prometheus.CounterVec
	leadsTotal       *prometheus.CounterVec
	turnLatency      *prometheus.HistogramVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total processed chat turns",
		}, []string{"state", "outcome"}),
		escalationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "chat",
			Name:      "escalations_total",
			Help:      "Total sessions escalated to a human",
		}, []string{"category"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "leads",
			Name:      "created_total",
			Help:      "Total leads created from sessions",
		}, []string{"hotness", "intent"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "intake",
			Subsystem: "chat",
			Name:      "turn_latency_seconds",
			Help:      "Latency of chat turn processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"state"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.escalationsTotal, m.leadsTotal, m.turnLatency)
	return m
}

func (m *IntakeMetrics) ObserveTurn(state, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(state, outcome).Inc()
}

func (m *IntakeMetrics) ObserveEscalation(category string) {
	if m == nil {
		return
	}
	m.escalationsTotal.WithLabelValues(category).Inc()
}

func (m *IntakeMetrics) ObserveLeadCreated(hotness, intent string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(hotness, intent).Inc()
}

func (m *IntakeMetrics) ObserveTurnLatency(state string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(state).Observe(seconds)
}
