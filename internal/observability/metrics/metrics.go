package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for search, pipeline and webhook
// round trips.
type LeadMetrics struct {
	searchTotal    *prometheus.CounterVec
	searchLeads    *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	stageChanges   *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		searchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "microtix",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total lead search submissions by outcome",
		}, []string{"status"}),
		searchLeads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "microtix",
			Subsystem: "search",
			Name:      "leads_total",
			Help:      "Total leads produced by searches, by response shape",
		}, []string{"shape"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "microtix",
			Subsystem: "backend",
			Name:      "latency_seconds",
			Help:      "Latency of workflow webhook calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"op", "status"}),
		stageChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "microtix",
			Subsystem: "pipeline",
			Name:      "stage_changes_total",
			Help:      "Total lead stage changes by target stage",
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.searchTotal, m.searchLeads, m.backendLatency, m.stageChanges)
	return m
}

func (m *LeadMetrics) ObserveSearch(status string) {
	if m == nil {
		return
	}
	m.searchTotal.WithLabelValues(status).Inc()
}

func (m *LeadMetrics) ObserveLeads(shape string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.searchLeads.WithLabelValues(shape).Add(float64(count))
}

func (m *LeadMetrics) ObserveBackendCall(op, status string, seconds float64) {
	if m == nil {
		return
	}
	m.backendLatency.WithLabelValues(op, status).Observe(seconds)
}

func (m *LeadMetrics) ObserveStageChange(stage string) {
	if m == nil {
		return
	}
	m.stageChanges.WithLabelValues(stage).Inc()
}
