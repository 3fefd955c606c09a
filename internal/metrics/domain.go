package metrics

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics counts assessments, analyzer failures and reminder deliveries.
type DomainMetrics struct {
	AssessmentsTotal   *prometheus.CounterVec
	AnalyzerErrors     *prometheus.CounterVec
	RemindersDelivered *prometheus.CounterVec
	ChatRepliesTotal   *prometheus.CounterVec
}

// NewDomainMetrics creates and registers the domain counters.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	m := &DomainMetrics{
		AssessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assessment",
			Name:      "recorded_total",
			Help:      "Assessments persisted, by label, severity and analyzer.",
		}, []string{"label", "severity", "analyzer"}),
		AnalyzerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assessment",
			Name:      "analyzer_errors_total",
			Help:      "Failed analyses, by error kind.",
		}, []string{"kind"}),
		RemindersDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminder",
			Name:      "deliveries_total",
			Help:      "Reminder delivery attempts, by platform and outcome.",
		}, []string{"platform", "outcome"}),
		ChatRepliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "replies_total",
			Help:      "Chat replies, by routed category.",
		}, []string{"category"}),
	}

	reg.MustRegister(m.AssessmentsTotal, m.AnalyzerErrors, m.RemindersDelivered, m.ChatRepliesTotal)
	return m
}

// AssessmentRecorded counts a persisted assessment.
func (m *DomainMetrics) AssessmentRecorded(label, severity, analyzer string) {
	m.AssessmentsTotal.WithLabelValues(label, severity, analyzer).Inc()
}

// AnalyzerFailed counts a failed analysis.
func (m *DomainMetrics) AnalyzerFailed(kind string) {
	m.AnalyzerErrors.WithLabelValues(kind).Inc()
}

// ReminderDelivered counts a delivery attempt.
func (m *DomainMetrics) ReminderDelivered(platform, outcome string) {
	m.RemindersDelivered.WithLabelValues(platform, outcome).Inc()
}

// ChatReplied counts a chat reply.
func (m *DomainMetrics) ChatReplied(category string) {
	m.ChatRepliesTotal.WithLabelValues(category).Inc()
}
