package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics counts lead lifecycle activity observed by the API and workers.
type LeadMetrics struct {
	created      prometheus.Counter
	quotesSent   prometheus.Counter
	newMessages  *prometheus.CounterVec
	overdueFound prometheus.Counter
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	if reg == nil {
		return &LeadMetrics{}
	}
	m := &LeadMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_created_total",
			Help:      "Leads created through the intake form.",
		}),
		quotesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_sent_total",
			Help:      "Final quotes sent to customers.",
		}),
		newMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_new_messages_total",
			Help:      "Message count increases detected by the lead watcher.",
		}, []string{"lead_id"}),
		overdueFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_overdue_total",
			Help:      "Quoted leads flagged as overdue.",
		}),
	}
	reg.MustRegister(m.created, m.quotesSent, m.newMessages, m.overdueFound)
	return m
}

func (m *LeadMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

func (m *LeadMetrics) IncQuoteSent() {
	if m == nil || m.quotesSent == nil {
		return
	}
	m.quotesSent.Inc()
}

func (m *LeadMetrics) AddNewMessages(leadID string, n int) {
	if m == nil || m.newMessages == nil || n <= 0 {
		return
	}
	m.newMessages.WithLabelValues(normalizeLabel(leadID)).Add(float64(n))
}

func (m *LeadMetrics) AddOverdue(n int) {
	if m == nil || m.overdueFound == nil || n <= 0 {
		return
	}
	m.overdueFound.Add(float64(n))
}
