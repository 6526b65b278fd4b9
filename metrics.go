package shape

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values of shape_records_parsed_total.
const (
	outcomeOK         = "ok"
	outcomeMissing    = "missing"
	outcomeCoercion   = "coercion"
	outcomeStructural = "structural"
)

// Metrics counts deserializer activity. A nil *Metrics records nothing.
type Metrics struct {
	parsed    *prometheus.CounterVec
	defaulted *prometheus.CounterVec
}

// NewMetrics creates the deserializer metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		parsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "records_parsed_total",
				Help:      "Top-level parse calls by record type and outcome.",
			},
			[]string{"type", "outcome"},
		),
		defaulted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "fields_defaulted_total",
				Help:      "Fields that fell back to their default, by record type.",
			},
			[]string{"type"},
		),
	}

	for _, c := range []prometheus.Collector{m.parsed, m.defaulted} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register shape metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) recordParsed(typeName, outcome string) {
	if m == nil {
		return
	}
	m.parsed.WithLabelValues(typeName, outcome).Inc()
}

func (m *Metrics) fieldDefaulted(typeName string) {
	if m == nil {
		return
	}
	m.defaulted.WithLabelValues(typeName).Inc()
}
