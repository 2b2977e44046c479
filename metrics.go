package nestable

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resolution outcomes.
const (
	resultCached = iota
	resultResolved
	resultMissing
	numResults
)

var resultLabels = [numResults]string{"cached", "resolved", "missing"}

// Degradation reasons.
const (
	reasonNotFound = iota
	reasonTooDeep
	reasonJointFallback
	numReasons
)

var reasonLabels = [numReasons]string{"not_found", "too_deep", "joint_fallback"}

// Metrics exports hierarchy health as Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	resolutions  *prometheus.CounterVec
	degradations *prometheus.CounterVec
	cycles       prometheus.Counter
	nodes        prometheus.Gauge

	// byResult and byReason are the label children, resolved once so world
	// reads skip the label lookup.
	byResult [numResults]prometheus.Counter
	byReason [numReasons]prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// If reg is nil the collectors are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nestable",
			Name:      "parent_resolutions_total",
			Help:      "Parent lookups by outcome (cached, resolved, missing).",
		}, []string{"result"}),
		degradations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nestable",
			Name:      "degraded_reads_total",
			Help:      "World transform reads that fell back because the parent chain was broken.",
		}, []string{"reason"}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nestable",
			Name:      "cycles_rejected_total",
			Help:      "Parent assignments rejected because they would create a cycle.",
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nestable",
			Name:      "registry_nodes",
			Help:      "Nodes currently registered.",
		}),
	}
	for i, label := range resultLabels {
		m.byResult[i] = m.resolutions.WithLabelValues(label)
	}
	for i, label := range reasonLabels {
		m.byReason[i] = m.degradations.WithLabelValues(label)
	}
	if reg != nil {
		reg.MustRegister(m.resolutions, m.degradations, m.cycles, m.nodes)
	}
	return m
}

// Collectors returns all collectors, for registering with a custom registry.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.resolutions, m.degradations, m.cycles, m.nodes}
}

func (m *Metrics) resolution(result int) {
	if m == nil {
		return
	}
	m.byResult[result].Inc()
}

func (m *Metrics) degraded(reason int) {
	if m == nil {
		return
	}
	m.byReason[reason].Inc()
}

func (m *Metrics) cycleRejected() {
	if m == nil {
		return
	}
	m.cycles.Inc()
}

func (m *Metrics) setNodes(count int) {
	if m == nil {
		return
	}
	m.nodes.Set(float64(count))
}
