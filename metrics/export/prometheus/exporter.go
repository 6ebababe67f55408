package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/metrics/export/internaldefs"
)

// Source is the read side of an engine; *goAccount.Engine satisfies it.
type Source interface {
	MetricsSnapshot() goAccount.MetricsSnapshot
	AuditDropped() uint64
}

type Exporter struct {
	source     Source
	counters   map[goAccount.MetricID]*prometheus.Desc
	histograms map[goAccount.MetricID]*prometheus.Desc
	dropped    *prometheus.Desc
	registry   *prometheus.Registry
}

func NewExporter(source Source) *Exporter {
	e := &Exporter{
		source:     source,
		counters:   make(map[goAccount.MetricID]*prometheus.Desc, len(internaldefs.CounterDefs)),
		histograms: make(map[goAccount.MetricID]*prometheus.Desc, len(internaldefs.HistogramDefs)),
		dropped: prometheus.NewDesc("goaccount_audit_dropped_total",
			"Audit events dropped because the dispatcher buffer was full.", nil, nil),
		registry: prometheus.NewRegistry(),
	}
	for _, def := range internaldefs.CounterDefs {
		e.counters[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	for _, def := range internaldefs.HistogramDefs {
		e.histograms[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	e.registry.MustRegister(e)
	return e
}

// Register adds the exporter to reg, e.g. prometheus.DefaultRegisterer.
func (e *Exporter) Register(reg prometheus.Registerer) error {
	return reg.Register(e)
}

// Handler serves the exporter's private registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range e.counters {
		ch <- d
	}
	for _, d := range e.histograms {
		ch <- d
	}
	ch <- e.dropped
}

// Collect emits nothing when the engine's metrics are disabled.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e.source == nil {
		return
	}
	snap := e.source.MetricsSnapshot()
	dropped := e.source.AuditDropped()
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 && dropped == 0 {
		return
	}

	for _, def := range internaldefs.CounterDefs {
		ch <- prometheus.MustNewConstMetric(e.counters[def.ID], prometheus.CounterValue, float64(snap.Counters[def.ID]))
	}
	for _, def := range internaldefs.HistogramDefs {
		raw, ok := snap.Histograms[def.ID]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for i, bound := range internaldefs.HistogramUpperBounds {
			buckets[bound] = cumulative[i]
		}
		// Observations are bucketed only, so the sum is not tracked.
		ch <- prometheus.MustNewConstHistogram(e.histograms[def.ID], cumulative[len(cumulative)-1], 0, buckets)
	}
	ch <- prometheus.MustNewConstMetric(e.dropped, prometheus.CounterValue, float64(dropped))
}
