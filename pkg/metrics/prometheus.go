// Package metrics exposes inspector activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sigscope"

// PrometheusRecorder records coordinator and source activity.
type PrometheusRecorder struct {
	once           sync.Once
	patches        prom.Counter
	patchEntries   prom.Counter
	changes        prom.Counter
	rescans        *prom.CounterVec
	rescanDuration prom.Histogram
	signals        prom.Gauge
	historySize    prom.Gauge
	sourceUpdates  *prom.CounterVec
	sourceErrors   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the inspector metrics on reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.patches = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "patches_total",
			Help:      "Patches applied to the snapshot",
		})
		pr.patchEntries = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "patch_entries_total",
			Help:      "Path entries carried by applied patches",
		})
		pr.changes = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "changes_total",
			Help:      "Changes recorded in the history",
		})
		pr.rescans = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rescans_total",
			Help:      "Full rescans by outcome",
		}, []string{"result"})
		pr.rescanDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "rescan_duration_seconds",
			Help:      "Duration of full rescans",
			Buckets:   prom.DefBuckets,
		})
		pr.signals = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "signals",
			Help:      "Paths in the current snapshot",
		})
		pr.historySize = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "history_entries",
			Help:      "Entries in the change history",
		})
		pr.sourceUpdates = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "source_updates_total",
			Help:      "Updates received per source",
		}, []string{"source"})
		pr.sourceErrors = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Errors reported per source",
		}, []string{"source"})
		reg.MustRegister(pr.patches, pr.patchEntries, pr.changes, pr.rescans, pr.rescanDuration,
			pr.signals, pr.historySize, pr.sourceUpdates, pr.sourceErrors)
	})
	return pr
}

func (p *PrometheusRecorder) ObservePatch(entries, changes int) {
	if p == nil || p.patches == nil {
		return
	}
	p.patches.Inc()
	p.patchEntries.Add(float64(entries))
	p.changes.Add(float64(changes))
}

func (p *PrometheusRecorder) ObserveRescan(d time.Duration, changed bool) {
	if p == nil || p.rescans == nil {
		return
	}
	res := "unchanged"
	if changed {
		res = "changed"
	}
	p.rescans.WithLabelValues(res).Inc()
	p.rescanDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetSignalCount(n int) {
	if p == nil || p.signals == nil {
		return
	}
	p.signals.Set(float64(n))
}

func (p *PrometheusRecorder) SetHistorySize(n int) {
	if p == nil || p.historySize == nil {
		return
	}
	p.historySize.Set(float64(n))
}

func (p *PrometheusRecorder) IncSourceUpdate(source string) {
	if p == nil || p.sourceUpdates == nil {
		return
	}
	p.sourceUpdates.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) IncSourceError(source string) {
	if p == nil || p.sourceErrors == nil {
		return
	}
	p.sourceErrors.WithLabelValues(source).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
