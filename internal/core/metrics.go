package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/crossfilter/internal/ingest"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	sessions        prometheus.Gauge
	sessionsExpired prometheus.Counter
	loads           *prometheus.CounterVec
	loadDuration    *prometheus.HistogramVec
	rowsLoaded      prometheus.Counter
	rowsSkipped     prometheus.Counter
	valuesCoerced   prometheus.Counter
	computeDuration *prometheus.HistogramVec
	filterChanges   *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. A nil reg uses a private
// registry so tests and the CLI can build services without global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "crossfilter_sessions",
			Help: "Number of live sessions",
		}),
		sessionsExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "crossfilter_sessions_expired_total",
			Help: "Sessions removed after idling past their TTL",
		}),
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crossfilter_loads_total",
			Help: "Dataset loads by format and result",
		}, []string{"format", "result"}),
		loadDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crossfilter_load_duration_seconds",
			Help:    "Time spent parsing a dataset",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"format"}),
		rowsLoaded: f.NewCounter(prometheus.CounterOpts{
			Name: "crossfilter_rows_loaded_total",
			Help: "Records accepted into datasets",
		}),
		rowsSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "crossfilter_rows_skipped_total",
			Help: "Input rows dropped for a field count mismatch",
		}),
		valuesCoerced: f.NewCounter(prometheus.CounterOpts{
			Name: "crossfilter_values_coerced_total",
			Help: "Cells replaced by a coerced numeric value",
		}),
		computeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crossfilter_compute_duration_seconds",
			Help:    "Time to derive filtered rows and options",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.25, 1},
		}, []string{"engine"}),
		filterChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crossfilter_filter_changes_total",
			Help: "Selection changes by operation",
		}, []string{"op"}),
	}
}

func (m *Metrics) observeLoad(format string, started time.Time, rep *ingest.Report, err error) {
	if m == nil {
		return
	}
	m.loadDuration.WithLabelValues(format).Observe(time.Since(started).Seconds())
	if err != nil {
		m.loads.WithLabelValues(format, "error").Inc()
		return
	}
	m.loads.WithLabelValues(format, "ok").Inc()
	if rep != nil {
		m.rowsLoaded.Add(float64(rep.Rows))
		m.rowsSkipped.Add(float64(len(rep.Skipped)))
		m.valuesCoerced.Add(float64(rep.Coerced))
	}
}

func (m *Metrics) computeTimer(engine string) *prometheus.Timer {
	if m == nil {
		return prometheus.NewTimer(prometheus.ObserverFunc(func(float64) {}))
	}
	return prometheus.NewTimer(m.computeDuration.WithLabelValues(engine))
}

func (m *Metrics) filterChanged(op string) {
	if m == nil {
		return
	}
	m.filterChanges.WithLabelValues(op).Inc()
}
