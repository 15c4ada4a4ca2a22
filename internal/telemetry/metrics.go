package telemetry

import (
	"github.com/superhyuk/statics-mc/internal/aggregation/core/usecase"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "counts"

// Run result label values.
const (
	RunSuccess = "success"
	RunFailed  = "failed"
)

// Metrics holds the collectors fed by finished aggregation passes.
type Metrics struct {
	Runs            *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	Records         *prometheus.CounterVec
	ReconcileWindow *prometheus.CounterVec
	Watermark       prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Aggregation passes by result.",
		}, []string{"result"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one aggregation pass.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Listed keys by outcome.",
		}, []string{"outcome"}),
		ReconcileWindow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_windows_total",
			Help:      "Reconciliation probes by result.",
		}, []string{"result"}),
		Watermark: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watermark_timestamp_seconds",
			Help:      "Unix time of the last processed record.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Runs, m.RunDuration, m.Records, m.ReconcileWindow, m.Watermark} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

var _ usecase.RunObserver = (*Metrics)(nil)

// ObserveRun records one finished pass. Record and window counters are
// only added for passes that persisted their result.
func (m *Metrics) ObserveRun(rep usecase.RunReport, err error) {
	m.RunDuration.Observe(rep.Duration.Seconds())
	if err != nil {
		m.Runs.WithLabelValues(RunFailed).Inc()
		return
	}
	m.Runs.WithLabelValues(RunSuccess).Inc()

	m.Records.WithLabelValues("accepted").Add(float64(rep.Accepted))
	m.Records.WithLabelValues("skipped").Add(float64(rep.Skipped))
	m.Records.WithLabelValues("stale").Add(float64(rep.Stale))
	m.Records.WithLabelValues("inconsistent").Add(float64(rep.Inconsistent))

	m.ReconcileWindow.WithLabelValues("fixed").Add(float64(rep.Reconcile.Fixed))
	m.ReconcileWindow.WithLabelValues("empty").Add(float64(rep.Reconcile.Empty))
	m.ReconcileWindow.WithLabelValues("failed").Add(float64(rep.Reconcile.Failed))

	if !rep.WatermarkTime.IsZero() {
		m.Watermark.Set(float64(rep.WatermarkTime.Unix()))
	}
}
