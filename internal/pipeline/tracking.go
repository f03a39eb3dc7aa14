package pipeline

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nyc-trip-loader/internal/model"
)

// RunLedger records runs and their month results. Writes are best effort.
type RunLedger interface {
	StartRun(ctx context.Context, run *model.RunSummary) error
	RecordMonth(ctx context.Context, runID string, res model.MonthResult) error
	FinishRun(ctx context.Context, run model.RunSummary) error
}

// Metrics tracks loader progress on its own registry
type Metrics struct {
	Registry *prometheus.Registry

	months        *prometheus.CounterVec
	rows          *prometheus.CounterVec
	monthDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		months: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripload_months_total",
				Help: "Months processed, by outcome and skip reason",
			},
			[]string{"outcome", "reason"},
		),
		rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripload_rows_total",
				Help: "Rows seen per stage (decoded, qualifying, appended)",
			},
			[]string{"stage"},
		),
		monthDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tripload_month_duration_seconds",
				Help:    "Wall time to process one month",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68min
			},
		),
	}
}

// Observe folds a finished month into the metrics.
func (m *Metrics) Observe(res model.MonthResult) {
	if m == nil {
		return
	}
	reason := string(res.Reason)
	if reason == "" {
		reason = "none"
	}
	m.months.WithLabelValues(string(res.Outcome), reason).Inc()
	m.rows.WithLabelValues("decoded").Add(float64(res.Decoded))
	m.rows.WithLabelValues("qualifying").Add(float64(res.Qualifying))
	m.rows.WithLabelValues("appended").Add(float64(res.Appended))
	m.monthDuration.Observe(res.Duration.Seconds())
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
