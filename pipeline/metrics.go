package pipeline

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rushteam/txnprep/feature"
)

// Metrics 是流水线的 Prometheus 指标
type Metrics struct {
	Runs          *prometheus.CounterVec
	Rows          *prometheus.CounterVec
	CoercedValues *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
}

// NewMetrics 创建并注册指标；reg 为 nil 时只创建不注册。
// 同一个 Registerer 上重复创建时复用已注册的指标。
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "txnprep",
			Name:      "runs_total",
			Help:      "Transformation runs by outcome.",
		}, []string{"status"}),
		Rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "txnprep",
			Name:      "rows_total",
			Help:      "Rows transformed by partition.",
		}, []string{"partition"}),
		CoercedValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "txnprep",
			Name:      "coerced_values_total",
			Help:      "Values degraded to the missing marker during feature engineering.",
		}, []string{"partition", "column", "reason"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "txnprep",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.Runs, err = register(reg, m.Runs); err != nil {
		return nil, err
	}
	if m.Rows, err = register(reg, m.Rows); err != nil {
		return nil, err
	}
	if m.CoercedValues, err = register(reg, m.CoercedValues); err != nil {
		return nil, err
	}
	if m.StageDuration, err = register(reg, m.StageDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

func (m *Metrics) observeStats(p Partition, stats *feature.CoercionStats) {
	m.Rows.WithLabelValues(string(p)).Add(float64(stats.Rows))
	for _, col := range stats.Columns() {
		if n := stats.Missing[col]; n > 0 {
			m.CoercedValues.WithLabelValues(string(p), col, "missing").Add(float64(n))
		}
		if n := stats.Invalid[col]; n > 0 {
			m.CoercedValues.WithLabelValues(string(p), col, "invalid").Add(float64(n))
		}
	}
}
