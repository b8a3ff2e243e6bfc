// Package metrics exposes Prometheus instrumentation for the sync pipeline
// and the conversion resolver.
package metrics

import (
	"errors"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/apperrors"
	"github.com/fxsync/currency_exchange_app/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the application registers.
type Metrics struct {
	ConversionsTotal   *prometheus.CounterVec
	SyncUnitsTotal     *prometheus.CounterVec
	SyncSweepDuration  prometheus.Histogram
	RatesUpsertedTotal prometheus.Counter
}

// New registers all collectors against reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid cross-test registration conflicts.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_conversions_total",
				Help: "Conversion requests by outcome.",
			},
			[]string{"outcome"},
		),
		SyncUnitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_sync_units_total",
				Help: "Per-currency sync units by terminal state.",
			},
			[]string{"state"},
		),
		SyncSweepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "currency_sync_sweep_duration_seconds",
				Help:    "Duration of full sync sweeps.",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
			},
		),
		RatesUpsertedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "currency_rates_upserted_total",
				Help: "Exchange rate rows written by the sync pipeline.",
			},
		),
	}
}

// ObserveConversion records the outcome of one conversion request.
func (m *Metrics) ObserveConversion(result *domain.ConversionResult, err error) {
	outcome := "direct"
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		outcome = "invalid_amount"
	case errors.Is(err, apperrors.ErrCurrencyNotFound):
		outcome = "currency_not_found"
	case errors.Is(err, apperrors.ErrRateNotFound):
		outcome = "rate_not_found"
	case err != nil:
		outcome = "error"
	case result != nil && !result.IsDirectRate:
		outcome = "bridged"
	}
	m.ConversionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveSyncUnit records the terminal state of one sync unit.
func (m *Metrics) ObserveSyncUnit(unit domain.SyncUnitResult) {
	m.SyncUnitsTotal.WithLabelValues(string(unit.State)).Inc()
	if unit.RowsWritten > 0 {
		m.RatesUpsertedTotal.Add(float64(unit.RowsWritten))
	}
}

// ObserveSweep records the duration of one completed sweep.
func (m *Metrics) ObserveSweep(d time.Duration) {
	m.SyncSweepDuration.Observe(d.Seconds())
}
