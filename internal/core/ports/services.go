package ports

import (
	"context"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/core/domain"
)

// ConverterSvc resolves conversion requests against stored rates. Read-only.
type ConverterSvc interface {
	Convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) (*domain.ConversionResult, error)
}

// RateSyncSvc runs rate synchronization against the external provider.
type RateSyncSvc interface {
	// SyncAll sweeps every catalog currency, or only baseCurrency when
	// non-empty. Only one sweep runs at a time; a second call while one is
	// active fails with apperrors.ErrSyncInProgress.
	SyncAll(ctx context.Context, baseCurrency string) (*domain.SyncStats, error)
}

// RateQuerySvc exposes stored rates for inspection.
type RateQuerySvc interface {
	// ListLatestRates returns the most recent stored rate per target for the
	// given base currency.
	ListLatestRates(ctx context.Context, baseCurrency string) ([]domain.ExchangeRate, error)

	// ListSyncedBases returns the base currencies that already have stored
	// rates for the given day.
	ListSyncedBases(ctx context.Context, date time.Time) ([]string, error)
}

// ServiceContainer bundles the service interfaces for route registration.
type ServiceContainer struct {
	Converter ConverterSvc
	RateSync  RateSyncSvc
	RateQuery RateQuerySvc
}
