// Package ports declares the interfaces between the core services and
// their adapters (persistence, external rate provider, HTTP handlers).
package ports

import (
	"context"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateRepository is the persistence abstraction over the
// exchange_rates table. The repository exclusively owns these rows; the
// conversion side only ever reads.
type ExchangeRateRepository interface {
	// FindRate returns the rate stored for the exact (base, target, date)
	// triple, or apperrors.ErrNotFound.
	FindRate(ctx context.Context, baseCode, targetCode string, date time.Time) (*domain.ExchangeRate, error)

	// FindLatestRate returns the most recent rate for (base, target) dated
	// on or before the given day, or apperrors.ErrNotFound. Ties on date are
	// broken deterministically by highest id.
	FindLatestRate(ctx context.Context, baseCode, targetCode string, onOrBefore time.Time) (*domain.ExchangeRate, error)

	// HasRatesForDate reports whether any rate rows exist for the base
	// currency on the given day.
	HasRatesForDate(ctx context.Context, baseCode string, date time.Time) (bool, error)

	// BaseCurrenciesWithRatesForDate lists the distinct base codes that
	// already have rows for the given day.
	BaseCurrenciesWithRatesForDate(ctx context.Context, date time.Time) ([]string, error)

	// UpsertDailyRates writes one row per entry inside a single transaction.
	// Entries with non-positive rates or target equal to base are skipped.
	// Re-running with the same key overwrites rate and updated_at; no
	// duplicate rows are ever created. Returns the number of rows written.
	UpsertDailyRates(ctx context.Context, baseCode string, rates map[string]decimal.Decimal, date time.Time) (int64, error)

	// ListLatestRatesByBase returns the most recent day's rates for a base
	// currency ordered by target code.
	ListLatestRatesByBase(ctx context.Context, baseCode string) ([]domain.ExchangeRate, error)
}

// RateFetcher abstracts the external rate provider call so the sync
// orchestrator can be tested without HTTP.
type RateFetcher interface {
	FetchLatestRates(ctx context.Context, baseCurrency string) (map[string]decimal.Decimal, error)
}
