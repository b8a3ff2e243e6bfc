package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/apperrors"
	"github.com/fxsync/currency_exchange_app/internal/catalog"
	"github.com/fxsync/currency_exchange_app/internal/core/domain"
	"github.com/fxsync/currency_exchange_app/internal/core/ports"
)

// RateQueryService serves read-only queries over stored exchange rates.
type RateQueryService struct {
	rateRepo ports.ExchangeRateRepository
	logger   *slog.Logger
}

// NewRateQueryService creates a new RateQueryService.
func NewRateQueryService(rateRepo ports.ExchangeRateRepository, logger *slog.Logger) *RateQueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateQueryService{
		rateRepo: rateRepo,
		logger:   logger,
	}
}

// ListLatestRates returns the most recent stored rate per target currency for
// the given base. The base must be a catalog currency.
func (s *RateQueryService) ListLatestRates(ctx context.Context, baseCurrency string) ([]domain.ExchangeRate, error) {
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))
	if !catalog.IsSupported(base) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrCurrencyNotFound, base)
	}
	rates, err := s.rateRepo.ListLatestRatesByBase(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest rates for %s: %w", base, err)
	}
	return rates, nil
}

// ListSyncedBases returns the base currencies with stored rates for the
// given day.
func (s *RateQueryService) ListSyncedBases(ctx context.Context, date time.Time) ([]string, error) {
	bases, err := s.rateRepo.BaseCurrenciesWithRatesForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list synced base currencies: %w", err)
	}
	return bases, nil
}
