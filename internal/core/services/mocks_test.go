package services_test

import (
	"context"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock ExchangeRateRepository ---

type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindRate(ctx context.Context, baseCode, targetCode string, date time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, baseCode, targetCode, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) FindLatestRate(ctx context.Context, baseCode, targetCode string, onOrBefore time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, baseCode, targetCode, onOrBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) HasRatesForDate(ctx context.Context, baseCode string, date time.Time) (bool, error) {
	args := m.Called(ctx, baseCode, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockExchangeRateRepository) BaseCurrenciesWithRatesForDate(ctx context.Context, date time.Time) ([]string, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockExchangeRateRepository) UpsertDailyRates(ctx context.Context, baseCode string, rates map[string]decimal.Decimal, date time.Time) (int64, error) {
	args := m.Called(ctx, baseCode, rates, date)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExchangeRateRepository) ListLatestRatesByBase(ctx context.Context, baseCode string) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, baseCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

// --- Mock RateFetcher ---

type MockRateFetcher struct {
	mock.Mock
}

func (m *MockRateFetcher) FetchLatestRates(ctx context.Context, baseCurrency string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// --- Fake clock ---

// fakeClock returns a fixed time and records requested sleeps without
// blocking, keeping retry/backoff tests deterministic and instant.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	return nil
}
