package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/apperrors"
	"github.com/fxsync/currency_exchange_app/internal/catalog"
	"github.com/fxsync/currency_exchange_app/internal/core/domain"
	"github.com/fxsync/currency_exchange_app/internal/core/ports"
	"github.com/fxsync/currency_exchange_app/internal/metrics"
	"github.com/shopspring/decimal"
)

// ConverterConfig carries the conversion policy knobs.
type ConverterConfig struct {
	// FallbackCurrency is the intermediate used for bridging when no direct
	// rate exists.
	FallbackCurrency string
	EnableFallback   bool
	AmountDecimals   int32
	RateDecimals     int32
	MinAmount        decimal.Decimal
	MaxAmount        decimal.Decimal
}

// DefaultConverterConfig mirrors the production defaults.
func DefaultConverterConfig() ConverterConfig {
	return ConverterConfig{
		FallbackCurrency: "USD",
		EnableFallback:   true,
		AmountDecimals:   2,
		RateDecimals:     8,
		MinAmount:        decimal.RequireFromString("0.01"),
		MaxAmount:        decimal.RequireFromString("999999999.99"),
	}
}

// ConverterService resolves conversion requests against stored rates.
// It only ever reads; rates are written by the sync pipeline.
type ConverterService struct {
	rateRepo ports.ExchangeRateRepository
	cfg      ConverterConfig
	clock    Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewConverterService creates a ConverterService. clock, logger and metrics
// may be nil, in which case the wall clock, the default logger and no
// metrics are used.
func NewConverterService(rateRepo ports.ExchangeRateRepository, cfg ConverterConfig, clock Clock, logger *slog.Logger, m *metrics.Metrics) *ConverterService {
	if clock == nil {
		clock = NewClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConverterService{
		rateRepo: rateRepo,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
		metrics:  m,
	}
}

// Convert resolves (amount, from, to) into a ConversionResult. It fails with
// apperrors.ErrValidation, apperrors.ErrCurrencyNotFound or
// apperrors.ErrRateNotFound; resolution never retries or triggers a sync.
func (s *ConverterService) Convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) (*domain.ConversionResult, error) {
	result, err := s.convert(ctx, amount, fromCurrency, toCurrency)
	if s.metrics != nil {
		s.metrics.ObserveConversion(result, err)
	}
	return result, err
}

func (s *ConverterService) convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) (*domain.ConversionResult, error) {
	amt, err := s.validateAmount(amount)
	if err != nil {
		return nil, err
	}

	from := strings.ToUpper(strings.TrimSpace(fromCurrency))
	to := strings.ToUpper(strings.TrimSpace(toCurrency))
	for _, code := range []string{from, to} {
		if !catalog.IsSupported(code) {
			return nil, fmt.Errorf("%w: currency '%s' is not supported", apperrors.ErrCurrencyNotFound, code)
		}
	}

	if from == to {
		return &domain.ConversionResult{
			OriginalAmount:  amt,
			FromCurrency:    from,
			ToCurrency:      to,
			ConvertedAmount: amt.Round(s.cfg.AmountDecimals),
			ExchangeRate:    decimal.NewFromInt(1),
			IsDirectRate:    true,
		}, nil
	}

	today := s.clock.Now()

	direct, err := s.findRateWithFallback(ctx, from, to, today)
	if err != nil {
		return nil, err
	}
	if direct != nil {
		rateDate := direct.Date
		return &domain.ConversionResult{
			OriginalAmount:  amt,
			FromCurrency:    from,
			ToCurrency:      to,
			ConvertedAmount: amt.Mul(direct.Rate).Round(s.cfg.AmountDecimals),
			ExchangeRate:    direct.Rate.Round(s.cfg.RateDecimals),
			RateDate:        &rateDate,
			IsDirectRate:    true,
		}, nil
	}

	intermediate := s.cfg.FallbackCurrency
	if s.cfg.EnableFallback && intermediate != from && intermediate != to {
		return s.convertViaIntermediate(ctx, amt, from, to, intermediate, today)
	}

	return nil, fmt.Errorf("%w: no rate available from %s to %s", apperrors.ErrRateNotFound, from, to)
}

func (s *ConverterService) convertViaIntermediate(ctx context.Context, amt decimal.Decimal, from, to, intermediate string, today time.Time) (*domain.ConversionResult, error) {
	legA, err := s.findRateWithFallback(ctx, from, intermediate, today)
	if err != nil {
		return nil, err
	}
	legB, err := s.findRateWithFallback(ctx, intermediate, to, today)
	if err != nil {
		return nil, err
	}

	if legA == nil || legB == nil {
		missing := make([]string, 0, 2)
		if legA == nil {
			missing = append(missing, from+"->"+intermediate)
		}
		if legB == nil {
			missing = append(missing, intermediate+"->"+to)
		}
		s.logger.Warn("Bridged conversion failed, leg rate missing",
			slog.String("from_currency", from),
			slog.String("to_currency", to),
			slog.String("intermediate_currency", intermediate),
			slog.Any("missing_legs", missing))
		return nil, fmt.Errorf("%w: no rate available from %s to %s", apperrors.ErrRateNotFound, from, to)
	}

	effectiveRate := legA.Rate.Mul(legB.Rate)
	rateDate := legA.Date
	if legB.Date.After(rateDate) {
		rateDate = legB.Date
	}

	s.logger.Info("Conversion bridged via intermediate currency",
		slog.String("from_currency", from),
		slog.String("to_currency", to),
		slog.String("intermediate_currency", intermediate),
		slog.String("effective_rate", effectiveRate.String()))

	return &domain.ConversionResult{
		OriginalAmount:       amt,
		FromCurrency:         from,
		ToCurrency:           to,
		ConvertedAmount:      amt.Mul(effectiveRate).Round(s.cfg.AmountDecimals),
		ExchangeRate:         effectiveRate.Round(s.cfg.RateDecimals),
		RateDate:             &rateDate,
		IsDirectRate:         false,
		IntermediateCurrency: intermediate,
	}, nil
}

// findRateWithFallback looks up the exact-date rate for today, then the
// latest rate dated on or before today. Absence is returned as (nil, nil);
// the two lookups are kept separate so the precedence rule stays auditable.
func (s *ConverterService) findRateWithFallback(ctx context.Context, base, target string, today time.Time) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindRate(ctx, base, target, today)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up rate %s/%s: %w", base, target, err)
	}

	rate, err = s.rateRepo.FindLatestRate(ctx, base, target, today)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up latest rate %s/%s: %w", base, target, err)
	}
	return nil, nil
}

func (s *ConverterService) validateAmount(amount float64) (decimal.Decimal, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return decimal.Zero, fmt.Errorf("%w: amount must be a finite number", apperrors.ErrValidation)
	}
	amt := decimal.NewFromFloat(amount)
	if amt.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, amt.String())
	}
	if amt.LessThan(s.cfg.MinAmount) {
		return decimal.Zero, fmt.Errorf("%w: amount must be at least %s, got %s", apperrors.ErrValidation, s.cfg.MinAmount.String(), amt.String())
	}
	if amt.GreaterThan(s.cfg.MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: amount exceeds maximum allowed value of %s, got %s", apperrors.ErrValidation, s.cfg.MaxAmount.String(), amt.String())
	}
	return amt, nil
}
