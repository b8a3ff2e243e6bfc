package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/apperrors"
	"github.com/fxsync/currency_exchange_app/internal/catalog"
	"github.com/fxsync/currency_exchange_app/internal/core/domain"
	"github.com/fxsync/currency_exchange_app/internal/core/ports"
	"github.com/fxsync/currency_exchange_app/internal/metrics"
	"github.com/fxsync/currency_exchange_app/internal/ratefetch"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SyncConfig carries the retry and pacing policy for rate synchronization.
type SyncConfig struct {
	// DelayBetweenCalls is inserted between consecutive currencies' API
	// calls regardless of outcome, to respect provider rate limits.
	DelayBetweenCalls time.Duration
	// MaxAttempts bounds fetch attempts per currency, including attempts
	// consumed by rate-limit cooldowns.
	MaxAttempts int
	// RetryBaseDelay seeds the exponential backoff: delay * 2^(attempt-1).
	RetryBaseDelay time.Duration
	// RateLimitCooldown is the fixed wait after an HTTP 429 before the unit
	// is re-attempted.
	RateLimitCooldown time.Duration
}

// DefaultSyncConfig mirrors the production defaults.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		DelayBetweenCalls: time.Second,
		MaxAttempts:       3,
		RetryBaseDelay:    5 * time.Second,
		RateLimitCooldown: 300 * time.Second,
	}
}

// RateSyncService orchestrates the daily rate synchronization: one unit per
// catalog currency, each a fetch-validate-upsert sequence with its own retry
// state, isolated from its siblings' failures.
type RateSyncService struct {
	rateRepo ports.ExchangeRateRepository
	fetcher  ports.RateFetcher
	cfg      SyncConfig
	clock    Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics

	// sweepMu guarantees a single active sweep; a scheduler re-trigger while
	// one is still running is rejected instead of queued.
	sweepMu sync.Mutex
}

// NewRateSyncService creates a RateSyncService. clock, logger and metrics
// may be nil.
func NewRateSyncService(rateRepo ports.ExchangeRateRepository, fetcher ports.RateFetcher, cfg SyncConfig, clock Clock, logger *slog.Logger, m *metrics.Metrics) *RateSyncService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if clock == nil {
		clock = NewClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RateSyncService{
		rateRepo: rateRepo,
		fetcher:  fetcher,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
		metrics:  m,
	}
}

// SyncAll runs one sweep over the whole catalog, or over the single
// requested base currency when baseCurrency is non-empty. A unit's permanent
// failure never stops the remaining units. Returns
// apperrors.ErrSyncInProgress when a sweep is already active.
func (s *RateSyncService) SyncAll(ctx context.Context, baseCurrency string) (*domain.SyncStats, error) {
	if !s.sweepMu.TryLock() {
		return nil, apperrors.ErrSyncInProgress
	}
	defer s.sweepMu.Unlock()

	baseCurrency = strings.ToUpper(strings.TrimSpace(baseCurrency))
	var currencies []string
	if baseCurrency != "" {
		if !catalog.IsSupported(baseCurrency) {
			return nil, fmt.Errorf("%w: currency '%s' is not supported", apperrors.ErrCurrencyNotFound, baseCurrency)
		}
		currencies = []string{baseCurrency}
	} else {
		currencies = catalog.Codes()
	}

	stats := &domain.SyncStats{
		RunID:        uuid.NewString(),
		BaseCurrency: baseCurrency,
		Total:        len(currencies),
		StartedAt:    s.clock.Now(),
	}
	logger := s.logger.With(slog.String("run_id", stats.RunID))
	logger.Info("Starting exchange rate sync",
		slog.String("base_currency", baseCurrency),
		slog.Int("currencies", len(currencies)))

	today := stats.StartedAt
	for i, code := range currencies {
		if i > 0 && s.cfg.DelayBetweenCalls > 0 {
			if err := s.clock.Sleep(ctx, s.cfg.DelayBetweenCalls); err != nil {
				logger.Warn("Sync sweep cancelled", slog.String("error", err.Error()))
				break
			}
		}

		unit := s.syncCurrency(ctx, logger, code, today)
		stats.Units = append(stats.Units, unit)
		if s.metrics != nil {
			s.metrics.ObserveSyncUnit(unit)
		}

		switch unit.State {
		case domain.SyncSucceeded:
			stats.Successful++
		case domain.SyncSkipped:
			stats.Skipped++
		default:
			stats.Failed++
		}
	}

	stats.CompletedAt = s.clock.Now()
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	if s.metrics != nil {
		s.metrics.ObserveSweep(stats.Duration)
	}

	logger.Info("Exchange rate sync completed",
		slog.Int("successful", stats.Successful),
		slog.Int("failed", stats.Failed),
		slog.Int("skipped", stats.Skipped),
		slog.Int("total", stats.Total),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

// syncCurrency runs one unit's state machine:
// Pending -> Fetching -> {Succeeded, RateLimitedRetry, TransientRetry,
// FailedPermanently, Skipped}. Retry states loop back into Fetching until
// attempts are exhausted.
func (s *RateSyncService) syncCurrency(ctx context.Context, logger *slog.Logger, code string, today time.Time) domain.SyncUnitResult {
	unit := domain.SyncUnitResult{Currency: code}
	logger = logger.With(slog.String("base_currency", code))

	hasRates, err := s.rateRepo.HasRatesForDate(ctx, code, today)
	if err != nil {
		logger.Error("Failed to check existing rates", slog.String("error", err.Error()))
		unit.State = domain.SyncFailedPermanently
		unit.Err = err
		return unit
	}
	if hasRates {
		logger.Info("Skipping currency, rates already present for today")
		unit.State = domain.SyncSkipped
		return unit
	}

	for unit.Attempts < s.cfg.MaxAttempts {
		unit.Attempts++

		written, err := s.fetchAndStore(ctx, code, today)
		if err == nil {
			unit.State = domain.SyncSucceeded
			unit.RowsWritten = written
			logger.Info("Synced rates",
				slog.Int64("rows_written", written),
				slog.Int("attempt", unit.Attempts))
			return unit
		}
		unit.Err = err

		var apiErr *ratefetch.APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.Kind == ratefetch.KindRateLimited:
			// RateLimitedRetry: dedicated cooldown, one attempt consumed.
			if unit.Attempts >= s.cfg.MaxAttempts {
				break
			}
			logger.Warn("Rate limit hit, cooling down before retry",
				slog.Int("attempt", unit.Attempts),
				slog.Duration("cooldown", s.cfg.RateLimitCooldown))
			if serr := s.clock.Sleep(ctx, s.cfg.RateLimitCooldown); serr != nil {
				unit.Err = serr
				unit.State = domain.SyncFailedPermanently
				return unit
			}
			continue

		case errors.As(err, &apiErr) && !apiErr.Retryable():
			// Missing credential, auth failure, unsupported base: retrying
			// cannot help without operator intervention.
			logger.Error("Sync failed permanently",
				slog.String("kind", string(apiErr.Kind)),
				slog.String("error", err.Error()))
			unit.State = domain.SyncFailedPermanently
			return unit

		default:
			// TransientRetry: transport/server/malformed errors and failed
			// writes. Exponential backoff between attempts.
			if unit.Attempts >= s.cfg.MaxAttempts {
				break
			}
			delay := s.cfg.RetryBaseDelay * (1 << (unit.Attempts - 1))
			logger.Warn("Sync attempt failed, retrying",
				slog.Int("attempt", unit.Attempts),
				slog.Duration("delay", delay),
				slog.String("error", err.Error()))
			if serr := s.clock.Sleep(ctx, delay); serr != nil {
				unit.Err = serr
				unit.State = domain.SyncFailedPermanently
				return unit
			}
			continue
		}
		break
	}

	logger.Error("Sync failed permanently, attempts exhausted",
		slog.Int("attempts", unit.Attempts),
		slog.String("error", unit.Err.Error()))
	unit.State = domain.SyncFailedPermanently
	return unit
}

// fetchAndStore is the all-or-nothing body of one attempt: the fetch must
// complete and validate before any write happens, and a failed write fails
// the whole attempt even though the fetch succeeded.
func (s *RateSyncService) fetchAndStore(ctx context.Context, code string, today time.Time) (int64, error) {
	rates, err := s.fetcher.FetchLatestRates(ctx, code)
	if err != nil {
		return 0, err
	}

	filtered := make(map[string]decimal.Decimal, len(rates))
	for target, rate := range rates {
		target = strings.ToUpper(target)
		if target == code || !catalog.IsSupported(target) {
			continue
		}
		filtered[target] = rate
	}

	written, err := s.rateRepo.UpsertDailyRates(ctx, code, filtered, today)
	if err != nil {
		return 0, fmt.Errorf("failed to store rates for %s: %w", code, err)
	}
	return written, nil
}
