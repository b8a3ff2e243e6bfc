package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/apperrors"
	"github.com/fxsync/currency_exchange_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const exchangeRateColumns = `id, base_code, target_code, rate, date, created_at, updated_at`

// PgxExchangeRateRepository implements ports.ExchangeRateRepository on
// PostgreSQL. Upserts rely on the unique constraint over
// (base_code, target_code, date).
type PgxExchangeRateRepository struct {
	BaseRepository
}

// NewPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func NewPgxExchangeRateRepository(pool PgxPool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// FindRate retrieves the rate stored for the exact (base, target, date) triple.
func (r *PgxExchangeRateRepository) FindRate(ctx context.Context, baseCode, targetCode string, date time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE base_code = $1 AND target_code = $2 AND date = $3;
	`
	return r.scanOne(ctx, query, strings.ToUpper(baseCode), strings.ToUpper(targetCode), dateOnly(date))
}

// FindLatestRate retrieves the most recent rate for (base, target) dated on
// or before the given day. Ties on date go to the highest id so the result
// is deterministic.
func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context, baseCode, targetCode string, onOrBefore time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE base_code = $1 AND target_code = $2 AND date <= $3
		ORDER BY date DESC, id DESC
		LIMIT 1;
	`
	return r.scanOne(ctx, query, strings.ToUpper(baseCode), strings.ToUpper(targetCode), dateOnly(onOrBefore))
}

// HasRatesForDate reports whether any rows exist for the base currency on
// the given day.
func (r *PgxExchangeRateRepository) HasRatesForDate(ctx context.Context, baseCode string, date time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM exchange_rates WHERE base_code = $1 AND date = $2);`

	var exists bool
	err := r.Pool.QueryRow(ctx, query, strings.ToUpper(baseCode), dateOnly(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check rates for date: %w", err)
	}
	return exists, nil
}

// BaseCurrenciesWithRatesForDate lists the distinct base codes with rows on
// the given day.
func (r *PgxExchangeRateRepository) BaseCurrenciesWithRatesForDate(ctx context.Context, date time.Time) ([]string, error) {
	query := `SELECT DISTINCT base_code FROM exchange_rates WHERE date = $1 ORDER BY base_code;`

	rows, err := r.Pool.Query(ctx, query, dateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list base currencies for date: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan base currency code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating base currency codes: %w", err)
	}
	return codes, nil
}

// UpsertDailyRates writes one row per usable entry inside a single
// transaction. Non-positive rates and target == base are skipped. Conflicts
// on (base_code, target_code, date) overwrite rate and updated_at in place.
func (r *PgxExchangeRateRepository) UpsertDailyRates(ctx context.Context, baseCode string, rates map[string]decimal.Decimal, date time.Time) (int64, error) {
	base := strings.ToUpper(baseCode)
	day := dateOnly(date)
	now := time.Now().UTC()

	// Deterministic write order keeps concurrent sweeps from deadlocking on
	// overlapping keys.
	targets := make([]string, 0, len(rates))
	for target := range rates {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}

	const upsert = `
		INSERT INTO exchange_rates (base_code, target_code, rate, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (base_code, target_code, date)
		DO UPDATE SET rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at;
	`

	var written int64
	for _, target := range targets {
		rate := rates[target]
		targetCode := strings.ToUpper(target)
		if targetCode == base {
			continue
		}
		if rate.LessThanOrEqual(decimal.Zero) {
			continue
		}

		if _, err := tx.Exec(ctx, upsert, base, targetCode, rate, day, now); err != nil {
			_ = r.Rollback(ctx, tx)
			return 0, fmt.Errorf("failed to upsert rate %s/%s: %w", base, targetCode, err)
		}
		written++
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return written, nil
}

// ListLatestRatesByBase returns the most recent day's rates for a base
// currency ordered by target code.
func (r *PgxExchangeRateRepository) ListLatestRatesByBase(ctx context.Context, baseCode string) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE base_code = $1
		  AND date = (SELECT MAX(date) FROM exchange_rates WHERE base_code = $1)
		ORDER BY target_code;
	`

	rows, err := r.Pool.Query(ctx, query, strings.ToUpper(baseCode))
	if err != nil {
		return nil, fmt.Errorf("failed to list latest rates: %w", err)
	}
	defer rows.Close()

	var out []domain.ExchangeRate
	for rows.Next() {
		var er domain.ExchangeRate
		if err := rows.Scan(&er.ID, &er.BaseCode, &er.TargetCode, &er.Rate, &er.Date, &er.CreatedAt, &er.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		out = append(out, er)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange rates: %w", err)
	}
	return out, nil
}

func (r *PgxExchangeRateRepository) scanOne(ctx context.Context, query string, args ...any) (*domain.ExchangeRate, error) {
	var er domain.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, args...).Scan(
		&er.ID, &er.BaseCode, &er.TargetCode, &er.Rate, &er.Date, &er.CreatedAt, &er.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query exchange rate: %w", err)
	}
	return &er, nil
}

// dateOnly strips the time-of-day so DATE comparisons are stable regardless
// of the caller's clock precision.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
