package pgsql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/apperrors"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rateColumns = []string{"id", "base_code", "target_code", "rate", "date", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PgxExchangeRateRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPgxExchangeRateRepository(mock)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFindRate_Found(t *testing.T) {
	mock, repo := newMockRepo(t)
	date := day(2024, time.January, 3)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM exchange_rates WHERE base_code = \$1 AND target_code = \$2 AND date = \$3`).
		WithArgs("USD", "EUR", date).
		WillReturnRows(pgxmock.NewRows(rateColumns).
			AddRow(int64(7), "USD", "EUR", decimal.RequireFromString("0.95"), date, now, now))

	er, err := repo.FindRate(context.Background(), "usd", "eur", date)
	require.NoError(t, err)
	assert.Equal(t, int64(7), er.ID)
	assert.Equal(t, "USD", er.BaseCode)
	assert.Equal(t, "EUR", er.TargetCode)
	assert.True(t, er.Rate.Equal(decimal.RequireFromString("0.95")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindRate_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)
	date := day(2024, time.January, 3)

	mock.ExpectQuery(`SELECT (.+) FROM exchange_rates WHERE base_code = \$1 AND target_code = \$2 AND date = \$3`).
		WithArgs("USD", "EUR", date).
		WillReturnRows(pgxmock.NewRows(rateColumns))

	_, err := repo.FindRate(context.Background(), "USD", "EUR", date)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindLatestRate_BoundsDate(t *testing.T) {
	mock, repo := newMockRepo(t)
	asOf := day(2024, time.January, 5)
	stored := day(2024, time.January, 3)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM exchange_rates WHERE base_code = \$1 AND target_code = \$2 AND date <= \$3 ORDER BY date DESC, id DESC LIMIT 1`).
		WithArgs("USD", "EUR", asOf).
		WillReturnRows(pgxmock.NewRows(rateColumns).
			AddRow(int64(12), "USD", "EUR", decimal.RequireFromString("0.95"), stored, now, now))

	er, err := repo.FindLatestRate(context.Background(), "USD", "EUR", asOf)
	require.NoError(t, err)
	assert.Equal(t, stored, er.Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasRatesForDate(t *testing.T) {
	mock, repo := newMockRepo(t)
	date := day(2024, time.January, 3)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("USD", date).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.HasRatesForDate(context.Background(), "USD", date)
	require.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseCurrenciesWithRatesForDate(t *testing.T) {
	mock, repo := newMockRepo(t)
	date := day(2024, time.January, 3)

	mock.ExpectQuery(`SELECT DISTINCT base_code FROM exchange_rates WHERE date = \$1`).
		WithArgs(date).
		WillReturnRows(pgxmock.NewRows([]string{"base_code"}).AddRow("EUR").AddRow("USD"))

	codes, err := repo.BaseCurrenciesWithRatesForDate(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, []string{"EUR", "USD"}, codes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertDailyRates_SkipsAndWritesInOneTransaction(t *testing.T) {
	mock, repo := newMockRepo(t)
	date := day(2024, time.January, 3)

	rates := map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.92"),
		"GBP": decimal.RequireFromString("0.79"),
		"USD": decimal.RequireFromString("1"),     // base itself, skipped
		"JPY": decimal.RequireFromString("-1.5"),  // non-positive, skipped
		"CHF": decimal.Zero,                       // non-positive, skipped
	}

	mock.ExpectBegin()
	// Targets are written in sorted order: EUR before GBP.
	mock.ExpectExec(`INSERT INTO exchange_rates`).
		WithArgs("USD", "EUR", rates["EUR"], date, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO exchange_rates`).
		WithArgs("USD", "GBP", rates["GBP"], date, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	written, err := repo.UpsertDailyRates(context.Background(), "USD", rates, date)
	require.NoError(t, err)
	assert.Equal(t, int64(2), written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertDailyRates_RollsBackOnWriteFailure(t *testing.T) {
	mock, repo := newMockRepo(t)
	date := day(2024, time.January, 3)
	boom := errors.New("disk full")

	rates := map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.92"),
		"GBP": decimal.RequireFromString("0.79"),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO exchange_rates`).
		WithArgs("USD", "EUR", rates["EUR"], date, pgxmock.AnyArg()).
		WillReturnError(boom)
	mock.ExpectRollback()

	_, err := repo.UpsertDailyRates(context.Background(), "USD", rates, date)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLatestRatesByBase(t *testing.T) {
	mock, repo := newMockRepo(t)
	date := day(2024, time.January, 3)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM exchange_rates WHERE base_code = \$1`).
		WithArgs("USD").
		WillReturnRows(pgxmock.NewRows(rateColumns).
			AddRow(int64(1), "USD", "EUR", decimal.RequireFromString("0.92"), date, now, now).
			AddRow(int64(2), "USD", "GBP", decimal.RequireFromString("0.79"), date, now, now))

	rates, err := repo.ListLatestRatesByBase(context.Background(), "USD")
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "EUR", rates[0].TargetCode)
	assert.Equal(t, "GBP", rates[1].TargetCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
