package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/apperrors"
	"github.com/fxsync/currency_exchange_app/internal/core/domain"
	"github.com/fxsync/currency_exchange_app/internal/core/ports"
	"github.com/fxsync/currency_exchange_app/internal/dto"
	"github.com/fxsync/currency_exchange_app/internal/handlers"
	"github.com/fxsync/currency_exchange_app/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ConverterSvc ---
type MockConverterService struct {
	mock.Mock
}

func (m *MockConverterService) Convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) (*domain.ConversionResult, error) {
	args := m.Called(ctx, amount, fromCurrency, toCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionResult), args.Error(1)
}

var _ ports.ConverterSvc = (*MockConverterService)(nil)

// --- Mock RateSyncSvc ---
type MockRateSyncService struct {
	mock.Mock
}

func (m *MockRateSyncService) SyncAll(ctx context.Context, baseCurrency string) (*domain.SyncStats, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncStats), args.Error(1)
}

var _ ports.RateSyncSvc = (*MockRateSyncService)(nil)

// --- Mock RateQuerySvc ---
type MockRateQueryService struct {
	mock.Mock
}

func (m *MockRateQueryService) ListLatestRates(ctx context.Context, baseCurrency string) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockRateQueryService) ListSyncedBases(ctx context.Context, date time.Time) ([]string, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var _ ports.RateQuerySvc = (*MockRateQueryService)(nil)

type HandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	converter *MockConverterService
	rateSync  *MockRateSyncService
	rateQuery *MockRateQueryService
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(dto.RegisterValidations())

	s.converter = new(MockConverterService)
	s.rateSync = new(MockRateSyncService)
	s.rateQuery = new(MockRateQueryService)

	s.router = gin.New()
	cfg := &config.Config{IsProduction: true}
	handlers.RegisterRoutes(s.router, cfg, &ports.ServiceContainer{
		Converter: s.converter,
		RateSync:  s.rateSync,
		RateQuery: s.rateQuery,
	})
}

func (s *HandlerTestSuite) postJSON(path string, body any) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) TestConvert_Success() {
	rateDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	s.converter.On("Convert", mock.Anything, 100.0, "EUR", "GBP").Return(&domain.ConversionResult{
		OriginalAmount:  decimal.RequireFromString("100.00"),
		ConvertedAmount: decimal.RequireFromString("85.50"),
		ExchangeRate:    decimal.RequireFromString("0.855"),
		FromCurrency:    "EUR",
		ToCurrency:      "GBP",
		RateDate:        &rateDate,
		IsDirectRate:    true,
	}, nil)

	w := s.postJSON("/api/v1/convert", dto.ConvertRequest{Amount: 100, FromCurrency: "EUR", ToCurrency: "GBP"})

	s.Equal(http.StatusOK, w.Code)
	var resp dto.ConvertResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("EUR", resp.FromCurrency)
	s.Equal("GBP", resp.ToCurrency)
	s.InDelta(85.50, resp.ConvertedAmount, 1e-9)
	s.True(resp.IsDirectRate)
	s.Require().NotNil(resp.RateDate)
	s.Equal("2024-01-05", *resp.RateDate)
	s.Empty(resp.IntermediateCurrency)
	s.converter.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestConvert_ValidationErrorReturns400() {
	s.converter.On("Convert", mock.Anything, 0.001, "EUR", "GBP").
		Return(nil, fmt.Errorf("%w: amount below minimum", apperrors.ErrValidation))

	w := s.postJSON("/api/v1/convert", dto.ConvertRequest{Amount: 0.001, FromCurrency: "EUR", ToCurrency: "GBP"})

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestConvert_UnknownCurrencyReturns404() {
	s.converter.On("Convert", mock.Anything, 100.0, "XXX", "GBP").
		Return(nil, fmt.Errorf("%w: XXX", apperrors.ErrCurrencyNotFound))

	w := s.postJSON("/api/v1/convert", dto.ConvertRequest{Amount: 100, FromCurrency: "XXX", ToCurrency: "GBP"})

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestConvert_RateNotFoundReturns404() {
	s.converter.On("Convert", mock.Anything, 100.0, "EUR", "JPY").
		Return(nil, fmt.Errorf("%w: EUR to JPY", apperrors.ErrRateNotFound))

	w := s.postJSON("/api/v1/convert", dto.ConvertRequest{Amount: 100, FromCurrency: "EUR", ToCurrency: "JPY"})

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestConvert_MalformedCurrencyRejectedAtBinding() {
	w := s.postJSON("/api/v1/convert", dto.ConvertRequest{Amount: 100, FromCurrency: "EURO", ToCurrency: "GBP"})

	s.Equal(http.StatusBadRequest, w.Code)
	s.converter.AssertNotCalled(s.T(), "Convert")
}

func (s *HandlerTestSuite) TestConvert_MissingBodyReturns400() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestListCurrencies_ReturnsCatalog() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/currencies", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp []dto.CurrencyResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp, 33)
}

func (s *HandlerTestSuite) TestGetCurrency_NotFoundReturns404() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/currencies/XXX", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestListLatestRates_RequiresBaseParam() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/latest", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	s.rateQuery.AssertNotCalled(s.T(), "ListLatestRates")
}

func (s *HandlerTestSuite) TestListLatestRates_Success() {
	s.rateQuery.On("ListLatestRates", mock.Anything, "USD").Return([]domain.ExchangeRate{
		{
			BaseCode:   "USD",
			TargetCode: "EUR",
			Rate:       decimal.RequireFromString("0.92"),
			Date:       time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/latest?base=USD", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp []dto.ExchangeRateResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp, 1)
	s.Equal("EUR", resp[0].TargetCode)
	s.Equal("2024-01-05", resp[0].Date)
}

func (s *HandlerTestSuite) TestListSyncedBases_InvalidDateReturns400() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/bases?date=not-a-date", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	s.rateQuery.AssertNotCalled(s.T(), "ListSyncedBases")
}

func (s *HandlerTestSuite) TestListSyncedBases_Success() {
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	s.rateQuery.On("ListSyncedBases", mock.Anything, day).Return([]string{"EUR", "USD"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/bases?date=2024-01-05", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp []string
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal([]string{"EUR", "USD"}, resp)
}

func (s *HandlerTestSuite) TestTriggerSync_ConflictReturns409() {
	s.rateSync.On("SyncAll", mock.Anything, "").Return(nil, apperrors.ErrSyncInProgress)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestTriggerSync_ReturnsStats() {
	now := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	s.rateSync.On("SyncAll", mock.Anything, "USD").Return(&domain.SyncStats{
		RunID:        "run-1",
		BaseCurrency: "USD",
		Successful:   1,
		Total:        1,
		StartedAt:    now,
		CompletedAt:  now.Add(2 * time.Second),
		Duration:     2 * time.Second,
		Units: []domain.SyncUnitResult{
			{Currency: "USD", State: domain.SyncSucceeded, Attempts: 1, RowsWritten: 32},
		},
	}, nil)

	w := s.postJSON("/api/v1/sync", dto.SyncRequest{BaseCurrency: "USD"})

	s.Equal(http.StatusOK, w.Code)
	var resp dto.SyncStatsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("run-1", resp.RunID)
	s.Equal(1, resp.Successful)
	s.Require().Len(resp.Units, 1)
	s.Equal("succeeded", resp.Units[0].State)
	s.EqualValues(32, resp.Units[0].RowsWritten)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
