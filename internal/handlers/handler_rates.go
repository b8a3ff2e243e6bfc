package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/apperrors"
	"github.com/fxsync/currency_exchange_app/internal/core/ports"
	"github.com/fxsync/currency_exchange_app/internal/dto"
	"github.com/fxsync/currency_exchange_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ratesHandler handles HTTP requests for stored exchange rates.
type ratesHandler struct {
	rateQueryService ports.RateQuerySvc
}

// newRatesHandler creates a new ratesHandler.
func newRatesHandler(rqs ports.RateQuerySvc) *ratesHandler {
	return &ratesHandler{
		rateQueryService: rqs,
	}
}

// registerRatesRoutes registers routes related to stored rates.
func registerRatesRoutes(rg *gin.RouterGroup, rateQueryService ports.RateQuerySvc) {
	h := newRatesHandler(rateQueryService)

	rates := rg.Group("/rates")
	{
		rates.GET("/latest", h.listLatestRates)
		rates.GET("/bases", h.listSyncedBases)
	}
}

// listLatestRates godoc
// @Summary List the latest stored rates for a base currency
// @Description Retrieves the most recent stored rate per target currency for the given base
// @Tags rates
// @Produce  json
// @Param   base query string true "Base Currency Code (3 letters)"
// @Success 200 {array} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Missing base currency"
// @Failure 404 {object} map[string]string "Base currency not supported"
// @Failure 500 {object} map[string]string "Failed to list rates"
// @Router /rates/latest [get]
func (h *ratesHandler) listLatestRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	base := c.Query("base")
	if base == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'base' is required"})
		return
	}

	logger = logger.With(slog.String("base_currency", base))
	logger.Info("Received request to list latest rates")

	rates, err := h.rateQueryService.ListLatestRates(c.Request.Context(), base)
	if err != nil {
		if errors.Is(err, apperrors.ErrCurrencyNotFound) {
			logger.Warn("Base currency not supported")
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list latest rates from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rates"})
		}
		return
	}

	logger.Info("Latest rates listed successfully", slog.Int("count", len(rates)))
	c.JSON(http.StatusOK, dto.ToListExchangeRateResponse(rates))
}

// listSyncedBases godoc
// @Summary List base currencies synced for a day
// @Description Retrieves the base currencies that already have stored rates for the given date (today by default)
// @Tags rates
// @Produce  json
// @Param   date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} string
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 500 {object} map[string]string "Failed to list synced bases"
// @Router /rates/bases [get]
func (h *ratesHandler) listSyncedBases(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, want YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	bases, err := h.rateQueryService.ListSyncedBases(c.Request.Context(), date)
	if err != nil {
		logger.Error("Failed to list synced bases from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list synced bases"})
		return
	}

	c.JSON(http.StatusOK, bases)
}
