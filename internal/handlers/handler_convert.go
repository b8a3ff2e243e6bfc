package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fxsync/currency_exchange_app/internal/apperrors"
	"github.com/fxsync/currency_exchange_app/internal/core/ports"
	"github.com/fxsync/currency_exchange_app/internal/dto"
	"github.com/fxsync/currency_exchange_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// convertHandler handles HTTP requests related to currency conversion.
type convertHandler struct {
	converterService ports.ConverterSvc
}

// newConvertHandler creates a new convertHandler.
func newConvertHandler(cs ports.ConverterSvc) *convertHandler {
	return &convertHandler{
		converterService: cs,
	}
}

// registerConvertRoutes registers the conversion route.
func registerConvertRoutes(rg *gin.RouterGroup, converterService ports.ConverterSvc, extraMiddleware ...gin.HandlerFunc) {
	h := newConvertHandler(converterService)

	convert := rg.Group("/convert")
	convert.Use(extraMiddleware...)
	{
		convert.POST("", h.convert)
	}
}

// convert godoc
// @Summary Convert an amount between two currencies
// @Description Converts an amount using today's stored rate, falling back to the most recent stored rate, then to bridging through the fallback currency
// @Tags conversion
// @Accept  json
// @Produce  json
// @Param   conversion body dto.ConvertRequest true "Conversion details"
// @Success 200 {object} dto.ConvertResponse
// @Failure 400 {object} map[string]string "Invalid amount or request format"
// @Failure 404 {object} map[string]string "Currency not supported or no rate available"
// @Failure 429 {object} map[string]string "Rate limit exceeded"
// @Failure 500 {object} map[string]string "Failed to convert"
// @Router /convert [post]
func (h *convertHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("from_currency", req.FromCurrency),
		slog.String("to_currency", req.ToCurrency),
	)
	logger.Info("Received request to convert", slog.Float64("amount", req.Amount))

	result, err := h.converterService.Convert(c.Request.Context(), req.Amount, req.FromCurrency, req.ToCurrency)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error converting", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrCurrencyNotFound) {
			logger.Warn("Unsupported currency in conversion", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrRateNotFound) {
			logger.Warn("No rate available for conversion", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to convert in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert"})
		}
		return
	}

	logger.Info("Conversion resolved successfully",
		slog.Bool("is_direct_rate", result.IsDirectRate),
		slog.String("rate", result.ExchangeRate.String()),
	)
	c.JSON(http.StatusOK, dto.ToConvertResponse(result))
}
