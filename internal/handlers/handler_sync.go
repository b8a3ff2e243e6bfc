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

// syncHandler handles HTTP requests that trigger rate synchronization.
type syncHandler struct {
	rateSyncService ports.RateSyncSvc
}

// newSyncHandler creates a new syncHandler.
func newSyncHandler(rss ports.RateSyncSvc) *syncHandler {
	return &syncHandler{
		rateSyncService: rss,
	}
}

// registerSyncRoutes registers the manual sync trigger route.
func registerSyncRoutes(rg *gin.RouterGroup, rateSyncService ports.RateSyncSvc) {
	h := newSyncHandler(rateSyncService)

	sync := rg.Group("/sync")
	{
		sync.POST("", h.triggerSync)
	}
}

// triggerSync godoc
// @Summary Trigger a rate synchronization sweep
// @Description Fetches today's rates from the external provider for every catalog currency, or for a single base currency when one is given. Runs synchronously and returns per-currency outcomes.
// @Tags sync
// @Accept  json
// @Produce  json
// @Param   sync body dto.SyncRequest false "Optional single base currency"
// @Success 200 {object} dto.SyncStatsResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 404 {object} map[string]string "Base currency not supported"
// @Failure 409 {object} map[string]string "A sync is already running"
// @Failure 500 {object} map[string]string "Failed to sync"
// @Router /sync [post]
func (h *syncHandler) triggerSync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for TriggerSync", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	logger.Info("Received request to trigger sync", slog.String("base_currency", req.BaseCurrency))

	stats, err := h.rateSyncService.SyncAll(c.Request.Context(), req.BaseCurrency)
	if err != nil {
		if errors.Is(err, apperrors.ErrSyncInProgress) {
			logger.Warn("Sync already in progress")
			c.JSON(http.StatusConflict, gin.H{"error": "A sync is already running"})
		} else if errors.Is(err, apperrors.ErrCurrencyNotFound) {
			logger.Warn("Base currency not supported", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to sync in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync"})
		}
		return
	}

	logger.Info("Sync completed",
		slog.Int("successful", stats.Successful),
		slog.Int("failed", stats.Failed),
		slog.Int("skipped", stats.Skipped),
	)
	c.JSON(http.StatusOK, dto.ToSyncStatsResponse(stats))
}
