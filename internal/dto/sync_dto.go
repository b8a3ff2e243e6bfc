package dto

import (
	"time"

	"github.com/fxsync/currency_exchange_app/internal/core/domain"
)

// SyncRequest optionally restricts a manually triggered sync to one base
// currency; empty means a full catalog sweep.
type SyncRequest struct {
	BaseCurrency string `json:"base_currency" binding:"omitempty,currencycode"`
}

// SyncUnitResponse reports one currency's outcome within a sweep.
type SyncUnitResponse struct {
	Currency    string `json:"currency"`
	State       string `json:"state"`
	Attempts    int    `json:"attempts"`
	RowsWritten int64  `json:"rows_written"`
	Error       string `json:"error,omitempty"`
}

// SyncStatsResponse summarizes one sync run.
type SyncStatsResponse struct {
	RunID           string             `json:"run_id"`
	BaseCurrency    string             `json:"base_currency,omitempty"`
	Successful      int                `json:"successful"`
	Failed          int                `json:"failed"`
	Skipped         int                `json:"skipped"`
	Total           int                `json:"total"`
	StartedAt       time.Time          `json:"started_at"`
	CompletedAt     time.Time          `json:"completed_at"`
	DurationSeconds float64            `json:"duration_seconds"`
	Units           []SyncUnitResponse `json:"units"`
}

// ToSyncStatsResponse converts domain.SyncStats to its DTO.
func ToSyncStatsResponse(stats *domain.SyncStats) SyncStatsResponse {
	units := make([]SyncUnitResponse, len(stats.Units))
	for i, u := range stats.Units {
		units[i] = SyncUnitResponse{
			Currency:    u.Currency,
			State:       string(u.State),
			Attempts:    u.Attempts,
			RowsWritten: u.RowsWritten,
		}
		if u.Err != nil {
			units[i].Error = u.Err.Error()
		}
	}
	return SyncStatsResponse{
		RunID:           stats.RunID,
		BaseCurrency:    stats.BaseCurrency,
		Successful:      stats.Successful,
		Failed:          stats.Failed,
		Skipped:         stats.Skipped,
		Total:           stats.Total,
		StartedAt:       stats.StartedAt,
		CompletedAt:     stats.CompletedAt,
		DurationSeconds: stats.Duration.Seconds(),
		Units:           units,
	}
}
