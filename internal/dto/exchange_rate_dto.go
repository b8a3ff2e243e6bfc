package dto

import (
	"time"

	"github.com/fxsync/currency_exchange_app/internal/core/domain"
)

// ExchangeRateResponse defines the data returned for one stored rate row.
type ExchangeRateResponse struct {
	BaseCode   string    `json:"base_code"`
	TargetCode string    `json:"target_code"`
	Rate       float64   `json:"rate"`
	Date       string    `json:"date"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToListExchangeRateResponse converts stored rates to DTOs.
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	res := make([]ExchangeRateResponse, len(rates))
	for i, r := range rates {
		res[i] = ExchangeRateResponse{
			BaseCode:   r.BaseCode,
			TargetCode: r.TargetCode,
			Rate:       r.Rate.InexactFloat64(),
			Date:       r.Date.Format("2006-01-02"),
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return res
}
