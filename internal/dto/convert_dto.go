package dto

import (
	"github.com/fxsync/currency_exchange_app/internal/core/domain"
)

// ConvertRequest defines the payload of a conversion request.
type ConvertRequest struct {
	Amount       float64 `json:"amount" binding:"required"`
	FromCurrency string  `json:"from_currency" binding:"required,currencycode"`
	ToCurrency   string  `json:"to_currency" binding:"required,currencycode"`
}

// ConvertResponse echoes the request and carries the resolved conversion.
type ConvertResponse struct {
	Amount          float64 `json:"amount"`
	FromCurrency    string  `json:"from_currency"`
	ToCurrency      string  `json:"to_currency"`
	ConvertedAmount float64 `json:"converted_amount"`
	Rate            float64 `json:"rate"`
	RateDate        *string `json:"rate_date,omitempty"`
	IsDirectRate    bool    `json:"is_direct_rate"`
	// IntermediateCurrency is present only when the rate was bridged.
	IntermediateCurrency string `json:"intermediate_currency,omitempty"`
}

// ToConvertResponse converts a domain.ConversionResult to its DTO.
func ToConvertResponse(result *domain.ConversionResult) ConvertResponse {
	resp := ConvertResponse{
		Amount:               result.OriginalAmount.InexactFloat64(),
		FromCurrency:         result.FromCurrency,
		ToCurrency:           result.ToCurrency,
		ConvertedAmount:      result.ConvertedAmount.InexactFloat64(),
		Rate:                 result.ExchangeRate.InexactFloat64(),
		IsDirectRate:         result.IsDirectRate,
		IntermediateCurrency: result.IntermediateCurrency,
	}
	if result.RateDate != nil {
		d := result.RateDate.Format("2006-01-02")
		resp.RateDate = &d
	}
	return resp
}
