package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionResult is the outcome of a single conversion request. It is
// produced per request and never persisted.
type ConversionResult struct {
	OriginalAmount  decimal.Decimal
	FromCurrency    string
	ToCurrency      string
	ConvertedAmount decimal.Decimal
	ExchangeRate    decimal.Decimal
	// RateDate is nil for same-currency conversions, where no stored rate
	// was consulted.
	RateDate     *time.Time
	IsDirectRate bool
	// IntermediateCurrency is set only when the rate was bridged.
	IntermediateCurrency string
}
