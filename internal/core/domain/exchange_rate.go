package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate represents a stored daily rate denominated in BaseCode.
// At most one row exists per (BaseCode, TargetCode, Date).
type ExchangeRate struct {
	ID         int64
	BaseCode   string
	TargetCode string
	Rate       decimal.Decimal
	Date       time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
