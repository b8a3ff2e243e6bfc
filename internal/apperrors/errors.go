package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrCurrencyNotFound indicates a currency code that is not part of the
// supported catalog. Wrapping errors name the offending code.
var ErrCurrencyNotFound = errors.New("currency not found")

// ErrRateNotFound indicates that no usable exchange rate exists for a
// currency pair, neither direct nor via the fallback currency.
var ErrRateNotFound = errors.New("exchange rate not found")

// ErrConfiguration indicates a missing or invalid operator-provided setting,
// such as an absent API credential. Never retried.
var ErrConfiguration = errors.New("configuration error")

// ErrSyncInProgress indicates that a full-catalog sweep is already running.
var ErrSyncInProgress = errors.New("sync already in progress")
