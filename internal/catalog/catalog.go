// Package catalog holds the fixed registry of supported currencies. The
// table is initialized once at process start and is read-only for the
// process lifetime; rates for codes outside this table are never stored
// or served.
package catalog

import (
	"sort"

	"github.com/fxsync/currency_exchange_app/internal/core/domain"
)

var currencies = map[string]domain.Currency{
	"EUR": {Code: "EUR", Name: "Euro", Symbol: "€"},
	"USD": {Code: "USD", Name: "US Dollar", Symbol: "$"},
	"JPY": {Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	"BGN": {Code: "BGN", Name: "Bulgarian Lev", Symbol: "лв"},
	"CZK": {Code: "CZK", Name: "Czech Republic Koruna", Symbol: "Kč"},
	"DKK": {Code: "DKK", Name: "Danish Krone", Symbol: "kr"},
	"GBP": {Code: "GBP", Name: "British Pound Sterling", Symbol: "£"},
	"HUF": {Code: "HUF", Name: "Hungarian Forint", Symbol: "Ft"},
	"PLN": {Code: "PLN", Name: "Polish Zloty", Symbol: "zł"},
	"RON": {Code: "RON", Name: "Romanian Leu", Symbol: "lei"},
	"SEK": {Code: "SEK", Name: "Swedish Krona", Symbol: "kr"},
	"CHF": {Code: "CHF", Name: "Swiss Franc", Symbol: "Fr"},
	"ISK": {Code: "ISK", Name: "Icelandic Króna", Symbol: "kr"},
	"NOK": {Code: "NOK", Name: "Norwegian Krone", Symbol: "kr"},
	"HRK": {Code: "HRK", Name: "Croatian Kuna", Symbol: "kn"},
	"RUB": {Code: "RUB", Name: "Russian Ruble", Symbol: "₽"},
	"TRY": {Code: "TRY", Name: "Turkish Lira", Symbol: "₺"},
	"AUD": {Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	"BRL": {Code: "BRL", Name: "Brazilian Real", Symbol: "R$"},
	"CAD": {Code: "CAD", Name: "Canadian Dollar", Symbol: "C$"},
	"CNY": {Code: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
	"HKD": {Code: "HKD", Name: "Hong Kong Dollar", Symbol: "HK$"},
	"IDR": {Code: "IDR", Name: "Indonesian Rupiah", Symbol: "Rp"},
	"ILS": {Code: "ILS", Name: "Israeli New Sheqel", Symbol: "₪"},
	"INR": {Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
	"KRW": {Code: "KRW", Name: "South Korean Won", Symbol: "₩"},
	"MXN": {Code: "MXN", Name: "Mexican Peso", Symbol: "$"},
	"MYR": {Code: "MYR", Name: "Malaysian Ringgit", Symbol: "RM"},
	"NZD": {Code: "NZD", Name: "New Zealand Dollar", Symbol: "NZ$"},
	"PHP": {Code: "PHP", Name: "Philippine Peso", Symbol: "₱"},
	"SGD": {Code: "SGD", Name: "Singapore Dollar", Symbol: "S$"},
	"THB": {Code: "THB", Name: "Thai Baht", Symbol: "฿"},
	"ZAR": {Code: "ZAR", Name: "South African Rand", Symbol: "R"},
}

// codes is computed once so Codes doesn't re-sort on every call.
var codes = func() []string {
	cs := make([]string, 0, len(currencies))
	for code := range currencies {
		cs = append(cs, code)
	}
	sort.Strings(cs)
	return cs
}()

// IsSupported reports whether code is part of the catalog. Lookup is
// case-sensitive; callers normalize input to uppercase first.
func IsSupported(code string) bool {
	_, ok := currencies[code]
	return ok
}

// Codes returns all supported currency codes in lexical order.
func Codes() []string {
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// Info returns the catalog entry for code, or ok=false when the code is
// not supported.
func Info(code string) (domain.Currency, bool) {
	c, ok := currencies[code]
	return c, ok
}

// All returns every catalog entry ordered by code.
func All() []domain.Currency {
	out := make([]domain.Currency, 0, len(codes))
	for _, code := range codes {
		out = append(out, currencies[code])
	}
	return out
}
