package domain

// Currency describes one entry of the supported-currency catalog.
type Currency struct {
	Code   string
	Name   string
	Symbol string
}
