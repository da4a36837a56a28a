package domain

import "github.com/shopspring/decimal"

// CurrencySymbol is the rand sign used on every displayed amount.
const CurrencySymbol = "R"

// Money converts a catalog price into an exact decimal amount.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// FormatRand renders an amount the way the storefront displays it, e.g. R45.00.
func FormatRand(d decimal.Decimal) string {
	return CurrencySymbol + d.StringFixed(2)
}
