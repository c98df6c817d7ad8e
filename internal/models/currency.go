package models

import "strings"

// Currency is an ISO 4217 currency code.
type Currency string

const (
	SEK Currency = "SEK"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	CAD Currency = "CAD"
	AUD Currency = "AUD"
	CHF Currency = "CHF"
	CNY Currency = "CNY"
)

// DefaultCurrency is used when a request does not name a currency.
const DefaultCurrency = SEK

type currencyInfo struct {
	symbol string
	name   string
}

var currencies = map[Currency]currencyInfo{
	SEK: {"kr", "Swedish Krona"},
	USD: {"$", "US Dollar"},
	EUR: {"€", "Euro"},
	GBP: {"£", "British Pound"},
	JPY: {"¥", "Japanese Yen"},
	CAD: {"C$", "Canadian Dollar"},
	AUD: {"A$", "Australian Dollar"},
	CHF: {"Fr", "Swiss Franc"},
	CNY: {"¥", "Chinese Yuan"},
}

// CurrencyFromCode resolves a code case-insensitively.
// The second return value is false for unknown codes.
func CurrencyFromCode(code string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	_, ok := currencies[c]
	return c, ok
}

// IsKnown reports whether the currency is one of the defined codes.
func (c Currency) IsKnown() bool {
	_, ok := currencies[c]
	return ok
}

// Symbol returns the display symbol for the currency, or the code itself
// if the currency is unknown.
func (c Currency) Symbol() string {
	if info, ok := currencies[c]; ok {
		return info.symbol
	}
	return string(c)
}

// Name returns the human-readable currency name.
func (c Currency) Name() string {
	if info, ok := currencies[c]; ok {
		return info.name
	}
	return string(c)
}

func (c Currency) String() string {
	return string(c)
}
