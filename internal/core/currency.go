package core

// CurrencyCode is one of the small fixed set of supported currencies.
type CurrencyCode string

const (
	INR CurrencyCode = "INR"
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
)

var currencySymbols = map[CurrencyCode]string{
	INR: "₹",
	USD: "$",
	EUR: "€",
	GBP: "£",
}

// Valid reports whether c is a supported currency code.
func (c CurrencyCode) Valid() bool {
	_, ok := currencySymbols[c]
	return ok
}

// Symbol returns the display symbol for the currency, falling back to the
// code itself for unknown values.
func (c CurrencyCode) Symbol() string {
	if s, ok := currencySymbols[c]; ok {
		return s
	}
	return string(c)
}
