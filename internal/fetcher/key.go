package fetcher

import "fmt"

// DefaultCountry is used when the table carries no country column.
const DefaultCountry = "US"

// Key addresses one metadata lookup.
type Key struct {
	Symbol  string
	Country string
}

// NewKey builds a key, falling back to DefaultCountry for an empty country.
func NewKey(symbol, country string) Key {
	if country == "" {
		country = DefaultCountry
	}
	return Key{Symbol: symbol, Country: country}
}

// String renders the key in SYMBOL:COUNTRY form, e.g. AAPL:US.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Symbol, k.Country)
}
