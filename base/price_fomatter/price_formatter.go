package pricefomatter

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is applied to every payment token. Tokens with another
// precision are rendered wrongly, the payment token decimals are not trusted.
const EtherDecimals = 18

// Prices of one sale
type Prices struct {
	Token decimal.Decimal
	Usd   decimal.Decimal
}

// TokenString renders the token amount with at least one fractional digit, "1.5", "2.0", "0.0"
func (p Prices) TokenString() string {
	s := p.Token.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// UsdString renders the fiat estimate with exactly two fractional digits
func (p Prices) UsdString() string {
	return p.Usd.StringFixed(2)
}

type PriceFormatter interface {
	// GetPrices converts a smallest-unit total price and a per-token usd rate
	GetPrices(totalPrice string, usdPrice string) (Prices, error)
}
