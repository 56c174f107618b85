package announcement

import (
	"fmt"
	"strings"

	pricefomatter "github.com/x-xyz/salebot/base/price_fomatter"
	"github.com/x-xyz/salebot/domain"
)

const (
	buyerPrefixLen = 8
	etherGlyph     = "Ξ"
)

var nativeSymbols = map[string]struct{}{
	"ETH":  {},
	"WETH": {},
}

// Format renders the single line announcement of a sale
func Format(ev domain.SaleEvent, prices pricefomatter.Prices) (string, error) {
	if ev.Asset == nil {
		return "", fmt.Errorf("%w: sale %d has no asset", domain.ErrFormat, ev.Id)
	}
	if ev.PaymentToken == nil {
		return "", fmt.Errorf("%w: sale %d has no payment token", domain.ErrFormat, ev.Id)
	}
	if ev.BuyerAddress == nil || ev.BuyerAddress.IsEmpty() {
		return "", fmt.Errorf("%w: sale %d has no buyer address", domain.ErrFormat, ev.Id)
	}

	return fmt.Sprintf(
		"%s sold to %s for %s%s or $%s. %s. %s",
		ev.Asset.Name,
		ev.BuyerAddress.Short(buyerPrefixLen),
		prices.TokenString(),
		SymbolGlyph(ev.PaymentToken.Symbol),
		prices.UsdString(),
		FirstSentence(ev.Asset.Description),
		ev.Asset.Permalink,
	), nil
}

// SymbolGlyph is appended right after the token amount
func SymbolGlyph(symbol string) string {
	if _, ok := nativeSymbols[symbol]; ok {
		return etherGlyph
	}
	return " " + symbol
}

// FirstSentence returns the description up to the first period
func FirstSentence(description string) string {
	if i := strings.IndexByte(description, '.'); i >= 0 {
		return description[:i]
	}
	return description
}
