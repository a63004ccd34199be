package paywall

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	colombia = language.MustParse("es-CO")
	peso     = currency.MustParseISO("COP")
	copSign  = message.NewPrinter(colombia).Sprint(currency.NarrowSymbol(peso))
)

// FormatPrice renders a whole-peso price the way the pricing view shows it:
// "Gratis" for 0, otherwise "$ 49.900" with es-CO digit grouping.
func FormatPrice(price int64) string {
	if price == 0 {
		return "Gratis"
	}
	p := message.NewPrinter(colombia)
	return copSign + " " + p.Sprintf("%d", price)
}
