package domain

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders a price with thousands separators, dropping zero cents.
func FormatPrice(p float64) string {
	if p == math.Trunc(p) && math.Abs(p) < 1e15 {
		return pricePrinter.Sprintf("$%d", int64(p))
	}
	return pricePrinter.Sprintf("$%.2f", p)
}

func (l Listing) PriceText() string { return FormatPrice(l.Price) }
