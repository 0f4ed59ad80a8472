package pricing

import (
	"github.com/shopspring/decimal"

	"decorprice/internal"
)

var two = decimal.NewFromInt(2)

// ResolveMidPrice picks the representative price of an item and stores it in
// item.MidPrice. Precedence: medium, average of small and large, the single
// size price present, a pre-existing mid price, the min price, then zero.
// Calling it again on the same item returns the same value.
func ResolveMidPrice(item *internal.CatalogItem) float64 {
	if item == nil {
		return 0
	}
	mid := midPrice(*item)
	item.MidPrice = &mid
	return mid
}

func midPrice(item internal.CatalogItem) float64 {
	switch {
	case item.PriceMedium != nil:
		return *item.PriceMedium
	case item.PriceSmall != nil && item.PriceLarge != nil:
		avg := decimal.NewFromFloat(*item.PriceSmall).
			Add(decimal.NewFromFloat(*item.PriceLarge)).
			Div(two)
		f, _ := avg.Float64()
		return f
	case item.PriceSmall != nil:
		return *item.PriceSmall
	case item.PriceLarge != nil:
		return *item.PriceLarge
	case item.MidPrice != nil:
		return *item.MidPrice
	case item.MinPrice != nil:
		return *item.MinPrice
	}
	return 0
}
