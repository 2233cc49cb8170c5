package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"shipdesk/internal/models"
)

var hundred = decimal.NewFromInt(100)

// AdjustZonePricing applies a percentage or fixed adjustment to every zone's
// base price and per-kg price. Base weights are left alone. Arithmetic is
// exact decimal; a negative result is an error.
func AdjustZonePricing(pricing models.ZonePricing, adjustment models.AdjustmentType, value float64) (models.ZonePricing, error) {
	v := decimal.NewFromFloat(value)

	var apply func(decimal.Decimal) decimal.Decimal
	switch adjustment {
	case models.AdjustmentPercentage:
		factor := decimal.NewFromInt(1).Add(v.Div(hundred))
		apply = func(d decimal.Decimal) decimal.Decimal { return d.Mul(factor) }
	case models.AdjustmentFixed:
		apply = func(d decimal.Decimal) decimal.Decimal { return d.Add(v) }
	default:
		return nil, fmt.Errorf("unknown adjustment type %q", adjustment)
	}

	adjusted := make(models.ZonePricing, len(pricing))
	for zone, price := range pricing {
		basePrice := apply(decimal.NewFromFloat(price.BasePrice))
		perKg := apply(decimal.NewFromFloat(price.AdditionalPricePerKg))
		if basePrice.IsNegative() || perKg.IsNegative() {
			return nil, fmt.Errorf("%s price would become negative", zone)
		}

		price.BasePrice = basePrice.InexactFloat64()
		price.AdditionalPricePerKg = perKg.InexactFloat64()
		adjusted[zone] = price
	}

	return adjusted, nil
}
