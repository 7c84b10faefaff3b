package usecase

import "github.com/shopspring/decimal"

// GalleryCommissionRate is the single source for the gallery/artist split.
// The gallery keeps 40% of every sale, the artist receives the remainder.
var GalleryCommissionRate = decimal.New(40, -2)

// Shipping tiers by order subtotal.
var (
	freeShippingThreshold    = decimal.NewFromInt(500)
	reducedShippingThreshold = decimal.NewFromInt(150)
	standardShippingCost     = decimal.NewFromInt(25)
	reducedShippingCost      = decimal.NewFromInt(10)
)

// ShippingCost returns the tiered shipping cost for a subtotal.
func ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case subtotal.GreaterThanOrEqual(freeShippingThreshold):
		return decimal.Zero
	case subtotal.GreaterThanOrEqual(reducedShippingThreshold):
		return reducedShippingCost
	default:
		return standardShippingCost
	}
}

// TaxFor returns the tax applied to a subtotal. Region-specific tax rules
// live outside this service; the base rate is zero.
func TaxFor(subtotal decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// SplitCommission divides an item price between gallery and artist. The
// gallery share is rounded to cents and the artist receives the exact
// remainder, so both parts always sum to the price.
func SplitCommission(price decimal.Decimal) (gallery, artist decimal.Decimal) {
	gallery = price.Mul(GalleryCommissionRate).Round(2)
	artist = price.Sub(gallery)
	return gallery, artist
}
