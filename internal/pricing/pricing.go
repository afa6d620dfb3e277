package pricing

import (
	"github.com/shopspring/decimal"

	"ThriftStoreAPI/internal/model"
)

// Pure arithmetic over a cart snapshot and a settings snapshot. Nothing in
// this package performs I/O or returns an error: malformed price strings
// degrade to a zero contribution rather than failing the whole computation.

var oneHundred = decimal.NewFromInt(100)

// LinePrice returns the price a cart line contributes to the total:
// rent_price for rentals, the unit price for everything else.
func LinePrice(line model.CartLine) decimal.Decimal {
	var raw *string
	if line.ListingKind == model.ListingRent {
		raw = line.RentPrice
	} else {
		raw = line.UnitPrice
	}
	if raw == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Total sums the line prices of the cart. Never negative, never fails.
func Total(lines []model.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(LinePrice(line))
	}
	return sum
}

// Commission computes the platform's cut: total * rate / 100, where the rate
// is the COD rate for cash on delivery and the online rate otherwise. A nil
// settings snapshot (not fetched yet) yields zero; callers must treat a zero
// commission against a non-empty cart as "settings not loaded", not "no fee".
func Commission(total decimal.Decimal, method model.PaymentMethod, settings *model.PlatformSettings) decimal.Decimal {
	if settings == nil {
		return decimal.Zero
	}
	rate := settings.CommissionRate
	if method == model.PaymentCOD {
		rate = settings.CODCommissionRate
	}
	return total.Mul(rate).Div(oneHundred)
}

// SellerEarnings is what the seller keeps after commission.
func SellerEarnings(total, commission decimal.Decimal) decimal.Decimal {
	return total.Sub(commission)
}

// Quote is a full price breakdown for display. SettingsLoaded distinguishes a
// genuine zero commission from one computed before settings arrived.
type Quote struct {
	Total          decimal.Decimal `json:"total"`
	Commission     decimal.Decimal `json:"commission"`
	SellerEarnings decimal.Decimal `json:"seller_earnings"`
	SettingsLoaded bool            `json:"settings_loaded"`
}

func QuoteFor(lines []model.CartLine, method model.PaymentMethod, settings *model.PlatformSettings) Quote {
	total := Total(lines)
	commission := Commission(total, method, settings)
	return Quote{
		Total:          total,
		Commission:     commission,
		SellerEarnings: SellerEarnings(total, commission),
		SettingsLoaded: settings != nil,
	}
}

// Display rounds to 2 decimal places. Presentation only; internal arithmetic
// keeps full precision.
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}
