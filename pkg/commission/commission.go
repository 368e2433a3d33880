// Package commission computes the platform fee split applied to vendor
// earnings. Amounts are whole rupees; the split is frozen onto line items at
// order creation and reused verbatim at settlement.
package commission

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Split is the outcome of applying a commission rate to a gross amount.
type Split struct {
	Gross      int
	Fee        int
	NetPayable int
}

// Compute applies a percentage rate to the gross amount. The fee is rounded
// half-up to the nearest rupee and the net is the exact remainder, so
// Fee + NetPayable == Gross always holds.
func Compute(gross int, ratePercent decimal.Decimal) Split {
	if gross <= 0 {
		return Split{Gross: gross}
	}

	fee := decimal.NewFromInt(int64(gross)).
		Mul(ratePercent).
		Div(hundred).
		Round(0)

	feeInt := int(fee.IntPart())
	if feeInt < 0 {
		feeInt = 0
	}
	if feeInt > gross {
		feeInt = gross
	}

	return Split{
		Gross:      gross,
		Fee:        feeInt,
		NetPayable: gross - feeInt,
	}
}
