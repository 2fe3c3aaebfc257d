package market

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// yoctoScale is the number of decimal places between a whole token and the
// smallest currency unit: 1 NEAR = 10^24 yocto.
const yoctoScale = 24

// MinCreateDeposit is the flat deposit required to create an item: 0.1 NEAR
// in yocto units, independent of content size.
var MinCreateDeposit = new(big.Int).Exp(big.NewInt(10), big.NewInt(23), nil)

// ToYocto converts a decimal token amount to yocto units. The conversion is
// exact decimal arithmetic, never binary floating point; an amount carrying
// more than 24 fractional digits is rounded up.
func ToYocto(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	return d.Shift(yoctoScale).Ceil().BigInt(), nil
}

// MinimumDeposit converts a listed price string to the minimum attached
// payment in yocto units. A typical two-decimal price converts without
// remainder; rounding an over-precise price up means an underpayment is
// never accepted.
func MinimumDeposit(price string) (*big.Int, error) {
	min, err := ToYocto(price)
	if err != nil {
		return nil, fmt.Errorf("parsing price: %w", err)
	}
	return min, nil
}
