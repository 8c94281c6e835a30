// Package units converts between whole NEAR and yoctoNEAR, the ledger's
// smallest indivisible unit.
package units

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits of one NEAR.
const Decimals = 24

var (
	yoctoPerNear = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)
	halfNear     = new(big.Int).Div(yoctoPerNear, big.NewInt(2))
)

// ApproxNear rounds a yoctoNEAR amount to the nearest whole NEAR.
func ApproxNear(yocto *big.Int) *big.Int {
	n := new(big.Int).Add(yocto, halfNear)
	return n.Quo(n, yoctoPerNear)
}

// ToYocto parses a human amount in NEAR ("1.5", "0.000001") into yoctoNEAR.
func ToYocto(near string) (*big.Int, error) {
	d, err := decimal.NewFromString(near)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", near, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount %q is negative", near)
	}
	yocto := d.Shift(Decimals)
	if !yocto.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", near, Decimals)
	}
	return yocto.BigInt(), nil
}

// FormatNear renders a yoctoNEAR amount in whole NEAR without trailing zeros.
func FormatNear(yocto *big.Int) string {
	return decimal.NewFromBigInt(yocto, -Decimals).String()
}
