package domain

import (
	"fmt"
	"math/big"

	"pooled-multisender/pkg/units"

	"lukechampine.com/uint128"
)

// Amount is a balance or transfer value in yoctoNEAR.
type Amount = uint128.Uint128

// ParseAmount parses a base-10 yoctoNEAR string. Negative values and values
// beyond 128 bits are rejected.
func ParseAmount(s string) (Amount, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return uint128.Zero, fmt.Errorf("amount %q is not a base-10 integer", s)
	}
	if v.Sign() < 0 {
		return uint128.Zero, fmt.Errorf("amount %q is negative", s)
	}
	if v.BitLen() > 128 {
		return uint128.Zero, fmt.Errorf("amount %q overflows 128 bits", s)
	}
	return uint128.FromBig(v), nil
}

// AmountFromBig converts v, failing on negative or oversized values.
func AmountFromBig(v *big.Int) (Amount, error) {
	return ParseAmount(v.String())
}

// NearApprox is the amount rounded to the nearest whole NEAR, for logs.
func NearApprox(a Amount) string {
	return units.ApproxNear(a.Big()).String()
}
