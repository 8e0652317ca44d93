package scancore

import "math/big"

// UnlimitedThreshold is floor(0.9 * (2^256 - 1)). Any ERC-20 allowance at
// or above it is treated as unlimited; the comparison must stay in 256-bit
// integer arithmetic, float approximations are off by whole orders of
// low bits.
var UnlimitedThreshold = func() *big.Int {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	t := new(big.Int).Mul(max, big.NewInt(9))
	return t.Div(t, big.NewInt(10))
}()

// IsUnlimitedAllowance reports whether an allowance is effectively
// infinite. This catches the common max-1 and 0.9*max grant patterns.
func IsUnlimitedAllowance(v *big.Int) bool {
	return v != nil && v.Cmp(UnlimitedThreshold) >= 0
}

var (
	ratThousand = new(big.Rat).SetInt64(1_000)
	ratMillion  = new(big.Rat).SetInt64(1_000_000)
	ratBillion  = new(big.Rat).SetInt64(1_000_000_000)
)

// FormatAllowance renders an allowance for display: "Unlimited" above the
// threshold, otherwise scaled by the token's decimals with K/M/B suffixes.
func FormatAllowance(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	if IsUnlimitedAllowance(v) {
		return "Unlimited"
	}
	if decimals <= 0 {
		return v.String()
	}

	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	r := new(big.Rat).SetFrac(new(big.Int).Set(v), div)
	switch {
	case r.Cmp(ratBillion) >= 0:
		return new(big.Rat).Quo(r, ratBillion).FloatString(2) + "B"
	case r.Cmp(ratMillion) >= 0:
		return new(big.Rat).Quo(r, ratMillion).FloatString(2) + "M"
	case r.Cmp(ratThousand) >= 0:
		return new(big.Rat).Quo(r, ratThousand).FloatString(2) + "K"
	default:
		return r.FloatString(4)
	}
}
