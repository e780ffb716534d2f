package amount

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Max returns the full balance as amount text, at token precision.
func Max(raw *big.Int, decimals uint8) string {
	return ToDisplayText(raw, decimals, int32(decimals))
}

// Half returns half of the displayed balance. The division is decimal, so
// 0.15 halves to 0.075 rather than collapsing to an integer; the result is cut
// to the token precision because finer digits cannot be transferred anyway.
func Half(raw *big.Int, decimals uint8) string {
	display, err := decimal.NewFromString(Max(raw, decimals))
	if err != nil {
		return "0"
	}
	// x/2 has at most one more fractional digit than x, so this division is exact.
	half := display.DivRound(two, int32(decimals)+1).Truncate(int32(decimals))
	if half.Sign() <= 0 {
		return "0"
	}
	return half.String()
}
