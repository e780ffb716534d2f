// internal/amount/amount.go
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxTextLength bounds user input before it reaches the decimal parser.
const MaxTextLength = 128

var (
	// ErrInvalidAmount is returned for empty, non-numeric or negative amount text.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountTooLarge is returned when the scaled amount does not fit into u256.
	ErrAmountTooLarge = fmt.Errorf("%w: exceeds u256 range", ErrInvalidAmount)
)

// MaxU256 is the largest amount a coin transfer can carry on-chain.
var MaxU256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// plainDecimal accepts "1", "1.", ".5", "007.50"; no signs, exponents or separators.
var plainDecimal = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)

// Parse converts user-entered text into an exact decimal value.
func Parse(text string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if len(trimmed) > MaxTextLength {
		return decimal.Zero, fmt.Errorf("%w: too long", ErrInvalidAmount)
	}
	if !plainDecimal.MatchString(trimmed) {
		return decimal.Zero, fmt.Errorf("%w: %q is not a non-negative decimal", ErrInvalidAmount, trimmed)
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return d, nil
}

// ToIntegerAmount scales text by 10^decimals and truncates the sub-unit remainder.
func ToIntegerAmount(text string, decimals uint8) (*big.Int, error) {
	d, err := Parse(text)
	if err != nil {
		return nil, err
	}

	units := d.Shift(int32(decimals)).Truncate(0).BigInt()
	if units.Cmp(MaxU256) > 0 {
		return nil, ErrAmountTooLarge
	}
	return units, nil
}

// ToDisplayText renders a raw on-chain balance with at most precision fractional
// digits, rounding down and trimming trailing zeros.
func ToDisplayText(raw *big.Int, decimals uint8, precision int32) string {
	if raw == nil || raw.Sign() <= 0 {
		return "0"
	}
	if precision < 0 {
		precision = 0
	}
	return FromUnits(raw, decimals).Truncate(precision).String()
}

// FromUnits converts base units into the display-unit decimal value.
func FromUnits(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// ParseRaw parses an on-chain integer amount encoded as a base-10 string.
func ParseRaw(text string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(text), 10)
	if !ok {
		return nil, fmt.Errorf("%w: raw amount %q", ErrInvalidAmount, text)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative raw amount %q", ErrInvalidAmount, text)
	}
	return v, nil
}
