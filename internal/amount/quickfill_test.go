package amount

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickFill(t *testing.T) {
	tests := []struct {
		name     string
		raw      *big.Int
		decimals uint8
		wantMax  string
		wantHalf string
	}{
		{name: "fractional balance", raw: big.NewInt(1500), decimals: 3, wantMax: "1.5", wantHalf: "0.75"},
		{name: "whole balance", raw: big.NewInt(3000000), decimals: 6, wantMax: "3", wantHalf: "1.5"},
		{name: "half needs an extra digit", raw: big.NewInt(15), decimals: 2, wantMax: "0.15", wantHalf: "0.07"},
		{name: "odd base units", raw: big.NewInt(3), decimals: 18, wantMax: "0.000000000000000003", wantHalf: "0.000000000000000001"},
		{name: "single unit", raw: big.NewInt(1), decimals: 0, wantMax: "1", wantHalf: "0"},
		{name: "empty balance", raw: big.NewInt(0), decimals: 8, wantMax: "0", wantHalf: "0"},
		{name: "nil balance", raw: nil, decimals: 8, wantMax: "0", wantHalf: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMax, Max(tt.raw, tt.decimals))
			assert.Equal(t, tt.wantHalf, Half(tt.raw, tt.decimals))
		})
	}
}

func TestQuickFill_NeverExceedsBalance(t *testing.T) {
	raw := mustBig(t, "999999999999999999999")
	for _, decimals := range []uint8{0, 6, 8, 18} {
		maxUnits, err := ToIntegerAmount(Max(raw, decimals), decimals)
		require.NoError(t, err)
		assert.Equal(t, 0, maxUnits.Cmp(raw), "max must convert back to the full balance")

		halfUnits, err := ToIntegerAmount(Half(raw, decimals), decimals)
		require.NoError(t, err)
		want := new(big.Int).Quo(raw, big.NewInt(2))
		assert.Equal(t, 0, halfUnits.Cmp(want), "half at %d decimals", decimals)
	}
}
