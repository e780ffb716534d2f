// internal/rooch/types.go
package rooch

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/MeepoTu/rooch/internal/amount"
	"github.com/MeepoTu/rooch/internal/transfer"
)

// BalanceInfoView is one entry of rooch_getBalances. Integer amounts are u256 strings.
type BalanceInfoView struct {
	CoinType string      `json:"coin_type"`
	Name     string      `json:"name"`
	Symbol   string      `json:"symbol"`
	Decimals json.Number `json:"decimals"`
	Supply   string      `json:"supply"`
	Balance  string      `json:"balance"`
}

// PaginatedBalanceInfoViews is the result page of rooch_getBalances.
type PaginatedBalanceInfoViews struct {
	Data        []BalanceInfoView `json:"data"`
	NextCursor  json.RawMessage   `json:"next_cursor"`
	HasNextPage bool              `json:"has_next_page"`
}

// ToTokenBalance converts the wire view into the controller's balance type.
func (v BalanceInfoView) ToTokenBalance() (transfer.TokenBalance, error) {
	balance, err := amount.ParseRaw(v.Balance)
	if err != nil {
		return transfer.TokenBalance{}, fmt.Errorf("coin %s: balance: %w", v.CoinType, err)
	}

	decimals, err := strconv.ParseUint(v.Decimals.String(), 10, 8)
	if err != nil || decimals > math.MaxUint8 {
		return transfer.TokenBalance{}, fmt.Errorf("coin %s: invalid decimals %q", v.CoinType, v.Decimals)
	}

	return transfer.TokenBalance{
		Symbol:   v.Symbol,
		Name:     v.Name,
		Balance:  balance,
		Decimals: uint8(decimals),
		CoinType: v.CoinType,
	}, nil
}

func hasCursor(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
