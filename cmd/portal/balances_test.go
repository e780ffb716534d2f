package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeepoTu/rooch/internal/transfer"
)

const testOwner = "0x0000000000000000000000000000000000000000000000000000000000000abc"

func TestWriteBalances(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBalances(&buf, []transfer.TokenBalance{
		{Symbol: "RGAS", Balance: big.NewInt(123_456_789), Decimals: 8, CoinType: "0x3::gas_coin::RGas"},
	}, 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "BALANCE")
	assert.Contains(t, lines[1], "RGAS")
	assert.Contains(t, lines[1], "1.23")
	assert.Contains(t, lines[1], "0x3::gas_coin::RGas")

	buf.Reset()
	require.NoError(t, writeBalances(&buf, nil, 2))
	assert.Equal(t, "No coins found\n", buf.String())
}

func TestPrintBalances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "rooch_getBalances", req.Method)

		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"data": []interface{}{map[string]interface{}{
					"coin_type": "0x3::gas_coin::RGas",
					"name":      "Rooch Gas Coin",
					"symbol":    "RGAS",
					"decimals":  8,
					"supply":    "1000000000000000",
					"balance":   "150000000",
				}},
				"next_cursor":   nil,
				"has_next_page": false,
			},
		}))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rpc_url: `+srv.URL+`
owner: `+testOwner+`
display_precision: 4
log_file: `+filepath.Join(dir, "portal.log")+`
`), 0o600))

	var out bytes.Buffer
	require.NoError(t, printBalances(path, false, &out))
	assert.Contains(t, out.String(), "RGAS")
	assert.Contains(t, out.String(), "1.5")
}

func TestPrintBalances_BadConfig(t *testing.T) {
	var out bytes.Buffer
	err := printBalances(filepath.Join(t.TempDir(), "missing.yaml"), false, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Empty(t, out.String())
}
