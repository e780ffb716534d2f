package rooch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testOwner = "0x0000000000000000000000000000000000000000000000000000000000000abc"

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// rpcServer answers JSON-RPC calls with handler's result or error object.
func rpcServer(t *testing.T, handler func(req rpcRequest) (result interface{}, rpcErr map[string]interface{}, status int)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		var req rpcRequest
		if !assert.NoError(t, err) || !assert.NoError(t, json.Unmarshal(body, &req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		result, rpcErr, status := handler(req)
		if status != 0 && status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("upstream unavailable"))
			return
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type latencyCounter struct {
	mu      sync.Mutex
	methods []string
}

func (l *latencyCounter) ObserveRPCLatency(method string, _ time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.methods = append(l.methods, method)
}

func balanceView(symbol string, decimals int, balance string) map[string]interface{} {
	return map[string]interface{}{
		"coin_type": "0x3::" + symbol + "::" + symbol,
		"name":      symbol + " coin",
		"symbol":    symbol,
		"decimals":  decimals,
		"supply":    "1000000000000000000000",
		"balance":   balance,
	}
}

func TestClient_GetBalancesFollowsPages(t *testing.T) {
	var calls int32
	srv := rpcServer(t, func(req rpcRequest) (interface{}, map[string]interface{}, int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, MethodGetBalances, req.Method)
		if !assert.Len(t, req.Params, 3) {
			return nil, map[string]interface{}{"code": -32602, "message": "bad params"}, 0
		}

		var owner string
		assert.NoError(t, json.Unmarshal(req.Params[0], &owner))
		assert.Equal(t, testOwner, owner)

		if string(req.Params[1]) == "null" {
			return map[string]interface{}{
				"data":          []interface{}{balanceView("GAS", 8, "123456789")},
				"next_cursor":   "cursor-1",
				"has_next_page": true,
			}, nil, 0
		}

		var cursor string
		assert.NoError(t, json.Unmarshal(req.Params[1], &cursor))
		assert.Equal(t, "cursor-1", cursor)
		return map[string]interface{}{
			"data": []interface{}{
				balanceView("USDC", 6, "115792089237316195423570985008687907853269984665640564039457584007913129639935"),
				balanceView("BAD", 6, "not-a-number"),
			},
			"next_cursor":   nil,
			"has_next_page": false,
		}, nil, 0
	})

	observer := &latencyCounter{}
	client := NewClient(ClientConfig{URL: srv.URL, Retries: 3, Observer: observer}, zap.NewNop())
	defer client.Close()

	balances, err := client.GetBalances(context.Background(), testOwner)
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	require.Len(t, balances, 2, "malformed entries are skipped")
	assert.Equal(t, "GAS", balances[0].Symbol)
	assert.Equal(t, uint8(8), balances[0].Decimals)
	assert.Equal(t, "123456789", balances[0].Balance.String())
	assert.Equal(t, "0x3::GAS::GAS", balances[0].CoinType)
	assert.Equal(t, "USDC", balances[1].Symbol)
	assert.Equal(t, 78, len(balances[1].Balance.String()), "u256 balances keep full precision")
	assert.Equal(t, []string{MethodGetBalances, MethodGetBalances}, observer.methods)
}

func TestClient_RPCErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := rpcServer(t, func(req rpcRequest) (interface{}, map[string]interface{}, int) {
		atomic.AddInt32(&calls, 1)
		return nil, map[string]interface{}{"code": -32602, "message": "Invalid params"}, 0
	})

	client := NewClient(ClientConfig{URL: srv.URL, Retries: 5, RetryBackoff: time.Millisecond}, zap.NewNop())
	_, err := client.GetBalances(context.Background(), testOwner)
	require.Error(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	info := AnalyzeRPCError(err)
	assert.Equal(t, ErrorTypeRPC, info.Type)
	assert.Equal(t, -32602, info.Code)
	assert.Equal(t, "Invalid params", info.Message)
}

func TestClient_TransportErrorsAreRetried(t *testing.T) {
	var calls int32
	srv := rpcServer(t, func(req rpcRequest) (interface{}, map[string]interface{}, int) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, nil, http.StatusBadGateway
		}
		return map[string]interface{}{"data": []interface{}{}, "has_next_page": false}, nil, 0
	})

	client := NewClient(ClientConfig{URL: srv.URL, Retries: 3, RetryBackoff: time.Millisecond}, zap.NewNop())
	balances, err := client.GetBalances(context.Background(), testOwner)
	require.NoError(t, err)

	assert.Empty(t, balances)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := rpcServer(t, func(req rpcRequest) (interface{}, map[string]interface{}, int) {
		atomic.AddInt32(&calls, 1)
		return nil, nil, http.StatusServiceUnavailable
	})

	client := NewClient(ClientConfig{URL: srv.URL, Retries: 2, RetryBackoff: time.Millisecond}, zap.NewNop())
	_, err := client.GetBalances(context.Background(), testOwner)

	require.Error(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.Equal(t, ErrorTypeTransport, AnalyzeRPCError(err).Type)
}

func TestAnalyzeRPCError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  string
		wantRetry bool
		wantAbort bool
	}{
		{name: "nil", err: nil, wantType: ErrorTypeNone},
		{name: "rpc error", err: &jsonrpc.RPCError{Code: -32000, Message: "server busy"}, wantType: ErrorTypeRPC},
		{name: "wrapped move abort", err: fmt.Errorf("call: %w", &jsonrpc.RPCError{Code: -1, Message: "status MOVE_ABORT of type Execution with sub status 1"}), wantType: ErrorTypeRPC, wantAbort: true},
		{name: "timeout", err: fmt.Errorf("post: %w", context.DeadlineExceeded), wantType: ErrorTypeTimeout, wantRetry: true},
		{name: "canceled", err: context.Canceled, wantType: ErrorTypeCanceled},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), wantType: ErrorTypeTransport, wantRetry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := AnalyzeRPCError(tt.err)
			assert.Equal(t, tt.wantType, info.Type)
			assert.Equal(t, tt.wantAbort, info.MoveAbort)
			assert.Equal(t, tt.wantRetry, IsRetryable(tt.err))
		})
	}
}

func TestBalanceInfoView_ToTokenBalance(t *testing.T) {
	tests := []struct {
		name    string
		view    BalanceInfoView
		wantErr bool
	}{
		{name: "valid", view: BalanceInfoView{CoinType: "0x3::gas_coin::RGas", Decimals: "8", Balance: "100"}},
		{name: "negative balance", view: BalanceInfoView{Decimals: "8", Balance: "-1"}, wantErr: true},
		{name: "decimals overflow", view: BalanceInfoView{Decimals: "300", Balance: "1"}, wantErr: true},
		{name: "fractional decimals", view: BalanceInfoView{Decimals: "1.5", Balance: "1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb, err := tt.view.ToTokenBalance()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint8(8), tb.Decimals)
			assert.Equal(t, "100", tb.Balance.String())
		})
	}
}
