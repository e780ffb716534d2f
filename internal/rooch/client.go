// internal/rooch/client.go
package rooch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"

	"github.com/MeepoTu/rooch/internal/transfer"
)

const (
	MethodGetBalances = "rooch_getBalances"

	defaultPageLimit = 100
	// guards against a node that keeps returning has_next_page with the same cursor
	maxPages = 1000
)

// BalanceSource lists the balances of an account.
type BalanceSource interface {
	GetBalances(ctx context.Context, owner string) ([]transfer.TokenBalance, error)
}

// LatencyObserver receives the duration of every RPC call.
type LatencyObserver interface {
	ObserveRPCLatency(method string, d time.Duration)
}

// ClientConfig configures the JSON-RPC client.
type ClientConfig struct {
	URL          string
	Timeout      time.Duration
	Retries      int
	RetryBackoff time.Duration
	PageLimit    int
	Observer     LatencyObserver
}

type rpcCaller interface {
	CallForInto(ctx context.Context, out interface{}, method string, params []interface{}) error
}

// Client talks to a Rooch full node over JSON-RPC.
type Client struct {
	rpc    rpcCaller
	cfg    ClientConfig
	logger *zap.Logger
}

// NewClient creates a client for the node at cfg.URL.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 1
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaultPageLimit
	}

	return &Client{
		rpc:    jsonrpc.NewClient(cfg.URL),
		cfg:    cfg,
		logger: logger.Named("rooch-rpc"),
	}
}

// GetBalances returns every coin balance held by owner, following pagination.
func (c *Client) GetBalances(ctx context.Context, owner string) ([]transfer.TokenBalance, error) {
	var (
		result []transfer.TokenBalance
		cursor json.RawMessage
	)

	for page := 0; page < maxPages; page++ {
		params := []interface{}{owner, nil, strconv.Itoa(c.cfg.PageLimit)}
		if hasCursor(cursor) {
			params[1] = cursor
		}

		var out PaginatedBalanceInfoViews
		if err := c.call(ctx, &out, MethodGetBalances, params); err != nil {
			return nil, fmt.Errorf("failed to get balances of %s: %w", owner, err)
		}

		for _, view := range out.Data {
			tb, err := view.ToTokenBalance()
			if err != nil {
				c.logger.Warn("Skipping malformed balance entry", zap.Error(err))
				continue
			}
			result = append(result, tb)
		}

		if !out.HasNextPage || !hasCursor(out.NextCursor) {
			c.logger.Debug("Balances fetched",
				zap.String("owner", owner),
				zap.Int("coins", len(result)),
				zap.Int("pages", page+1))
			return result, nil
		}
		cursor = out.NextCursor
	}

	return nil, fmt.Errorf("failed to get balances of %s: more than %d pages", owner, maxPages)
}

// call performs one RPC with timeout and retries. JSON-RPC errors are returned
// by the node itself and are not retried.
func (c *Client) call(ctx context.Context, out interface{}, method string, params []interface{}) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.RetryBackoff
	policy.MaxInterval = c.cfg.RetryBackoff * 10

	notify := func(err error, d time.Duration) {
		c.logger.Info("Retrying RPC call after error",
			zap.String("method", method),
			zap.Error(err),
			zap.Duration("backoff", d))
	}

	operation := func() (struct{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		start := time.Now()
		err := c.rpc.CallForInto(callCtx, out, method, params)
		if c.cfg.Observer != nil {
			c.cfg.Observer.ObserveRPCLatency(method, time.Since(start))
		}
		if err == nil {
			return struct{}{}, nil
		}

		if !IsRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.cfg.Retries)),
		backoff.WithNotify(notify))
	if err != nil {
		info := AnalyzeRPCError(err)
		c.logger.Error("RPC call failed",
			zap.String("method", method),
			zap.String("error_type", info.Type),
			zap.Int("code", info.Code),
			zap.String("message", info.Message))
		return err
	}
	return nil
}

// Close releases idle connections of the underlying transport.
func (c *Client) Close() error {
	if closer, ok := c.rpc.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
