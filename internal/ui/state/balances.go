package state

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/MeepoTu/rooch/internal/transfer"
)

// BalanceCache provides thread-safe storage of the owner's balances for the UI.
// It is written by refetches running off the UI goroutine.
type BalanceCache struct {
	balances  []transfer.TokenBalance
	lastErr   error
	updatedAt time.Time
	mu        sync.RWMutex
	logger    *zap.Logger

	// Statistics (accessed atomically)
	reads  uint64
	writes uint64
}

// NewBalanceCache creates an empty balance cache.
func NewBalanceCache(logger *zap.Logger) *BalanceCache {
	return &BalanceCache{logger: logger.Named("balance_cache")}
}

// Set replaces all balances and clears the last error.
func (c *BalanceCache) Set(balances []transfer.TokenBalance, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.balances = append([]transfer.TokenBalance(nil), balances...)
	c.lastErr = nil
	c.updatedAt = at
	atomic.AddUint64(&c.writes, 1)

	c.logger.Debug("Balances updated", zap.Int("tokens", len(balances)))
}

// SetError records a failed fetch. Previously loaded balances stay visible.
func (c *BalanceCache) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastErr = err
	atomic.AddUint64(&c.writes, 1)
}

// Snapshot is a point-in-time copy of the cache.
type Snapshot struct {
	Balances  []transfer.TokenBalance
	Err       error
	UpdatedAt time.Time
}

// Snapshot returns a copy of the balances with the last fetch error and time.
func (c *BalanceCache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	atomic.AddUint64(&c.reads, 1)
	// Return copy, not reference
	out := make([]transfer.TokenBalance, len(c.balances))
	copy(out, c.balances)
	return Snapshot{Balances: out, Err: c.lastErr, UpdatedAt: c.updatedAt}
}

// Find returns the balance for coinType.
func (c *BalanceCache) Find(coinType string) (transfer.TokenBalance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	atomic.AddUint64(&c.reads, 1)
	for _, b := range c.balances {
		if b.CoinType == coinType {
			return b, true
		}
	}
	return transfer.TokenBalance{}, false
}

// GetStats returns cache statistics
func (c *BalanceCache) GetStats() (tokens, reads, writes uint64) {
	c.mu.RLock()
	tokens = uint64(len(c.balances))
	c.mu.RUnlock()

	reads = atomic.LoadUint64(&c.reads)
	writes = atomic.LoadUint64(&c.writes)
	return tokens, reads, writes
}
