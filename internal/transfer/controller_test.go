package transfer

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/MeepoTu/rooch/internal/session"
)

var validRecipient = "0x" + strings.Repeat("ab", 32)

type mockWallet struct {
	mu       sync.Mutex
	requests []Request
	txHash   string
	err      error
	block    chan struct{}
	started  chan struct{}
}

func (m *mockWallet) TransferCoin(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	block, started := m.block, m.started
	m.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	return m.txHash, m.err
}

func (m *mockWallet) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

type mockGate struct{ err error }

func (g mockGate) Authorized(string) error { return g.err }

type mockNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *mockNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *mockNotifier) Failure(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, msg)
}

func (n *mockNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.successes), len(n.failures)
}

type mockRecorder struct {
	mu       sync.Mutex
	outcomes []string
	refetch  []error
}

func (r *mockRecorder) RecordTransfer(_, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *mockRecorder) RecordRefetch(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refetch = append(r.refetch, err)
}

type harness struct {
	ctrl     *Controller
	wallet   *mockWallet
	notifier *mockNotifier
	recorder *mockRecorder
	closes   int
	refetch  chan struct{}
	mu       sync.Mutex
}

func (h *harness) closeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closes
}

func testToken() TokenBalance {
	return TokenBalance{
		Symbol:   "GAS",
		Name:     "Rooch Gas Coin",
		Balance:  big.NewInt(1500),
		Decimals: 3,
		CoinType: "0x3::gas_coin::RGas",
	}
}

func newHarness(t *testing.T, gate session.Gate, refetchErr error) *harness {
	t.Helper()
	h := &harness{
		wallet:   &mockWallet{txHash: "0xfeed"},
		notifier: &mockNotifier{},
		recorder: &mockRecorder{},
		refetch:  make(chan struct{}, 4),
	}
	h.ctrl = NewController(testToken(), Options{
		Wallet: h.wallet,
		Gate:   gate,
		Close: func() {
			h.mu.Lock()
			h.closes++
			h.mu.Unlock()
		},
		Refetch: func(ctx context.Context) error {
			h.refetch <- struct{}{}
			return refetchErr
		},
		Notifier: h.notifier,
		Recorder: h.recorder,
		Logger:   zap.NewNop(),
	})
	return h
}

func waitRefetch(t *testing.T, h *harness) {
	t.Helper()
	select {
	case <-h.refetch:
	case <-time.After(2 * time.Second):
		t.Fatal("refetch was not invoked")
	}
}

func TestCanSubmit(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		recipient string
		want      bool
	}{
		{name: "empty amount", amount: "", recipient: validRecipient, want: false},
		{name: "invalid recipient", amount: "1", recipient: "nope", want: false},
		{name: "empty recipient", amount: "1", recipient: "", want: false},
		{name: "both valid", amount: "1", recipient: validRecipient, want: true},
		// amount text is only checked at submit
		{name: "unparsable amount still enables", amount: "abc", recipient: validRecipient, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, mockGate{}, nil)
			h.ctrl.SetAmount(tt.amount)
			h.ctrl.SetRecipient(tt.recipient)
			assert.Equal(t, tt.want, h.ctrl.CanSubmit())
		})
	}
}

func TestQuickFillSetsDraftAmount(t *testing.T) {
	h := newHarness(t, mockGate{}, nil)

	h.ctrl.FillMax()
	assert.Equal(t, "1.5", h.ctrl.Draft().Amount)

	h.ctrl.FillHalf()
	assert.Equal(t, "0.75", h.ctrl.Draft().Amount)

	h.ctrl.SetToken(TokenBalance{Balance: big.NewInt(0), Decimals: 3})
	h.ctrl.FillMax()
	assert.Equal(t, "0", h.ctrl.Draft().Amount)
}

func TestSubmit_Success(t *testing.T) {
	for _, refetchErr := range []error{nil, errors.New("rpc down")} {
		name := "refetch ok"
		if refetchErr != nil {
			name = "refetch fails"
		}
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, mockGate{}, refetchErr)
			h.ctrl.SetAmount("0.75")
			h.ctrl.SetRecipient(validRecipient)

			require.NoError(t, h.ctrl.Submit(context.Background()))
			waitRefetch(t, h)

			assert.Equal(t, 1, h.closeCount())
			successes, failures := h.notifier.counts()
			assert.Equal(t, 1, successes)
			assert.Equal(t, 0, failures)
			assert.Equal(t, []string{SuccessMessage}, h.notifier.successes)
			assert.False(t, h.ctrl.Busy())
			assert.NoError(t, h.ctrl.LastError())

			require.Equal(t, 1, h.wallet.Calls())
			req := h.wallet.requests[0]
			assert.Equal(t, validRecipient, req.Recipient)
			assert.Equal(t, "750", req.Amount.String())
			assert.Equal(t, "0x3::gas_coin::RGas", req.CoinType)

			select {
			case <-h.refetch:
				t.Fatal("refetch invoked more than once")
			case <-time.After(50 * time.Millisecond):
			}
		})
	}
}

func TestSubmit_RefetchOutlivesCallerContext(t *testing.T) {
	h := newHarness(t, mockGate{}, nil)
	var refetchCtxErr error
	done := make(chan struct{})
	h.ctrl.refetch = func(ctx context.Context) error {
		refetchCtxErr = ctx.Err()
		close(done)
		return nil
	}
	h.ctrl.SetAmount("1")
	h.ctrl.SetRecipient(validRecipient)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.ctrl.Submit(ctx))
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refetch was not invoked")
	}
	assert.NoError(t, refetchCtxErr)
}

func TestSubmit_WalletFailureKeepsDialog(t *testing.T) {
	h := newHarness(t, mockGate{}, nil)
	h.wallet.err = errors.New("user rejected")
	h.ctrl.SetAmount("1.2")
	h.ctrl.SetRecipient(validRecipient)
	before := h.ctrl.Draft()

	err := h.ctrl.Submit(context.Background())

	require.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, before, h.ctrl.Draft())
	assert.False(t, h.ctrl.Busy())
	assert.Equal(t, 0, h.closeCount())
	assert.ErrorIs(t, h.ctrl.LastError(), ErrSubmissionFailed)
	successes, failures := h.notifier.counts()
	assert.Equal(t, 0, successes)
	assert.Equal(t, 1, failures)
	assert.Equal(t, []string{OutcomeFailed}, h.recorder.outcomes)
	assert.Empty(t, h.refetch)
}

func TestSubmit_ValidationRejects(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		recipient string
		wantErr   error
	}{
		{name: "bad recipient", amount: "1", recipient: "0x1", wantErr: ErrInvalidRecipient},
		{name: "not a number", amount: "1e3", recipient: validRecipient, wantErr: ErrInvalidAmount},
		{name: "empty amount", amount: "", recipient: validRecipient, wantErr: ErrInvalidAmount},
		{name: "below one unit", amount: "0.0001", recipient: validRecipient, wantErr: ErrInvalidAmount},
		{name: "zero", amount: "0", recipient: validRecipient, wantErr: ErrInvalidAmount},
		{name: "above balance", amount: "1.501", recipient: validRecipient, wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, mockGate{}, nil)
			h.ctrl.SetAmount(tt.amount)
			h.ctrl.SetRecipient(tt.recipient)

			err := h.ctrl.Submit(context.Background())

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, h.ctrl.LastError(), tt.wantErr)
			assert.Equal(t, 0, h.wallet.Calls())
			assert.Equal(t, StateIdle, h.ctrl.State())
			assert.Equal(t, Draft{Amount: tt.amount, Recipient: tt.recipient}, h.ctrl.Draft())
		})
	}
}

func TestSubmit_WholeBalanceAccepted(t *testing.T) {
	h := newHarness(t, mockGate{}, nil)
	h.ctrl.FillMax()
	h.ctrl.SetRecipient(validRecipient)

	require.NoError(t, h.ctrl.Submit(context.Background()))
	waitRefetch(t, h)
	assert.Equal(t, "1500", h.wallet.requests[0].Amount.String())
}

func TestSubmit_NotAuthorized(t *testing.T) {
	h := newHarness(t, mockGate{err: session.ErrNoSession}, nil)
	h.ctrl.SetAmount("1")
	h.ctrl.SetRecipient(validRecipient)

	err := h.ctrl.Submit(context.Background())

	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Equal(t, 0, h.wallet.Calls())
	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.NoError(t, h.ctrl.LastError())
	successes, failures := h.notifier.counts()
	assert.Zero(t, successes+failures)
}

func TestSubmit_SessionManagerGate(t *testing.T) {
	m := session.NewManager(zaptest.NewLogger(t))
	h := newHarness(t, m, nil)
	h.ctrl.SetAmount("1")
	h.ctrl.SetRecipient(validRecipient)

	assert.ErrorIs(t, h.ctrl.Submit(context.Background()), ErrNotAuthorized)

	m.Authorize("rooch-portal", []string{"0x3::*::*"}, time.Hour)
	require.NoError(t, h.ctrl.Submit(context.Background()))
	waitRefetch(t, h)
	assert.Equal(t, 1, h.wallet.Calls())
}

func TestSubmit_BusyRejectsSecondSubmit(t *testing.T) {
	h := newHarness(t, mockGate{}, nil)
	h.wallet.block = make(chan struct{})
	h.wallet.started = make(chan struct{})
	h.ctrl.SetAmount("1")
	h.ctrl.SetRecipient(validRecipient)

	errCh := make(chan error, 1)
	go func() { errCh <- h.ctrl.Submit(context.Background()) }()
	<-h.wallet.started

	assert.True(t, h.ctrl.Busy())
	assert.False(t, h.ctrl.CanSubmit())
	assert.ErrorIs(t, h.ctrl.Submit(context.Background()), ErrSubmissionInProgress)

	close(h.wallet.block)
	require.NoError(t, <-errCh)
	waitRefetch(t, h)

	assert.False(t, h.ctrl.Busy())
	assert.Equal(t, 1, h.wallet.Calls())
}

func TestSubmit_LateCompletionAfterClose(t *testing.T) {
	h := newHarness(t, mockGate{}, nil)
	h.wallet.block = make(chan struct{})
	h.wallet.started = make(chan struct{})
	h.ctrl.SetAmount("1")
	h.ctrl.SetRecipient(validRecipient)

	errCh := make(chan error, 1)
	go func() { errCh <- h.ctrl.Submit(context.Background()) }()
	<-h.wallet.started

	h.ctrl.Close()
	close(h.wallet.block)
	require.NoError(t, <-errCh)
	waitRefetch(t, h)

	assert.Equal(t, 0, h.closeCount(), "torn down dialog is not closed again")
	successes, _ := h.notifier.counts()
	assert.Equal(t, 1, successes)
	assert.False(t, h.ctrl.Busy())
	assert.ErrorIs(t, h.ctrl.Submit(context.Background()), ErrDialogClosed)
}

func TestSubmit_LateFailureAfterClose(t *testing.T) {
	h := newHarness(t, mockGate{}, nil)
	h.wallet.block = make(chan struct{})
	h.wallet.started = make(chan struct{})
	h.wallet.err = errors.New("timeout")
	h.ctrl.SetAmount("1")
	h.ctrl.SetRecipient(validRecipient)

	errCh := make(chan error, 1)
	go func() { errCh <- h.ctrl.Submit(context.Background()) }()
	<-h.wallet.started

	h.ctrl.Close()
	close(h.wallet.block)

	assert.ErrorIs(t, <-errCh, ErrSubmissionFailed)
	assert.NoError(t, h.ctrl.LastError())
	_, failures := h.notifier.counts()
	assert.Equal(t, 1, failures)
}

func TestSubmit_NoWallet(t *testing.T) {
	c := NewController(testToken(), Options{Gate: mockGate{}})
	c.SetAmount("1")
	c.SetRecipient(validRecipient)

	assert.ErrorIs(t, c.Submit(context.Background()), ErrSubmissionFailed)
	assert.Equal(t, StateIdle, c.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestTokenBalance_Display(t *testing.T) {
	tok := TokenBalance{Balance: big.NewInt(123456789), Decimals: 8}
	assert.Equal(t, "1.2345", tok.DisplayBalance(4))
	assert.Equal(t, "1.23456789", tok.FullBalance())
}
