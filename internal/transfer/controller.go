// internal/transfer/controller.go
package transfer

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MeepoTu/rooch/internal/address"
	"github.com/MeepoTu/rooch/internal/amount"
	"github.com/MeepoTu/rooch/internal/session"
)

// Options wires a Controller to its collaborators. Only Wallet and Gate are required.
type Options struct {
	Wallet   Wallet
	Gate     session.Gate
	Validate address.Predicate
	Close    func()
	Refetch  func(ctx context.Context) error
	Notifier Notifier
	Recorder Recorder
	Logger   *zap.Logger
}

// Controller owns the draft and submission state of one open transfer dialog.
type Controller struct {
	mu      sync.Mutex
	token   TokenBalance
	draft   Draft
	state   State
	lastErr error
	closed  bool

	wallet   Wallet
	gate     session.Gate
	validate address.Predicate
	close    func()
	refetch  func(ctx context.Context) error
	notifier Notifier
	recorder Recorder
	logger   *zap.Logger
}

// NewController creates a controller for transferring token.
func NewController(token TokenBalance, opts Options) *Controller {
	c := &Controller{
		token:    token,
		wallet:   opts.Wallet,
		gate:     opts.Gate,
		validate: opts.Validate,
		close:    opts.Close,
		refetch:  opts.Refetch,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
	if c.validate == nil {
		c.validate = address.IsValidRecipient
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.Named("transfer").With(zap.String("coin_type", token.CoinType))
	return c
}

// SetAmount replaces the amount text.
func (c *Controller) SetAmount(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Amount = text
	c.lastErr = nil
}

// SetRecipient replaces the recipient text.
func (c *Controller) SetRecipient(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Recipient = text
	c.lastErr = nil
}

// SetToken replaces the balance snapshot, e.g. after a refetch.
func (c *Controller) SetToken(token TokenBalance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Controller) Token() TokenBalance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a submission is outstanding.
func (c *Controller) Busy() bool {
	return c.State() == StateSubmitting
}

// LastError returns the error of the most recent rejected submission.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// CanSubmit reports whether the confirm action should be enabled.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Amount != "" &&
		c.validate(c.draft.Recipient) &&
		c.state == StateIdle &&
		!c.closed
}

// FillHalf sets the amount to half of the balance.
func (c *Controller) FillHalf() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Amount = amount.Half(c.token.Balance, c.token.Decimals)
	c.lastErr = nil
}

// FillMax sets the amount to the whole balance.
func (c *Controller) FillMax() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Amount = amount.Max(c.token.Balance, c.token.Decimals)
	c.lastErr = nil
}

// Close marks the dialog as torn down. A submission still in flight completes
// on-chain but no longer closes the dialog or records an inline error.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Submit validates the draft and sends the transfer through the wallet.
// It requires an authorized session covering Target.
func (c *Controller) Submit(ctx context.Context) error {
	if c.Closed() {
		return ErrDialogClosed
	}

	err := session.WithAuthorizedSession(c.gate, Target, func() error {
		return c.submit(ctx)
	})
	if err != nil {
		c.logger.Debug("Transfer not submitted", zap.Error(err))
	}
	return err
}

func (c *Controller) submit(ctx context.Context) error {
	req, err := c.begin()
	if err != nil {
		return err
	}

	logger := c.logger.With(
		zap.String("recipient", req.Recipient),
		zap.String("amount", req.Amount.String()))
	logger.Info("Submitting transfer")

	start := time.Now()
	txHash, err := c.execute(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		c.recorder.RecordTransfer(req.CoinType, OutcomeFailed, elapsed)
		logger.Error("Transfer failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return c.fail(err)
	}

	c.recorder.RecordTransfer(req.CoinType, OutcomeSuccess, elapsed)
	logger.Info("Transfer submitted",
		zap.String("tx_hash", txHash),
		zap.Duration("elapsed", elapsed))
	c.succeed(ctx)
	return nil
}

// begin re-validates the draft and moves the controller to Submitting.
func (c *Controller) begin() (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Request{}, ErrDialogClosed
	}
	if c.state != StateIdle {
		return Request{}, ErrSubmissionInProgress
	}

	req, err := c.buildRequest()
	if err != nil {
		c.lastErr = err
		return Request{}, err
	}
	if c.wallet == nil {
		err = fmt.Errorf("%w: no wallet connected", ErrSubmissionFailed)
		c.lastErr = err
		return Request{}, err
	}

	c.state = StateSubmitting
	c.lastErr = nil
	return req, nil
}

func (c *Controller) buildRequest() (Request, error) {
	if !c.validate(c.draft.Recipient) {
		return Request{}, fmt.Errorf("%w: %q", ErrInvalidRecipient, c.draft.Recipient)
	}

	units, err := amount.ToIntegerAmount(c.draft.Amount, c.token.Decimals)
	if err != nil {
		return Request{}, err
	}
	if units.Sign() == 0 {
		return Request{}, fmt.Errorf("%w: below one base unit", ErrInvalidAmount)
	}

	balance := c.token.Balance
	if balance == nil {
		balance = new(big.Int)
	}
	if units.Cmp(balance) > 0 {
		return Request{}, fmt.Errorf("%w: insufficient balance", ErrInvalidAmount)
	}

	return Request{
		Recipient: c.draft.Recipient,
		Amount:    units,
		CoinType:  c.token.CoinType,
	}, nil
}

// execute calls the wallet; the controller is back to Idle when it returns.
func (c *Controller) execute(ctx context.Context, req Request) (string, error) {
	defer c.release()
	return c.wallet.TransferCoin(ctx, req)
}

func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
}

func (c *Controller) succeed(ctx context.Context) {
	if !c.Closed() && c.close != nil {
		c.close()
	}

	if c.refetch != nil {
		refetchCtx := context.WithoutCancel(ctx)
		go func() {
			err := c.refetch(refetchCtx)
			c.recorder.RecordRefetch(err)
			if err != nil {
				c.logger.Warn("Balance refetch failed", zap.Error(err))
			}
		}()
	}

	c.notifier.Success(SuccessMessage)
}

func (c *Controller) fail(cause error) error {
	err := fmt.Errorf("%w: %v", ErrSubmissionFailed, cause)

	c.mu.Lock()
	if !c.closed {
		c.lastErr = err
	}
	c.mu.Unlock()

	// Product decision: a failed transfer is reported, never swallowed. The
	// notifier shows the cause and lastErr keeps the dialog's inline notice.
	c.notifier.Failure(fmt.Sprintf("Transfer failed: %v", cause))
	return err
}
