// internal/transfer/types.go
package transfer

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/MeepoTu/rooch/internal/amount"
	"github.com/MeepoTu/rooch/internal/session"
)

// Target is the Move function a coin transfer calls; session scopes are checked against it.
const Target = "0x3::transfer::transfer_coin"

// SuccessMessage is shown once a transfer has been accepted by the chain.
const SuccessMessage = "Transfer success"

// Outcomes reported to the Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

var (
	ErrInvalidAmount        = amount.ErrInvalidAmount
	ErrInvalidRecipient     = errors.New("invalid recipient")
	ErrSubmissionFailed     = errors.New("transfer submission failed")
	ErrSubmissionInProgress = errors.New("transfer already in progress")
	ErrDialogClosed         = errors.New("transfer dialog closed")
	ErrNotAuthorized        = session.ErrNotAuthorized
)

// TokenBalance is one row of the owner's balance list.
type TokenBalance struct {
	Symbol   string
	Name     string
	Balance  *big.Int
	Decimals uint8
	CoinType string
}

// DisplayBalance renders the balance at the given number of fractional digits.
func (t TokenBalance) DisplayBalance(precision int32) string {
	return amount.ToDisplayText(t.Balance, t.Decimals, precision)
}

// FullBalance renders the balance at the token's full precision.
func (t TokenBalance) FullBalance() string {
	return amount.ToDisplayText(t.Balance, t.Decimals, int32(t.Decimals))
}

// Draft holds the raw text the user typed into the transfer dialog.
type Draft struct {
	Amount    string
	Recipient string
}

// Request is the validated transfer handed to the wallet.
type Request struct {
	Recipient string
	Amount    *big.Int
	CoinType  string
}

// State of a controller's submission.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Wallet signs and submits a coin transfer, returning the transaction hash.
type Wallet interface {
	TransferCoin(ctx context.Context, req Request) (string, error)
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// Recorder receives transfer and refetch outcomes for metrics.
type Recorder interface {
	RecordTransfer(coinType, outcome string, d time.Duration)
	RecordRefetch(err error)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Failure(string) {}

type nopRecorder struct{}

func (nopRecorder) RecordTransfer(string, string, time.Duration) {}
func (nopRecorder) RecordRefetch(error)                          {}
