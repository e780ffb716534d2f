// internal/rooch/wallet.go
package rooch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"github.com/MeepoTu/rooch/internal/transfer"
)

const StatusExecuted = "executed"

var (
	// ErrTransferNotExecuted is returned when the node rejected or aborted the transaction.
	ErrTransferNotExecuted = errors.New("transaction not executed")
	// ErrUnexpectedOutput is returned when the CLI output carries no execution result.
	ErrUnexpectedOutput = errors.New("unexpected rooch cli output")
)

// CommandRunner executes the wallet binary and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// WalletConfig configures the CLI-backed wallet.
type WalletConfig struct {
	CLIPath string
	Sender  string
}

// CLIWallet signs transfers through the rooch command line, which holds the keys.
type CLIWallet struct {
	cfg    WalletConfig
	run    CommandRunner
	logger *zap.Logger
}

// NewCLIWallet creates a wallet that shells out to cfg.CLIPath.
func NewCLIWallet(cfg WalletConfig, logger *zap.Logger) *CLIWallet {
	if cfg.CLIPath == "" {
		cfg.CLIPath = "rooch"
	}
	return &CLIWallet{
		cfg:    cfg,
		run:    execCommand,
		logger: logger.Named("cli-wallet"),
	}
}

// WithRunner replaces the process runner, used by tests.
func (w *CLIWallet) WithRunner(run CommandRunner) *CLIWallet {
	w.run = run
	return w
}

// TransferArgs builds the rooch CLI arguments for req.
func (w *CLIWallet) TransferArgs(req transfer.Request) []string {
	args := []string{
		"account", "transfer",
		"--to", req.Recipient,
		"--amount", req.Amount.String(),
		"--coin-type", req.CoinType,
		"--json",
	}
	if w.cfg.Sender != "" {
		args = append(args, "--sender", w.cfg.Sender)
	}
	return args
}

// TransferCoin implements transfer.Wallet.
func (w *CLIWallet) TransferCoin(ctx context.Context, req transfer.Request) (string, error) {
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return "", fmt.Errorf("invalid transfer amount %v", req.Amount)
	}

	args := w.TransferArgs(req)
	w.logger.Debug("Running wallet command",
		zap.String("cli", w.cfg.CLIPath),
		zap.Strings("args", args))

	out, err := w.run(ctx, w.cfg.CLIPath, args...)
	if err != nil {
		return "", fmt.Errorf("rooch account transfer: %w", err)
	}

	txHash, err := ParseExecutionResult(out)
	if err != nil {
		w.logger.Warn("Transfer not executed", zap.Error(err), zap.ByteString("output", truncate(out, 512)))
		return txHash, err
	}

	w.logger.Info("Transfer executed", zap.String("tx_hash", txHash))
	return txHash, nil
}

// ParseExecutionResult extracts the transaction hash from the CLI's JSON output and
// fails unless the execution status is "executed".
func ParseExecutionResult(out []byte) (string, error) {
	start := bytes.IndexByte(out, '{')
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON object", ErrUnexpectedOutput)
	}

	var p fastjson.Parser
	v, err := p.ParseBytes(out[start:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedOutput, err)
	}

	info := v.Get("execution_info")
	if info == nil {
		return "", fmt.Errorf("%w: missing execution_info", ErrUnexpectedOutput)
	}

	txHash := string(info.GetStringBytes("tx_hash"))
	status := string(info.GetStringBytes("status", "type"))
	if status == "" {
		return txHash, fmt.Errorf("%w: missing execution status", ErrUnexpectedOutput)
	}
	if status != StatusExecuted {
		detail := status
		if code := info.Get("status", "abort_code"); code != nil {
			detail += " abort_code=" + strings.Trim(code.String(), `"`)
		}
		if loc := info.Get("status", "location"); loc != nil {
			detail += " location=" + strings.Trim(loc.String(), `"`)
		}
		return txHash, fmt.Errorf("%w: %s", ErrTransferNotExecuted, detail)
	}
	if txHash == "" {
		return "", fmt.Errorf("%w: missing tx_hash", ErrUnexpectedOutput)
	}
	return txHash, nil
}

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(string(truncate(out, 512)))
		}
		if msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
