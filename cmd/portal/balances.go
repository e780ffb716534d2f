package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MeepoTu/rooch/internal/config"
	"github.com/MeepoTu/rooch/internal/logger"
	"github.com/MeepoTu/rooch/internal/rooch"
	"github.com/MeepoTu/rooch/internal/transfer"
)

func balancesCommand() cli.Command {
	return cli.Command{
		Name:  "balances",
		Usage: "print the owner's coin balances and exit",
		Action: func(c *cli.Context) error {
			return printBalances(c.GlobalString("config"), c.GlobalBool("debug"), os.Stdout)
		},
	}
}

// printBalances runs without the TUI, so logs go to the console on stderr.
func printBalances(configPath string, debug bool, out io.Writer) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging || debug
	logCfg.Console = true
	logCfg.ConsoleOutput = zapcore.Lock(os.Stderr)

	appLogger, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(appLogger)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := rooch.NewClient(rooch.ClientConfig{
		URL:     cfg.RPCURL,
		Timeout: cfg.RequestTimeout,
		Retries: cfg.Retries,
	}, appLogger)
	defer func() {
		_ = client.Close()
	}()

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	appLogger.Info("Fetching balances",
		zap.String("rpc_url", cfg.MaskedRPCURL()),
		zap.String("owner", logger.ShortenAddress(cfg.Owner)))

	balances, err := client.GetBalances(ctx, cfg.Owner)
	if err != nil {
		appLogger.Error("Failed to fetch balances", zap.Error(err))
		return err
	}

	return writeBalances(out, balances, int32(cfg.DisplayPrecision))
}

func writeBalances(w io.Writer, balances []transfer.TokenBalance, precision int32) error {
	if len(balances) == 0 {
		_, err := fmt.Fprintln(w, "No coins found")
		return err
	}

	if _, err := fmt.Fprintf(w, "%-10s %24s  %s\n", "SYMBOL", "BALANCE", "COIN TYPE"); err != nil {
		return err
	}
	for _, b := range balances {
		if _, err := fmt.Fprintf(w, "%-10s %24s  %s\n", b.Symbol, b.DisplayBalance(precision), b.CoinType); err != nil {
			return err
		}
	}
	return nil
}
