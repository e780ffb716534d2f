package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MeepoTu/rooch/internal/config"
	"github.com/MeepoTu/rooch/internal/logger"
	"github.com/MeepoTu/rooch/internal/metrics"
	"github.com/MeepoTu/rooch/internal/rooch"
	"github.com/MeepoTu/rooch/internal/session"
	"github.com/MeepoTu/rooch/internal/ui"
	"github.com/MeepoTu/rooch/internal/ui/state"
)

// activityEntries is how many log entries the activity pane keeps.
const activityEntries = 200

func main() {
	app := cli.NewApp()

	app.Name = "rooch-portal"
	app.Usage = "terminal portal for Rooch balances and coin transfers"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Value:  "configs/config.yaml",
			Usage:  "Load configuration from `FILE`. Empty reads ROOCH_PORTAL_* variables only.",
			EnvVar: config.EnvPrefix + "_CONFIG",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Write debug entries to the log file.",
		},
	}

	app.Commands = []cli.Command{
		balancesCommand(),
	}

	app.Action = func(c *cli.Context) error {
		return run(c.String("config"), c.Bool("debug"))
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "rooch-portal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, debug bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ring := logger.NewRing(activityEntries)
	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging || debug
	logCfg.Activity = ring

	appLogger, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(appLogger)
	}()

	appLogger.Info("Starting Rooch portal",
		zap.String("rpc_url", cfg.MaskedRPCURL()),
		zap.String("owner", logger.ShortenAddress(cfg.Owner)),
		zap.Strings("scopes", cfg.Session.Scopes))

	// Create context with signal handling
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	client := rooch.NewClient(rooch.ClientConfig{
		URL:      cfg.RPCURL,
		Timeout:  cfg.RequestTimeout,
		Retries:  cfg.Retries,
		Observer: collector,
	}, appLogger)
	defer func() {
		if err := client.Close(); err != nil {
			appLogger.Debug("Failed to close RPC client", zap.Error(err))
		}
	}()

	services := &ui.Services{
		Balances: client,
		Wallet: rooch.NewCLIWallet(rooch.WalletConfig{
			CLIPath: cfg.Wallet.CLIPath,
			Sender:  cfg.Wallet.Sender,
		}, appLogger),
		Sessions:         session.NewManager(appLogger),
		Recorder:         collector,
		Activity:         ring,
		Cache:            state.NewBalanceCache(appLogger),
		Owner:            cfg.Owner,
		DisplayPrecision: int32(cfg.DisplayPrecision),
		Session: ui.SessionSettings{
			AppName:     cfg.Session.AppName,
			Scopes:      cfg.Session.Scopes,
			MaxInactive: cfg.Session.MaxInactive,
		},
		RequestTimeout: cfg.RequestTimeout,
		Logger:         appLogger,
	}

	g, ctx := errgroup.WithContext(rootCtx)
	model := ui.NewSafeModel(NewAppModel(ctx, services, appLogger), appLogger)

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metricsMux(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			appLogger.Info("Serving metrics", zap.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		// Stop the other workers once the UI exits
		defer stop()

		program := tea.NewProgram(
			model,
			tea.WithAltScreen(),
			tea.WithContext(ctx),
		)
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			appLogger.Error("TUI application failed", zap.Error(err))
			return err
		}
		return nil
	})

	err = g.Wait()

	tokens, cacheReads, cacheWrites := services.Cache.GetStats()
	busSent, busDropped := ui.BusStats()
	appLogger.Info("Shutting down Rooch portal",
		zap.Uint64("cached_tokens", tokens),
		zap.Uint64("cache_reads", cacheReads),
		zap.Uint64("cache_writes", cacheWrites),
		zap.Uint64("bus_sent", busSent),
		zap.Uint64("bus_dropped", busDropped),
		zap.Uint64("log_entries", ring.Total()),
		zap.Int("ui_panics", model.Panics()))
	return err
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	return mux
}
