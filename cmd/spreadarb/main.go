package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/k9kanishk/gas-spread-arb/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	spread := flag.String("spread", "", "run a single spread (TTF_NBP | TTF_JKM_netback); default: spreads.names or all")
	fetch := flag.Bool("fetch", false, "download raw prices into data.raw_dir and exit")
	history := flag.Bool("history", false, "print stored runs and exit")
	historyDays := flag.Int("history-days", 30, "how far back -history looks")
	showRun := flag.String("run", "", "print the stored trade log of a run (full id or the short id shown by -history) and exit")
	noStore := flag.Bool("no-store", false, "do not persist results")
	trades := flag.Bool("trades", false, "print the trade log of each spread")
	compact := flag.Bool("compact", false, "one line per spread instead of tables")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("spreadarb starting",
		"config", *configPath,
		"raw_dir", cfg.Data.RawDir,
		"fetch", *fetch,
		"history", *history,
		"no_store", *noStore,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *fetch:
		err = runFetch(ctx, cfg)
	case *history:
		err = runHistory(ctx, cfg, *historyDays)
	case *showRun != "":
		err = runShowTrades(ctx, cfg, *showRun)
	default:
		err = runBacktest(ctx, cfg, backtestOptions{
			spread:  *spread,
			noStore: *noStore,
			trades:  *trades,
			compact: *compact,
		})
	}
	if err != nil {
		slog.Error("spreadarb exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("spreadarb stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
