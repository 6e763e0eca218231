package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/k9kanishk/gas-spread-arb/config"
	"github.com/k9kanishk/gas-spread-arb/internal/adapters/notify"
	"github.com/k9kanishk/gas-spread-arb/internal/adapters/storage"
	"github.com/k9kanishk/gas-spread-arb/internal/domain"
)

func runHistory(ctx context.Context, cfg *config.Config, days int) error {
	db, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	to := time.Now()
	runs, err := db.GetRuns(ctx, to.AddDate(0, 0, -days), to)
	if err != nil {
		return err
	}
	return notify.NewConsole(true, false).PrintHistory(runs)
}

func runShowTrades(ctx context.Context, cfg *config.Config, runID string) error {
	db, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err = db.ResolveRunID(ctx, runID)
	if err != nil {
		return err
	}

	trades, err := db.GetTrades(ctx, runID)
	if err != nil {
		return err
	}
	equity, err := db.GetEquity(ctx, runID)
	if err != nil {
		return err
	}
	if len(trades) == 0 && len(equity) == 0 {
		return fmt.Errorf("run %s not found in %s", runID, cfg.Storage.DSN)
	}
	if n := len(equity); n > 0 {
		slog.Info("stored run",
			"run", runID,
			"from", equity[0].Date.Format(domain.DateLayout),
			"to", equity[n-1].Date.Format(domain.DateLayout),
			"final_pnl", equity[n-1].CumulativePnL,
			"max_drawdown", domain.MaxDrawdown(equity),
		)
	}
	return notify.NewConsole(true, true).PrintTrades(runID, trades)
}
