package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/k9kanishk/gas-spread-arb/config"
	"github.com/k9kanishk/gas-spread-arb/internal/adapters/csvsource"
	"github.com/k9kanishk/gas-spread-arb/internal/adapters/notify"
	"github.com/k9kanishk/gas-spread-arb/internal/adapters/storage"
	"github.com/k9kanishk/gas-spread-arb/internal/application/backtest"
	"github.com/k9kanishk/gas-spread-arb/internal/domain"
	"github.com/k9kanishk/gas-spread-arb/internal/ports"
)

type backtestOptions struct {
	spread  string
	noStore bool
	trades  bool
	compact bool
}

func runBacktest(ctx context.Context, cfg *config.Config, opts backtestOptions) error {
	spreads, err := loadSpreads(cfg)
	if err != nil {
		return err
	}

	names := cfg.Spreads.Names
	if opts.spread != "" {
		names = []string{opts.spread}
	}
	spreads, err = selectSpreads(spreads, names)
	if err != nil {
		return err
	}

	var store ports.RunStorage
	if !opts.noStore {
		db, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		pruneOld(ctx, db, cfg.Retention())
		store = db
	}

	runner := backtest.New(backtest.Config{
		Strategy: cfg.DomainStrategy(),
		Workers:  cfg.Runner.Workers,
		DryRun:   opts.noStore,
	}, store, notify.NewConsole(!opts.compact, opts.trades))

	_, err = runner.Run(ctx, spreads)
	return err
}

// loadSpreads lee los CSV crudos, normaliza a EUR/MWh, construye los spreads
// y deja una copia procesada en data.processed_dir.
func loadSpreads(cfg *config.Config) ([]domain.SpreadSeries, error) {
	rows, err := csvsource.LoadPrices(cfg.Data.RawDir)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no complete price rows in %s", cfg.Data.RawDir)
	}

	norm, err := domain.NormalizeToEURMWh(rows)
	if err != nil {
		return nil, err
	}
	spreads, err := domain.BuildSpreads(norm, cfg.Spreads.ShippingCost)
	if err != nil {
		return nil, err
	}

	slog.Info("spreads built",
		"rows", len(rows),
		"from", rows[0].Date.Format(domain.DateLayout),
		"to", rows[len(rows)-1].Date.Format(domain.DateLayout),
		"shipping_cost", cfg.Spreads.ShippingCost,
	)

	processed := cfg.Data.ProcessedDir
	if err := csvsource.WritePrices(filepath.Join(processed, csvsource.CleanPricesFile), rows); err != nil {
		slog.Warn("could not write clean prices", "err", err)
	}
	if err := csvsource.WriteSpreads(filepath.Join(processed, csvsource.SpreadsFile), spreads); err != nil {
		slog.Warn("could not write spreads", "err", err)
	}
	return spreads, nil
}

// selectSpreads filtra por nombre; names vacío = todos.
func selectSpreads(all []domain.SpreadSeries, names []string) ([]domain.SpreadSeries, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]domain.SpreadSeries, len(all))
	known := make([]string, 0, len(all))
	for _, s := range all {
		byName[s.Name] = s
		known = append(known, s.Name)
	}

	out := make([]domain.SpreadSeries, 0, len(names))
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			return nil, &domain.ConfigurationError{
				Field:  "spread",
				Reason: fmt.Sprintf("unknown spread %q, want one of %s", n, strings.Join(known, ", ")),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func pruneOld(ctx context.Context, db *storage.SQLiteStorage, retention time.Duration) {
	if retention <= 0 {
		return
	}
	n, err := db.Prune(ctx, time.Now().Add(-retention))
	if err != nil {
		slog.Warn("prune failed", "err", err)
		return
	}
	if n > 0 {
		slog.Info("pruned old runs", "runs", n)
	}
}
