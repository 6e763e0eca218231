package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/k9kanishk/gas-spread-arb/config"
	"github.com/k9kanishk/gas-spread-arb/internal/adapters/csvsource"
	"github.com/k9kanishk/gas-spread-arb/internal/adapters/yahoo"
	"github.com/k9kanishk/gas-spread-arb/internal/domain"
	"github.com/k9kanishk/gas-spread-arb/internal/ports"
	"golang.org/x/sync/errgroup"
)

func runFetch(ctx context.Context, cfg *config.Config) error {
	start, err := cfg.StartDate()
	if err != nil {
		return err
	}
	client := yahoo.NewClient(cfg.API.YahooBase, yahoo.WithRateLimit(cfg.API.RatePerSec))
	return fetchRaw(ctx, client, cfg.Data, start)
}

// fetchRaw descarga todos los tickers configurados en paralelo (el client
// aplica el rate limit) y escribe los CSV crudos que lee csvsource.LoadPrices.
// JKM no tiene ticker público; si está vacío, jkm_prices.csv se deja como esté.
func fetchRaw(ctx context.Context, provider ports.PriceProvider, data config.DataConfig, start time.Time) error {
	type job struct {
		name   string
		ticker string
		out    *[]domain.PricePoint
	}
	var ttf, nbp, jkm, eurusd, gbpusd []domain.PricePoint
	jobs := []job{
		{"TTF", data.Tickers.TTF, &ttf},
		{"NBP", data.Tickers.NBP, &nbp},
		{"JKM", data.Tickers.JKM, &jkm},
		{"EURUSD", data.Tickers.EURUSD, &eurusd},
		{"GBPUSD", data.Tickers.GBPUSD, &gbpusd},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		if j.ticker == "" {
			slog.Info("no ticker configured, skipping", "series", j.name)
			continue
		}
		g.Go(func() error {
			points, err := provider.FetchDaily(ctx, j.ticker, start)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", j.name, err)
			}
			slog.Info("downloaded", "series", j.name, "ticker", j.ticker, "bars", len(points))
			*j.out = points
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	writes := []struct {
		ticker string
		file   string
		points []domain.PricePoint
	}{
		{data.Tickers.TTF, csvsource.TTFFile, ttf},
		{data.Tickers.NBP, csvsource.NBPFile, nbp},
		{data.Tickers.JKM, csvsource.JKMFile, jkm},
	}
	for _, w := range writes {
		if w.ticker == "" {
			continue
		}
		if err := csvsource.WriteSeries(filepath.Join(data.RawDir, w.file), w.points); err != nil {
			return err
		}
	}

	if data.Tickers.EURUSD != "" && data.Tickers.GBPUSD != "" {
		if err := csvsource.WriteFX(filepath.Join(data.RawDir, csvsource.FXFile), eurusd, gbpusd); err != nil {
			return err
		}
	} else {
		slog.Warn("FX tickers incomplete, fx_rates.csv not written")
	}

	slog.Info("raw prices saved", "dir", data.RawDir, "since", start.Format(domain.DateLayout))
	return nil
}
