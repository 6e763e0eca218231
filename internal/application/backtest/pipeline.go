package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/k9kanishk/gas-spread-arb/internal/domain"
)

// Run ejecuta el pipeline completo sobre un spread: ajuste, z-scores, señales,
// simulación y métricas. La config se copia; nada se comparte con otros runs.
func Run(ctx context.Context, cfg domain.StrategyConfig, series domain.SpreadSeries) (domain.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RunResult{}, err
	}
	if err := cfg.Validate(); err != nil {
		return domain.RunResult{}, fmt.Errorf("backtest.Run %s: %w", series.Name, err)
	}
	if err := series.Validate(); err != nil {
		return domain.RunResult{}, fmt.Errorf("backtest.Run %s: %w", series.Name, err)
	}

	params, err := domain.FitAR1(series, cfg.Model)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("backtest.Run %s: fit: %w", series.Name, err)
	}
	if params.Warning != nil {
		slog.Warn("spread is not mean reverting",
			"spread", series.Name,
			"phi", params.Phi,
			"warning", params.Warning.String(),
		)
	}

	zscores, err := domain.Scores(series, params, cfg.Score)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("backtest.Run %s: score: %w", series.Name, err)
	}
	signals, final, err := domain.GenerateSignals(series, zscores, cfg.Signal, domain.StatusFlat)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("backtest.Run %s: signals: %w", series.Name, err)
	}

	result, err := domain.Simulate(series, signals, cfg.Costs)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("backtest.Run %s: simulate: %w", series.Name, err)
	}
	metrics := domain.ComputeMetrics(result.Equity, result.Trades, cfg.AnnualizationFactor)

	slog.Debug("spread backtested",
		"spread", series.Name,
		"obs", series.Len(),
		"phi", params.Phi,
		"half_life", params.HalfLife.String(),
		"trades", metrics.NumTrades,
		"pnl", metrics.TotalPnL,
		"final_signal_state", final,
	)

	return domain.RunResult{
		ID:       uuid.NewString(),
		Spread:   series.Name,
		RanAt:    time.Now().UTC(),
		Config:   cfg,
		Params:   params,
		Signals:  signals,
		Backtest: result,
		Metrics:  metrics,
	}, nil
}
