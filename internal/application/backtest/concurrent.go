package backtest

// concurrent.go: backtests en paralelo, uno por spread.
//
// Cada run recibe su propia copia de la config y su propia serie; no hay
// estado compartido entre goroutines salvo el slice de resultados, donde
// cada worker escribe solo su índice.

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/k9kanishk/gas-spread-arb/internal/domain"
	"golang.org/x/sync/errgroup"
)

// RunAll ejecuta Run sobre cada serie con como mucho workers goroutines.
// El resultado conserva el orden de entrada. Un spread que falla queda
// registrado en su RunOutcome y no aborta a los demás.
//
// Si workers <= 0 usa runtime.NumCPU().
func RunAll(ctx context.Context, cfg domain.StrategyConfig, spreads []domain.SpreadSeries, workers int) []domain.RunOutcome {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]domain.RunOutcome, len(spreads))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, series := range spreads {
		g.Go(func() error {
			outcomes[i].Spread = series.Name
			res, err := Run(ctx, cfg, series)
			if err != nil {
				slog.Debug("backtest failed", "spread", series.Name, "err", err)
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Result = &res
			return nil
		})
	}
	_ = g.Wait() // cada goroutine registra su error en outcomes[i]

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	slog.Debug("concurrent backtests complete",
		"spreads", len(spreads),
		"failed", failed,
		"workers", workers,
	)
	return outcomes
}
