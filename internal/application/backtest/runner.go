package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/k9kanishk/gas-spread-arb/internal/domain"
	"github.com/k9kanishk/gas-spread-arb/internal/ports"
)

// Config contiene la configuración del runner.
type Config struct {
	Strategy domain.StrategyConfig
	Workers  int  // goroutines para runs en paralelo (0 = NumCPU)
	DryRun   bool // no persistir resultados
}

// Runner orquesta una pasada completa: backtest de cada spread, reporte y
// persistencia.
type Runner struct {
	cfg      Config
	storage  ports.RunStorage
	reporter ports.Reporter
}

// New crea un Runner con las dependencias inyectadas. storage puede ser nil.
func New(cfg Config, storage ports.RunStorage, reporter ports.Reporter) *Runner {
	return &Runner{cfg: cfg, storage: storage, reporter: reporter}
}

// Run corre todos los spreads, los reporta y persiste los exitosos.
// Devuelve error solo si la config es inválida o ningún spread pudo correr;
// los fallos individuales van en los RunOutcome.
func (r *Runner) Run(ctx context.Context, spreads []domain.SpreadSeries) ([]domain.RunOutcome, error) {
	if err := r.cfg.Strategy.Validate(); err != nil {
		return nil, fmt.Errorf("backtest.Runner: %w", err)
	}
	if len(spreads) == 0 {
		return nil, fmt.Errorf("backtest.Runner: no spreads to run")
	}

	start := time.Now()
	slog.Info("backtest starting",
		"spreads", len(spreads),
		"workers", r.cfg.Workers,
		"z_mode", r.cfg.Strategy.Score.Mode,
		"enter", r.cfg.Strategy.Signal.EnterThreshold,
		"exit", r.cfg.Strategy.Signal.ExitThreshold,
	)

	outcomes := RunAll(ctx, r.cfg.Strategy, spreads, r.cfg.Workers)

	if r.reporter != nil {
		if err := r.reporter.Report(ctx, outcomes); err != nil {
			slog.Warn("reporter error", "err", err)
		}
	}

	ok := 0
	for _, o := range outcomes {
		if o.Err != nil {
			slog.Error("spread failed", "spread", o.Spread, "err", o.Err)
			continue
		}
		ok++
		if r.storage == nil || r.cfg.DryRun {
			continue
		}
		if err := r.storage.SaveRun(ctx, *o.Result); err != nil {
			slog.Warn("storage error", "spread", o.Spread, "err", err)
		}
	}

	slog.Info("backtest complete",
		"ok", ok,
		"failed", len(outcomes)-ok,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	if ok == 0 {
		return outcomes, fmt.Errorf("backtest.Runner: all %d spreads failed", len(outcomes))
	}
	return outcomes, nil
}
