package domain

import "time"

// RunResult es todo lo que produjo un backtest sobre un spread.
type RunResult struct {
	ID       string
	Spread   string
	RanAt    time.Time
	Config   StrategyConfig
	Params   ModelParameters
	Signals  []Signal
	Backtest BacktestResult
	Metrics  PerformanceMetrics
}

// RunOutcome asocia un spread con su resultado o con el error que lo abortó.
// Un spread fallido nunca oculta a los demás.
type RunOutcome struct {
	Spread string
	Result *RunResult
	Err    error
}

// RunSummary es la vista plana y persistida de un run, para el histórico.
type RunSummary struct {
	ID         string
	Spread     string
	RanAt      time.Time
	SeriesFrom time.Time
	SeriesTo   time.Time
	Mu         float64
	Phi        float64
	Sigma      float64
	HalfLife   Optional
	Metrics    PerformanceMetrics
}

// Summary aplana un run para guardarlo.
func (r RunResult) Summary() RunSummary {
	s := RunSummary{
		ID:       r.ID,
		Spread:   r.Spread,
		RanAt:    r.RanAt,
		Mu:       r.Params.Mu,
		Phi:      r.Params.Phi,
		Sigma:    r.Params.Sigma,
		HalfLife: r.Params.HalfLife,
		Metrics:  r.Metrics,
	}
	if eq := r.Backtest.Equity; len(eq) > 0 {
		s.SeriesFrom = eq[0].Date
		s.SeriesTo = eq[len(eq)-1].Date
	}
	return s
}

// PricePoint es un cierre diario descargado para un ticker.
type PricePoint struct {
	Date  time.Time
	Close float64
}
