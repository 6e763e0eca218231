package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curve(cum ...float64) []EquityPoint {
	out := make([]EquityPoint, len(cum))
	for i, c := range cum {
		out[i] = EquityPoint{Date: day(i), CumulativePnL: c}
	}
	return out
}

func TestComputeMetrics_EmptyTradeLog(t *testing.T) {
	m := ComputeMetrics(curve(0, 0, 0), nil, math.Sqrt(252))

	assert.Equal(t, 0, m.NumTrades)
	assert.Equal(t, 0.0, m.WinRatio)
	assert.False(t, m.AvgTradePnL.Valid)
	assert.Equal(t, "N/A", m.AvgTradePnL.String())
	assert.False(t, m.Sharpe.Valid, "flat curve has no dispersion")
	assert.False(t, m.Sortino.Valid)
	assert.Equal(t, 0.0, m.MaxDrawdown)
}

func TestComputeMetrics_EmptyCurve(t *testing.T) {
	m := ComputeMetrics(nil, nil, 1)
	assert.Equal(t, PerformanceMetrics{}, m)
}

func TestComputeMetrics_Trades(t *testing.T) {
	trades := []Trade{{NetPnL: 2}, {NetPnL: -1}, {NetPnL: 0}, {NetPnL: 3}}
	m := ComputeMetrics(curve(1, 4), trades, 1)

	assert.Equal(t, 4, m.NumTrades)
	assert.InDelta(t, 0.5, m.WinRatio, 1e-12, "zero net P&L is not a win")
	require.True(t, m.AvgTradePnL.Valid)
	assert.InDelta(t, 1.0, m.AvgTradePnL.Value, 1e-12)
	assert.Equal(t, 4.0, m.TotalPnL)
}

func TestComputeMetrics_SharpeAndSortino(t *testing.T) {
	ann := math.Sqrt(252)
	// deltas 2, -1, 3, -2: media 0.5, std pobl. sqrt(4.25); a la baja {-1,-2} std pobl. 0.5
	m := ComputeMetrics(curve(2, 1, 4, 2), nil, ann)

	require.True(t, m.Sharpe.Valid)
	assert.InDelta(t, 0.5/math.Sqrt(4.25)*ann, m.Sharpe.Value, 1e-9)
	require.True(t, m.Sortino.Valid)
	assert.InDelta(t, ann, m.Sortino.Value, 1e-9)
}

func TestComputeMetrics_SortinoUndefinedWithoutLosses(t *testing.T) {
	m := ComputeMetrics(curve(1, 3, 4), nil, 1)
	assert.True(t, m.Sharpe.Valid)
	assert.False(t, m.Sortino.Valid)
	assert.False(t, math.IsInf(m.Sortino.Or(0), 0))
}

func TestComputeMetrics_SortinoUndefinedWithSingleLoss(t *testing.T) {
	m := ComputeMetrics(curve(2, 1, 4), nil, 1)
	assert.False(t, m.Sortino.Valid, "one negative day has zero downside dispersion")
}

func TestMaxDrawdown(t *testing.T) {
	assert.Equal(t, 4.0, MaxDrawdown(curve(1, 3, 2, 5, 1, 4)))
	assert.Equal(t, 0.0, MaxDrawdown(curve(1, 2, 3)))
	assert.Equal(t, 3.0, MaxDrawdown(curve(-1, -2, -4)))
	assert.Equal(t, 0.0, MaxDrawdown(nil))
}

func TestDailyDeltas(t *testing.T) {
	assert.Equal(t, []float64{-0.5, 1.5, 0}, DailyDeltas(curve(-0.5, 1, 1)))
}

func TestComputeMetrics_Idempotent(t *testing.T) {
	series := simulateAR1(21, 400, 0, 0.9, 1)
	p, err := FitAR1(series, ModelConfig{MinFitWindow: 60})
	require.NoError(t, err)
	seq, err := Scores(series, p, ScoreConfig{Mode: ZModeResidual})
	require.NoError(t, err)
	signals, _, err := GenerateSignals(series, seq, SignalConfig{EnterThreshold: 1.5, ExitThreshold: 0.2}, StatusFlat)
	require.NoError(t, err)
	res, err := Simulate(series, signals, CostConfig{EntryCost: 0.01, ExitCost: 0.01, ChargeForcedClose: true})
	require.NoError(t, err)
	require.NotEmpty(t, res.Trades)

	first := ComputeMetrics(res.Equity, res.Trades, math.Sqrt(252))
	second := ComputeMetrics(res.Equity, res.Trades, math.Sqrt(252))
	assert.Equal(t, first, second)
	assert.Equal(t, res.FinalPnL(), first.TotalPnL)
	assert.Equal(t, len(res.Trades), first.NumTrades)
}

func TestComputeMetrics_DispersionIsScaleRelative(t *testing.T) {
	big := ComputeMetrics(curve(1, 3, 2, 5), nil, 1)
	tiny := ComputeMetrics(curve(1e-13, 3e-13, 2e-13, 5e-13), nil, 1)

	require.True(t, tiny.Sharpe.Valid)
	assert.InDelta(t, big.Sharpe.Value, tiny.Sharpe.Value, 1e-9)
	assert.False(t, tiny.Sortino.Valid, "one negative day has zero downside dispersion")
}
