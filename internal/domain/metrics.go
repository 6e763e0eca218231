package domain

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PerformanceMetrics resume un backtest. Son datos derivados: se recalculan
// desde la equity curve y el trade log cuando hagan falta.
type PerformanceMetrics struct {
	TotalPnL    float64
	NumTrades   int
	WinRatio    float64  // 0 sin trades
	AvgTradePnL Optional // indefinido sin trades
	MaxDrawdown float64  // pico menos valle del P&L acumulado, >= 0
	Sharpe      Optional // indefinido si el P&L diario no tiene dispersión
	Sortino     Optional // indefinido sin días negativos o sin dispersión a la baja
}

// ComputeMetrics es una función pura de sus entradas.
//
// Los deltas diarios son CumulativePnL_t − CumulativePnL_{t−1} con un 0
// implícito antes de la primera fecha. Las dispersiones son std poblacional
// (ddof 0), relativas a la escala de los deltas. Sortino usa solo la std de
// los deltas negativos.
func ComputeMetrics(equity []EquityPoint, trades []Trade, annualization float64) PerformanceMetrics {
	m := PerformanceMetrics{NumTrades: len(trades)}

	if len(trades) > 0 {
		var wins int
		var sum float64
		for _, t := range trades {
			if t.Won() {
				wins++
			}
			sum += t.NetPnL
		}
		m.WinRatio = float64(wins) / float64(len(trades))
		m.AvgTradePnL = Some(sum / float64(len(trades)))
	}

	if len(equity) == 0 {
		return m
	}

	m.TotalPnL = equity[len(equity)-1].CumulativePnL
	m.MaxDrawdown = MaxDrawdown(equity)

	deltas := DailyDeltas(equity)
	mean, std := stat.PopMeanStdDev(deltas, nil)
	if !negligibleSigma(std, deltas) {
		m.Sharpe = Some(mean / std * annualization)
	}

	var downside []float64
	for _, d := range deltas {
		if d < 0 {
			downside = append(downside, d)
		}
	}
	if len(downside) > 0 {
		if dstd := stat.PopStdDev(downside, nil); !negligibleSigma(dstd, downside) {
			m.Sortino = Some(mean / dstd * annualization)
		}
	}

	return m
}

// DailyDeltas devuelve la variación diaria del P&L acumulado.
func DailyDeltas(equity []EquityPoint) []float64 {
	out := make([]float64, len(equity))
	prev := 0.0
	for i, p := range equity {
		out[i] = p.CumulativePnL - prev
		prev = p.CumulativePnL
	}
	return out
}

// MaxDrawdown es el máximo sobre t de (máximo acumulado − valor). El máximo
// arranca en el primer punto, así que una curva que solo cae reporta la caída
// desde su primer valor.
func MaxDrawdown(equity []EquityPoint) float64 {
	if len(equity) == 0 {
		return 0
	}
	peak := math.Inf(-1)
	var dd float64
	for _, p := range equity {
		peak = math.Max(peak, p.CumulativePnL)
		dd = math.Max(dd, peak-p.CumulativePnL)
	}
	return dd
}
