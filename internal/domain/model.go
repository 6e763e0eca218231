package domain

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ModelParameters es el resultado de un ajuste AR(1):
//
//	s_t = c + phi × s_{t-1} + e_t,   mu = c / (1 − phi)
//
// Inmutable una vez devuelto. Si la serie crece hay que reajustar.
type ModelParameters struct {
	Intercept float64  // c
	Phi       float64  // persistencia
	Mu        float64  // media de largo plazo; NaN si phi == 1
	Sigma     float64  // std residual, SSR / (pairs − 2)
	HalfLife  Optional // indefinida salvo 0 < phi < 1
	Pairs     int      // pares con lag usados en la regresión
	FitStart  time.Time
	FitEnd    time.Time
	Warning   *NonStationaryWarning // presente si phi >= 1
}

// MeanReverting indica si el ajuste tiene half-life finita y positiva.
func (p ModelParameters) MeanReverting() bool {
	return p.HalfLife.Valid
}

// ZScore estandariza un valor con la sigma residual.
// Devuelve NaN si sigma es cero o mu no está definida.
func (p ModelParameters) ZScore(value float64) float64 {
	return standardize(value, p.Mu, p.Sigma)
}

// HalfLife calcula ln(2) / −ln(phi) para 0 < phi < 1.
// Con phi <= 0 el proceso oscila o vuelve de golpe a la media y la métrica no
// está definida; con phi >= 1 no hay reversión.
func HalfLife(phi float64) Optional {
	if !(phi > 0 && phi < 1) {
		return None()
	}
	return Some(math.Ln2 / -math.Log(phi))
}

// FitAR1 regresa s_t sobre s_{t-1} con intercepto por mínimos cuadrados.
//
// Grados de libertad: n observaciones dan n−1 pares; se estiman dos
// parámetros, así que sigma² = SSR / (n − 3). Si el regresor no tiene
// varianza phi no es identificable: se fija en 0 y mu es la media de s_t.
// Una sigma que solo es residuo de redondeo (ajuste exacto) se devuelve como 0.
func FitAR1(series SpreadSeries, cfg ModelConfig) (ModelParameters, error) {
	if err := cfg.Validate(); err != nil {
		return ModelParameters{}, err
	}

	window := series.Tail(cfg.FitWindow)
	if window.Len() < cfg.MinFitWindow {
		return ModelParameters{}, &InsufficientDataError{Have: window.Len(), Need: cfg.MinFitWindow}
	}

	v := window.Values()
	x := v[:len(v)-1]
	y := v[1:]

	var c, phi float64
	if _, varX := stat.MeanVariance(x, nil); varX == 0 {
		c, phi = stat.Mean(y, nil), 0
	} else {
		c, phi = stat.LinearRegression(x, y, nil, false)
	}

	var ssr float64
	for i := range x {
		r := y[i] - (c + phi*x[i])
		ssr += r * r
	}
	dof := len(x) - 2
	sigma := math.Sqrt(ssr / float64(dof))
	if negligibleSigma(sigma, v) {
		sigma = 0
	}

	p := ModelParameters{
		Intercept: c,
		Phi:       phi,
		Mu:        math.NaN(),
		Sigma:     sigma,
		HalfLife:  HalfLife(phi),
		Pairs:     len(x),
		FitStart:  window.Start(),
		FitEnd:    window.End(),
	}
	if phi != 1 {
		p.Mu = c / (1 - phi)
	}
	if phi >= 1 {
		p.Warning = &NonStationaryWarning{Phi: phi}
	}
	return p, nil
}
