package domain

import (
	"iter"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// relZeroSigma: una desviación por debajo de relZeroSigma × max|v| es residuo
// de redondeo (ventanas de valores idénticos, ajustes exactos) y cuenta como 0.
const relZeroSigma = 1e-14

// negligibleSigma indica si sigma es cero a la escala de values.
func negligibleSigma(sigma float64, values []float64) bool {
	scale := 0.0
	for _, v := range values {
		scale = math.Max(scale, math.Abs(v))
	}
	return sigma <= relZeroSigma*scale
}

// ZScore es la desviación estandarizada del spread respecto a mu en una fecha.
// Value es NaN cuando no está definido (warm-up o sigma cero).
type ZScore struct {
	Date  time.Time
	Value float64
}

// Defined indica si el z-score tiene un valor utilizable.
func (z ZScore) Defined() bool {
	return !math.IsNaN(z.Value)
}

// Scores devuelve la secuencia de z-scores de series, uno por observación y
// en orden de fecha. La secuencia es perezosa y se puede recorrer varias
// veces; cada pasada recalcula desde la serie.
//
// En modo residual el denominador es params.Sigma y solo sigma == 0 deja el
// z indefinido. En modo rolling el denominador en el índice i es la std
// muestral (n−1) de los RollingWindow valores que terminan en i, así que las
// primeras RollingWindow−1 fechas son NaN.
func Scores(series SpreadSeries, params ModelParameters, cfg ScoreConfig) (iter.Seq[ZScore], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	obs := series.Observations
	if cfg.Mode == ZModeResidual {
		return func(yield func(ZScore) bool) {
			for _, o := range obs {
				if !yield(ZScore{Date: o.Date, Value: standardize(o.Value, params.Mu, params.Sigma)}) {
					return
				}
			}
		}, nil
	}

	w := cfg.RollingWindow
	return func(yield func(ZScore) bool) {
		buf := make([]float64, 0, w)
		for i, o := range obs {
			z := math.NaN()
			if i >= w-1 {
				buf = buf[:0]
				for _, p := range obs[i-w+1 : i+1] {
					buf = append(buf, p.Value)
				}
				if sd := stat.StdDev(buf, nil); !negligibleSigma(sd, buf) {
					z = standardize(o.Value, params.Mu, sd)
				}
			}
			if !yield(ZScore{Date: o.Date, Value: z}) {
				return
			}
		}
	}, nil
}

func standardize(value, mu, sigma float64) float64 {
	if math.IsNaN(mu) || math.IsNaN(sigma) || sigma <= 0 {
		return math.NaN()
	}
	return (value - mu) / sigma
}
