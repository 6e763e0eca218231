package domain

import (
	"math/rand/v2"
	"time"
)

var baseDate = time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)

func day(i int) time.Time {
	return baseDate.AddDate(0, 0, i)
}

func makeSeries(values ...float64) SpreadSeries {
	obs := make([]SpreadObservation, len(values))
	for i, v := range values {
		obs[i] = SpreadObservation{Date: day(i), Value: v}
	}
	return SpreadSeries{Name: "TEST", Observations: obs}
}

// simulateAR1 genera n puntos de s_t = c + phi × s_{t-1} + sigma × N(0,1),
// empezando en la media de largo plazo.
func simulateAR1(seed uint64, n int, mu, phi, sigma float64) SpreadSeries {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	c := mu * (1 - phi)
	values := make([]float64, n)
	prev := mu
	for i := range values {
		prev = c + phi*prev + sigma*rng.NormFloat64()
		values[i] = prev
	}
	return makeSeries(values...)
}

func signalsFor(series SpreadSeries, actions ...Action) []Signal {
	out := make([]Signal, len(actions))
	for i, a := range actions {
		out[i] = Signal{Date: series.Observations[i].Date, Action: a}
	}
	return out
}
