package backtest_test

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/k9kanishk/gas-spread-arb/internal/domain"
)

var baseDate = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)

// ar1Series genera n puntos de un AR(1) con reversión a mu.
func ar1Series(name string, seed uint64, n int, mu, phi, sigma float64) domain.SpreadSeries {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	obs := make([]domain.SpreadObservation, n)
	prev := mu
	for i := range obs {
		prev = mu*(1-phi) + phi*prev + sigma*rng.NormFloat64()
		obs[i] = domain.SpreadObservation{Date: baseDate.AddDate(0, 0, i), Value: prev}
	}
	return domain.SpreadSeries{Name: name, Observations: obs}
}

func shortSeries(name string, n int) domain.SpreadSeries {
	obs := make([]domain.SpreadObservation, n)
	for i := range obs {
		obs[i] = domain.SpreadObservation{Date: baseDate.AddDate(0, 0, i), Value: float64(i % 3)}
	}
	return domain.SpreadSeries{Name: name, Observations: obs}
}

// --- mocks ---

type mockStorage struct {
	mu    sync.Mutex
	saved []domain.RunResult
	err   error
}

func (m *mockStorage) SaveRun(_ context.Context, run domain.RunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, run)
	return m.err
}

func (m *mockStorage) GetRuns(_ context.Context, _, _ time.Time) ([]domain.RunSummary, error) {
	return nil, nil
}

func (m *mockStorage) GetTrades(_ context.Context, _ string) ([]domain.Trade, error) {
	return nil, nil
}

func (m *mockStorage) GetEquity(_ context.Context, _ string) ([]domain.EquityPoint, error) {
	return nil, nil
}

func (m *mockStorage) Close() error { return nil }

type mockReporter struct {
	reported []domain.RunOutcome
	err      error
}

func (m *mockReporter) Report(_ context.Context, outcomes []domain.RunOutcome) error {
	m.reported = outcomes
	return m.err
}
