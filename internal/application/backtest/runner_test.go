package backtest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/k9kanishk/gas-spread-arb/internal/application/backtest"
	"github.com/k9kanishk/gas-spread-arb/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(store *mockStorage, rep *mockReporter, dryRun bool) *backtest.Runner {
	cfg := backtest.Config{Strategy: domain.DefaultStrategyConfig(), Workers: 2, DryRun: dryRun}
	if store == nil {
		return backtest.New(cfg, nil, rep)
	}
	return backtest.New(cfg, store, rep)
}

func TestRunner_ReportsAndPersists(t *testing.T) {
	store := &mockStorage{}
	rep := &mockReporter{}
	r := newRunner(store, rep, false)

	outcomes, err := r.Run(context.Background(), []domain.SpreadSeries{
		ar1Series(domain.SpreadTTFNBP, 1, 300, 1, 0.9, 1),
		shortSeries("bad", 3),
	})
	require.NoError(t, err, "one failed spread does not fail the pass")
	require.Len(t, outcomes, 2)

	assert.Equal(t, outcomes, rep.reported)
	require.Len(t, store.saved, 1, "only successful runs are stored")
	assert.Equal(t, domain.SpreadTTFNBP, store.saved[0].Spread)
}

func TestRunner_DryRunSkipsStorage(t *testing.T) {
	store := &mockStorage{}
	r := newRunner(store, &mockReporter{}, true)

	_, err := r.Run(context.Background(), []domain.SpreadSeries{ar1Series("X", 1, 300, 1, 0.9, 1)})
	require.NoError(t, err)
	assert.Empty(t, store.saved)
}

func TestRunner_NilStorage(t *testing.T) {
	r := newRunner(nil, &mockReporter{}, false)
	_, err := r.Run(context.Background(), []domain.SpreadSeries{ar1Series("X", 1, 300, 1, 0.9, 1)})
	assert.NoError(t, err)
}

func TestRunner_StorageErrorIsNotFatal(t *testing.T) {
	store := &mockStorage{err: errors.New("disk full")}
	rep := &mockReporter{err: errors.New("broken pipe")}
	r := newRunner(store, rep, false)

	outcomes, err := r.Run(context.Background(), []domain.SpreadSeries{ar1Series("X", 1, 300, 1, 0.9, 1)})
	require.NoError(t, err)
	assert.Len(t, outcomes, 1)
}

func TestRunner_AllFailed(t *testing.T) {
	r := newRunner(&mockStorage{}, &mockReporter{}, false)
	outcomes, err := r.Run(context.Background(), []domain.SpreadSeries{shortSeries("a", 3), shortSeries("b", 3)})
	require.Error(t, err)
	assert.Len(t, outcomes, 2)
}

func TestRunner_InvalidConfig(t *testing.T) {
	cfg := backtest.Config{Strategy: domain.DefaultStrategyConfig()}
	cfg.Strategy.Score.Mode = "ewma"
	r := backtest.New(cfg, nil, &mockReporter{})

	_, err := r.Run(context.Background(), []domain.SpreadSeries{ar1Series("X", 1, 300, 1, 0.9, 1)})
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestRunner_NoSpreads(t *testing.T) {
	r := newRunner(nil, &mockReporter{}, false)
	_, err := r.Run(context.Background(), nil)
	assert.Error(t, err)
}
