package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/k9kanishk/gas-spread-arb/config"
	"github.com/k9kanishk/gas-spread-arb/internal/adapters/csvsource"
	"github.com/k9kanishk/gas-spread-arb/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mu     sync.Mutex
	prices map[string][]domain.PricePoint
	asked  []string
	err    error
}

func (m *mockProvider) FetchDaily(_ context.Context, ticker string, _ time.Time) ([]domain.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asked = append(m.asked, ticker)
	if m.err != nil {
		return nil, m.err
	}
	return m.prices[ticker], nil
}

func d(day int) time.Time {
	return time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC)
}

func TestFetchRaw_WritesLoadableFiles(t *testing.T) {
	dir := t.TempDir()
	// JKM no se descarga: se deja un archivo previo
	require.NoError(t, os.WriteFile(filepath.Join(dir, csvsource.JKMFile), []byte("Date,Price\n2024-01-02,10\n2024-01-03,10.5\n"), 0o644))

	provider := &mockProvider{prices: map[string][]domain.PricePoint{
		"TTF=F":    {{Date: d(2), Close: 30}, {Date: d(3), Close: 31}},
		"NBP":      {{Date: d(2), Close: 75}, {Date: d(3), Close: 76}},
		"EURUSD=X": {{Date: d(2), Close: 1.1}, {Date: d(3), Close: 1.09}},
		"GBPUSD=X": {{Date: d(2), Close: 1.27}, {Date: d(3), Close: 1.26}},
	}}
	data := config.DataConfig{
		RawDir: dir,
		Tickers: config.TickersConfig{
			TTF: "TTF=F", NBP: "NBP", EURUSD: "EURUSD=X", GBPUSD: "GBPUSD=X",
		},
	}

	require.NoError(t, fetchRaw(context.Background(), provider, data, d(1)))
	assert.ElementsMatch(t, []string{"TTF=F", "NBP", "EURUSD=X", "GBPUSD=X"}, provider.asked)

	rows, err := csvsource.LoadPrices(dir)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.PriceRow{Date: d(3), TTF: 31, NBP: 76, JKM: 10.5, EURUSD: 1.09, GBPUSD: 1.26}, rows[1])
}

func TestFetchRaw_ProviderError(t *testing.T) {
	provider := &mockProvider{err: errors.New("status 503")}
	data := config.DataConfig{RawDir: t.TempDir(), Tickers: config.TickersConfig{TTF: "TTF=F"}}

	err := fetchRaw(context.Background(), provider, data, d(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch TTF")

	_, statErr := os.Stat(filepath.Join(data.RawDir, csvsource.TTFFile))
	assert.True(t, os.IsNotExist(statErr), "nothing written on failure")
}

func TestSelectSpreads(t *testing.T) {
	all := []domain.SpreadSeries{{Name: domain.SpreadTTFNBP}, {Name: domain.SpreadTTFJKMNetback}}

	got, err := selectSpreads(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = selectSpreads(all, []string{domain.SpreadTTFJKMNetback})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.SpreadTTFJKMNetback, got[0].Name)

	_, err = selectSpreads(all, []string{"HH_TTF"})
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}
