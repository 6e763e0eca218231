package csvsource_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/k9kanishk/gas-spread-arb/internal/adapters/csvsource"
	"github.com/k9kanishk/gas-spread-arb/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSeries_ReadBack(t *testing.T) {
	dir := rawDir(t)
	points := []domain.PricePoint{{Date: date(2), Close: 50.5}, {Date: date(3), Close: 51.25}, {Date: date(6), Close: 49}}
	require.NoError(t, csvsource.WriteSeries(filepath.Join(dir, csvsource.TTFFile), points))

	rows, err := csvsource.LoadPrices(dir)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 50.5, rows[0].TTF)
	assert.Equal(t, 51.25, rows[1].TTF)
	assert.Equal(t, 49.0, rows[2].TTF)
}

func TestWriteFX_OuterJoin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", csvsource.FXFile)
	err := csvsource.WriteFX(path,
		[]domain.PricePoint{{Date: date(1), Close: 1.05}, {Date: date(2), Close: 1.06}},
		[]domain.PricePoint{{Date: date(2), Close: 1.2}},
	)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,EURUSD,GBPUSD\n2023-03-01,1.05,\n2023-03-02,1.06,1.2\n", string(data))
}

func TestWriteSpreads(t *testing.T) {
	a, err := domain.NewSpreadSeries(domain.SpreadTTFNBP, []domain.SpreadObservation{{Date: date(1), Value: 1.5}, {Date: date(2), Value: -2}})
	require.NoError(t, err)
	b, err := domain.NewSpreadSeries(domain.SpreadTTFJKMNetback, []domain.SpreadObservation{{Date: date(1), Value: 3}, {Date: date(2), Value: 4.25}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), csvsource.SpreadsFile)
	require.NoError(t, csvsource.WriteSpreads(path, []domain.SpreadSeries{a, b}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,TTF_NBP,TTF_JKM_netback\n2023-03-01,1.5,3\n2023-03-02,-2,4.25\n", string(data))
}

func TestWriteSpreads_Misaligned(t *testing.T) {
	a, _ := domain.NewSpreadSeries("a", []domain.SpreadObservation{{Date: date(1)}, {Date: date(2)}})
	b, _ := domain.NewSpreadSeries("b", []domain.SpreadObservation{{Date: date(1)}})

	err := csvsource.WriteSpreads(filepath.Join(t.TempDir(), "s.csv"), []domain.SpreadSeries{a, b})
	assert.Error(t, err)
}

func TestWritePrices(t *testing.T) {
	path := filepath.Join(t.TempDir(), csvsource.CleanPricesFile)
	require.NoError(t, csvsource.WritePrices(path, []domain.PriceRow{{Date: date(1), TTF: 40, NBP: 300, JKM: 11, EURUSD: 1.05, GBPUSD: 1.2}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,TTF,NBP,JKM,EURUSD,GBPUSD\n2023-03-01,40,300,11,1.05,1.2\n", string(data))
}
