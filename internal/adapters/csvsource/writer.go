package csvsource

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/k9kanishk/gas-spread-arb/internal/domain"
)

const (
	CleanPricesFile = "clean_prices.csv"
	SpreadsFile     = "spreads.csv"
)

// WriteSeries escribe cierres descargados como Date,Price, legible por LoadPrices.
func WriteSeries(path string, points []domain.PricePoint) error {
	records := make([][]string, 0, len(points)+1)
	records = append(records, []string{"Date", priceColumn})
	for _, p := range points {
		records = append(records, []string{p.Date.Format(domain.DateLayout), formatFloat(p.Close)})
	}
	if err := writeFile(path, records); err != nil {
		return fmt.Errorf("csvsource.WriteSeries: %w", err)
	}
	return nil
}

// WriteFX escribe las dos series FX unidas por fecha (outer join). Las fechas
// que faltan en un lado quedan vacías.
func WriteFX(path string, eurusd, gbpusd []domain.PricePoint) error {
	byDate := make(map[time.Time][2]string)
	for _, p := range eurusd {
		v := byDate[p.Date]
		v[0] = formatFloat(p.Close)
		byDate[p.Date] = v
	}
	for _, p := range gbpusd {
		v := byDate[p.Date]
		v[1] = formatFloat(p.Close)
		byDate[p.Date] = v
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	records := [][]string{{"Date", "EURUSD", "GBPUSD"}}
	for _, d := range dates {
		v := byDate[d]
		records = append(records, []string{d.Format(domain.DateLayout), v[0], v[1]})
	}
	if err := writeFile(path, records); err != nil {
		return fmt.Errorf("csvsource.WriteFX: %w", err)
	}
	return nil
}

// WritePrices escribe la tabla alineada.
func WritePrices(path string, rows []domain.PriceRow) error {
	records := [][]string{{"Date", "TTF", "NBP", "JKM", "EURUSD", "GBPUSD"}}
	for _, r := range rows {
		records = append(records, []string{
			r.Date.Format(domain.DateLayout),
			formatFloat(r.TTF), formatFloat(r.NBP), formatFloat(r.JKM),
			formatFloat(r.EURUSD), formatFloat(r.GBPUSD),
		})
	}
	if err := writeFile(path, records); err != nil {
		return fmt.Errorf("csvsource.WritePrices: %w", err)
	}
	return nil
}

// WriteSpreads escribe los spreads en columnas. Todas las series deben compartir fechas.
func WriteSpreads(path string, spreads []domain.SpreadSeries) error {
	if len(spreads) == 0 {
		return fmt.Errorf("csvsource.WriteSpreads: no spreads")
	}
	n := spreads[0].Len()
	header := []string{"Date"}
	for _, s := range spreads {
		if s.Len() != n {
			return fmt.Errorf("csvsource.WriteSpreads: %s has %d rows, want %d", s.Name, s.Len(), n)
		}
		header = append(header, s.Name)
	}

	records := [][]string{header}
	for i := 0; i < n; i++ {
		date := spreads[0].Observations[i].Date
		rec := []string{date.Format(domain.DateLayout)}
		for _, s := range spreads {
			if !s.Observations[i].Date.Equal(date) {
				return fmt.Errorf("csvsource.WriteSpreads: %s is not aligned at row %d", s.Name, i)
			}
			rec = append(rec, formatFloat(s.Observations[i].Value))
		}
		records = append(records, rec)
	}
	if err := writeFile(path, records); err != nil {
		return fmt.Errorf("csvsource.WriteSpreads: %w", err)
	}
	return nil
}

func writeFile(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
