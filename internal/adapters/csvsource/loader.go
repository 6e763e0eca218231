// Package csvsource lee los CSV de precios crudos y escribe los datasets procesados.
//
// Estructura esperada en el directorio raw:
//
//	ttf_prices.csv  Date + precio en EUR/MWh
//	nbp_prices.csv  Date + precio en pence/therm
//	jkm_prices.csv  Date + precio en USD/MMBtu
//	fx_rates.csv    Date, EURUSD, GBPUSD (USD por unidad)
//
// Los archivos de precio usan la columna "Price" si existe, si no la primera
// columna que no es fecha.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/k9kanishk/gas-spread-arb/internal/domain"
)

const (
	TTFFile = "ttf_prices.csv"
	NBPFile = "nbp_prices.csv"
	JKMFile = "jkm_prices.csv"
	FXFile  = "fx_rates.csv"

	dateColumn  = "date"
	priceColumn = "Price"
)

// orden de columnas en la tabla unida
const (
	colTTF = iota
	colNBP
	colJKM
	colEURUSD
	colGBPUSD
	numCols
)

// dated es una muestra (fecha, valor) ya parseada.
type dated struct {
	date  time.Time
	value float64
}

// LoadPrices lee los cuatro archivos crudos de dir y los alinea en un índice
// diario común. La unión de fechas se ordena, los huecos se rellenan hacia
// adelante y se descartan las filas iniciales a las que aún les falta algo.
func LoadPrices(dir string) ([]domain.PriceRow, error) {
	ttf, err := loadPriceSeries(filepath.Join(dir, TTFFile))
	if err != nil {
		return nil, fmt.Errorf("csvsource.LoadPrices: %w", err)
	}
	nbp, err := loadPriceSeries(filepath.Join(dir, NBPFile))
	if err != nil {
		return nil, fmt.Errorf("csvsource.LoadPrices: %w", err)
	}
	jkm, err := loadPriceSeries(filepath.Join(dir, JKMFile))
	if err != nil {
		return nil, fmt.Errorf("csvsource.LoadPrices: %w", err)
	}
	fx, err := loadColumns(filepath.Join(dir, FXFile), "EURUSD", "GBPUSD")
	if err != nil {
		return nil, fmt.Errorf("csvsource.LoadPrices: %w", err)
	}

	rows := align([numCols][]dated{ttf, nbp, jkm, fx[0], fx[1]})
	slog.Debug("raw prices aligned",
		"ttf", len(ttf), "nbp", len(nbp), "jkm", len(jkm), "fx", len(fx[0]),
		"rows", len(rows),
	)
	return rows, nil
}

// loadPriceSeries lee un archivo Date + precio.
func loadPriceSeries(path string) ([]dated, error) {
	header, records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	dateIdx, err := dateIndex(path, header)
	if err != nil {
		return nil, err
	}

	valueIdx := indexOf(header, priceColumn)
	if valueIdx < 0 {
		for i := range header {
			if i != dateIdx {
				valueIdx = i
				break
			}
		}
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("%s: no price column found, expected %q or any non-date column", path, priceColumn)
	}

	return parseColumn(path, records, dateIdx, valueIdx)
}

// loadColumns lee las columnas pedidas de un archivo indexado por Date.
// Todas deben existir.
func loadColumns(path string, names ...string) ([][]dated, error) {
	header, records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	dateIdx, err := dateIndex(path, header)
	if err != nil {
		return nil, err
	}

	out := make([][]dated, len(names))
	for i, name := range names {
		idx := indexOf(header, name)
		if idx < 0 {
			return nil, fmt.Errorf("%s: must contain columns %s", path, strings.Join(names, ", "))
		}
		if out[i], err = parseColumn(path, records, dateIdx, idx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readAll(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("expected CSV not found: %s", path)
		}
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("%s: empty file", path)
		}
		return nil, nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return header, records, nil
}

func dateIndex(path string, header []string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), dateColumn) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s: no Date column", path)
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// parseColumn extrae pares (fecha, valor). Las filas cuya fecha no parsea
// (p.ej. las filas de ticker que añaden las descargas nuevas) se saltan; las
// celdas vacías cuentan como faltantes y se rellenan después.
func parseColumn(path string, records [][]string, dateIdx, valueIdx int) ([]dated, error) {
	out := make([]dated, 0, len(records))
	skipped := 0
	for line, rec := range records {
		if dateIdx >= len(rec) {
			skipped++
			continue
		}
		date, ok := parseDate(rec[dateIdx])
		if !ok {
			skipped++
			continue
		}
		if valueIdx >= len(rec) {
			continue
		}
		cell := strings.TrimSpace(rec[valueIdx])
		if cell == "" || strings.EqualFold(cell, "nan") {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: parse %q: %w", path, line+2, cell, err)
		}
		out = append(out, dated{date: date, value: v})
	}
	if skipped > 0 {
		slog.Warn("skipped rows without a valid date", "file", path, "rows", skipped)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].date.Before(out[j].date) })
	return out, nil
}

// parseDate acepta fechas y fecha-hora; solo se conserva el día.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(domain.DateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(domain.DateLayout, s[:len(domain.DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// align hace outer join de las columnas por fecha, rellena hacia adelante y
// descarta la cabeza incompleta. Una fecha repetida en una columna gana la última.
func align(cols [numCols][]dated) []domain.PriceRow {
	byDate := make(map[time.Time]*[numCols]float64)
	for c, series := range cols {
		for _, d := range series {
			vals, ok := byDate[d.date]
			if !ok {
				vals = new([numCols]float64)
				for i := range vals {
					vals[i] = math.NaN()
				}
				byDate[d.date] = vals
			}
			vals[c] = d.value
		}
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var last [numCols]float64
	for i := range last {
		last[i] = math.NaN()
	}

	rows := make([]domain.PriceRow, 0, len(dates))
	for _, d := range dates {
		complete := true
		for c, v := range byDate[d] {
			if !math.IsNaN(v) {
				last[c] = v
			}
			if math.IsNaN(last[c]) {
				complete = false
			}
		}
		if !complete {
			continue
		}
		rows = append(rows, domain.PriceRow{
			Date:   d,
			TTF:    last[colTTF],
			NBP:    last[colNBP],
			JKM:    last[colJKM],
			EURUSD: last[colEURUSD],
			GBPUSD: last[colGBPUSD],
		})
	}
	return rows
}
