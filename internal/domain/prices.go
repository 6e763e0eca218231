package domain

import (
	"fmt"
	"time"
)

// Factores de conversión de energía.
const (
	ThermToMWh = 0.0293071
	MMBtuToMWh = 0.293071

	DefaultShippingCost = 3.0 // EUR/MWh, flete LNG para el netback JKM
)

// Nombres de los spreads que produce BuildSpreads.
const (
	SpreadTTFNBP        = "TTF_NBP"
	SpreadTTFJKMNetback = "TTF_JKM_netback"
)

// PriceRow es un día alineado de precios brutos por hub y FX.
//
//	TTF    EUR/MWh
//	NBP    pence/therm
//	JKM    USD/MMBtu
//	EURUSD USD por EUR
//	GBPUSD USD por GBP
type PriceRow struct {
	Date   time.Time
	TTF    float64
	NBP    float64
	JKM    float64
	EURUSD float64
	GBPUSD float64
}

// NormalizedRow tiene los tres hubs en EUR/MWh.
type NormalizedRow struct {
	Date time.Time
	TTF  float64
	NBP  float64
	JKM  float64
}

// NormalizeToEURMWh convierte cada fila a EUR/MWh.
//
//	NBP: p/th ÷ 100 → GBP/th ÷ ThermToMWh → GBP/MWh × (GBPUSD/EURUSD) → EUR/MWh
//	JKM: USD/MMBtu ÷ EURUSD → EUR/MMBtu ÷ MMBtuToMWh → EUR/MWh
func NormalizeToEURMWh(rows []PriceRow) ([]NormalizedRow, error) {
	out := make([]NormalizedRow, 0, len(rows))
	for i, r := range rows {
		if r.EURUSD <= 0 || r.GBPUSD <= 0 {
			return nil, fmt.Errorf("domain.NormalizeToEURMWh: row %d (%s): non-positive FX rate",
				i, r.Date.Format(DateLayout))
		}
		gbpToEUR := r.GBPUSD / r.EURUSD
		out = append(out, NormalizedRow{
			Date: r.Date,
			TTF:  r.TTF,
			NBP:  r.NBP / 100.0 / ThermToMWh * gbpToEUR,
			JKM:  r.JKM / r.EURUSD / MMBtuToMWh,
		})
	}
	return out, nil
}

// BuildSpreads construye las series TTF−NBP y TTF−(JKM + flete).
func BuildSpreads(rows []NormalizedRow, shippingCost float64) ([]SpreadSeries, error) {
	nbp := make([]SpreadObservation, 0, len(rows))
	jkm := make([]SpreadObservation, 0, len(rows))
	for _, r := range rows {
		nbp = append(nbp, SpreadObservation{Date: r.Date, Value: r.TTF - r.NBP})
		jkm = append(jkm, SpreadObservation{Date: r.Date, Value: r.TTF - (r.JKM + shippingCost)})
	}

	ttfNBP, err := NewSpreadSeries(SpreadTTFNBP, nbp)
	if err != nil {
		return nil, fmt.Errorf("domain.BuildSpreads: %s: %w", SpreadTTFNBP, err)
	}
	ttfJKM, err := NewSpreadSeries(SpreadTTFJKMNetback, jkm)
	if err != nil {
		return nil, fmt.Errorf("domain.BuildSpreads: %s: %w", SpreadTTFJKMNetback, err)
	}
	return []SpreadSeries{ttfNBP, ttfJKM}, nil
}
