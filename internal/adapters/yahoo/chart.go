package yahoo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"

	"github.com/k9kanishk/gas-spread-arb/internal/domain"
)

const chartPath = "/v8/finance/chart/"

// FetchDaily devuelve los cierres diarios de ticker desde start hasta hoy,
// ordenados por fecha. Usa el cierre ajustado cuando la API lo trae.
// Las barras sin cierre (null) se descartan; si la API repite una fecha
// (barra intradía del día en curso) gana la última.
func (c *Client) FetchDaily(ctx context.Context, ticker string, start time.Time) ([]domain.PricePoint, error) {
	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", time.Now().Unix()))
	q.Set("interval", "1d")
	q.Set("events", "history")
	endpoint := c.base + chartPath + url.PathEscape(ticker) + "?" + q.Encode()

	var resp chartResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("yahoo.FetchDaily %s: %w", ticker, err)
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo.FetchDaily %s: %s: %s", ticker, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo.FetchDaily %s: empty result", ticker)
	}

	points := toPricePoints(resp.Chart.Result[0])
	slog.Debug("chart downloaded", "ticker", ticker, "bars", len(points))
	return points, nil
}

// toPricePoints convierte una serie de chart en cierres diarios.
func toPricePoints(r chartResult) []domain.PricePoint {
	closes := pickCloses(r)
	out := make([]domain.PricePoint, 0, len(r.Timestamp))

	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		v := *closes[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		date := barDate(ts, r.Meta.GMTOffset)

		if n := len(out); n > 0 && out[n-1].Date.Equal(date) {
			out[n-1].Close = v
			continue
		}
		out = append(out, domain.PricePoint{Date: date, Close: v})
	}
	return out
}

func pickCloses(r chartResult) []*float64 {
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) > 0 {
		return r.Indicators.AdjClose[0].AdjClose
	}
	if len(r.Indicators.Quote) > 0 {
		return r.Indicators.Quote[0].Close
	}
	return nil
}

// barDate lleva el timestamp a la fecha local de la bolsa, a medianoche UTC.
func barDate(ts, gmtOffset int64) time.Time {
	t := time.Unix(ts+gmtOffset, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
