package ports

import (
	"context"
	"time"

	"github.com/k9kanishk/gas-spread-arb/internal/domain"
)

// PriceProvider descarga cierres diarios de un ticker.
type PriceProvider interface {
	// FetchDaily devuelve cierres desde start (inclusive) hasta hoy, del más antiguo al más reciente.
	FetchDaily(ctx context.Context, ticker string, start time.Time) ([]domain.PricePoint, error)
}
