package ports

import (
	"context"

	"github.com/k9kanishk/gas-spread-arb/internal/domain"
)

// Reporter presenta los resultados de los backtests al usuario.
type Reporter interface {
	// Report muestra parámetros y métricas de cada spread, y los errores
	// de los spreads que no pudieron correr.
	Report(ctx context.Context, outcomes []domain.RunOutcome) error
}
