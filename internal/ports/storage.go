package ports

import (
	"context"
	"time"

	"github.com/k9kanishk/gas-spread-arb/internal/domain"
)

// RunStorage persiste los resultados de cada backtest.
type RunStorage interface {
	// SaveRun persiste parámetros, métricas, trade log y equity curve de un run.
	SaveRun(ctx context.Context, run domain.RunResult) error

	// GetRuns devuelve los runs registrados en el rango de tiempo dado,
	// los más recientes primero.
	GetRuns(ctx context.Context, from, to time.Time) ([]domain.RunSummary, error)

	// GetTrades devuelve el trade log de un run en orden de entrada.
	GetTrades(ctx context.Context, runID string) ([]domain.Trade, error)

	// GetEquity devuelve la equity curve de un run en orden de fecha.
	GetEquity(ctx context.Context, runID string) ([]domain.EquityPoint, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
