package domain

import "time"

// Position es la posición viva de un backtest. Solo la toca el simulador.
type Position struct {
	Status     PositionStatus
	EntryDate  time.Time
	EntryValue float64
	EntryCost  float64 // coste cobrado al abrir
}

// Open indica si la posición es LONG o SHORT.
func (p Position) Open() bool {
	return p.Status == StatusLong || p.Status == StatusShort
}

// Trade es una operación cerrada (ida y vuelta). Se crea una vez y va al trade log.
type Trade struct {
	EntryDate   time.Time
	ExitDate    time.Time
	EntryValue  float64
	ExitValue   float64
	Direction   PositionStatus // LONG o SHORT
	GrossPnL    float64        // sign × (exit − entry)
	Costs       float64        // coste de entrada + salida
	NetPnL      float64        // GrossPnL − Costs
	HoldingBars int            // observaciones entre entrada y salida
	ForcedClose bool           // cerrado por fin de serie, no por señal
}

// Won indica si el trade ganó dinero tras costes.
func (t Trade) Won() bool {
	return t.NetPnL > 0
}

// EquityPoint es una fila del ledger diario.
//
//	CumulativePnL_t = CumulativePnL_{t-1} + MarkToMarket_t − Costs_t
type EquityPoint struct {
	Date          time.Time
	Value         float64        // valor del spread en Date
	Position      PositionStatus // estado al cierre del día
	MarkToMarket  float64
	Costs         float64
	CumulativePnL float64
}

// BacktestResult es la salida del simulador para un spread.
type BacktestResult struct {
	Equity []EquityPoint
	Trades []Trade
}

// FinalPnL devuelve el último acumulado, 0 si la curva está vacía.
func (r BacktestResult) FinalPnL() float64 {
	if len(r.Equity) == 0 {
		return 0
	}
	return r.Equity[len(r.Equity)-1].CumulativePnL
}
