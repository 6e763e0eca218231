package domain

import (
	"iter"
	"math"
	"time"
)

// Action es la instrucción emitida para una fecha.
type Action string

const (
	ActionEnterLong  Action = "ENTER_LONG"
	ActionEnterShort Action = "ENTER_SHORT"
	ActionExit       Action = "EXIT"
	ActionHold       Action = "HOLD"
)

// PositionStatus es el estado de la única posición de un run.
type PositionStatus string

const (
	StatusFlat  PositionStatus = "FLAT"
	StatusLong  PositionStatus = "LONG"
	StatusShort PositionStatus = "SHORT"
)

// Sign devuelve +1 para LONG, −1 para SHORT y 0 para FLAT.
func (s PositionStatus) Sign() float64 {
	switch s {
	case StatusLong:
		return 1
	case StatusShort:
		return -1
	default:
		return 0
	}
}

// Signal es la acción decidida para una fecha observada.
type Signal struct {
	Date   time.Time
	Z      float64
	Action Action
}

// NextAction es la máquina de estados con histéresis: con el estado actual y
// el z-score del día devuelve la acción y el estado resultante.
// Los umbrales son inclusivos. Un z indefinido siempre mantiene (HOLD).
func NextAction(status PositionStatus, z float64, cfg SignalConfig) (Action, PositionStatus) {
	if math.IsNaN(z) {
		return ActionHold, status
	}

	switch status {
	case StatusFlat:
		switch {
		case z >= cfg.EnterThreshold:
			return ActionEnterShort, StatusShort
		case z <= -cfg.EnterThreshold:
			return ActionEnterLong, StatusLong
		}
	case StatusLong:
		if math.Abs(z) <= cfg.ExitThreshold || (cfg.ExitOnZeroCross && z >= 0) {
			return ActionExit, StatusFlat
		}
	case StatusShort:
		if math.Abs(z) <= cfg.ExitThreshold || (cfg.ExitOnZeroCross && z <= 0) {
			return ActionExit, StatusFlat
		}
	}
	return ActionHold, status
}

// GenerateSignals recorre los z-scores en orden de fecha y emite exactamente
// una Signal por observación de series, partiendo de prior. Devuelve las
// señales y el estado tras la última fecha.
//
// zscores debe estar alineado 1:1 con series; cualquier desajuste de fecha o
// longitud es un InvariantViolationError.
func GenerateSignals(
	series SpreadSeries,
	zscores iter.Seq[ZScore],
	cfg SignalConfig,
	prior PositionStatus,
) ([]Signal, PositionStatus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, prior, err
	}
	if prior == "" {
		prior = StatusFlat
	}

	obs := series.Observations
	signals := make([]Signal, 0, len(obs))
	status := prior

	i := 0
	for z := range zscores {
		if i >= len(obs) {
			return nil, prior, &InvariantViolationError{Index: i, Date: z.Date, Reason: "more z-scores than observations"}
		}
		if !z.Date.Equal(obs[i].Date) {
			return nil, prior, &InvariantViolationError{Index: i, Date: z.Date, Reason: "z-score date does not match observation"}
		}

		var action Action
		action, status = NextAction(status, z.Value, cfg)
		signals = append(signals, Signal{Date: z.Date, Z: z.Value, Action: action})
		i++
	}
	if i != len(obs) {
		return nil, prior, &InvariantViolationError{Index: i, Reason: "fewer z-scores than observations"}
	}

	return signals, status, nil
}
