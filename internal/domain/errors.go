package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels para errors.Is. Los tipos concretos de abajo hacen Unwrap a ellos.
var (
	ErrInsufficientData   = errors.New("insufficient data")
	ErrConfiguration      = errors.New("invalid configuration")
	ErrInvariantViolation = errors.New("invariant violation")
)

// InsufficientDataError: la serie es demasiado corta para ajustar.
// Recuperable: el caller puede ampliar la ventana o saltar el spread.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: have %d observations, need %d", e.Have, e.Need)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// ConfigurationError rechaza parámetros inválidos al arrancar. Nunca se recortan valores.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// InvariantViolationError señala un contrato roto aguas arriba, p.ej. fechas
// desordenadas o duplicadas que llegan al simulador. No recuperable.
type InvariantViolationError struct {
	Index  int
	Date   time.Time
	Reason string
}

func (e *InvariantViolationError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("invariant violation at index %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("invariant violation at index %d (%s): %s",
		e.Index, e.Date.Format(DateLayout), e.Reason)
}

func (e *InvariantViolationError) Unwrap() error { return ErrInvariantViolation }

// NonStationaryWarning marca un ajuste con phi >= 1. Es informativo: el ajuste
// devuelve parámetros igualmente y el caller decide qué hacer.
type NonStationaryWarning struct {
	Phi float64
}

func (w NonStationaryWarning) String() string {
	return fmt.Sprintf("non-stationary AR(1) estimate: phi=%.4f >= 1", w.Phi)
}
