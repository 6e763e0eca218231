package domain

import "fmt"

// Optional es un float que puede no estar definido. Se usa donde "sin valor"
// no es lo mismo que cero, p.ej. la half-life de un ajuste sin reversión o el
// P&L medio de un trade log vacío.
type Optional struct {
	Value float64
	Valid bool
}

// Some envuelve un valor definido.
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// None es el valor indefinido.
func None() Optional {
	return Optional{}
}

// Or devuelve el valor, o def si no está definido.
func (o Optional) Or(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

// Format formatea el valor con verb, o "N/A".
func (o Optional) Format(verb string) string {
	if !o.Valid {
		return "N/A"
	}
	return fmt.Sprintf(verb, o.Value)
}

func (o Optional) String() string {
	return o.Format("%.4f")
}
