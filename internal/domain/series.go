package domain

import "time"

// DateLayout es el formato de fecha de los CSV, la DB y los reportes.
const DateLayout = "2006-01-02"

// SpreadObservation es un valor del spread en EUR/MWh con su fecha.
type SpreadObservation struct {
	Date  time.Time
	Value float64
}

// SpreadSeries es la serie ordenada de un spread, normalizada a EUR/MWh.
// Las fechas deben ser estrictamente crecientes; ver Validate.
type SpreadSeries struct {
	Name         string
	Observations []SpreadObservation
}

// NewSpreadSeries construye una serie y comprueba el orden de fechas.
func NewSpreadSeries(name string, obs []SpreadObservation) (SpreadSeries, error) {
	s := SpreadSeries{Name: name, Observations: obs}
	if err := s.Validate(); err != nil {
		return SpreadSeries{}, err
	}
	return s, nil
}

// Validate devuelve un InvariantViolationError en la primera fecha que no es
// estrictamente posterior a la anterior.
func (s SpreadSeries) Validate() error {
	for i := 1; i < len(s.Observations); i++ {
		prev, cur := s.Observations[i-1].Date, s.Observations[i].Date
		switch {
		case cur.Equal(prev):
			return &InvariantViolationError{Index: i, Date: cur, Reason: "duplicate date"}
		case cur.Before(prev):
			return &InvariantViolationError{Index: i, Date: cur, Reason: "dates not increasing"}
		}
	}
	return nil
}

// Len devuelve el número de observaciones.
func (s SpreadSeries) Len() int {
	return len(s.Observations)
}

// Values devuelve los valores del spread en orden de fecha.
func (s SpreadSeries) Values() []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Value
	}
	return out
}

// Tail devuelve las n observaciones más recientes. Con n <= 0 o n >= Len devuelve s.
func (s SpreadSeries) Tail(n int) SpreadSeries {
	if n <= 0 || n >= len(s.Observations) {
		return s
	}
	return SpreadSeries{Name: s.Name, Observations: s.Observations[len(s.Observations)-n:]}
}

// Start devuelve la primera fecha, o zero time si la serie está vacía.
func (s SpreadSeries) Start() time.Time {
	if len(s.Observations) == 0 {
		return time.Time{}
	}
	return s.Observations[0].Date
}

// End devuelve la última fecha, o zero time si la serie está vacía.
func (s SpreadSeries) End() time.Time {
	if len(s.Observations) == 0 {
		return time.Time{}
	}
	return s.Observations[len(s.Observations)-1].Date
}
