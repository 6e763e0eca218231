package domain

import "math"

// ZMode elige el denominador del z-score.
type ZMode string

const (
	ZModeResidual ZMode = "residual" // sigma residual del ajuste, constante
	ZModeRolling  ZMode = "rolling"  // std muestral móvil, varía en el tiempo
)

// Valores por defecto, los mismos del dashboard de investigación.
const (
	DefaultMinFitWindow   = 60
	DefaultEnterThreshold = 2.0
	DefaultExitThreshold  = 0.5
	DefaultRollingWindow  = 20
	DefaultEntryCost      = 0.02
	DefaultExitCost       = 0.02
	TradingDaysPerYear    = 252
)

// ModelConfig controla el ajuste AR(1).
type ModelConfig struct {
	MinFitWindow int // observaciones mínimas para ajustar
	FitWindow    int // ajustar con las últimas N observaciones; 0 = toda la serie
}

// ScoreConfig controla la estandarización del z-score.
type ScoreConfig struct {
	Mode          ZMode
	RollingWindow int // solo para ZModeRolling
}

// SignalConfig es la banda de histéresis. La salida debe ser estrictamente
// más estrecha que la entrada.
type SignalConfig struct {
	EnterThreshold  float64
	ExitThreshold   float64
	ExitOnZeroCross bool // salir también cuando z cruza cero
}

// CostConfig son los costes fijos por pata, en EUR/MWh.
type CostConfig struct {
	EntryCost         float64
	ExitCost          float64
	ChargeForcedClose bool // cobrar ExitCost en el cierre forzado al final de la serie
}

// StrategyConfig es la configuración inmutable de un backtest.
// Se pasa por valor a cada componente; los runs en paralelo no comparten estado.
type StrategyConfig struct {
	Model               ModelConfig
	Score               ScoreConfig
	Signal              SignalConfig
	Costs               CostConfig
	AnnualizationFactor float64
}

// DefaultStrategyConfig devuelve la configuración de referencia.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Model: ModelConfig{MinFitWindow: DefaultMinFitWindow},
		Score: ScoreConfig{Mode: ZModeResidual, RollingWindow: DefaultRollingWindow},
		Signal: SignalConfig{
			EnterThreshold: DefaultEnterThreshold,
			ExitThreshold:  DefaultExitThreshold,
		},
		Costs: CostConfig{
			EntryCost:         DefaultEntryCost,
			ExitCost:          DefaultExitCost,
			ChargeForcedClose: true,
		},
		AnnualizationFactor: math.Sqrt(TradingDaysPerYear),
	}
}

// Validate revisa cada sección y devuelve el primer ConfigurationError.
func (c StrategyConfig) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if err := c.Score.Validate(); err != nil {
		return err
	}
	if err := c.Signal.Validate(); err != nil {
		return err
	}
	if err := c.Costs.Validate(); err != nil {
		return err
	}
	if !(c.AnnualizationFactor > 0) || math.IsInf(c.AnnualizationFactor, 0) {
		return &ConfigurationError{Field: "annualization_factor", Reason: "must be a positive finite number"}
	}
	return nil
}

// Validate revisa las ventanas de ajuste. Cuatro observaciones dan tres
// pares, el mínimo que deja un grado de libertad residual tras pendiente e
// intercepto.
func (c ModelConfig) Validate() error {
	if c.MinFitWindow < 4 {
		return &ConfigurationError{Field: "min_fit_window", Reason: "must be at least 4"}
	}
	if c.FitWindow < 0 {
		return &ConfigurationError{Field: "fit_window", Reason: "must not be negative"}
	}
	if c.FitWindow > 0 && c.FitWindow < c.MinFitWindow {
		return &ConfigurationError{Field: "fit_window", Reason: "must be 0 or >= min_fit_window"}
	}
	return nil
}

func (c ScoreConfig) Validate() error {
	switch c.Mode {
	case ZModeResidual:
		return nil
	case ZModeRolling:
		if c.RollingWindow < 2 {
			return &ConfigurationError{Field: "rolling_window", Reason: "must be at least 2 in rolling mode"}
		}
		return nil
	default:
		return &ConfigurationError{Field: "z_mode", Reason: "unknown mode " + string(c.Mode)}
	}
}

func (c SignalConfig) Validate() error {
	if !(c.EnterThreshold > 0) || math.IsInf(c.EnterThreshold, 0) {
		return &ConfigurationError{Field: "enter_threshold", Reason: "must be a positive finite number"}
	}
	if !(c.ExitThreshold >= 0) {
		return &ConfigurationError{Field: "exit_threshold", Reason: "must not be negative"}
	}
	if c.ExitThreshold >= c.EnterThreshold {
		return &ConfigurationError{Field: "exit_threshold", Reason: "must be strictly below enter_threshold"}
	}
	return nil
}

func (c CostConfig) Validate() error {
	if !(c.EntryCost >= 0) || math.IsInf(c.EntryCost, 0) {
		return &ConfigurationError{Field: "entry_cost", Reason: "must be a non-negative finite number"}
	}
	if !(c.ExitCost >= 0) || math.IsInf(c.ExitCost, 0) {
		return &ConfigurationError{Field: "exit_cost", Reason: "must be a non-negative finite number"}
	}
	return nil
}
