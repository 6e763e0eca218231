package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/k9kanishk/gas-spread-arb/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del backtester.
type Config struct {
	Strategy StrategyConfig `yaml:"strategy"`
	Spreads  SpreadsConfig  `yaml:"spreads"`
	Data     DataConfig     `yaml:"data"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Runner   RunnerConfig   `yaml:"runner"`
	Log      LogConfig      `yaml:"log"`
}

// StrategyConfig controla el modelo, las señales y los costes.
type StrategyConfig struct {
	MinFitWindow        int     `yaml:"min_fit_window"`
	FitWindow           int     `yaml:"fit_window"` // 0 = toda la serie
	ZMode               string  `yaml:"z_mode"`     // residual | rolling
	RollingWindow       int     `yaml:"rolling_window"`
	EnterThreshold      float64 `yaml:"enter_threshold"`
	ExitThreshold       float64 `yaml:"exit_threshold"`
	ExitOnZeroCross     bool    `yaml:"exit_on_zero_cross"`
	EntryCost           float64 `yaml:"entry_cost"` // EUR/MWh por pierna
	ExitCost            float64 `yaml:"exit_cost"`
	ChargeForcedClose   bool    `yaml:"charge_forced_close"`
	AnnualizationFactor float64 `yaml:"annualization_factor"` // 0 = sqrt(252)
}

// SpreadsConfig controla la construcción de los spreads.
type SpreadsConfig struct {
	ShippingCost float64  `yaml:"shipping_cost"` // EUR/MWh, netback JKM
	Names        []string `yaml:"names"`         // vacío = todos
}

// DataConfig indica dónde están los CSV y qué tickers descargar.
type DataConfig struct {
	RawDir       string        `yaml:"raw_dir"`
	ProcessedDir string        `yaml:"processed_dir"`
	StartDate    string        `yaml:"start_date"` // YYYY-MM-DD, solo para -fetch
	Tickers      TickersConfig `yaml:"tickers"`
}

// TickersConfig son los símbolos de Yahoo Finance. Vacío = no se descarga.
type TickersConfig struct {
	TTF    string `yaml:"ttf"`
	NBP    string `yaml:"nbp"`
	JKM    string `yaml:"jkm"`
	EURUSD string `yaml:"eurusd"`
	GBPUSD string `yaml:"gbpusd"`
}

// APIConfig contiene el base URL y el rate limit de la API de precios.
type APIConfig struct {
	YahooBase  string  `yaml:"yahoo_base"`
	RatePerSec float64 `yaml:"rate_per_sec"`
}

// StorageConfig controla dónde se persisten los runs.
type StorageConfig struct {
	DSN           string `yaml:"dsn"`            // ruta al archivo SQLite, o ":memory:"
	RetentionDays int    `yaml:"retention_days"` // 0 = conservar todo
}

// RunnerConfig controla la ejecución en paralelo.
type RunnerConfig struct {
	Workers int `yaml:"workers"` // 0 = NumCPU
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default devuelve la configuración de referencia. Load parte de ella, así
// que las keys ausentes del YAML conservan estos valores y un 0 explícito
// (p.ej. exit_threshold: 0) se respeta.
func Default() Config {
	d := domain.DefaultStrategyConfig()
	return Config{
		Strategy: StrategyConfig{
			MinFitWindow:        d.Model.MinFitWindow,
			ZMode:               string(d.Score.Mode),
			RollingWindow:       d.Score.RollingWindow,
			EnterThreshold:      d.Signal.EnterThreshold,
			ExitThreshold:       d.Signal.ExitThreshold,
			EntryCost:           d.Costs.EntryCost,
			ExitCost:            d.Costs.ExitCost,
			ChargeForcedClose:   d.Costs.ChargeForcedClose,
			AnnualizationFactor: d.AnnualizationFactor,
		},
		Spreads: SpreadsConfig{ShippingCost: domain.DefaultShippingCost},
		Data: DataConfig{
			RawDir:       "data/raw",
			ProcessedDir: "data/processed",
			StartDate:    "2018-01-01",
			Tickers: TickersConfig{
				TTF:    "TTF=F",
				NBP:    "E2X16.NYM",
				EURUSD: "EURUSD=X",
				GBPUSD: "GBPUSD=X",
			},
		},
	}
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// DomainStrategy convierte la sección strategy en la config inmutable del dominio.
// No valida: eso lo hace domain.StrategyConfig.Validate.
func (c *Config) DomainStrategy() domain.StrategyConfig {
	s := c.Strategy
	ann := s.AnnualizationFactor
	if ann == 0 {
		ann = math.Sqrt(domain.TradingDaysPerYear)
	}
	return domain.StrategyConfig{
		Model: domain.ModelConfig{MinFitWindow: s.MinFitWindow, FitWindow: s.FitWindow},
		Score: domain.ScoreConfig{Mode: domain.ZMode(s.ZMode), RollingWindow: s.RollingWindow},
		Signal: domain.SignalConfig{
			EnterThreshold:  s.EnterThreshold,
			ExitThreshold:   s.ExitThreshold,
			ExitOnZeroCross: s.ExitOnZeroCross,
		},
		Costs: domain.CostConfig{
			EntryCost:         s.EntryCost,
			ExitCost:          s.ExitCost,
			ChargeForcedClose: s.ChargeForcedClose,
		},
		AnnualizationFactor: ann,
	}
}

// StartDate devuelve data.start_date como fecha.
func (c *Config) StartDate() (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, c.Data.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("config.StartDate: %w", err)
	}
	return t, nil
}

// Retention devuelve la antigüedad máxima de los runs guardados; 0 = sin límite.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Storage.RetentionDays) * 24 * time.Hour
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SPREADARB_DB_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("SPREADARB_DATA_DIR"); v != "" {
		cfg.Data.RawDir = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Strategy.ZMode == "" {
		cfg.Strategy.ZMode = string(domain.ZModeResidual)
	}
	if cfg.Data.RawDir == "" {
		cfg.Data.RawDir = "data/raw"
	}
	if cfg.Data.ProcessedDir == "" {
		cfg.Data.ProcessedDir = "data/processed"
	}
	if cfg.API.YahooBase == "" {
		cfg.API.YahooBase = "https://query1.finance.yahoo.com"
	}
	if cfg.API.RatePerSec <= 0 {
		cfg.API.RatePerSec = 2
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "spreadarb.db"
	}
	if cfg.Runner.Workers < 0 {
		cfg.Runner.Workers = 0
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
