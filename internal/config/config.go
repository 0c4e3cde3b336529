package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Estimate EstimateConfig `yaml:"estimate" mapstructure:"estimate"`
	Risk     RiskConfig     `yaml:"risk" mapstructure:"risk"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`

	ConnectAttempts int `yaml:"connect_attempts" mapstructure:"connect_attempts"`
}

// EstimateConfig configures the financial estimate fallback.
type EstimateConfig struct {
	// Prices maps a commodity key to its benchmark price per unit
	// ($/bbl for oil, $/mcf for gas, $/ton for mining).
	Prices map[string]float64 `yaml:"prices" mapstructure:"prices"`
	// OperatingCostRatio is the share of revenue assumed as lifting cost.
	OperatingCostRatio float64 `yaml:"operating_cost_ratio" mapstructure:"operating_cost_ratio"`
	HistoryMonths      int     `yaml:"history_months" mapstructure:"history_months"`
	PersistComputed    bool    `yaml:"persist_computed" mapstructure:"persist_computed"`
}

// RiskConfig holds the per-factor caps and saturation points of the risk
// score. Each factor scales linearly from zero at no risk to its weight at
// saturation, then stays flat.
type RiskConfig struct {
	DeclineWeight     float64 `json:"decline_weight" yaml:"decline_weight" mapstructure:"decline_weight"`
	DeclineSaturation float64 `json:"decline_saturation" yaml:"decline_saturation" mapstructure:"decline_saturation"` // fractional annual decline

	ComplianceWeight     float64 `json:"compliance_weight" yaml:"compliance_weight" mapstructure:"compliance_weight"`
	ComplianceSaturation float64 `json:"compliance_saturation" yaml:"compliance_saturation" mapstructure:"compliance_saturation"` // flag count

	AgeWeight          float64 `json:"age_weight" yaml:"age_weight" mapstructure:"age_weight"`
	AgeSaturationYears float64 `json:"age_saturation_years" yaml:"age_saturation_years" mapstructure:"age_saturation_years"`

	WaterCutWeight     float64 `json:"water_cut_weight" yaml:"water_cut_weight" mapstructure:"water_cut_weight"`
	WaterCutSaturation float64 `json:"water_cut_saturation" yaml:"water_cut_saturation" mapstructure:"water_cut_saturation"` // percent
}

// BatchConfig configures portfolio processing.
type BatchConfig struct {
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ASSET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("store.connect_attempts", 5)
	v.SetDefault("estimate.prices", map[string]float64{
		"oil":    75.0,
		"gas":    3.50,
		"mining": 50.0,
	})
	v.SetDefault("estimate.operating_cost_ratio", 0.40)
	v.SetDefault("estimate.history_months", 24)
	v.SetDefault("estimate.persist_computed", false)
	v.SetDefault("risk.decline_weight", 30)
	v.SetDefault("risk.decline_saturation", 0.50)
	v.SetDefault("risk.compliance_weight", 25)
	v.SetDefault("risk.compliance_saturation", 5)
	v.SetDefault("risk.age_weight", 25)
	v.SetDefault("risk.age_saturation_years", 20)
	v.SetDefault("risk.water_cut_weight", 20)
	v.SetDefault("risk.water_cut_saturation", 80)
	v.SetDefault("batch.max_concurrency", 8)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration required by a command mode.
//
//	engine: estimate section (risk weights are checked by scorer.ValidateConfig)
//	store:  engine plus a usable store section
//	serve:  store plus server settings
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "engine":
		errs = c.engineProblems()
	case "store":
		errs = append(c.engineProblems(), c.storeProblems()...)
	case "serve":
		errs = append(c.engineProblems(), c.storeProblems()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Batch.MaxConcurrency < 1 || c.Batch.MaxConcurrency > 64 {
		errs = append(errs, "batch.max_concurrency must be between 1 and 64")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) storeProblems() []string {
	switch c.Store.Driver {
	case "postgres", "sqlite":
		if c.Store.DatabaseURL == "" {
			return []string{"store.database_url is required"}
		}
		return nil
	default:
		return []string{fmt.Sprintf("store.driver must be postgres or sqlite, got %q", c.Store.Driver)}
	}
}

func (c *Config) engineProblems() []string {
	var errs []string
	if _, ok := c.Estimate.Prices["oil"]; !ok {
		errs = append(errs, "estimate.prices must include an oil benchmark")
	}
	for k, p := range c.Estimate.Prices {
		if p < 0 {
			errs = append(errs, fmt.Sprintf("estimate.prices.%s must be >= 0", k))
		}
	}
	if c.Estimate.OperatingCostRatio < 0 || c.Estimate.OperatingCostRatio > 1 {
		errs = append(errs, "estimate.operating_cost_ratio must be between 0 and 1")
	}
	if c.Estimate.HistoryMonths < 1 {
		errs = append(errs, "estimate.history_months must be >= 1")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
