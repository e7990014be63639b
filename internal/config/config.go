// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/supplier-cli/internal/forecast"
	"github.com/sells-group/supplier-cli/internal/scorer"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Scoring   scorer.Config   `yaml:"scoring" mapstructure:"scoring"`
	Forecast  forecast.Config `yaml:"forecast" mapstructure:"forecast"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string      `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string      `yaml:"database_url" mapstructure:"database_url"`
	Pool        *PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional postgres pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings for mapping suggestions.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// IngestConfig configures column inference and normalization.
type IngestConfig struct {
	SampleSize            int     `yaml:"sample_size" mapstructure:"sample_size"`
	DateParseSuccessRatio float64 `yaml:"date_parse_success_ratio" mapstructure:"date_parse_success_ratio"`
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
	v.SetEnvPrefix("SUPPLIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "supplier.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("ingest.sample_size", 10)
	v.SetDefault("ingest.date_parse_success_ratio", 0.8)

	scoringDefaults := scorer.DefaultConfig()
	v.SetDefault("scoring.delay_weight", scoringDefaults.DelayWeight)
	v.SetDefault("scoring.delay_cap", scoringDefaults.DelayCap)
	v.SetDefault("scoring.defect_weight", scoringDefaults.DefectWeight)
	v.SetDefault("scoring.defect_cap", scoringDefaults.DefectCap)
	v.SetDefault("scoring.defect_rising_bonus", scoringDefaults.DefectRisingBonus)
	v.SetDefault("scoring.delay_rising_bonus", scoringDefaults.DelayRisingBonus)
	v.SetDefault("scoring.falling_discount", scoringDefaults.FallingDiscount)
	v.SetDefault("scoring.moderate_threshold", scoringDefaults.ModerateThreshold)
	v.SetDefault("scoring.high_threshold", scoringDefaults.HighThreshold)
	v.SetDefault("scoring.trend_threshold", scoringDefaults.TrendThreshold)
	v.SetDefault("scoring.inactive_days", scoringDefaults.InactiveDays)
	v.SetDefault("scoring.defect_action_pct", scoringDefaults.DefectActionPct)
	v.SetDefault("scoring.delay_action_days", scoringDefaults.DelayActionDays)

	forecastDefaults := forecast.DefaultConfig()
	v.SetDefault("forecast.window", forecastDefaults.Window)
	v.SetDefault("forecast.alpha", forecastDefaults.Alpha)
	v.SetDefault("forecast.disagreement_variance", forecastDefaults.DisagreementVariance)

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
