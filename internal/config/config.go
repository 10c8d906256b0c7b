package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.2
	DefaultTopP        = 0.9
	DefaultLogLevel    = "warn"
)

type Config struct {
	ModelID   string          `mapstructure:"model_id"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Inference InferenceConfig `mapstructure:"inference"`
	Doctor    DoctorConfig    `mapstructure:"doctor"`
	Log       LogConfig       `mapstructure:"log"`
}

type AWSConfig struct {
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
}

type InferenceConfig struct {
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
}

// DoctorConfig holds settings that only the diagnostic mode reads.
type DoctorConfig struct {
	ModelID string `mapstructure:"model_id"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Verbose bool   `mapstructure:"verbose"`
}

// SetDefaults registers the defaults Load falls back to when neither a flag,
// the environment nor a config file provides a value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("inference.max_tokens", DefaultMaxTokens)
	v.SetDefault("inference.temperature", DefaultTemperature)
	v.SetDefault("inference.top_p", DefaultTopP)
	v.SetDefault("log.level", DefaultLogLevel)
}

func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Inference.MaxTokens > math.MaxInt32 || c.Inference.MaxTokens < math.MinInt32 {
		return fmt.Errorf("invalid inference.max_tokens: %d", c.Inference.MaxTokens)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log.level: %s", c.Log.Level)
	}
}

// LogLevel resolves the effective log level; verbose always wins.
func (c Config) LogLevel() string {
	if c.Log.Verbose {
		return "debug"
	}
	if c.Log.Level == "" {
		return DefaultLogLevel
	}
	return strings.ToLower(c.Log.Level)
}

// ConventionWarnings lists inference values that the service may accept but
// that sit outside their usual ranges.
func (c InferenceConfig) ConventionWarnings() []string {
	var warnings []string
	if c.MaxTokens <= 0 {
		warnings = append(warnings, fmt.Sprintf("max_tokens %d is not positive", c.MaxTokens))
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		warnings = append(warnings, fmt.Sprintf("temperature %g is outside [0,1]", c.Temperature))
	}
	if c.TopP < 0 || c.TopP > 1 {
		warnings = append(warnings, fmt.Sprintf("top_p %g is outside [0,1]", c.TopP))
	}
	return warnings
}
