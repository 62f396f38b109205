// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CVFMT_PORT
const EnvPrefix = "CVFMT"

// Config holds every tunable of the formatter. Zero values are filled from
// DefaultConfig when loading.
type Config struct {
	// Rendering
	TemplatePath    string `mapstructure:"template_path" json:"template_path,omitempty" validate:"omitempty,file"`
	AssetDir        string `mapstructure:"asset_dir" json:"asset_dir,omitempty"`
	BrandText       string `mapstructure:"brand_text" json:"brand_text,omitempty"`
	MinVisibleChars int    `mapstructure:"min_visible_chars" json:"min_visible_chars" validate:"gte=1"`

	// Recovery
	HeuristicsFile  string   `mapstructure:"heuristics_file" json:"heuristics_file,omitempty" validate:"omitempty,file"`
	MaxSkillTokens  int      `mapstructure:"max_skill_tokens" json:"max_skill_tokens" validate:"gte=1,lte=100"`
	Strategies      []string `mapstructure:"strategies" json:"strategies" validate:"min=1,dive,oneof=structured permissive plain"`
	LargeFontPoints float64  `mapstructure:"large_font_points" json:"large_font_points" validate:"gt=0"`

	// Server
	Port          int           `mapstructure:"port" json:"port" validate:"gte=1,lte=65535"`
	RenderTimeout time.Duration `mapstructure:"render_timeout" json:"render_timeout" validate:"gt=0"`

	// PDF export
	ChromePath    string `mapstructure:"chrome_path" json:"chrome_path,omitempty"`
	RenderRetries uint   `mapstructure:"render_retries" json:"render_retries" validate:"lte=10"`

	// Batch
	BatchConcurrency int `mapstructure:"batch_concurrency" json:"batch_concurrency" validate:"gte=1,lte=64"`

	LogLevel string `mapstructure:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		BrandText:        "Curriculum Vitae",
		MinVisibleChars:  200,
		MaxSkillTokens:   15,
		Strategies:       []string{"structured", "permissive", "plain"},
		LargeFontPoints:  12,
		Port:             8080,
		RenderTimeout:    30 * time.Second,
		RenderRetries:    2,
		BatchConcurrency: 4,
		LogLevel:         "info",
	}
}

var validate = validator.New()

// newViper creates a viper instance with defaults, CVFMT_ environment
// overrides and, when cfgFile is set, that file. Without cfgFile an optional
// cv_formatter.{yaml,json} in the working directory is read.
func newViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("template_path", defaults.TemplatePath)
	v.SetDefault("asset_dir", defaults.AssetDir)
	v.SetDefault("brand_text", defaults.BrandText)
	v.SetDefault("min_visible_chars", defaults.MinVisibleChars)
	v.SetDefault("heuristics_file", defaults.HeuristicsFile)
	v.SetDefault("max_skill_tokens", defaults.MaxSkillTokens)
	v.SetDefault("strategies", defaults.Strategies)
	v.SetDefault("large_font_points", defaults.LargeFontPoints)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("render_timeout", defaults.RenderTimeout)
	v.SetDefault("chrome_path", defaults.ChromePath)
	v.SetDefault("render_retries", defaults.RenderRetries)
	v.SetDefault("batch_concurrency", defaults.BatchConcurrency)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("cv_formatter")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	return &cfg, nil
}

// LoadConfig loads configuration from defaults, an optional file and the
// environment, then validates it.
func LoadConfig(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("'%s' failed '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// CLI flags are applied on top of the result.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.TemplatePath == "" {
		result.TemplatePath = defaults.TemplatePath
	}
	if result.AssetDir == "" {
		result.AssetDir = defaults.AssetDir
	}
	if result.BrandText == "" {
		result.BrandText = defaults.BrandText
	}
	if result.HeuristicsFile == "" {
		result.HeuristicsFile = defaults.HeuristicsFile
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if len(result.Strategies) == 0 {
		result.Strategies = defaults.Strategies
	}

	if result.MinVisibleChars == 0 {
		result.MinVisibleChars = defaults.MinVisibleChars
	}
	if result.MaxSkillTokens == 0 {
		result.MaxSkillTokens = defaults.MaxSkillTokens
	}
	if result.LargeFontPoints == 0 {
		result.LargeFontPoints = defaults.LargeFontPoints
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RenderTimeout == 0 {
		result.RenderTimeout = defaults.RenderTimeout
	}
	if result.BatchConcurrency == 0 {
		result.BatchConcurrency = defaults.BatchConcurrency
	}

	// RenderRetries: zero is a valid choice (no retries), so it is not merged

	return result
}
