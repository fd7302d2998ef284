package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tagmerge/internal/traverse"
)

const (
	configFileName = ".tagmerge"
	configFileType = "yaml"
	envPrefix      = "TAGMERGE"

	cfgKeyModel    = "model"
	cfgKeyStrategy = "strategy"
	cfgKeyLogLevel = "log_level"
	cfgKeyOutput   = "output"

	defaultModel    = "tags.yaml"
	defaultStrategy = "direct"
	defaultLogLevel = "off"
	defaultOutput   = outputYAML
)

const (
	outputYAML = "yaml"
	outputText = "text"
)

// Config is the resolved CLI configuration: flags over TAGMERGE_* env over
// .tagmerge.yaml over defaults.
type Config struct {
	Model    string `mapstructure:"model"     validate:"required"`
	Strategy string `mapstructure:"strategy"  validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required"`
	Output   string `mapstructure:"output"    validate:"oneof=yaml text"`
}

// bindFlags maps persistent flags onto their config keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, flag := range map[string]string{
		cfgKeyModel:    "model",
		cfgKeyStrategy: "strategy",
		cfgKeyLogLevel: "log-level",
		cfgKeyOutput:   "output",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	return nil
}

// loadConfig reads the config file, if any, and the environment. An explicit
// file must exist; a missing .tagmerge.yaml is not an error.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	v.SetDefault(cfgKeyModel, defaultModel)
	v.SetDefault(cfgKeyStrategy, defaultStrategy)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyOutput, defaultOutput)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if _, err := traverse.ParseStrategy(cfg.Strategy); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
