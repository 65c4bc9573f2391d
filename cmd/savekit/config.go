package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the savekit configuration file (~/.config/savekit/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Strict         *bool  `yaml:"strict"`
	StrictChecksum *bool  `yaml:"strict_checksum"`
	Padding        string `yaml:"padding"`
	PaddingPattern string `yaml:"padding_pattern"`

	// DefaultFormat is the target of convert when --to is omitted.
	DefaultFormat string `yaml:"default_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "savekit", "config.yaml")
}

// applyConfig copies config file values into the global flag variables
// whose flags were not set on the command line.
func applyConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if cfg.Strict != nil && !c.IsSet("strict") {
		strict = *cfg.Strict
	}
	if cfg.StrictChecksum != nil && !c.IsSet("strict-checksum") {
		strictChecksum = *cfg.StrictChecksum
	}
	if cfg.Padding != "" && !c.IsSet("padding") {
		paddingPolicy = cfg.Padding
	}
	if cfg.PaddingPattern != "" && !c.IsSet("padding-pattern") {
		paddingPattern = cfg.PaddingPattern
	}
	if cfg.DefaultFormat != "" {
		defaultFormat = cfg.DefaultFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	return loadConfigFile(configPath())
}

func loadConfigFile(path string) Config {
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
