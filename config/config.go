package config

import (
	"strings"

	coretypes "github.com/projecteru2/core/types"

	"github.com/projecteru2/blkinfo/lsblk"
)

// Config holds global blkinfo configuration.
type Config struct {
	// Command is the lsblk invocation whose JSON output is searched.
	// It is split on whitespace and run without a shell.
	Command string `json:"command" mapstructure:"command"`
	// Log configuration, uses eru core's ServerLogConfig.
	Log coretypes.ServerLogConfig `json:"log" mapstructure:"log"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Command: lsblk.DefaultCommand,
		Log: coretypes.ServerLogConfig{
			Level:      "info",
			MaxSize:    500,
			MaxAge:     28,
			MaxBackups: 3,
		},
	}
}

// Normalize fills fields left empty by a config file or environment.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.Command) == "" {
		c.Command = lsblk.DefaultCommand
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
