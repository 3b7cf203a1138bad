// Package config provides CLI command implementations for the config command group.
package config

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/config"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Configuration management for the platconn CLI.`,
	}

	c.AddCommand(NewConfigInitCmd(cfg))
	c.AddCommand(NewConfigVetCmd(cfg))

	return c
}

// configPath returns the --config path or the default, expanded.
func configPath(cfg *cmdtypes.GlobalConfig) (string, error) {
	file := cfg.ConfigFlag
	if file == "" {
		file = cfg.ConfigPath
	}
	if file == "" {
		var err error
		file, err = config.GetConfigFile()
		if err != nil {
			return "", err
		}
	}
	return config.ExpandPath(file)
}
