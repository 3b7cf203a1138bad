package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/config"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate the configuration file",
		Long: `Validate the platconn configuration file against the internal schema.

The command validates the configuration file at ~/.platconn/config.yaml by default.
Use --config flag to specify a different location.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runVet(c, cfg)
		},
	}
}

func runVet(c *cobra.Command, cfg *cmdtypes.GlobalConfig) error {
	path, err := configPath(cfg)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if !exists {
		return cmdtypes.NewExitError(
			fmt.Errorf("config file not found: %s", path),
			cmdtypes.ExitNotFound,
		)
	}

	validator, err := config.NewValidator()
	if err != nil {
		return fmt.Errorf("creating validator: %w", err)
	}

	if err := validator.ValidateFile(path); err != nil {
		var validationErrs config.ValidationErrors
		if errors.As(err, &validationErrs) {
			errOut := c.ErrOrStderr()
			fmt.Fprintln(errOut, "Error: config validation failed")
			fmt.Fprintf(errOut, "  File: %s\n\n", path)
			for _, e := range validationErrs {
				fmt.Fprintf(errOut, "  %s: %s\n", e.Field, e.Message)
			}
			return &cmdtypes.ExitError{Err: err, Code: cmdtypes.ExitValidationError, Printed: true}
		}
		return fmt.Errorf("validating config: %w", err)
	}

	fmt.Fprintf(c.OutOrStdout(), "Config file is valid: %s\n", path)
	return nil
}
