package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/config"
	"github.com/opmodel/platconn/internal/output"
)

// configHeader is written above the generated config.
const configHeader = `# platconn configuration
# Every key can be overridden with a PLATCONN_* environment variable,
# e.g. PLATCONN_ORG or PLATCONN_CLIENT_SECRET.
# Set clientSecret, or clientSecretRef to read it from a Kubernetes Secret.

`

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Create a new configuration file",
		Long: `Create a new platconn configuration file with default values.

The configuration file is created at ~/.platconn/config.yaml by default.
Use --config flag to specify a different location.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runInit(c, cfg, force)
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config file")

	return c
}

func runInit(c *cobra.Command, cfg *cmdtypes.GlobalConfig, force bool) error {
	path, err := configPath(cfg)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if exists && !force {
		return cmdtypes.NewExitError(
			fmt.Errorf("config file already exists at %s (use --force to overwrite)", path),
			cmdtypes.ExitGeneralError,
		)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append([]byte(configHeader), data...)

	// The file may hold the client secret.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark("Created "+path))
	return nil
}
