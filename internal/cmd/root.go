// Package cmd provides CLI command implementations.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/platconn/internal/cmd/account"
	cmdconfig "github.com/opmodel/platconn/internal/cmd/config"
	"github.com/opmodel/platconn/internal/cmd/entitlement"
	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/config"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/output"
)

// rootFlags holds the persistent flag values of the root command.
type rootFlags struct {
	config     string
	org        string
	kubeconfig string
	context    string
	output     string
	verbose    bool
	timestamps bool
}

// NewRootCmd creates the root command for the platconn CLI.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cfg := &cmdtypes.GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "platconn",
		Short: "Platform identity-governance connector",
		Long: `platconn synchronizes platform user accounts, product role and product
group entitlements and the platform administrator flag with an identity
governance platform.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return initializeGlobals(c, flags, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "", "Path to config file (env: PLATCONN_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flags.org, "org", "", "Platform organization (env: PLATCONN_ORG)")
	rootCmd.PersistentFlags().StringVar(&flags.kubeconfig, "kubeconfig", "", "Path to kubeconfig file for clientSecretRef (env: PLATCONN_KUBECONFIG)")
	rootCmd.PersistentFlags().StringVar(&flags.context, "context", "", "Kubernetes context for clientSecretRef (env: PLATCONN_CONTEXT)")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "", "Output format: "+strings.Join(output.ValidFormats(), ", ")+" (env: PLATCONN_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&flags.timestamps, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(
		NewTestConnectionCmd(cfg),
		account.NewAccountCmd(cfg),
		entitlement.NewEntitlementCmd(cfg),
		NewExecCmd(cfg),
		NewServeCmd(cfg),
		cmdconfig.NewConfigCmd(cfg),
		NewVersionCmd(cfg),
	)

	return rootCmd
}

// initializeGlobals loads configuration, resolves flag-overridable values and
// sets up logging.
func initializeGlobals(c *cobra.Command, flags *rootFlags, cfg *cmdtypes.GlobalConfig) error {
	cfg.ConfigFlag = flags.config
	cfg.Verbose = flags.verbose

	// Resolve the config path first; PLATCONN_CONFIG may name the file.
	pathOnly, err := config.ResolveAll(config.ResolveAllOptions{ConfigFlag: flags.config})
	if err != nil {
		return err
	}
	cfg.ConfigPath = pathOnly.ConfigPath.Value

	loaded, err := config.NewLoader().LoadWithDefaults(cfg.ConfigPath)
	if err != nil {
		// Commands that do not talk to the platform still work.
		cfg.LoadErr = err
	}
	cfg.Config = loaded

	resolved, err := config.ResolveAll(config.ResolveAllOptions{
		ConfigFlag:     flags.config,
		OrgFlag:        flags.org,
		KubeconfigFlag: flags.kubeconfig,
		ContextFlag:    flags.context,
		OutputFlag:     flags.output,
		Config:         loaded,
	})
	if err != nil {
		return err
	}
	cfg.Resolved = resolved

	format, ok := output.ParseOutputFormat(resolved.Output.Value)
	if !ok {
		return &oerrors.ExitError{
			Err: fmt.Errorf("invalid output format %q, use one of: %s",
				resolved.Output.Value, strings.Join(output.ValidFormats(), ", ")),
			Code: oerrors.ExitValidationError,
		}
	}
	cfg.Output = format

	// Timestamps: flag (if explicitly set) > config > default (nil = true).
	logCfg := output.LogConfig{Verbose: flags.verbose}
	if c.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(flags.timestamps)
	} else if loaded != nil && loaded.Log.Timestamps != nil {
		logCfg.Timestamps = loaded.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if cfg.LoadErr != nil {
		output.Debug("config load error", "error", cfg.LoadErr)
	}
	if flags.verbose {
		config.LogResolvedValues(resolved.Values())
	}

	return nil
}
