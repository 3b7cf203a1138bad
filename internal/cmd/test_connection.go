package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/cmdutil"
	"github.com/opmodel/platconn/internal/dispatch"
)

// NewTestConnectionCmd creates the test-connection command.
func NewTestConnectionCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Verify platform credentials",
		Long: `Fetch an access token with the configured client credentials and list
the organization's products. Succeeds with an empty record when the platform
answers.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return cmdutil.RunCommand(c.Context(), cfg,
				dispatch.Command{Type: dispatch.TypeTestConnection}, c.OutOrStdout())
		},
	}
}
