package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/output"
	"github.com/opmodel/platconn/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(_ *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show platconn version information.

Displays:
  - platconn version, commit, and build date
  - Go toolchain and embedded CUE SDK versions`,
		RunE: func(_ *cobra.Command, _ []string) error {
			output.Println(version.Get().String())
			return nil
		},
	}
}
