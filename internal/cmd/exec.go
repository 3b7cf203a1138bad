package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/cmdutil"
	"github.com/opmodel/platconn/internal/dispatch"
)

// NewExecCmd creates the exec command.
func NewExecCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		typ   string
		input cmdutil.InputFlags
	)

	c := &cobra.Command{
		Use:   "exec",
		Short: "Run a raw lifecycle command",
		Long: fmt.Sprintf(`Run one lifecycle command envelope against the platform.

The input is the command's JSON input document, read from a file or from
stdin with --input -.

Supported types:
  %s`, strings.Join(dispatch.Types(), "\n  ")),
		Example: `  platconn exec --type std:account:read --input - <<< '{"identity":"jane@example.com"}'
  platconn exec --type std:entitlement:list --input list-roles.json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			data, err := input.Read(os.Stdin)
			if err != nil {
				return cmdutil.PrintError("reading input", err)
			}
			return cmdutil.RunCommand(c.Context(), cfg,
				dispatch.Command{Type: typ, Input: data}, c.OutOrStdout())
		},
	}

	c.Flags().StringVarP(&typ, "type", "t", "", "Command type, e.g. std:account:list")
	_ = c.MarkFlagRequired("type")
	input.AddTo(c)

	return c
}
