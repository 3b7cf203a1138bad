// Package account provides the `platconn account` command group.
package account

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/cmdutil"
	"github.com/opmodel/platconn/internal/dispatch"
)

// NewAccountCmd creates the account command group.
func NewAccountCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts"},
		Short:   "Platform account operations",
		Long: `List, read, create, update, enable and disable platform user accounts.

Accounts are shown as normalized identities: the email is the identity, and
product memberships appear as productRoles and productGroups composite keys
of the form <productId>:<roleId> and <productId>:<groupId>.`,
	}

	c.AddCommand(
		NewListCmd(cfg),
		NewReadCmd(cfg),
		NewCreateCmd(cfg),
		NewUpdateCmd(cfg),
		NewEnableCmd(cfg),
		NewDisableCmd(cfg),
	)

	return c
}

// NewListCmd creates the account list command.
func NewListCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts, including disabled ones",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return cmdutil.RunCommand(c.Context(), cfg,
				dispatch.Command{Type: dispatch.TypeAccountList}, c.OutOrStdout())
		},
	}
}

// NewReadCmd creates the account read command.
func NewReadCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return newIdentityCmd(cfg, dispatch.TypeAccountRead, "read <identity>", "Read one account")
}

// NewEnableCmd creates the account enable command.
func NewEnableCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return newIdentityCmd(cfg, dispatch.TypeAccountEnable, "enable <identity>", "Enable an account")
}

// NewDisableCmd creates the account disable command.
func NewDisableCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return newIdentityCmd(cfg, dispatch.TypeAccountDisable, "disable <identity>", "Disable an account")
}

func newIdentityCmd(cfg *cmdtypes.GlobalConfig, typ, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			input, err := encodeInput(dispatch.IdentityInput{Identity: args[0]})
			if err != nil {
				return err
			}
			return cmdutil.RunCommand(c.Context(), cfg,
				dispatch.Command{Type: typ, Input: input}, c.OutOrStdout())
		},
	}
}

func encodeInput(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding command input: %w", err)
	}
	return data, nil
}
