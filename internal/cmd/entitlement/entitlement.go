// Package entitlement provides the `platconn entitlement` command group.
package entitlement

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/cmdutil"
	"github.com/opmodel/platconn/internal/dispatch"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/reconcile"
)

// NewEntitlementCmd creates the entitlement command group.
func NewEntitlementCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:     "entitlement",
		Aliases: []string{"entitlements"},
		Short:   "Entitlement catalog operations",
	}

	c.AddCommand(NewListCmd(cfg))

	return c
}

// NewListCmd creates the entitlement list command.
func NewListCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var typ string

	c := &cobra.Command{
		Use:   "list",
		Short: "List the entitlement catalog",
		Long: `List grantable entitlements.

  productRole     one entry per role of every product, id <productId>:<roleId>
  productGroup    one entry per group of every product, id <productId>:<groupId>
  platformRight   the Platform Administrator right

Without --type every catalog is listed in that order.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			types, err := selectTypes(typ)
			if err != nil {
				return cmdutil.PrintError("invalid entitlement type", err)
			}
			for _, t := range types {
				data, err := json.Marshal(dispatch.EntitlementListInput{Type: t})
				if err != nil {
					return fmt.Errorf("encoding command input: %w", err)
				}
				err = cmdutil.RunCommand(c.Context(), cfg,
					dispatch.Command{Type: dispatch.TypeEntitlementList, Input: data}, c.OutOrStdout())
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	c.Flags().StringVarP(&typ, "type", "t", "", "Entitlement type: "+strings.Join(typeNames(), ", "))

	return c
}

func selectTypes(typ string) ([]reconcile.EntitlementType, error) {
	if typ == "" {
		return reconcile.EntitlementTypes(), nil
	}
	t := reconcile.EntitlementType(typ)
	if !t.Valid() {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("unknown entitlement type %q", typ),
			"", "--type",
			"Use one of: "+strings.Join(typeNames(), ", "),
		)
	}
	return []reconcile.EntitlementType{t}, nil
}

func typeNames() []string {
	types := reconcile.EntitlementTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}
