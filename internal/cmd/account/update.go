package account

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/cmdutil"
	"github.com/opmodel/platconn/internal/dispatch"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/output"
	"github.com/opmodel/platconn/internal/platform"
	"github.com/opmodel/platconn/internal/reconcile"
)

// NewUpdateCmd creates the account update command.
func NewUpdateCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var flags cmdutil.ChangeFlags

	c := &cobra.Command{
		Use:   "update <identity>",
		Short: "Apply attribute changes to an account",
		Long: `Apply attribute changes to an account with a single platform write.

Changes are applied in the order given. Adding an existing role or group is
a no-op, and a product left without roles and groups is dropped from the
account.

With --dry-run the account is read and the planned record is compared to
the current one without writing.`,
		Example: `  platconn account update jane@example.com -c add:productRoles=P1:R2 -c remove:productGroups=P1:G7
  platconn account update jane@example.com -c add:platformRights --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			changes, err := flags.Parse()
			if err != nil {
				return cmdutil.PrintError("invalid change", err)
			}
			if len(changes) == 0 {
				return cmdutil.PrintError("nothing to update",
					oerrors.NewValidationError("no changes given", "", "--change", "Pass at least one --change"))
			}

			if flags.DryRun {
				return runDryRun(c.Context(), cfg, args[0], changes, c.OutOrStdout())
			}

			data, err := encodeInput(dispatch.UpdateInput{
				Identity: args[0],
				Changes:  changeInputs(changes),
			})
			if err != nil {
				return err
			}
			return cmdutil.RunCommand(c.Context(), cfg,
				dispatch.Command{Type: dispatch.TypeAccountUpdate, Input: data}, c.OutOrStdout())
		},
	}

	flags.AddTo(c)

	return c
}

func runDryRun(ctx context.Context, cfg *cmdtypes.GlobalConfig, identity string, changes []reconcile.Change, w io.Writer) error {
	conn, err := cmdutil.NewConnector(ctx, cfg, nil)
	if err != nil {
		return cmdutil.PrintError("cannot connect to platform", err)
	}

	var plan platformPlan
	err = output.RunWithSpinner(ctx, func() error {
		p, err := conn.PlanUpdate(ctx, identity, changes)
		plan = platformPlan{current: platform.RequestFromAccount(p.Current), draft: p.Draft}
		return err
	}, output.WithTitle("Reading "+identity+"..."))
	if err != nil {
		return cmdutil.PrintError("planning update failed", err)
	}

	diff, err := output.DiffDocuments(plan.current, plan.draft, output.IsTTY())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, output.RenderPlan(identity, diff))
	return err
}

// platformPlan holds both sides of the dry-run comparison in request shape.
type platformPlan struct {
	current platform.AccountRequest
	draft   platform.AccountRequest
}

func changeInputs(changes []reconcile.Change) []reconcile.ChangeInput {
	out := make([]reconcile.ChangeInput, 0, len(changes))
	for _, c := range changes {
		out = append(out, reconcile.ChangeInput{Op: string(c.Op), Attribute: c.Attribute, Value: c.Value})
	}
	return out
}
