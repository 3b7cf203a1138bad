package account

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/cmdutil"
	"github.com/opmodel/platconn/internal/dispatch"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/reconcile"
)

// createOptions holds the flags for the create command.
type createOptions struct {
	email         string
	firstName     string
	lastName      string
	productRoles  []string
	productGroups []string
	admin         bool
	input         cmdutil.InputFlags
}

// NewCreateCmd creates the account create command.
func NewCreateCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	opts := &createOptions{}

	c := &cobra.Command{
		Use:   "create [identity]",
		Short: "Create an account",
		Long: `Create an account, or update it when the email already exists on the platform.

Product roles and groups given here are merged into the account; existing
memberships are kept. The identity argument, when given, is the email the
account is created under and takes precedence over --email.

Attributes may also come from a JSON document with --input, shaped as
{"identity": "...", "attributes": {"email": "...", "productRoles": [...]}}.`,
		Example: `  platconn account create jane@example.com --first-name Jane --last-name Doe \
    --product-role P1:R1 --product-group P1:G7
  platconn account create --input jane.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			in, err := opts.build(args)
			if err != nil {
				return cmdutil.PrintError("invalid create input", err)
			}
			data, err := encodeInput(in)
			if err != nil {
				return err
			}
			return cmdutil.RunCommand(c.Context(), cfg,
				dispatch.Command{Type: dispatch.TypeAccountCreate, Input: data}, c.OutOrStdout())
		},
	}

	c.Flags().StringVar(&opts.email, "email", "", "Account email")
	c.Flags().StringVar(&opts.firstName, "first-name", "", "First name")
	c.Flags().StringVar(&opts.lastName, "last-name", "", "Last name")
	c.Flags().StringArrayVar(&opts.productRoles, "product-role", nil, "Product role as <productId>:<roleId> (repeatable)")
	c.Flags().StringArrayVar(&opts.productGroups, "product-group", nil, "Product group as <productId>:<groupId> (repeatable)")
	c.Flags().BoolVar(&opts.admin, "admin", false, "Grant Platform Administrator")
	opts.input.AddTo(c)

	return c
}

// build assembles the create input from --input and the attribute flags.
// Flags override values read from the input document.
func (o *createOptions) build(args []string) (reconcile.CreateInput, error) {
	var in reconcile.CreateInput

	data, err := o.input.Read(os.Stdin)
	if err != nil {
		return in, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &in); err != nil {
			return in, oerrors.NewValidationError("input is not valid JSON: "+err.Error(), o.input.Input, "", "")
		}
	}
	if in.Attributes == nil {
		in.Attributes = map[string]any{}
	}

	if len(args) == 1 {
		in.Identity = args[0]
	}
	setString(in.Attributes, "email", o.email)
	setString(in.Attributes, "firstName", o.firstName)
	setString(in.Attributes, "lastName", o.lastName)
	if len(o.productRoles) > 0 {
		in.Attributes[reconcile.AttrProductRoles] = o.productRoles
	}
	if len(o.productGroups) > 0 {
		in.Attributes[reconcile.AttrProductGroups] = o.productGroups
	}
	if o.admin {
		in.Attributes[reconcile.AttrPlatformRights] = reconcile.PlatformAdministrator
	}

	if in.Email() == "" {
		return in, oerrors.NewValidationError("an email is required", "", "email",
			"Pass the identity argument or --email")
	}
	return in, nil
}

func setString(attrs map[string]any, key, value string) {
	if value != "" {
		attrs[key] = value
	}
}
