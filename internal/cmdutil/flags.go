// Package cmdutil provides shared command utilities: connector construction
// from the resolved configuration, flag groups and record output.
package cmdutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/reconcile"
)

// ChangeFlags holds the attribute edits of `account update`.
type ChangeFlags struct {
	Changes []string
	DryRun  bool
}

// AddTo registers the change flags on the given cobra command.
func (f *ChangeFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.Changes, "change", "c", nil,
		"Attribute change as op:attribute=value, e.g. add:productRoles=P1:R1 (repeatable, applied in order)")
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false,
		"Show the difference between the platform record and the update without writing it")
}

// Parse converts the --change values into changes, keeping their order.
func (f *ChangeFlags) Parse() ([]reconcile.Change, error) {
	changes := make([]reconcile.Change, 0, len(f.Changes))
	for _, raw := range f.Changes {
		c, err := ParseChange(raw)
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, nil
}

// ParseChange parses "op:attribute=value". The value may itself contain
// colons and equals signs; platformRights may omit "=value".
func ParseChange(raw string) (reconcile.Change, error) {
	opPart, rest, ok := strings.Cut(raw, ":")
	if !ok || opPart == "" || rest == "" {
		return reconcile.Change{}, invalidChange(raw)
	}
	attribute, value, _ := strings.Cut(rest, "=")

	op := reconcile.ParseOp(opPart)
	c := reconcile.Change{Op: op, Attribute: attribute, Value: value}
	if !c.Handled() {
		return reconcile.Change{}, invalidChange(raw)
	}
	if value == "" {
		if attribute != reconcile.AttrPlatformRights {
			return reconcile.Change{}, invalidChange(raw)
		}
		c.Value = reconcile.PlatformAdministrator
	}
	return c, nil
}

func invalidChange(raw string) error {
	return oerrors.NewValidationError(
		fmt.Sprintf("invalid change %q", raw),
		"", "--change",
		"Use add|remove:productRoles|productGroups=<productId:id> or add|remove:platformRights",
	)
}

// InputFlags holds the --input flag of `exec` and `account create`.
type InputFlags struct {
	Input string
}

// AddTo registers the input flag on the given cobra command.
func (f *InputFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Input, "input", "i", "",
		"JSON input file, or - for stdin")
}

// Read returns the input document, or nil when --input was not given.
func (f *InputFlags) Read(stdin *os.File) ([]byte, error) {
	switch f.Input {
	case "":
		return nil, nil
	case "-":
		return readAll(stdin)
	default:
		data, err := os.ReadFile(f.Input)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, oerrors.NewNotFoundError("input file not found", f.Input, "")
			}
			return nil, fmt.Errorf("reading input file: %w", err)
		}
		return data, nil
	}
}
