package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/dispatch"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/output"
)

// RunCommand dispatches cmd against the configured platform and writes its
// records to w in the global output format. Table output is buffered and
// shows a spinner on a terminal while the platform is queried.
func RunCommand(ctx context.Context, g *cmdtypes.GlobalConfig, cmd dispatch.Command, w io.Writer) error {
	d, err := NewDispatcher(ctx, g, nil)
	if err != nil {
		return PrintError("cannot connect to platform", err)
	}

	records := output.NewRecordWriter(w, g.Output)
	run := func() error {
		return d.Dispatch(ctx, cmd, records)
	}

	if g.Output == output.FormatTable {
		err = output.RunWithSpinner(ctx, run, output.WithTitle(fmt.Sprintf("Running %s...", cmd.Type)))
	} else {
		err = run()
	}
	if err != nil {
		return PrintError(cmd.Type+" failed", err)
	}

	if err := records.Flush(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if g.Output == output.FormatTable && records.Count() == 0 {
		output.Info("no records")
	}
	return nil
}

// PrintError reports err on stderr and returns an ExitError carrying the
// matching exit code, marked as printed.
func PrintError(msg string, err error) error {
	var detail *oerrors.DetailError
	if errors.As(err, &detail) {
		output.Error(msg)
		output.Details(detail.Error())
	} else {
		output.Error(msg, "error", err)
	}
	return &oerrors.ExitError{Err: err, Code: oerrors.ExitCodeFromError(err), Printed: true}
}
