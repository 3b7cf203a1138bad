// Package cmdtypes provides shared types for the cmd package and its sub-packages.
// It is separate from internal/cmd to avoid import cycles between internal/cmd
// and its sub-packages (internal/cmd/account, internal/cmd/config, ...).
package cmdtypes

import (
	"github.com/opmodel/platconn/internal/config"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/output"
)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every sub-command
// constructor.
type GlobalConfig struct {
	// Config is the loaded configuration with defaults applied. It is nil
	// when loading failed; commands that need it report LoadErr.
	Config  *config.Config
	LoadErr error

	// Resolved carries flag-overridable values with their source.
	Resolved *config.ResolvedConfig

	ConfigPath string // resolved --config path
	ConfigFlag string // raw --config flag value
	Output     output.OutputFormat
	Verbose    bool
}

// Exit codes, aliased from internal/errors.
const (
	ExitSuccess           = oerrors.ExitSuccess
	ExitGeneralError      = oerrors.ExitGeneralError
	ExitValidationError   = oerrors.ExitValidationError
	ExitConnectivityError = oerrors.ExitConnectivityError
	ExitPermissionDenied  = oerrors.ExitPermissionDenied
	ExitNotFound          = oerrors.ExitNotFound
	ExitUpstreamError     = oerrors.ExitUpstreamError
)

// ExitError is a type alias to internal/errors.ExitError.
type ExitError = oerrors.ExitError

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return oerrors.NewExitError(err, code)
}
