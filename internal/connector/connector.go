// Package connector implements the lifecycle operations of the platform
// connector on top of the platform transport and the reconcile engine.
package connector

import (
	"context"
	"fmt"

	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/output"
	"github.com/opmodel/platconn/internal/platform"
	"github.com/opmodel/platconn/internal/reconcile"
)

// Platform is the subset of the platform API the connector needs.
// *platform.Client implements it.
type Platform interface {
	GetAccount(ctx context.Context, email string) (platform.AccountLookup, error)
	WriteAccount(ctx context.Context, req platform.AccountRequest, mode platform.WriteMode) (platform.Account, error)
	ListAccounts(ctx context.Context) ([]platform.Account, error)
	ListProducts(ctx context.Context) ([]platform.CatalogProduct, error)
	ListProductGroups(ctx context.Context, productID string) (platform.GroupLookup, error)
	TestConnection(ctx context.Context) (platform.ConnectionInfo, error)
}

// Sink receives records as an operation produces them.
type Sink interface {
	Send(record any) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(record any) error

// Send calls f.
func (f SinkFunc) Send(record any) error {
	return f(record)
}

// Connector runs one lifecycle operation per call. It holds no state
// between calls.
type Connector struct {
	platform Platform
}

// New returns a Connector backed by p.
func New(p Platform) *Connector {
	return &Connector{platform: p}
}

// TestConnection obtains a token and emits an empty record.
func (c *Connector) TestConnection(ctx context.Context, sink Sink) error {
	output.Info("Running test connection")
	info, err := c.platform.TestConnection(ctx)
	if err != nil {
		return err
	}

	if info.Opaque {
		output.Debug("access token acquired", "format", "opaque")
	} else {
		output.Debug("access token acquired", "subject", info.Subject, "issuer", info.Issuer, "expires", info.ExpiresAt)
	}
	return sink.Send(struct{}{})
}

// ListAccounts emits every platform user, normalized.
func (c *Connector) ListAccounts(ctx context.Context, sink Sink) error {
	accounts, err := c.platform.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if err := sink.Send(reconcile.Normalize(a)); err != nil {
			return err
		}
	}
	return nil
}

// ReadAccount emits one user. An unknown identity is ErrNotFound.
func (c *Connector) ReadAccount(ctx context.Context, identity string, sink Sink) error {
	account, err := c.readAccount(ctx, identity)
	if err != nil {
		return err
	}
	return sink.Send(account)
}

// CreateAccount creates a user, or merges the input into an existing one,
// and emits the platform's resulting record.
func (c *Connector) CreateAccount(ctx context.Context, in reconcile.CreateInput, sink Sink) error {
	email := in.Email()
	if email == "" {
		return oerrors.NewValidationError("account create needs an identity or attributes.email", "", "email", "")
	}

	existing, err := c.platform.GetAccount(ctx, email)
	if err != nil {
		return err
	}

	draft, mode := reconcile.BuildForCreate(in, existing)
	if existing.Found {
		output.Info("Existing account found, creating as update", "identity", email)
	}

	written, err := c.platform.WriteAccount(ctx, draft, mode)
	if err != nil {
		return err
	}
	return sink.Send(reconcile.Normalize(written))
}

// Plan is the result of applying changes to a user without writing it.
type Plan struct {
	// Current is the user as the platform holds it.
	Current platform.Account

	// Draft is the payload that would be written.
	Draft platform.AccountRequest
}

// PlanUpdate reads identity and applies changes in order to a draft.
func (c *Connector) PlanUpdate(ctx context.Context, identity string, changes []reconcile.Change) (Plan, error) {
	current, err := c.mustGet(ctx, identity)
	if err != nil {
		return Plan{}, err
	}

	for _, ch := range changes {
		if !ch.Handled() {
			output.Debug("ignoring unsupported change", "op", ch.Op, "attribute", ch.Attribute)
		}
	}

	draft := reconcile.ApplyChanges(platform.RequestFromAccount(current), changes)
	return Plan{Current: current, Draft: draft}, nil
}

// UpdateAccount applies changes with a single write, then emits the user
// as re-read from the platform.
func (c *Connector) UpdateAccount(ctx context.Context, identity string, changes []reconcile.Change, sink Sink) error {
	plan, err := c.PlanUpdate(ctx, identity, changes)
	if err != nil {
		return err
	}
	return c.writeAndReread(ctx, identity, plan.Draft, sink)
}

// EnableAccount sets isEnabled and emits the re-read user.
func (c *Connector) EnableAccount(ctx context.Context, identity string, sink Sink) error {
	return c.setEnabled(ctx, identity, true, sink)
}

// DisableAccount clears isEnabled and emits the re-read user.
func (c *Connector) DisableAccount(ctx context.Context, identity string, sink Sink) error {
	return c.setEnabled(ctx, identity, false, sink)
}

// ListEntitlements emits the catalog of typ. Unknown types emit nothing.
func (c *Connector) ListEntitlements(ctx context.Context, typ reconcile.EntitlementType, sink Sink) error {
	products, err := c.platform.ListProducts(ctx)
	if err != nil {
		return err
	}
	if !typ.Valid() {
		output.Debug("unknown entitlement type, nothing to list", "type", typ)
	}

	for e, err := range reconcile.ProjectCatalog(ctx, products, typ, c.platform) {
		if err != nil {
			return err
		}
		if err := sink.Send(e); err != nil {
			return err
		}
	}
	return nil
}

func (c *Connector) setEnabled(ctx context.Context, identity string, enabled bool, sink Sink) error {
	current, err := c.mustGet(ctx, identity)
	if err != nil {
		return err
	}
	draft := platform.RequestFromAccount(current)
	draft.IsEnabled = enabled
	return c.writeAndReread(ctx, identity, draft, sink)
}

func (c *Connector) writeAndReread(ctx context.Context, identity string, draft platform.AccountRequest, sink Sink) error {
	if _, err := c.platform.WriteAccount(ctx, draft, platform.WriteUpdate); err != nil {
		return err
	}
	account, err := c.readAccount(ctx, identity)
	if err != nil {
		return err
	}
	return sink.Send(account)
}

func (c *Connector) readAccount(ctx context.Context, identity string) (reconcile.Account, error) {
	current, err := c.mustGet(ctx, identity)
	if err != nil {
		return reconcile.Account{}, err
	}
	return reconcile.Normalize(current), nil
}

// mustGet fetches identity and turns absence into ErrNotFound.
func (c *Connector) mustGet(ctx context.Context, identity string) (platform.Account, error) {
	if identity == "" {
		return platform.Account{}, oerrors.NewValidationError("identity is required", "", "identity", "")
	}
	lookup, err := c.platform.GetAccount(ctx, identity)
	if err != nil {
		return platform.Account{}, err
	}
	if !lookup.Found {
		return platform.Account{}, oerrors.NewNotFoundError(
			fmt.Sprintf("account %s does not exist on the platform", identity),
			identity,
			"Use `platconn account list` to see known identities",
		)
	}
	return lookup.Account, nil
}
