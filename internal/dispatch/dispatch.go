// Package dispatch routes lifecycle command envelopes to connector
// operations.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/opmodel/platconn/internal/connector"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/metrics"
	"github.com/opmodel/platconn/internal/output"
	"github.com/opmodel/platconn/internal/reconcile"
)

// Command types.
const (
	TypeTestConnection  = "std:test-connection"
	TypeAccountList     = "std:account:list"
	TypeAccountRead     = "std:account:read"
	TypeAccountCreate   = "std:account:create"
	TypeAccountUpdate   = "std:account:update"
	TypeAccountEnable   = "std:account:enable"
	TypeAccountDisable  = "std:account:disable"
	TypeEntitlementList = "std:entitlement:list"
)

// Types returns every supported command type.
func Types() []string {
	return []string{
		TypeTestConnection,
		TypeAccountList,
		TypeAccountRead,
		TypeAccountCreate,
		TypeAccountUpdate,
		TypeAccountEnable,
		TypeAccountDisable,
		TypeEntitlementList,
	}
}

// Command is one lifecycle request.
type Command struct {
	Type  string          `json:"type"`
	Input json.RawMessage `json:"input,omitempty"`
}

// IdentityInput is the input of read, enable and disable.
type IdentityInput struct {
	Identity string `json:"identity"`
}

// UpdateInput is the input of std:account:update.
type UpdateInput struct {
	Identity string                  `json:"identity"`
	Changes  []reconcile.ChangeInput `json:"changes"`
}

// EntitlementListInput is the input of std:entitlement:list.
type EntitlementListInput struct {
	Type reconcile.EntitlementType `json:"type"`
}

// Dispatcher runs commands against a Connector.
type Dispatcher struct {
	connector *connector.Connector
	metrics   *metrics.Collector
}

// New returns a Dispatcher. m may be nil.
func New(c *connector.Connector, m *metrics.Collector) *Dispatcher {
	return &Dispatcher{connector: c, metrics: m}
}

// Dispatch runs cmd and streams its records to sink.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command, sink connector.Sink) error {
	log := output.OperationLogger(cmd.Type)
	if !slices.Contains(Types(), cmd.Type) {
		return oerrors.NewValidationError(
			fmt.Sprintf("unsupported command type %q", cmd.Type),
			"", "type",
			"Supported types: "+strings.Join(Types(), ", "),
		)
	}

	counted := &countingSink{next: sink}
	start := time.Now()
	log.Debug("dispatching command")

	err := d.run(ctx, cmd, counted)

	elapsed := time.Since(start)
	d.metrics.RecordOperation(cmd.Type, err, elapsed)
	d.metrics.RecordEmitted(cmd.Type, counted.n)
	if err != nil {
		log.Debug("command failed", "records", counted.n, "duration", elapsed.Round(time.Millisecond), "error", err)
		return err
	}
	log.Debug("command finished", "records", counted.n, "duration", elapsed.Round(time.Millisecond))
	return nil
}

func (d *Dispatcher) run(ctx context.Context, cmd Command, sink connector.Sink) error {
	c := d.connector

	switch cmd.Type {
	case TypeTestConnection:
		return c.TestConnection(ctx, sink)

	case TypeAccountList:
		return c.ListAccounts(ctx, sink)

	case TypeAccountRead, TypeAccountEnable, TypeAccountDisable:
		var in IdentityInput
		if err := decodeInput(cmd, &in); err != nil {
			return err
		}
		switch cmd.Type {
		case TypeAccountEnable:
			return c.EnableAccount(ctx, in.Identity, sink)
		case TypeAccountDisable:
			return c.DisableAccount(ctx, in.Identity, sink)
		default:
			return c.ReadAccount(ctx, in.Identity, sink)
		}

	case TypeAccountCreate:
		var in reconcile.CreateInput
		if err := decodeInput(cmd, &in); err != nil {
			return err
		}
		return c.CreateAccount(ctx, in, sink)

	case TypeAccountUpdate:
		var in UpdateInput
		if err := decodeInput(cmd, &in); err != nil {
			return err
		}
		return c.UpdateAccount(ctx, in.Identity, reconcile.ExpandChanges(in.Changes), sink)

	case TypeEntitlementList:
		var in EntitlementListInput
		if err := decodeInput(cmd, &in); err != nil {
			return err
		}
		return c.ListEntitlements(ctx, in.Type, sink)
	}

	return nil
}

func decodeInput(cmd Command, v any) error {
	data := bytes.TrimSpace(cmd.Input)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return oerrors.NewValidationError(
			fmt.Sprintf("invalid input for %s: %v", cmd.Type, err),
			"", "input", "",
		)
	}
	return nil
}

type countingSink struct {
	next connector.Sink
	n    int
}

func (s *countingSink) Send(record any) error {
	if err := s.next.Send(record); err != nil {
		return err
	}
	s.n++
	return nil
}
