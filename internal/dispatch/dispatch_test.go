package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/platconn/internal/connector"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/metrics"
	"github.com/opmodel/platconn/internal/platform"
	"github.com/opmodel/platconn/internal/reconcile"
	"github.com/opmodel/platconn/internal/testutil"
)

func newDispatcher(t *testing.T, fp *testutil.FakePlatform) (*Dispatcher, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(connector.New(fp), metrics.NewCollector(reg)), reg
}

func TestDispatch_UnknownType(t *testing.T) {
	d, _ := newDispatcher(t, testutil.NewFakePlatform())

	err := d.Dispatch(context.Background(), Command{Type: "std:account:delete"}, &testutil.Records{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
}

func TestDispatch_InvalidInput(t *testing.T) {
	d, _ := newDispatcher(t, testutil.NewFakePlatform())

	err := d.Dispatch(context.Background(), Command{
		Type:  TypeAccountRead,
		Input: json.RawMessage(`{"identity": 42}`),
	}, &testutil.Records{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
}

func TestDispatch_Update(t *testing.T) {
	fp := testutil.NewFakePlatform(platform.Account{
		Email:    "jane@x.com",
		Products: []platform.Product{{ID: "P1", Groups: []platform.Group{{ID: "G1"}}}},
	})
	d, _ := newDispatcher(t, fp)
	sink := &testutil.Records{}

	err := d.Dispatch(context.Background(), Command{
		Type: TypeAccountUpdate,
		Input: json.RawMessage(`{
			"identity": "jane@x.com",
			"changes": [
				{"op": "Add", "attribute": "productRoles", "value": ["P2:R1", "P2:R2"]},
				{"op": "Remove", "attribute": "productGroups", "value": "P1:G1"}
			]
		}`),
	}, sink)
	require.NoError(t, err)

	require.Len(t, sink.Items, 1)
	got := sink.Items[0].(reconcile.Account)
	assert.Equal(t, []string{"P2:R1", "P2:R2"}, got.Attributes.ProductRoles)
	assert.Empty(t, got.Attributes.ProductGroups)
}

func TestDispatch_AllTypesRoute(t *testing.T) {
	fp := testutil.NewFakePlatform(platform.Account{Email: "jane@x.com", IsEnabled: true})
	d, _ := newDispatcher(t, fp)
	ctx := context.Background()

	inputs := map[string]string{
		TypeTestConnection:  ``,
		TypeAccountList:     `null`,
		TypeAccountRead:     `{"identity":"jane@x.com"}`,
		TypeAccountCreate:   `{"attributes":{"email":"new@x.com","firstName":"N"}}`,
		TypeAccountUpdate:   `{"identity":"jane@x.com","changes":[]}`,
		TypeAccountEnable:   `{"identity":"jane@x.com"}`,
		TypeAccountDisable:  `{"identity":"jane@x.com"}`,
		TypeEntitlementList: `{"type":"platformRight"}`,
	}

	for _, typ := range Types() {
		t.Run(typ, func(t *testing.T) {
			sink := &testutil.Records{}
			require.NoError(t, d.Dispatch(ctx, Command{Type: typ, Input: json.RawMessage(inputs[typ])}, sink))
			assert.NotEmpty(t, sink.Items)
		})
	}
}

func TestDispatch_RecordsMetrics(t *testing.T) {
	fp := testutil.NewFakePlatform(platform.Account{Email: "a@x.com"}, platform.Account{Email: "b@x.com"})
	d, reg := newDispatcher(t, fp)

	require.NoError(t, d.Dispatch(context.Background(), Command{Type: TypeAccountList}, &testutil.Records{}))
	err := d.Dispatch(context.Background(), Command{
		Type:  TypeAccountRead,
		Input: json.RawMessage(`{"identity":"ghost@x.com"}`),
	}, &testutil.Records{})
	require.Error(t, err)

	srv := httptest.NewServer(metrics.Handler(reg))
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `platconn_operations_total{command="std:account:list",outcome="success"} 1`)
	assert.Contains(t, string(body), `platconn_operations_total{command="std:account:read",outcome="error"} 1`)
	assert.Contains(t, string(body), `platconn_records_emitted_total{command="std:account:list"} 2`)
}

func TestDispatch_NilMetrics(t *testing.T) {
	d := New(connector.New(testutil.NewFakePlatform()), nil)
	require.NoError(t, d.Dispatch(context.Background(), Command{Type: TypeAccountList}, &testutil.Records{}))
}
