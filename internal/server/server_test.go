package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/platconn/internal/connector"
	"github.com/opmodel/platconn/internal/dispatch"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/metrics"
	"github.com/opmodel/platconn/internal/platform"
	"github.com/opmodel/platconn/internal/testutil"
)

func newTestServer(t *testing.T, fp *testutil.FakePlatform) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	d := dispatch.New(connector.New(fp), metrics.NewCollector(reg))
	srv := httptest.NewServer(NewRouter(d, reg))
	t.Cleanup(srv.Close)
	return srv
}

func postCommand(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/commands", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readLines(t *testing.T, r io.Reader) []Line {
	t.Helper()
	var lines []Line
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		var l Line
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &l))
		lines = append(lines, l)
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, testutil.NewFakePlatform())

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestCommands_StreamsRecords(t *testing.T) {
	fp := testutil.NewFakePlatform(
		platform.Account{Email: "a@x.com", IsEnabled: true},
		platform.Account{Email: "b@x.com"},
	)
	srv := newTestServer(t, fp)

	resp := postCommand(t, srv, `{"type":"std:account:list"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))
	lines := readLines(t, resp.Body)
	require.Len(t, lines, 2)
	assert.Equal(t, "output", lines[0].Type)
	data := lines[1].Data.(map[string]any)
	assert.Equal(t, "b@x.com", data["identity"])
	assert.Equal(t, true, data["disabled"])
}

func TestCommands_TestConnectionEmitsEmptyObject(t *testing.T) {
	srv := newTestServer(t, testutil.NewFakePlatform())

	resp := postCommand(t, srv, `{"type":"std:test-connection"}`)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"output","data":{}}`, strings.TrimSpace(string(body)))
}

func TestCommands_ErrorBeforeOutput(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{name: "bad envelope", body: `{`, status: http.StatusBadRequest, code: "validation"},
		{name: "unknown type", body: `{"type":"std:account:delete"}`, status: http.StatusBadRequest, code: "validation"},
		{name: "missing account", body: `{"type":"std:account:read","input":{"identity":"ghost@x.com"}}`, status: http.StatusNotFound, code: "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, testutil.NewFakePlatform())
			resp := postCommand(t, srv, tt.body)

			assert.Equal(t, tt.status, resp.StatusCode)
			var body struct {
				Error ErrorBody `json:"error"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestCommands_UpstreamErrorMapsToBadGateway(t *testing.T) {
	fp := testutil.NewFakePlatform()
	fp.Errors["ListAccounts"] = &oerrors.UpstreamError{Operation: "List Accounts", StatusCode: 500, Body: `"oops"`}
	srv := newTestServer(t, fp)

	resp := postCommand(t, srv, `{"type":"std:account:list"}`)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, `Issue when trying to perform List Accounts - 500 - "oops"`, body.Error.Message)
}

// groupsFailOnSecond lets the first product's groups stream before failing.
type groupsFailOnSecond struct {
	*testutil.FakePlatform
	calls int
}

func (g *groupsFailOnSecond) ListProductGroups(ctx context.Context, id string) (platform.GroupLookup, error) {
	g.calls++
	if g.calls > 1 {
		return platform.GroupLookup{}, &oerrors.UpstreamError{Operation: "List Product Groups", StatusCode: 503, Body: ""}
	}
	return g.FakePlatform.ListProductGroups(ctx, id)
}

func TestCommands_ErrorAfterOutput(t *testing.T) {
	fp := testutil.NewFakePlatform()
	fp.Products = []platform.CatalogProduct{{ID: "P1", Name: "Billing"}, {ID: "P2", Name: "Reports"}}
	fp.Groups["P1"] = []platform.ProductGroup{{ID: "G1", Name: "Finance"}}
	d := dispatch.New(connector.New(&groupsFailOnSecond{FakePlatform: fp}), nil)
	srv := httptest.NewServer(NewRouter(d, nil))
	defer srv.Close()

	resp := postCommand(t, srv, `{"type":"std:entitlement:list","input":{"type":"productGroup"}}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	lines := readLines(t, resp.Body)
	require.Len(t, lines, 2)
	assert.Equal(t, "output", lines[0].Type)
	assert.Equal(t, "error", lines[1].Type)
	require.NotNil(t, lines[1].Error)
	assert.Equal(t, "upstream", lines[1].Error.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, testutil.NewFakePlatform())

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "caller-id")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "caller-id", resp.Header.Get("X-Request-Id"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, testutil.NewFakePlatform())
	postCommand(t, srv, `{"type":"std:account:list"}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `platconn_operations_total{command="std:account:list",outcome="success"} 1`)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestClassify(t *testing.T) {
	status, code := classify(oerrors.NewPermissionError("no", nil, ""))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "permission", code)

	status, code = classify(errors.New("other"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal", code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, http.NotFoundHandler()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
