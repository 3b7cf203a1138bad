// Package platform is the HTTP transport for the platform client-admin API.
//
// Every call fetches a fresh client-credentials token, then issues exactly one
// request. Nothing is cached and nothing is retried.
package platform

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/output"
	"github.com/opmodel/platconn/internal/requestid"
)

const subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// Recorder receives one observation per platform request.
type Recorder interface {
	RecordUpstreamCall(call string, statusCode int, d time.Duration)
}

// Options configures a Client.
type Options struct {
	RootURL      string
	TokenURL     string
	AudienceURL  string
	ClientID     string
	ClientSecret string
	SubKey       string
	Org          string

	// IgnoreSSL skips TLS verification on the client's own transport.
	IgnoreSSL bool

	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration

	// RequestsPerSecond limits outgoing requests, token requests included.
	// Zero disables limiting.
	RequestsPerSecond float64
	Burst             int

	// Recorder is optional.
	Recorder Recorder

	// HTTPClient overrides the client built from IgnoreSSL and Timeout.
	HTTPClient *http.Client
}

// Client talks to one platform organization.
type Client struct {
	opts       Options
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient returns a Client for opts.
func NewClient(opts Options) (*Client, error) {
	root, err := url.Parse(opts.RootURL)
	if err != nil || root.Scheme == "" || root.Host == "" {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("invalid platform root URL %q", opts.RootURL),
			"", "rootUrl", "Use an absolute URL such as https://api.example.com",
		)
	}
	if opts.Org == "" {
		return nil, oerrors.NewValidationError("organization is required", "", "org", "")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.IgnoreSSL {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via ignoreSSL
		}
		httpClient = &http.Client{Transport: transport, Timeout: opts.Timeout}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		opts:       opts,
		baseURL:    strings.TrimRight(opts.RootURL, "/") + "/clientadmin/v2/" + url.PathEscape(opts.Org),
		httpClient: httpClient,
		limiter:    limiter,
	}, nil
}

// call describes one platform request.
type call struct {
	// name is the metric label, e.g. "Get Account".
	name string

	// operation is the name used in logs and errors, e.g. "Get Account a@x.com".
	operation string

	method    string
	url       string
	body      any
	accept404 bool
}

// response is a completed platform response with an accepted status.
type response struct {
	status int
	body   []byte
}

func (r response) notFound() bool {
	return r.status == http.StatusNotFound
}

// GetAccount probes for a user by email. 404 yields AccountNotFound.
func (c *Client) GetAccount(ctx context.Context, email string) (AccountLookup, error) {
	resp, err := c.do(ctx, call{
		name:      "Get Account",
		operation: "Get Account " + email,
		method:    http.MethodGet,
		url:       c.baseURL + "/user/" + url.PathEscape(email),
		accept404: true,
	})
	if err != nil {
		return AccountLookup{}, err
	}
	if resp.notFound() {
		output.Debug(fmt.Sprintf("Get Account %s - 404 Response - Ignoring as this is expected when an account does not exist", email))
		return AccountNotFound(), nil
	}

	var account Account
	if err := decode(resp.body, &account, "Get Account "+email); err != nil {
		return AccountLookup{}, err
	}
	return AccountFound(account), nil
}

// WriteAccount creates or replaces a user and returns the platform's view of it.
func (c *Client) WriteAccount(ctx context.Context, req AccountRequest, mode WriteMode) (Account, error) {
	if req.Products == nil {
		req.Products = []Product{}
	}
	operation := mode.Method() + " Account"
	resp, err := c.do(ctx, call{
		name:      operation,
		operation: operation,
		method:    mode.Method(),
		url:       c.baseURL + "/user/",
		body:      req,
	})
	if err != nil {
		return Account{}, err
	}

	var account Account
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return account, nil
	}
	if err := decode(resp.body, &account, operation); err != nil {
		return Account{}, err
	}
	return account, nil
}

// ListAccounts returns every user in the organization, disabled ones included.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	resp, err := c.do(ctx, call{
		name:      "List Accounts",
		operation: "List Accounts",
		method:    http.MethodGet,
		url:       c.baseURL + "/user/product/list?includeDisabled=true",
	})
	if err != nil {
		return nil, err
	}

	var accounts []Account
	if err := decode(resp.body, &accounts, "List Accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListProducts returns the product catalog with each product's roles.
func (c *Client) ListProducts(ctx context.Context) ([]CatalogProduct, error) {
	resp, err := c.do(ctx, call{
		name:      "List Products",
		operation: "List Products",
		method:    http.MethodGet,
		url:       c.baseURL + "/Product",
	})
	if err != nil {
		return nil, err
	}

	var products []CatalogProduct
	if err := decode(resp.body, &products, "List Products"); err != nil {
		return nil, err
	}
	return products, nil
}

// ListProductGroups returns the groups of one product. A 404 or a body that
// is not a JSON array yields no groups.
func (c *Client) ListProductGroups(ctx context.Context, productID string) (GroupLookup, error) {
	resp, err := c.do(ctx, call{
		name:      "List Product Groups",
		operation: "List Product Groups",
		method:    http.MethodGet,
		url:       c.baseURL + "/Group/" + url.PathEscape(productID),
		accept404: true,
	})
	if err != nil {
		return GroupLookup{}, err
	}
	if resp.notFound() {
		output.Debug("List Product Groups - 404 Response - Ignoring as this is expected", "product", productID)
		return GroupLookup{}, nil
	}

	trimmed := bytes.TrimSpace(resp.body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		output.Debug("List Product Groups - response is not a list, treating as empty", "product", productID)
		return GroupLookup{Found: true}, nil
	}

	var groups []ProductGroup
	if err := decode(trimmed, &groups, "List Product Groups"); err != nil {
		return GroupLookup{}, err
	}
	return GroupLookup{Groups: groups, Found: true}, nil
}

// do runs one platform request with a fresh bearer token.
func (c *Client) do(ctx context.Context, cl call) (response, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return response{}, err
	}

	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return response{}, fmt.Errorf("encoding %s request: %w", cl.operation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, cl.url, body)
	if err != nil {
		return response{}, fmt.Errorf("building %s request: %w", cl.operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(subscriptionKeyHeader, c.opts.SubKey)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(ctx, cl.name, req)
	if err != nil {
		return response{}, c.transportError(cl.operation, err)
	}

	switch {
	case resp.status >= 200 && resp.status < 300:
		output.Debug(cl.operation+" - Success", "status", resp.status)
		return resp, nil
	case resp.notFound() && cl.accept404:
		return resp, nil
	default:
		output.Error("Issue when trying to perform "+cl.operation, "status", resp.status, "response", string(resp.body))
		return response{}, &oerrors.UpstreamError{
			Operation:  cl.operation,
			StatusCode: resp.status,
			Body:       string(resp.body),
		}
	}
}

// send waits on the rate limiter, executes req and reads the whole body.
func (c *Client) send(ctx context.Context, name string, req *http.Request) (response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return response{}, err
		}
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(name, 0, time.Since(start))
		return response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.record(name, resp.StatusCode, time.Since(start))
	if err != nil {
		return response{}, fmt.Errorf("reading response body: %w", err)
	}
	return response{status: resp.StatusCode, body: data}, nil
}

func (c *Client) record(name string, status int, d time.Duration) {
	if c.opts.Recorder != nil {
		c.opts.Recorder.RecordUpstreamCall(name, status, d)
	}
}

func (c *Client) transportError(operation string, err error) error {
	output.Error("Issue when trying to perform "+operation, "error", err)
	return &oerrors.DetailError{
		Type:    "connectivity failed",
		Message: fmt.Sprintf("Issue when trying to perform %s: %v", operation, err),
		Context: map[string]string{"Platform": c.opts.RootURL},
		Hint:    "Check rootUrl, tokenUrl and network access to the platform",
		Cause:   fmt.Errorf("%w: %w", oerrors.ErrConnectivity, err),
	}
}

func decode(data []byte, v any, operation string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s response: %w", operation,
			oerrors.Wrap(oerrors.ErrUpstream, err.Error()))
	}
	return nil
}
