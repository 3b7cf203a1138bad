package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/output"
)

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Audience     string `json:"audience"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// accessToken requests a new client-credentials token.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	data, err := json.Marshal(tokenRequest{
		ClientID:     c.opts.ClientID,
		ClientSecret: c.opts.ClientSecret,
		GrantType:    "client_credentials",
		Audience:     c.opts.AudienceURL,
	})
	if err != nil {
		return "", fmt.Errorf("encoding token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.TokenURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(subscriptionKeyHeader, c.opts.SubKey)

	resp, err := c.send(ctx, "Get Access Token", req)
	if err != nil {
		return "", c.transportError("Get Access Token", err)
	}
	if resp.status < 200 || resp.status >= 300 {
		output.Error("Issue when trying to perform Get Access Token", "status", resp.status)
		return "", &oerrors.UpstreamError{
			Operation:  "Get Access Token",
			StatusCode: resp.status,
			Body:       string(resp.body),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.body, &tr); err != nil || tr.AccessToken == "" {
		return "", oerrors.NewConnectivityError(
			"Unable to retrieve access token, please see logs for more details",
			map[string]string{"Token URL": c.opts.TokenURL},
			"Check clientId, clientSecret and audienceUrl",
		)
	}
	return tr.AccessToken, nil
}

// ConnectionInfo describes the token obtained by TestConnection. Opaque
// tokens leave every claim field empty.
type ConnectionInfo struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	Opaque    bool
}

// TestConnection fetches a token and reads its claims without verifying the
// signature; the platform is the party that verifies it.
func (c *Client) TestConnection(ctx context.Context) (ConnectionInfo, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return ConnectionInfo{}, err
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ConnectionInfo{Opaque: true}, nil
	}

	info := ConnectionInfo{
		Subject:  claims.Subject,
		Issuer:   claims.Issuer,
		Audience: claims.Audience,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
