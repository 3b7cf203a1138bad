package cmdutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/config"
	"github.com/opmodel/platconn/internal/connector"
	"github.com/opmodel/platconn/internal/dispatch"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/kubernetes"
	"github.com/opmodel/platconn/internal/output"
	"github.com/opmodel/platconn/internal/platform"
	"github.com/opmodel/platconn/internal/reconcile"
	"github.com/opmodel/platconn/internal/testutil"
)

func validConfig() *config.Config {
	return (&config.Config{
		RootURL:      "https://api.example.com",
		TokenURL:     "https://login.example.com/oauth/token",
		AudienceURL:  "https://api.example.com",
		ClientID:     "client",
		ClientSecret: "secret",
		SubKey:       "sub",
		Org:          "acme",
	}).WithDefaults()
}

func globalConfig(cfg *config.Config, format output.OutputFormat) *cmdtypes.GlobalConfig {
	return &cmdtypes.GlobalConfig{Config: cfg, Output: format}
}

// useFakePlatform routes NewConnector to fp for the duration of the test.
func useFakePlatform(t *testing.T, fp *testutil.FakePlatform) *platform.Options {
	t.Helper()
	var seen platform.Options
	orig := NewPlatform
	NewPlatform = func(opts platform.Options) (connector.Platform, error) {
		seen = opts
		return fp, nil
	}
	t.Cleanup(func() { NewPlatform = orig })
	return &seen
}

type fakeSecretReader struct {
	values map[string]string
	refs   []kubernetes.SecretKeyRef
}

func (f *fakeSecretReader) ReadSecretValue(_ context.Context, ref kubernetes.SecretKeyRef) (string, error) {
	f.refs = append(f.refs, ref)
	v, ok := f.values[ref.String()]
	if !ok {
		return "", oerrors.NewNotFoundError("secret not found", ref.String(), "")
	}
	return v, nil
}

func TestParseChange(t *testing.T) {
	tests := []struct {
		raw     string
		want    reconcile.Change
		wantErr bool
	}{
		{
			raw:  "add:productRoles=P1:R1",
			want: reconcile.Change{Op: reconcile.OpAdd, Attribute: reconcile.AttrProductRoles, Value: "P1:R1"},
		},
		{
			raw:  "Remove:productGroups=P1:G=7",
			want: reconcile.Change{Op: reconcile.OpRemove, Attribute: reconcile.AttrProductGroups, Value: "P1:G=7"},
		},
		{
			raw:  "add:platformRights",
			want: reconcile.Change{Op: reconcile.OpAdd, Attribute: reconcile.AttrPlatformRights, Value: reconcile.PlatformAdministrator},
		},
		{raw: "add:productRoles", wantErr: true},
		{raw: "set:productRoles=P1:R1", wantErr: true},
		{raw: "add:nickname=bob", wantErr: true},
		{raw: "productRoles=P1:R1", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseChange(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, oerrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChangeFlags_ParseKeepsOrder(t *testing.T) {
	f := ChangeFlags{Changes: []string{"add:productRoles=P1:R1", "remove:productRoles=P1:R1"}}

	changes, err := f.Parse()
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, reconcile.OpAdd, changes[0].Op)
	assert.Equal(t, reconcile.OpRemove, changes[1].Op)
}

func TestInputFlags_Read(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "in.json", `{"identity":"a@example.com"}`)

	data, err := (&InputFlags{Input: path}).Read(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"identity":"a@example.com"}`, string(data))

	data, err = (&InputFlags{}).Read(nil)
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = (&InputFlags{Input: dir + "/missing.json"}).Read(nil)
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
}

func TestPlatformOptions(t *testing.T) {
	t.Run("copies config", func(t *testing.T) {
		opts, err := PlatformOptions(context.Background(), globalConfig(validConfig(), output.FormatJSON), nil)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com", opts.RootURL)
		assert.Equal(t, "secret", opts.ClientSecret)
		assert.Equal(t, "acme", opts.Org)
		assert.Equal(t, config.DefaultTimeout, opts.Timeout)
	})

	t.Run("org flag overrides config", func(t *testing.T) {
		g := globalConfig(validConfig(), output.FormatJSON)
		g.Resolved = &config.ResolvedConfig{Org: config.ResolvedValue{Key: "org", Value: "other", Source: config.SourceFlag}}

		opts, err := PlatformOptions(context.Background(), g, nil)
		require.NoError(t, err)
		assert.Equal(t, "other", opts.Org)
	})

	t.Run("invalid config is a validation error", func(t *testing.T) {
		cfg := validConfig()
		cfg.ClientID = ""

		_, err := PlatformOptions(context.Background(), globalConfig(cfg, output.FormatJSON), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, oerrors.ErrValidation)
		assert.Contains(t, err.Error(), "clientId")
	})

	t.Run("missing config reports load error", func(t *testing.T) {
		g := &cmdtypes.GlobalConfig{LoadErr: errors.New("reading config file: bad yaml")}

		_, err := PlatformOptions(context.Background(), g, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, oerrors.ErrValidation)
		assert.Contains(t, err.Error(), "bad yaml")
	})

	t.Run("secret ref is read from kubernetes", func(t *testing.T) {
		reader := &fakeSecretReader{values: map[string]string{"conn/platconn#clientSecret": "from-secret"}}
		orig := NewSecretReader
		var gotOpts kubernetes.ClientOptions
		NewSecretReader = func(opts kubernetes.ClientOptions) (SecretReader, error) {
			gotOpts = opts
			return reader, nil
		}
		t.Cleanup(func() { NewSecretReader = orig })

		cfg := validConfig()
		cfg.ClientSecret = ""
		cfg.ClientSecretRef = &config.SecretRef{Namespace: "conn", Name: "platconn", Key: "clientSecret"}
		g := globalConfig(cfg, output.FormatJSON)
		g.Resolved = &config.ResolvedConfig{
			Kubeconfig: config.ResolvedValue{Value: "/tmp/kubeconfig"},
			Context:    config.ResolvedValue{Value: "prod"},
		}

		opts, err := PlatformOptions(context.Background(), g, nil)
		require.NoError(t, err)
		assert.Equal(t, "from-secret", opts.ClientSecret)
		assert.Equal(t, kubernetes.ClientOptions{Kubeconfig: "/tmp/kubeconfig", Context: "prod"}, gotOpts)
		require.Len(t, reader.refs, 1)
	})

	t.Run("missing secret is not found", func(t *testing.T) {
		orig := NewSecretReader
		NewSecretReader = func(kubernetes.ClientOptions) (SecretReader, error) {
			return &fakeSecretReader{}, nil
		}
		t.Cleanup(func() { NewSecretReader = orig })

		cfg := validConfig()
		cfg.ClientSecret = ""
		cfg.ClientSecretRef = &config.SecretRef{Namespace: "conn", Name: "platconn", Key: "clientSecret"}

		_, err := PlatformOptions(context.Background(), globalConfig(cfg, output.FormatJSON), nil)
		assert.ErrorIs(t, err, oerrors.ErrNotFound)
	})
}

func TestRunCommand_WritesRecords(t *testing.T) {
	fp := testutil.NewFakePlatform(platform.Account{
		Email:     "jane@example.com",
		IsEnabled: true,
		Products:  []platform.Product{{ID: "P1", Roles: []platform.Role{{ID: "R1"}}}},
	})
	seen := useFakePlatform(t, fp)

	var out bytes.Buffer
	err := RunCommand(context.Background(), globalConfig(validConfig(), output.FormatJSON),
		dispatch.Command{Type: dispatch.TypeAccountList}, &out)
	require.NoError(t, err)

	var got reconcile.Account
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "jane@example.com", got.Identity)
	assert.Equal(t, []string{"P1:R1"}, got.Attributes.ProductRoles)
	assert.Equal(t, "acme", seen.Org)
}

func TestRunCommand_TableOutput(t *testing.T) {
	fp := testutil.NewFakePlatform(platform.Account{Email: "jane@example.com", IsEnabled: true, IsAdmin: true})
	useFakePlatform(t, fp)

	var out bytes.Buffer
	err := RunCommand(context.Background(), globalConfig(validConfig(), output.FormatTable),
		dispatch.Command{Type: dispatch.TypeAccountList}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "IDENTITY")
	assert.Contains(t, out.String(), "jane@example.com")
}

func TestRunCommand_ErrorCarriesExitCode(t *testing.T) {
	useFakePlatform(t, testutil.NewFakePlatform())

	var out bytes.Buffer
	err := RunCommand(context.Background(), globalConfig(validConfig(), output.FormatJSON),
		dispatch.Command{Type: dispatch.TypeAccountRead, Input: json.RawMessage(`{"identity":"nobody@example.com"}`)}, &out)
	require.Error(t, err)

	var exitErr *oerrors.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, oerrors.ExitNotFound, exitErr.Code)
	assert.True(t, exitErr.Printed)
	assert.Empty(t, out.String())
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	useFakePlatform(t, testutil.NewFakePlatform())
	cfg := validConfig()
	cfg.Org = ""

	err := RunCommand(context.Background(), globalConfig(cfg, output.FormatJSON),
		dispatch.Command{Type: dispatch.TypeAccountList}, &bytes.Buffer{})

	var exitErr *oerrors.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, oerrors.ExitValidationError, exitErr.Code)
}

func TestPrintError_UpstreamCode(t *testing.T) {
	err := PrintError("failed", &oerrors.UpstreamError{Operation: "GetAccount", StatusCode: 500, Body: "boom"})

	var exitErr *oerrors.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, oerrors.ExitUpstreamError, exitErr.Code)
}
