package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/platconn/internal/cmdutil"
	"github.com/opmodel/platconn/internal/connector"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/platform"
	"github.com/opmodel/platconn/internal/reconcile"
	"github.com/opmodel/platconn/internal/testutil"
)

const testConfig = `rootUrl: https://api.example.com
tokenUrl: https://login.example.com/oauth/token
audienceUrl: https://api.example.com
clientId: client
clientSecret: secret
subKey: sub
org: acme
`

func writeConfig(t *testing.T) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), "config.yaml", testConfig)
}

func useFakePlatform(t *testing.T, fp *testutil.FakePlatform) *platform.Options {
	t.Helper()
	var seen platform.Options
	orig := cmdutil.NewPlatform
	cmdutil.NewPlatform = func(opts platform.Options) (connector.Platform, error) {
		seen = opts
		return fp, nil
	}
	t.Cleanup(func() { cmdutil.NewPlatform = orig })
	return &seen
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()

	assert.Equal(t, "platconn", root.Use)
	for _, name := range []string{"config", "org", "kubeconfig", "context", "output", "verbose", "timestamps"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing flag %s", name)
	}

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"test-connection", "account", "entitlement", "exec", "serve", "config", "version"})
}

func TestRoot_InvalidOutputFormat(t *testing.T) {
	_, err := execute(t, "--config", writeConfig(t), "-o", "xml", "account", "list")
	require.Error(t, err)

	var exitErr *oerrors.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, oerrors.ExitValidationError, exitErr.Code)
}

func TestAccountList_JSON(t *testing.T) {
	fp := testutil.NewFakePlatform(
		platform.Account{Email: "a@example.com", IsEnabled: true},
		platform.Account{Email: "b@example.com"},
	)
	useFakePlatform(t, fp)

	out, err := execute(t, "--config", writeConfig(t), "-o", "json", "account", "list")
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewBufferString(out))
	var got []reconcile.Account
	for dec.More() {
		var a reconcile.Account
		require.NoError(t, dec.Decode(&a))
		got = append(got, a)
	}
	require.Len(t, got, 2)
	assert.False(t, got[0].Disabled)
	assert.True(t, got[1].Disabled)
}

func TestOrgFlagOverridesConfig(t *testing.T) {
	seen := useFakePlatform(t, testutil.NewFakePlatform())

	_, err := execute(t, "--config", writeConfig(t), "--org", "beta", "-o", "json", "test-connection")
	require.NoError(t, err)
	assert.Equal(t, "beta", seen.Org)
}

func TestExec_ReadsInputFile(t *testing.T) {
	fp := testutil.NewFakePlatform(platform.Account{Email: "jane@example.com", IsEnabled: true})
	useFakePlatform(t, fp)

	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "disable.json", `{"identity":"jane@example.com"}`)

	out, err := execute(t, "--config", writeConfig(t), "-o", "json",
		"exec", "--type", "std:account:disable", "--input", input)
	require.NoError(t, err)

	var got reconcile.Account
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Disabled)

	stored, ok := fp.Account("jane@example.com")
	require.True(t, ok)
	assert.False(t, stored.IsEnabled)
}

func TestExec_UnknownType(t *testing.T) {
	useFakePlatform(t, testutil.NewFakePlatform())

	_, err := execute(t, "--config", writeConfig(t), "exec", "--type", "std:account:rename")

	var exitErr *oerrors.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, oerrors.ExitValidationError, exitErr.Code)
}

func TestVersionCmd_Execute(t *testing.T) {
	// output.Println writes to stdout, not the command's writer.
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "version")
	assert.NoError(t, err)
}
