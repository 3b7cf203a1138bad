package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		RootURL:      "https://api.example.com",
		TokenURL:     "https://login.example.com/oauth/token",
		ClientID:     "connector",
		ClientSecret: "s3cret",
		SubKey:       "sub-123",
		Org:          "acme",
	}
}

func TestNewValidator(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.True(t, v.schema.Exists())
}

func TestValidateDocument(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	t.Run("accepts complete document", func(t *testing.T) {
		err := v.ValidateDocument([]byte(`
rootUrl: https://api.example.com
tokenUrl: https://login.example.com/oauth/token
clientId: connector
clientSecretRef:
  namespace: idn
  name: platform-creds
  key: clientSecret
subKey: sub-123
org: acme
ignoreSSL: false
timeout: 45s
rateLimit:
  requestsPerSecond: 5
  burst: 2
log:
  timestamps: null
`))
		assert.NoError(t, err)
	})

	t.Run("accepts empty document", func(t *testing.T) {
		assert.NoError(t, v.ValidateDocument(nil))
	})

	t.Run("rejects unknown field", func(t *testing.T) {
		err := v.ValidateDocument([]byte("registry: ghcr.io/acme\n"))
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.NotEmpty(t, verrs)
	})

	t.Run("rejects non-http root url", func(t *testing.T) {
		err := v.ValidateDocument([]byte("rootUrl: ftp://api.example.com\n"))
		assert.Error(t, err)
	})

	t.Run("rejects wrong type", func(t *testing.T) {
		err := v.ValidateDocument([]byte("ignoreSSL: \"yes\"\n"))
		assert.Error(t, err)
	})

	t.Run("rejects malformed duration", func(t *testing.T) {
		err := v.ValidateDocument([]byte("timeout: soon\n"))
		assert.Error(t, err)
	})

	t.Run("rejects incomplete secret ref", func(t *testing.T) {
		err := v.ValidateDocument([]byte("clientSecretRef:\n  name: creds\n"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, v.Validate(validConfig()))
	})

	t.Run("secret ref replaces inline secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.ClientSecret = ""
		cfg.ClientSecretRef = &SecretRef{Namespace: "idn", Name: "creds", Key: "secret"}
		assert.NoError(t, v.Validate(cfg))
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.ClientSecret = ""

		err := v.Validate(cfg)
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		require.Len(t, verrs, 1)
		assert.Equal(t, "clientSecret", verrs[0].Field)
	})

	t.Run("missing required fields are all reported", func(t *testing.T) {
		err := v.Validate(&Config{ClientSecret: "x"})
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Len(t, verrs, 5)
		assert.Contains(t, err.Error(), "org: is required")
	})

	t.Run("relative url", func(t *testing.T) {
		cfg := validConfig()
		cfg.RootURL = "/clientadmin"
		assert.Error(t, v.Validate(cfg))
	})
}

func TestValidateFile(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rootUrl: https://api.example.com
tokenUrl: https://login.example.com/oauth/token
clientId: connector
clientSecret: s3cret
subKey: sub-123
org: acme
`), 0o644))

	assert.NoError(t, v.ValidateFile(path))

	_, err = os.Stat(filepath.Join(dir, "missing.yaml"))
	require.True(t, os.IsNotExist(err))
	assert.Error(t, v.ValidateFile(filepath.Join(dir, "missing.yaml")))
}
