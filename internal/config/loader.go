package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable prefix for platconn configuration.
const envPrefix = "PLATCONN"

// envBindings maps config keys to their environment variables.
var envBindings = map[string]string{
	"rootUrl":                     "PLATCONN_ROOT_URL",
	"tokenUrl":                    "PLATCONN_TOKEN_URL",
	"audienceUrl":                 "PLATCONN_AUDIENCE_URL",
	"clientId":                    "PLATCONN_CLIENT_ID",
	"clientSecret":                "PLATCONN_CLIENT_SECRET",
	"subKey":                      "PLATCONN_SUB_KEY",
	"org":                         "PLATCONN_ORG",
	"ignoreSSL":                   "PLATCONN_IGNORE_SSL",
	"timeout":                     "PLATCONN_TIMEOUT",
	"rateLimit.requestsPerSecond": "PLATCONN_RATE_LIMIT_RPS",
	"rateLimit.burst":             "PLATCONN_RATE_LIMIT_BURST",
	"kubernetes.kubeconfig":       "PLATCONN_KUBECONFIG",
	"kubernetes.context":          "PLATCONN_CONTEXT",
	"server.addr":                 "PLATCONN_SERVER_ADDR",
}

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	return &Loader{v: v}
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// Environment variables take precedence over file values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	l.v.SetConfigFile(expandedPath)
	l.v.SetConfigType("yaml")

	// A missing file is fine: defaults and env vars still apply.
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration and applies defaults.
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}

	return cfg.WithDefaults(), nil
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(configFile string) (bool, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return false, err
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
