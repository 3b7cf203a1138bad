// Package config provides configuration loading and management.
package config

import "time"

// Defaults applied by WithDefaults.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultServerAddr        = ":8080"
	DefaultRequestsPerSecond = 10
	DefaultBurst             = 5
)

// SecretRef points at a key inside a Kubernetes Secret holding the client secret.
type SecretRef struct {
	Namespace string `json:"namespace" yaml:"namespace" mapstructure:"namespace"`
	Name      string `json:"name" yaml:"name" mapstructure:"name"`
	Key       string `json:"key" yaml:"key" mapstructure:"key"`
}

// RateLimitConfig bounds outgoing platform requests.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate. Zero disables limiting.
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond" mapstructure:"requestsPerSecond"`

	// Burst is the token bucket size.
	Burst int `json:"burst" yaml:"burst" mapstructure:"burst"`
}

// KubernetesConfig locates the cluster used to resolve ClientSecretRef.
type KubernetesConfig struct {
	// Kubeconfig is the path to the kubeconfig file.
	// Env: PLATCONN_KUBECONFIG, Default: ~/.kube/config
	Kubeconfig string `json:"kubeconfig,omitempty" yaml:"kubeconfig,omitempty" mapstructure:"kubeconfig"`

	// Context is the Kubernetes context to use.
	// Env: PLATCONN_CONTEXT, Default: current-context from kubeconfig
	Context string `json:"context,omitempty" yaml:"context,omitempty" mapstructure:"context"`
}

// ServerConfig configures `platconn serve`.
type ServerConfig struct {
	// Addr is the listen address. Env: PLATCONN_SERVER_ADDR
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" yaml:"timestamps,omitempty" mapstructure:"timestamps"`
}

// Config represents the connector configuration.
// Loaded from ~/.platconn/config.yaml and validated against the embedded CUE schema.
type Config struct {
	// RootURL is the platform API base, e.g. https://api.example.com.
	RootURL string `json:"rootUrl" yaml:"rootUrl" mapstructure:"rootUrl"`

	// TokenURL is the OAuth2 client-credentials endpoint.
	TokenURL string `json:"tokenUrl" yaml:"tokenUrl" mapstructure:"tokenUrl"`

	// AudienceURL is sent as the token request audience.
	AudienceURL string `json:"audienceUrl" yaml:"audienceUrl" mapstructure:"audienceUrl"`

	ClientID     string `json:"clientId" yaml:"clientId" mapstructure:"clientId"`
	ClientSecret string `json:"clientSecret,omitempty" yaml:"clientSecret,omitempty" mapstructure:"clientSecret"`

	// ClientSecretRef is used when ClientSecret is empty.
	ClientSecretRef *SecretRef `json:"clientSecretRef,omitempty" yaml:"clientSecretRef,omitempty" mapstructure:"clientSecretRef"`

	// SubKey is the API gateway subscription key.
	SubKey string `json:"subKey" yaml:"subKey" mapstructure:"subKey"`

	// Org is the tenant path segment in every platform endpoint.
	Org string `json:"org" yaml:"org" mapstructure:"org"`

	// IgnoreSSL disables TLS certificate verification for platform calls.
	IgnoreSSL bool `json:"ignoreSSL" yaml:"ignoreSSL" mapstructure:"ignoreSSL"`

	// Timeout bounds each platform HTTP request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	RateLimit  RateLimitConfig  `json:"rateLimit" yaml:"rateLimit" mapstructure:"rateLimit"`
	Kubernetes KubernetesConfig `json:"kubernetes,omitempty" yaml:"kubernetes,omitempty" mapstructure:"kubernetes"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Log        LogConfig        `json:"log,omitempty" yaml:"log,omitempty" mapstructure:"log"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `platconn config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		RootURL:     "https://api.example.com",
		TokenURL:    "https://login.example.com/oauth/token",
		AudienceURL: "https://api.example.com",
		Timeout:     DefaultTimeout,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
		},
		Kubernetes: KubernetesConfig{
			Kubeconfig: "~/.kube/config",
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.RateLimit.RequestsPerSecond > 0 && out.RateLimit.Burst <= 0 {
		out.RateLimit.Burst = DefaultBurst
	}
	if out.Server.Addr == "" {
		out.Server.Addr = DefaultServerAddr
	}
	return &out
}
