package config

import (
	"os"

	"github.com/opmodel/platconn/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue is one configuration value with its provenance.
type ResolvedValue struct {
	Key    string
	Value  string
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// resolve applies flag > env > config > default precedence to one key.
// envVar may be empty for keys that have no environment override.
func resolve(key, flagValue, envVar, configValue, defaultValue string) ResolvedValue {
	rv := ResolvedValue{Key: key, Shadowed: make(map[ConfigSource]string)}

	var envValue string
	if envVar != "" {
		envValue = os.Getenv(envVar)
	}
	// The loader already merged env into the config; do not report it twice.
	if envValue != "" && configValue == envValue {
		configValue = ""
	}

	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, flagValue},
		{SourceEnv, envValue},
		{SourceConfig, configValue},
		{SourceDefault, defaultValue},
	}

	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if rv.Source == "" {
			rv.Value = c.value
			rv.Source = c.source
			continue
		}
		if c.source != SourceDefault {
			rv.Shadowed[c.source] = c.value
		}
	}

	return rv
}

// ResolveAllOptions carries flag values and the loaded config.
type ResolveAllOptions struct {
	ConfigFlag     string
	OrgFlag        string
	KubeconfigFlag string
	ContextFlag    string
	OutputFlag     string
	Config         *Config
}

// ResolvedConfig is the final set of values the CLI acts on.
type ResolvedConfig struct {
	ConfigPath ResolvedValue
	Org        ResolvedValue
	Kubeconfig ResolvedValue
	Context    ResolvedValue
	Output     ResolvedValue
}

// Values returns all resolved values in display order.
func (r *ResolvedConfig) Values() []ResolvedValue {
	return []ResolvedValue{r.ConfigPath, r.Org, r.Kubeconfig, r.Context, r.Output}
}

// ResolveAll resolves every flag-overridable value using precedence:
// (1) flag, (2) PLATCONN_* env, (3) config file, (4) default.
func ResolveAll(opts ResolveAllOptions) (*ResolvedConfig, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &Config{}
	}

	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}

	return &ResolvedConfig{
		ConfigPath: resolve("config", opts.ConfigFlag, "PLATCONN_CONFIG", "", paths.ConfigFile),
		Org:        resolve("org", opts.OrgFlag, "PLATCONN_ORG", cfg.Org, ""),
		Kubeconfig: resolve("kubeconfig", opts.KubeconfigFlag, "PLATCONN_KUBECONFIG", cfg.Kubernetes.Kubeconfig, "~/.kube/config"),
		Context:    resolve("context", opts.ContextFlag, "PLATCONN_CONTEXT", cfg.Kubernetes.Context, ""),
		Output:     resolve("output", opts.OutputFlag, "PLATCONN_OUTPUT", "", string(output.FormatYAML)),
	}, nil
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
