package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/config"
	"github.com/opmodel/platconn/internal/connector"
	"github.com/opmodel/platconn/internal/dispatch"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/kubernetes"
	"github.com/opmodel/platconn/internal/metrics"
	"github.com/opmodel/platconn/internal/output"
	"github.com/opmodel/platconn/internal/platform"
)

// SecretReader reads a client secret from a Kubernetes Secret.
type SecretReader interface {
	ReadSecretValue(ctx context.Context, ref kubernetes.SecretKeyRef) (string, error)
}

// NewSecretReader is replaced in tests.
var NewSecretReader = func(opts kubernetes.ClientOptions) (SecretReader, error) {
	return kubernetes.NewClient(opts)
}

// NewPlatform is replaced in tests.
var NewPlatform = func(opts platform.Options) (connector.Platform, error) {
	return platform.NewClient(opts)
}

// PlatformOptions builds platform client options from the global config,
// validating it and resolving clientSecretRef when needed.
func PlatformOptions(ctx context.Context, g *cmdtypes.GlobalConfig, rec platform.Recorder) (platform.Options, error) {
	if g.Config == nil {
		if g.LoadErr != nil {
			return platform.Options{}, oerrors.NewValidationError(
				g.LoadErr.Error(), g.ConfigPath, "", "Run `platconn config vet` for details")
		}
		return platform.Options{}, oerrors.NewValidationError("no configuration loaded", g.ConfigPath, "", "Run `platconn config init`")
	}

	cfg := *g.Config
	if g.Resolved != nil && g.Resolved.Org.Value != "" {
		cfg.Org = g.Resolved.Org.Value
	}

	validator, err := config.NewValidator()
	if err != nil {
		return platform.Options{}, fmt.Errorf("creating validator: %w", err)
	}
	if err := validator.Validate(&cfg); err != nil {
		return platform.Options{}, oerrors.NewValidationError(
			err.Error(), g.ConfigPath, "", "Fix the config file or the PLATCONN_* environment")
	}

	secret := cfg.ClientSecret
	if secret == "" && cfg.ClientSecretRef != nil {
		secret, err = resolveClientSecret(ctx, g, cfg.ClientSecretRef)
		if err != nil {
			return platform.Options{}, err
		}
	}

	return platform.Options{
		RootURL:           cfg.RootURL,
		TokenURL:          cfg.TokenURL,
		AudienceURL:       cfg.AudienceURL,
		ClientID:          cfg.ClientID,
		ClientSecret:      secret,
		SubKey:            cfg.SubKey,
		Org:               cfg.Org,
		IgnoreSSL:         cfg.IgnoreSSL,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		Recorder:          rec,
	}, nil
}

func resolveClientSecret(ctx context.Context, g *cmdtypes.GlobalConfig, ref *config.SecretRef) (string, error) {
	opts := kubernetes.ClientOptions{}
	if g.Resolved != nil {
		opts.Kubeconfig = g.Resolved.Kubeconfig.Value
		opts.Context = g.Resolved.Context.Value
	}

	reader, err := NewSecretReader(opts)
	if err != nil {
		return "", err
	}
	return reader.ReadSecretValue(ctx, kubernetes.SecretKeyRef{
		Namespace: ref.Namespace,
		Name:      ref.Name,
		Key:       ref.Key,
	})
}

// NewConnector builds a Connector for the configured platform. collector may
// be nil.
func NewConnector(ctx context.Context, g *cmdtypes.GlobalConfig, collector *metrics.Collector) (*connector.Connector, error) {
	var rec platform.Recorder
	if collector != nil {
		rec = collector
	}
	opts, err := PlatformOptions(ctx, g, rec)
	if err != nil {
		return nil, err
	}
	client, err := NewPlatform(opts)
	if err != nil {
		return nil, err
	}
	output.Debug("platform client ready", "root", opts.RootURL, "org", opts.Org)
	return connector.New(client), nil
}

// NewDispatcher builds a Dispatcher for the configured platform.
func NewDispatcher(ctx context.Context, g *cmdtypes.GlobalConfig, collector *metrics.Collector) (*dispatch.Dispatcher, error) {
	c, err := NewConnector(ctx, g, collector)
	if err != nil {
		return nil, err
	}
	return dispatch.New(c, collector), nil
}

func readAll(f *os.File) ([]byte, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return data, nil
}
