// Package kubernetes reads connector credentials from Kubernetes Secrets.
package kubernetes

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	oerrors "github.com/opmodel/platconn/internal/errors"
)

// ClientOptions configures Kubernetes client creation.
type ClientOptions struct {
	// Kubeconfig is the path to the kubeconfig file.
	// Precedence: this field > PLATCONN_KUBECONFIG env > KUBECONFIG env > ~/.kube/config
	Kubeconfig string

	// Context is the Kubernetes context to use.
	// If empty, uses the current-context from kubeconfig.
	Context string
}

// Client wraps the Kubernetes clientset.
type Client struct {
	Clientset kubernetes.Interface
}

// NewClient creates a Kubernetes client with the given options.
// Inside a pod without a kubeconfig the in-cluster config is used.
func NewClient(opts ClientOptions) (*Client, error) {
	restConfig, err := buildRestConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("building kubernetes config: %w",
			oerrors.Wrap(oerrors.ErrConnectivity, err.Error()))
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("creating clientset: %w",
			oerrors.Wrap(oerrors.ErrConnectivity, err.Error()))
	}

	return &Client{Clientset: clientset}, nil
}

// buildRestConfig resolves kubeconfig with precedence:
// flag > PLATCONN_KUBECONFIG env > KUBECONFIG env > ~/.kube/config > in-cluster
func buildRestConfig(opts ClientOptions) (*rest.Config, error) {
	kubeconfigPath := resolveKubeconfig(opts.Kubeconfig)

	if _, err := os.Stat(kubeconfigPath); err != nil && opts.Kubeconfig == "" {
		if inCluster, icErr := rest.InClusterConfig(); icErr == nil {
			return inCluster, nil
		}
	}

	loadingRules := &clientcmd.ClientConfigLoadingRules{
		ExplicitPath: kubeconfigPath,
	}

	overrides := &clientcmd.ConfigOverrides{}
	if opts.Context != "" {
		overrides.CurrentContext = opts.Context
	}

	config := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules,
		overrides,
	)

	return config.ClientConfig()
}

// resolveKubeconfig resolves kubeconfig path with precedence:
// flag > PLATCONN_KUBECONFIG > KUBECONFIG > ~/.kube/config
func resolveKubeconfig(flagValue string) string {
	var path string

	if flagValue != "" {
		path = flagValue
	} else if v := os.Getenv("PLATCONN_KUBECONFIG"); v != "" {
		path = v
	} else if v := os.Getenv("KUBECONFIG"); v != "" {
		path = v
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, ".kube", "config")
	}

	return expandTilde(path)
}

// expandTilde expands ~ or ~/ prefix in a path to the user's home directory.
// If os.UserHomeDir fails, returns the original path.
func expandTilde(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	if len(path) > 1 && path[1] == '/' {
		return filepath.Join(homeDir, path[2:])
	}

	// Don't expand ~username patterns
	return path
}
