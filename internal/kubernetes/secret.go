package kubernetes

import (
	"context"
	"fmt"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/output"
)

// SecretKeyRef identifies one key of a Secret.
type SecretKeyRef struct {
	Namespace string
	Name      string
	Key       string
}

// String returns namespace/name#key.
func (r SecretKeyRef) String() string {
	return fmt.Sprintf("%s/%s#%s", r.Namespace, r.Name, r.Key)
}

// ReadSecretValue returns the value stored under ref.Key.
// Surrounding whitespace, usually a trailing newline from `kubectl create
// secret --from-file`, is trimmed.
func (c *Client) ReadSecretValue(ctx context.Context, ref SecretKeyRef) (string, error) {
	output.Debug("reading client secret from Kubernetes", "secret", ref.String())

	secret, err := c.Clientset.CoreV1().Secrets(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		switch {
		case apierrors.IsNotFound(err):
			return "", oerrors.NewNotFoundError(
				fmt.Sprintf("secret %s/%s does not exist", ref.Namespace, ref.Name),
				ref.String(),
				"Create the secret or fix clientSecretRef in the config file",
			)
		case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
			return "", oerrors.NewPermissionError(
				fmt.Sprintf("reading secret %s/%s: %v", ref.Namespace, ref.Name, err),
				map[string]string{"Namespace": ref.Namespace},
				"Grant get on secrets to the identity running platconn",
			)
		default:
			return "", fmt.Errorf("getting secret %s/%s: %w", ref.Namespace, ref.Name,
				oerrors.Wrap(oerrors.ErrConnectivity, err.Error()))
		}
	}

	if value, ok := secret.Data[ref.Key]; ok {
		return strings.TrimSpace(string(value)), nil
	}
	if value, ok := secret.StringData[ref.Key]; ok {
		return strings.TrimSpace(value), nil
	}

	return "", oerrors.NewNotFoundError(
		fmt.Sprintf("key %q not present in secret %s/%s", ref.Key, ref.Namespace, ref.Name),
		ref.String(),
		"",
	)
}
