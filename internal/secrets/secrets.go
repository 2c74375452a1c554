package secrets

import (
	"context"
	"fmt"
	"unicode/utf8"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/logger"
)

// DefaultVersion is used when a lookup does not name a version
const DefaultVersion = "latest"

// Store retrieves named secrets for a project
type Store interface {
	Get(ctx context.Context, name, projectID, version string) (string, error)
}

// versionAccessor is the slice of the Secret Manager client the store needs
type versionAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// GoogleStore reads secrets from GCP Secret Manager. Every Get is one API call.
type GoogleStore struct {
	client versionAccessor
	closer func() error
	logger *logger.Logger
}

// Verify that GoogleStore implements Store
var _ Store = (*GoogleStore)(nil)

// NewGoogleStore creates a Secret Manager backed store using application default credentials
func NewGoogleStore(ctx context.Context, log *logger.Logger) (*GoogleStore, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}
	return &GoogleStore{
		client: client,
		closer: client.Close,
		logger: log,
	}, nil
}

// ResourceName builds the fully-qualified secret version path
func ResourceName(projectID, name, version string) string {
	if version == "" {
		version = DefaultVersion
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", projectID, name, version)
}

// Get returns the payload of a secret version as text
func (s *GoogleStore) Get(ctx context.Context, name, projectID, version string) (string, error) {
	if name == "" || projectID == "" {
		return "", fmt.Errorf("secret name and project are required (name=%q, project=%q)", name, projectID)
	}

	resource := ResourceName(projectID, name, version)
	s.logger.Debug("Accessing secret version", "secret", resource)

	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resource,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", resource, err)
	}

	data := resp.GetPayload().GetData()
	if !utf8.Valid(data) {
		return "", fmt.Errorf("secret %s payload is not valid UTF-8", resource)
	}

	return string(data), nil
}

// Close releases the underlying client connection
func (s *GoogleStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
