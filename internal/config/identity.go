package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
)

// ErrNoIdentity is returned when neither GCP_PROJECT_ID nor a credential file is available
var ErrNoIdentity = errors.New("no project identity: set " + EnvProjectID + " or " + EnvCredentialsFile)

// ResolveProjectID returns the active project identity. GCP_PROJECT_ID wins;
// otherwise the project_id of the credential file is used.
func (c *Config) ResolveProjectID(ctx context.Context) (string, error) {
	if c.ProjectID != "" {
		return c.ProjectID, nil
	}
	if c.CredentialsFile == "" {
		return "", ErrNoIdentity
	}
	return ProjectIDFromFile(ctx, c.CredentialsFile)
}

// ProjectIDFromFile reads the project identity out of a Google credential file
func ProjectIDFromFile(ctx context.Context, path string) (string, error) {
	// #nosec G304 -- path comes from GOOGLE_APPLICATION_CREDENTIALS
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read credential file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data)
	if err != nil {
		return "", fmt.Errorf("failed to parse credential file %s: %w", path, err)
	}
	if creds.ProjectID == "" {
		return "", fmt.Errorf("credential file %s has no project_id", path)
	}

	return creds.ProjectID, nil
}
