package auth

import (
	"context"
	"errors"

	"telemetry-ingest/internal/shared/configs"
)

// ErrCredentialNotFound is returned by a directory when no tenant owns the
// credential.
var ErrCredentialNotFound = errors.New("credential not found")

// Identity is a resolved tenant credential.
type Identity struct {
	TenantID  string
	ProjectID string
}

// CredentialDirectory is the persistent lookup behind the resolver cache.
// A database-backed implementation can replace the static one without
// touching the resolver.
//
//go:generate mockgen -source=directory.go -destination=./mocks/directory_mock.go -package=mocks
type CredentialDirectory interface {
	Lookup(ctx context.Context, credential string) (*Identity, error)
}

type staticDirectory struct {
	byCredential map[string]Identity
}

// NewStaticDirectory builds a directory from the configured API key list.
func NewStaticDirectory(keys []configs.APIKeyConfig) CredentialDirectory {
	byCredential := make(map[string]Identity, len(keys))
	for _, key := range keys {
		byCredential[key.Key] = Identity{TenantID: key.TenantID, ProjectID: key.ProjectID}
	}
	return &staticDirectory{byCredential: byCredential}
}

func (d *staticDirectory) Lookup(_ context.Context, credential string) (*Identity, error) {
	identity, ok := d.byCredential[credential]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	return &identity, nil
}
