package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"telemetry-ingest/internal/models"

	"github.com/google/uuid"
)

// credentialPrefix is the fixed prefix of long-lived tenant credentials. The
// suffix is at least 32 hex characters of randomness.
const credentialPrefix = "ak_"

var credentialShape = regexp.MustCompile(`^ak_[0-9a-f]{32,}$`)

// HasCredentialShape reports whether s looks like a long-lived tenant
// credential. The authenticator uses this to dispatch between the resolver
// and the scoped token verifier; the resolver uses it to fail fast without a
// directory lookup.
func HasCredentialShape(s string) bool {
	return credentialShape.MatchString(s)
}

// GenerateCredential mints a new credential in the canonical shape. Used by
// fixtures and provisioning tooling.
func GenerateCredential() string {
	return credentialPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

//go:generate mockgen -source=credential_resolver.go -destination=./mocks/credential_resolver_mock.go -package=mocks
type CredentialResolver interface {
	// Resolve maps a long-lived credential to its tenant identity.
	Resolve(ctx context.Context, credential string) (*models.AuthContext, error)
	// ClearCache drops a cached entry, e.g. on revocation.
	ClearCache(credential string)
}

type cacheEntry struct {
	identity  Identity
	expiresAt time.Time
}

type credentialResolver struct {
	directory  CredentialDirectory
	maxEntries int
	ttl        time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry

	now func() time.Time
}

func NewCredentialResolver(directory CredentialDirectory, maxEntries int, ttl time.Duration) CredentialResolver {
	return &credentialResolver{
		directory:  directory,
		maxEntries: maxEntries,
		ttl:        ttl,
		cache:      make(map[string]cacheEntry),
		now:        time.Now,
	}
}

func (r *credentialResolver) Resolve(ctx context.Context, credential string) (*models.AuthContext, error) {
	if !HasCredentialShape(credential) {
		metricAuthFailuresTotal.WithLabelValues(codeInvalidKey).Inc()
		return nil, errInvalidKey(nil)
	}

	if identity, ok := r.cached(credential); ok {
		return apiKeyContext(credential, identity), nil
	}

	identity, err := r.directory.Lookup(ctx, credential)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			metricAuthFailuresTotal.WithLabelValues(codeInvalidKey).Inc()
			return nil, errInvalidKey(err)
		}
		return nil, errInternalDirectoryFailed(err)
	}

	r.store(credential, *identity)
	return apiKeyContext(credential, *identity), nil
}

func (r *credentialResolver) ClearCache(credential string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, credential)
}

func (r *credentialResolver) cached(credential string) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.cache[credential]
	if !ok || r.now().After(entry.expiresAt) {
		return Identity{}, false
	}
	return entry.identity, true
}

// store inserts a cache entry, evicting expired entries first and then an
// arbitrary one if the cache is still at capacity.
func (r *credentialResolver) store(credential string, identity Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if len(r.cache) >= r.maxEntries {
		for key, entry := range r.cache {
			if now.After(entry.expiresAt) {
				delete(r.cache, key)
			}
		}
	}
	if len(r.cache) >= r.maxEntries {
		for key := range r.cache {
			delete(r.cache, key)
			break
		}
	}

	r.cache[credential] = cacheEntry{identity: identity, expiresAt: now.Add(r.ttl)}
}

func apiKeyContext(credential string, identity Identity) *models.AuthContext {
	return &models.AuthContext{
		SourceKind: models.SourceKindAPIKey,
		TenantID:   identity.TenantID,
		ProjectID:  identity.ProjectID,
		RateKey:    credential,
	}
}
