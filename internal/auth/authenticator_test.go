package auth

import (
	"context"
	"testing"
	"time"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/shared/svcerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(t *testing.T) (Authenticator, ScopedTokenService) {
	t.Helper()

	resolver := NewCredentialResolver(newCountingDirectory(), 16, time.Minute)
	tokens := NewScopedTokenService(testSecret, 15*time.Minute)
	return NewAuthenticator(resolver, tokens), tokens
}

func assertAuthCode(t *testing.T, err error, wantCode string) {
	t.Helper()

	require.Error(t, err)
	svcErr, ok := svcerrors.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, wantCode, svcErr.Code)
	assert.Equal(t, 401, svcErr.HttpStatusCode)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	t.Parallel()

	authenticator, _ := newTestAuthenticator(t)
	_, err := authenticator.Authenticate(context.Background(), "")
	assertAuthCode(t, err, "AUTH_1000")
}

func TestAuthenticate_NonBearerScheme(t *testing.T) {
	t.Parallel()

	authenticator, _ := newTestAuthenticator(t)
	_, err := authenticator.Authenticate(context.Background(), "Basic dXNlcjpwYXNz")
	assertAuthCode(t, err, "AUTH_1001")
}

func TestAuthenticate_BearerWithoutCredential(t *testing.T) {
	t.Parallel()

	authenticator, _ := newTestAuthenticator(t)
	_, err := authenticator.Authenticate(context.Background(), "Bearer")
	assertAuthCode(t, err, "AUTH_1001")
}

func TestAuthenticate_APIKey(t *testing.T) {
	t.Parallel()

	authenticator, _ := newTestAuthenticator(t)

	authCtx, err := authenticator.Authenticate(context.Background(), "Bearer "+testCredential)
	require.NoError(t, err)
	assert.Equal(t, models.SourceKindAPIKey, authCtx.SourceKind)
	assert.Equal(t, "tenant-1", authCtx.TenantID)
	assert.Empty(t, authCtx.BoundTraceID)
}

func TestAuthenticate_UnknownAPIKey(t *testing.T) {
	t.Parallel()

	authenticator, _ := newTestAuthenticator(t)
	_, err := authenticator.Authenticate(context.Background(), "Bearer "+GenerateCredential())
	assertAuthCode(t, err, "AUTH_1002")
}

func TestAuthenticate_ScopedToken(t *testing.T) {
	t.Parallel()

	authenticator, tokens := newTestAuthenticator(t)
	token, _, err := tokens.Mint(context.Background(), "tenant-9", "project-9", "trace-x", "session-y")
	require.NoError(t, err)

	authCtx, err := authenticator.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, models.SourceKindScopedToken, authCtx.SourceKind)
	assert.Equal(t, "trace-x", authCtx.BoundTraceID)
}

func TestAuthenticate_GarbageCredential_TriedAsToken(t *testing.T) {
	t.Parallel()

	authenticator, _ := newTestAuthenticator(t)
	_, err := authenticator.Authenticate(context.Background(), "Bearer garbage")
	assertAuthCode(t, err, "AUTH_1003")
}
