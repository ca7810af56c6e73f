package auth

import (
	"context"
	"strings"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/shared/loggers"
)

//go:generate mockgen -source=authenticator.go -destination=./mocks/authenticator_mock.go -package=mocks
type Authenticator interface {
	// Authenticate resolves the Authorization header to an AuthContext.
	// Credentials in the long-lived shape go to the resolver; anything else
	// is attempted as a scoped widget token.
	Authenticate(ctx context.Context, authorizationHeader string) (*models.AuthContext, error)
}

type authenticator struct {
	resolver CredentialResolver
	tokens   ScopedTokenService
}

func NewAuthenticator(resolver CredentialResolver, tokens ScopedTokenService) Authenticator {
	return &authenticator{resolver: resolver, tokens: tokens}
}

func (a *authenticator) Authenticate(ctx context.Context, authorizationHeader string) (*models.AuthContext, error) {
	header := strings.TrimSpace(authorizationHeader)
	if header == "" {
		metricAuthFailuresTotal.WithLabelValues(codeAuthMissing).Inc()
		return nil, errAuthMissing()
	}

	scheme, credential, found := strings.Cut(header, " ")
	credential = strings.TrimSpace(credential)
	if !found || !strings.EqualFold(scheme, "Bearer") || credential == "" {
		metricAuthFailuresTotal.WithLabelValues(codeMalformedHeader).Inc()
		return nil, errMalformedHeader()
	}

	if HasCredentialShape(credential) {
		return a.resolver.Resolve(ctx, credential)
	}

	authCtx, err := a.tokens.Verify(ctx, credential)
	if err != nil {
		loggers.Ctx(ctx).Debug().Err(err).Msg("scoped token verification failed")
		return nil, err
	}
	return authCtx, nil
}
