package auth

import (
	"context"
	"errors"
	"time"

	"telemetry-ingest/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// scopedClaims are the claims carried by a short-lived widget token. The
// token authorizes events for exactly one trace/session pair, so an
// unauthenticated browser context never holds the tenant's long-lived
// credential.
type scopedClaims struct {
	TenantID  string `json:"tid"`
	ProjectID string `json:"pid"`
	TraceID   string `json:"trace_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

//go:generate mockgen -source=scoped_token.go -destination=./mocks/scoped_token_mock.go -package=mocks
type ScopedTokenService interface {
	// Mint issues a token bound to one trace/session.
	Mint(ctx context.Context, tenantID, projectID, traceID, sessionID string) (token string, expiresAt time.Time, err error)
	// Verify checks signature and expiry. Expired tokens fail with a distinct
	// error code from malformed or badly signed ones.
	Verify(ctx context.Context, token string) (*models.AuthContext, error)
}

type scopedTokenService struct {
	secret []byte
	ttl    time.Duration

	now func() time.Time
}

func NewScopedTokenService(secret string, ttl time.Duration) ScopedTokenService {
	return &scopedTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *scopedTokenService) Mint(_ context.Context, tenantID, projectID, traceID, sessionID string) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := scopedClaims{
		TenantID:  tenantID,
		ProjectID: projectID,
		TraceID:   traceID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errInternalTokenSignFailed(err)
	}
	return token, expiresAt, nil
}

func (s *scopedTokenService) Verify(_ context.Context, token string) (*models.AuthContext, error) {
	claims := &scopedClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			metricAuthFailuresTotal.WithLabelValues(codeExpiredToken).Inc()
			return nil, errExpiredToken(err)
		}
		metricAuthFailuresTotal.WithLabelValues(codeInvalidToken).Inc()
		return nil, errInvalidToken(err)
	}
	if !parsed.Valid || claims.TenantID == "" || claims.TraceID == "" {
		metricAuthFailuresTotal.WithLabelValues(codeInvalidToken).Inc()
		return nil, errInvalidToken(nil)
	}

	return &models.AuthContext{
		SourceKind:     models.SourceKindScopedToken,
		TenantID:       claims.TenantID,
		ProjectID:      claims.ProjectID,
		BoundTraceID:   claims.TraceID,
		BoundSessionID: claims.SessionID,
		RateKey:        "scoped:" + claims.TraceID,
	}, nil
}
