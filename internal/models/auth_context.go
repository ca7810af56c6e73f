package models

// SourceKind identifies which credential shape authenticated a request.
type SourceKind string

const (
	SourceKindAPIKey      SourceKind = "api_key"
	SourceKindScopedToken SourceKind = "scoped_token"
)

// AuthContext is the immutable result of authenticating one request. It is
// produced once by the authenticator and consumed by the rate limiter (keying)
// and the enricher (stamping).
type AuthContext struct {
	SourceKind SourceKind
	TenantID   string
	ProjectID  string

	// Set only for scoped tokens: the single trace/session the token may
	// submit events for.
	BoundTraceID   string
	BoundSessionID string

	// RateKey is the identity the per-credential token-bucket pool keys on.
	// For API keys it is the credential itself; for scoped tokens the bound
	// trace, so one leaked widget token cannot exhaust its tenant's budget.
	RateKey string
}

// FromScopedToken reports whether the request was authorized by a scoped
// widget token and is therefore subject to the trace-binding check.
func (a *AuthContext) FromScopedToken() bool {
	return a.SourceKind == SourceKindScopedToken
}
