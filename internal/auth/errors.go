package auth

import (
	"fmt"

	"telemetry-ingest/internal/shared/svcerrors"
)

// Authenticator and resolver errors
const (
	codeAuthMissing     = "AUTH_1000"
	codeMalformedHeader = "AUTH_1001"
	codeInvalidKey      = "AUTH_1002"
	codeInvalidToken    = "AUTH_1003"
	codeExpiredToken    = "AUTH_1004"

	codeTenantCredentialRequired = "AUTH_1005"
	codeInvalidMintRequest       = "AUTH_1006"

	codeInternalDirectoryFailed = "AUTH_9000"
	codeInternalTokenSignFailed = "AUTH_9001"
)

// ErrTenantCredentialRequired rejects token-minting attempts made with a
// scoped token instead of a long-lived tenant credential.
func ErrTenantCredentialRequired() *svcerrors.ServiceError {
	return svcerrors.NewUnauthenticatedError(codeTenantCredentialRequired, "minting widget tokens requires a tenant credential", nil)
}

// ErrInvalidMintRequest rejects malformed widget token requests.
func ErrInvalidMintRequest(message string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeInvalidMintRequest, message, cause)
}

func errAuthMissing() *svcerrors.ServiceError {
	return svcerrors.NewUnauthenticatedError(codeAuthMissing, "missing Authorization header", nil)
}

func errMalformedHeader() *svcerrors.ServiceError {
	return svcerrors.NewUnauthenticatedError(codeMalformedHeader, "Authorization header must use the Bearer scheme", nil)
}

func errInvalidKey(cause error) *svcerrors.ServiceError {
	return svcerrors.NewUnauthenticatedError(codeInvalidKey, "invalid credential", cause)
}

func errInvalidToken(cause error) *svcerrors.ServiceError {
	return svcerrors.NewUnauthenticatedError(codeInvalidToken, "invalid token", cause)
}

func errExpiredToken(cause error) *svcerrors.ServiceError {
	return svcerrors.NewUnauthenticatedError(codeExpiredToken, "token expired", cause)
}

func errInternalDirectoryFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalDirectoryFailed, fmt.Errorf("credentialDirectoryFailed: %w", cause))
}

func errInternalTokenSignFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalTokenSignFailed, fmt.Errorf("tokenSignFailed: %w", cause))
}
