package http

import (
	"encoding/json"
	"net/http"
	"time"

	"telemetry-ingest/internal/auth"
	"telemetry-ingest/internal/shared/validators"
)

// WidgetTokenRequest is the body of POST /v1/widget-tokens.
type WidgetTokenRequest struct {
	TraceID   string `json:"traceId" validate:"required,max=128"`
	SessionID string `json:"sessionId" validate:"required,max=128"`
}

// WidgetTokenResponse carries the minted scoped token.
type WidgetTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type widgetTokenHandler struct {
	authenticator auth.Authenticator
	tokens        auth.ScopedTokenService
	validate      *validators.Validate
}

func NewWidgetTokenHandler(authenticator auth.Authenticator, tokens auth.ScopedTokenService) AppHttpHandler {
	return &widgetTokenHandler{
		authenticator: authenticator,
		tokens:        tokens,
		validate:      validators.New(),
	}
}

// Handle processes POST /v1/widget-tokens requests. Only a long-lived tenant
// credential may mint: a scoped token must not be able to mint further tokens.
func (h *widgetTokenHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	authCtx, err := h.authenticator.Authenticate(r.Context(), authorizationHeader(r))
	if err != nil {
		return err
	}
	if authCtx.FromScopedToken() {
		return auth.ErrTenantCredentialRequired()
	}

	var req WidgetTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return auth.ErrInvalidMintRequest("request body must be a JSON object with traceId and sessionId", err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return auth.ErrInvalidMintRequest("traceId and sessionId are required and at most 128 characters", err)
	}

	token, expiresAt, err := h.tokens.Mint(r.Context(), authCtx.TenantID, authCtx.ProjectID, req.TraceID, req.SessionID)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, WidgetTokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
