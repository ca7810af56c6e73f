package http

import (
	"net"
	"net/http"
	"strings"
)

const (
	headerRequestID     = "x-request-id"
	headerAuthorization = "Authorization"
	headerUserAgent     = "User-Agent"
	headerForwardedFor  = "X-Forwarded-For"
	headerRetryAfter    = "Retry-After"
	headerContentType   = "Content-Type"
)

func requestID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerRequestID))
}

func setRequestID(r *http.Request, requestID string) {
	r.Header.Set(headerRequestID, requestID)
}

func authorizationHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerAuthorization))
}

func userAgent(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerUserAgent))
}

// clientIP is the source-identity key for the coarse rate-limit pool: the
// first X-Forwarded-For hop when present, else the connection's remote host.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get(headerForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
