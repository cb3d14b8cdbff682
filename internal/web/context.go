package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/payroll/internal/core"
)

// WithRequestMetadata adds IP and User-Agent to context for run history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r)) // RemoteAddr already resolved by TrustedRealIP
	ctx = core.ContextWithUserAgent(ctx, r.Header.Get("User-Agent"))
	return ctx
}
