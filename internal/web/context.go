package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/crossfilter/internal/core"
)

// withRequestMetadata adds client IP and User-Agent to the context for load logging.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // Already processed by TrustedRealIP
	ctx = core.ContextWithClientIP(ctx, ip)
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
