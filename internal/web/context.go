package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/doccompare/internal/core"
)

// withRequestMetadata adds the client IP to the request context so it is
// recorded with the comparison.
func withRequestMetadata(r *http.Request) context.Context {
	return core.ContextWithClientIP(r.Context(), clientIP(r))
}
