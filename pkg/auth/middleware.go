// Package auth provides API key authentication and per-client rate limiting
// for the HTTP transport.
package auth

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

type contextKey string

const clientKey contextKey = "client"

// ClientFromContext returns the authenticated client name, if any.
func ClientFromContext(ctx context.Context) string {
	v, _ := ctx.Value(clientKey).(string)
	return v
}

// WithClient stores a client name on the context.
func WithClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, clientKey, client)
}

var skipPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// APIKeyAuth validates X-API-Key or a bearer token. With an empty store every
// request passes and is attributed to its remote address.
func APIKeyAuth(keys *KeyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !keys.Enabled() {
				next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), remoteHost(r))))
				return
			}

			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
					apiKey = strings.TrimPrefix(h, "Bearer ")
				}
			}
			if apiKey == "" {
				types.ErrUnauthorized("missing API key").WriteJSON(w)
				return
			}

			client, ok := keys.Lookup(apiKey)
			if !ok {
				types.ErrUnauthorized("invalid API key").WriteJSON(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), client)))
		})
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
