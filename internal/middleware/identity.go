package middleware

import (
	"net/http"

	"github.com/mapme/mapme/internal/identity"
)

// Trusted identity headers set by the front door after it verifies the
// caller's token. The gateway strips these from inbound traffic, so
// their presence is the authentication signal this service trusts.
const (
	UserIDHeader = "X-Auth-User-Id"
	EmailHeader  = "X-Auth-Email"
	NameHeader   = "X-Auth-Name"
)

// Identity extracts the verified caller identity from the trusted
// gateway headers into the request context. It does not reject
// unauthenticated requests; each handler applies its own gate so the
// response body matches its contract.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := &identity.Identity{
				UserID: r.Header.Get(UserIDHeader),
				Email:  r.Header.Get(EmailHeader),
				Name:   r.Header.Get(NameHeader),
			}

			ctx := identity.WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
