package middleware

import (
	"log"
	"net/http"

	"github.com/mcaldbick/RAM/internal/auth"
)

// RequireAuthenticated rejects requests that reached the handler without a
// resolved principal. Terminal on failure: the downstream handler never
// runs.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := auth.RequestStateFromContext(r.Context())
		if !state.Authenticated() {
			log.Printf("unable to invoke route requiring authentication: %s %s", r.Method, r.URL.Path)
			auth.WriteError(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAgencyUser rejects requests whose principal is missing or is not
// an agency user. An authenticated individual principal passes
// RequireAuthenticated but fails here.
func RequireAgencyUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := auth.GetAuthenticatedPrincipal(r.Context())
		if principal == nil || !principal.AgencyUserInd {
			log.Printf("unable to invoke route requiring agency user: %s %s", r.Method, r.URL.Path)
			auth.WriteError(w, http.StatusUnauthorized, "Not authenticated as agency user.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
