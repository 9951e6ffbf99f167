package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// LocateCredential extracts a named value from the request, first match
// wins: request header, then request-state local, then a cookie whose name
// matches case-insensitively with its value base64-decoded. Returns ""
// when no source supplies the key.
//
// A present-but-empty header defers to the next source. That falsiness is
// load-bearing: it decides whether the agency-login or identity-lookup
// branch runs in the preparation pipeline.
func LocateCredential(r *http.Request, state *RequestState, key string) string {
	if v := r.Header.Get(key); v != "" {
		return v
	}
	if v := state.Local(key); v != "" {
		return v
	}
	return CredentialFromCookies(r, key)
}

// CredentialFromCookies returns the base64-decoded value of the cookie
// whose name case-insensitively equals key, or "" when no such cookie
// exists or its value does not decode.
func CredentialFromCookies(r *http.Request, key string) string {
	for _, cookie := range r.Cookies() {
		if !strings.EqualFold(cookie.Name, key) || cookie.Value == "" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(cookie.Value)
		if err != nil {
			// Undecodable cookie counts as absent, never a failure.
			continue
		}
		return string(decoded)
	}
	return ""
}
