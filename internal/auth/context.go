package auth

import (
	"context"

	"github.com/mcaldbick/RAM/internal/db/models"
)

// RequestState is the typed, request-scoped authentication context built by
// the preparation middleware. It replaces a stringly-keyed locals bag: the
// principal and its backing detail are explicit fields, while propagated
// application headers and flattened shared secrets live in a small
// string-keyed extras map behind typed accessors.
//
// A RequestState belongs to exactly one request. It is built sequentially
// before the downstream handler runs and is never shared across requests,
// so no locking is required.
type RequestState struct {
	principal  *Principal
	identity   *models.Identity
	agencyUser *AgencyUser
	extras     map[string]string
}

// NewRequestState returns an empty request state.
func NewRequestState() *RequestState {
	return &RequestState{extras: make(map[string]string)}
}

// SetPrincipal records the resolved principal for this request.
func (s *RequestState) SetPrincipal(p *Principal) { s.principal = p }

// Principal returns the resolved principal, or nil for anonymous requests.
func (s *RequestState) Principal() *Principal {
	if s == nil {
		return nil
	}
	return s.principal
}

// SetIdentity records the resolved identity backing an individual principal.
func (s *RequestState) SetIdentity(identity *models.Identity) { s.identity = identity }

// Identity returns the resolved identity, or nil when the principal is an
// agency user or the request is anonymous.
func (s *RequestState) Identity() *models.Identity {
	if s == nil {
		return nil
	}
	return s.identity
}

// SetAgencyUser records the agency user backing an agency principal.
func (s *RequestState) SetAgencyUser(u *AgencyUser) { s.agencyUser = u }

// AgencyUser returns the agency user detail, or nil.
func (s *RequestState) AgencyUser() *AgencyUser {
	if s == nil {
		return nil
	}
	return s.agencyUser
}

// SetLocal stores a propagated header value or flattened identity
// attribute. Keys are stored lower-cased.
func (s *RequestState) SetLocal(key, value string) {
	s.extras[lowerASCII(key)] = value
}

// Local returns the propagated value for key, matched case-insensitively,
// or "" when absent.
func (s *RequestState) Local(key string) string {
	if s == nil {
		return ""
	}
	return s.extras[lowerASCII(key)]
}

// Authenticated reports whether a principal was resolved for this request.
// By construction this is equivalent to a non-empty principal id, whichever
// branch populated it.
func (s *RequestState) Authenticated() bool {
	return s.Principal() != nil && s.Principal().IDValue != ""
}

func lowerASCII(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] >= 'A' && key[i] <= 'Z' {
			b := []byte(key)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return key
}

type requestStateContextKey struct{}

// WithRequestState stores the prepared request state on the context for
// downstream consumers.
func WithRequestState(ctx context.Context, state *RequestState) context.Context {
	return context.WithValue(ctx, requestStateContextKey{}, state)
}

// RequestStateFromContext retrieves the prepared request state, or nil when
// the preparation middleware has not run.
func RequestStateFromContext(ctx context.Context) *RequestState {
	state, _ := ctx.Value(requestStateContextKey{}).(*RequestState)
	return state
}

// GetAuthenticatedPrincipal returns the principal for the request, or nil.
func GetAuthenticatedPrincipal(ctx context.Context) *Principal {
	return RequestStateFromContext(ctx).Principal()
}

// GetAuthenticatedPrincipalIDValue returns the principal id, or "".
func GetAuthenticatedPrincipalIDValue(ctx context.Context) string {
	if p := GetAuthenticatedPrincipal(ctx); p != nil {
		return p.IDValue
	}
	return ""
}

// GetAuthenticatedIdentity returns the identity backing the principal, or nil.
func GetAuthenticatedIdentity(ctx context.Context) *models.Identity {
	return RequestStateFromContext(ctx).Identity()
}

// GetAuthenticatedIdentityIDValue returns the identity idValue, or "".
func GetAuthenticatedIdentityIDValue(ctx context.Context) string {
	if identity := GetAuthenticatedIdentity(ctx); identity != nil {
		return identity.IDValue
	}
	return ""
}

// GetAuthenticatedAgencyUser returns the agency user detail, or nil.
func GetAuthenticatedAgencyUser(ctx context.Context) *AgencyUser {
	return RequestStateFromContext(ctx).AgencyUser()
}

// GetAuthenticatedAgencyUserLoginID returns the agency login id, or "".
func GetAuthenticatedAgencyUserLoginID(ctx context.Context) string {
	if u := GetAuthenticatedAgencyUser(ctx); u != nil {
		return u.ID
	}
	return ""
}
