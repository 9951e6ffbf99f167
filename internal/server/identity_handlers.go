package server

import (
	"log"
	"net/http"

	"github.com/mcaldbick/RAM/internal/auth"
	"github.com/mcaldbick/RAM/internal/repository"
)

// IdentityHandler serves identity and role read routes.
type IdentityHandler struct {
	roles repository.RoleRepository
}

// NewIdentityHandler builds the identity route handler.
func NewIdentityHandler(roles repository.RoleRepository) *IdentityHandler {
	return &IdentityHandler{roles: roles}
}

// principalView is the wire shape for the authenticated actor.
type principalView struct {
	IDValue       string           `json:"idValue"`
	DisplayName   string           `json:"displayName"`
	AgencyUserInd bool             `json:"agencyUserInd"`
	AgencyUser    *auth.AgencyUser `json:"agencyUser,omitempty"`
}

// Me returns the authenticated principal. Gated by RequireAuthenticated.
func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetAuthenticatedPrincipal(r.Context())
	writeJSON(w, http.StatusOK, principalView{
		IDValue:       principal.IDValue,
		DisplayName:   principal.DisplayName,
		AgencyUserInd: principal.AgencyUserInd,
		AgencyUser:    auth.GetAuthenticatedAgencyUser(r.Context()),
	})
}

// MyIdentity returns the durable identity record backing the principal.
// Agency users have no backing identity and receive 404.
func (h *IdentityHandler) MyIdentity(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetAuthenticatedIdentity(r.Context())
	if identity == nil {
		auth.WriteError(w, http.StatusNotFound, "No identity for this principal.")
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// MyRoles returns the program-scoped roles held by the principal's party.
func (h *IdentityHandler) MyRoles(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetAuthenticatedIdentity(r.Context())
	if identity == nil {
		auth.WriteError(w, http.StatusNotFound, "No identity for this principal.")
		return
	}
	roles, err := h.roles.ListForParty(r.Context(), identity.PartyID)
	if err != nil {
		log.Printf("list roles for party %s: %v", identity.PartyID, err)
		auth.WriteError(w, http.StatusInternalServerError, "Unable to list roles.")
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

// AgencyUser returns the per-request agency user rebuilt from upstream
// claims. Gated by RequireAgencyUser.
func (h *IdentityHandler) AgencyUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, auth.GetAuthenticatedAgencyUser(r.Context()))
}
