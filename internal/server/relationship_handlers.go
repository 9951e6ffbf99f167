package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mcaldbick/RAM/internal/auth"
	"github.com/mcaldbick/RAM/internal/db/bunx"
	"github.com/mcaldbick/RAM/internal/db/models"
	"github.com/mcaldbick/RAM/internal/permissions"
	"github.com/mcaldbick/RAM/internal/repository"
	"github.com/mcaldbick/RAM/internal/telemetry"
)

// RelationshipHandler serves the relationship routes. Every state-changing
// route evaluates the permission enforcers registered for relationships
// before touching the store; a deny is surfaced as 403 and never mutates
// state.
type RelationshipHandler struct {
	relationships repository.RelationshipRepository
	registry      *permissions.Registry
}

// NewRelationshipHandler builds the relationship route handler.
func NewRelationshipHandler(relationships repository.RelationshipRepository, registry *permissions.Registry) *RelationshipHandler {
	return &RelationshipHandler{relationships: relationships, registry: registry}
}

// createRelationshipRequest is the payload for creating a delegation.
type createRelationshipRequest struct {
	TypeCode        string     `json:"typeCode"`
	DelegateName    string     `json:"delegateName"`
	SubjectNickname string     `json:"subjectNickname"`
	StartTimestamp  *time.Time `json:"startTimestamp"`
	EndTimestamp    *time.Time `json:"endTimestamp"`
}

// modifyRelationshipRequest is the payload for modifying a delegation.
type modifyRelationshipRequest struct {
	SubjectNickname *string    `json:"subjectNickname"`
	DelegateName    *string    `json:"delegateName"`
	EndTimestamp    *time.Time `json:"endTimestamp"`
}

// List returns the relationships the authenticated identity participates
// in. Agency users may list on behalf of any identity via ?idValue=.
func (h *RelationshipHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetAuthenticatedPrincipal(r.Context())

	idValue := principal.IDValue
	if principal.AgencyUserInd {
		idValue = r.URL.Query().Get("idValue")
		if idValue == "" {
			auth.WriteError(w, http.StatusBadRequest, "idValue query parameter is required for agency users.")
			return
		}
	}

	rels, err := h.relationships.ListForIDValue(r.Context(), idValue)
	if err != nil {
		log.Printf("list relationships for %s: %v", idValue, err)
		auth.WriteError(w, http.StatusInternalServerError, "Unable to list relationships.")
		return
	}
	writeJSON(w, http.StatusOK, rels)
}

// Create records a new pending delegation with the authenticated identity
// as subject and mints an invitation code for the delegate to claim.
func (h *RelationshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetAuthenticatedPrincipal(r.Context())
	if principal.AgencyUserInd {
		auth.WriteError(w, http.StatusBadRequest, "Agency users cannot create relationships on their own behalf.")
		return
	}
	identity := auth.GetAuthenticatedIdentity(r.Context())

	var req createRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.TypeCode == "" {
		auth.WriteError(w, http.StatusBadRequest, "typeCode is required.")
		return
	}

	start := time.Now()
	if req.StartTimestamp != nil {
		start = *req.StartTimestamp
	}
	rel := &models.Relationship{
		ID:              bunx.NewUUIDv7(),
		TypeCode:        req.TypeCode,
		SubjectPartyID:  identity.PartyID,
		SubjectIDValue:  principal.IDValue,
		SubjectNickname: req.SubjectNickname,
		DelegateName:    req.DelegateName,
		InvitationCode:  bunx.NewUUIDv7(),
		Status:          models.RelationshipStatusPending,
		StartTimestamp:  start,
		EndTimestamp:    req.EndTimestamp,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := h.relationships.Create(r.Context(), rel); err != nil {
		log.Printf("create relationship for %s: %v", principal.IDValue, err)
		auth.WriteError(w, http.StatusInternalServerError, "Unable to create relationship.")
		return
	}
	writeJSON(w, http.StatusCreated, rel)
}

// View returns one relationship, gated by the view enforcer.
func (h *RelationshipHandler) View(w http.ResponseWriter, r *http.Request) {
	rel, ok := h.loadRelationship(w, r)
	if !ok {
		return
	}
	principal := auth.GetAuthenticatedPrincipal(r.Context())
	if !h.permit(r.Context(), permissions.ActionView, principal, rel) {
		writeForbidden(w, principal, permissions.ActionView, rel)
		return
	}
	writeJSON(w, http.StatusOK, rel)
}

// Accept transitions a claimed, pending relationship to active.
func (h *RelationshipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, permissions.ActionAccept, func(rel *models.Relationship) {
		rel.Status = models.RelationshipStatusActive
	})
}

// Reject transitions a claimed, pending relationship to rejected.
func (h *RelationshipHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, permissions.ActionReject, func(rel *models.Relationship) {
		rel.Status = models.RelationshipStatusRejected
	})
}

// Modify updates the mutable fields of a non-terminal relationship.
func (h *RelationshipHandler) Modify(w http.ResponseWriter, r *http.Request) {
	rel, ok := h.loadRelationship(w, r)
	if !ok {
		return
	}
	principal := auth.GetAuthenticatedPrincipal(r.Context())
	if !h.permit(r.Context(), permissions.ActionModify, principal, rel) {
		writeForbidden(w, principal, permissions.ActionModify, rel)
		return
	}

	var req modifyRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.SubjectNickname != nil {
		rel.SubjectNickname = *req.SubjectNickname
	}
	if req.DelegateName != nil {
		rel.DelegateName = *req.DelegateName
	}
	if req.EndTimestamp != nil {
		rel.EndTimestamp = req.EndTimestamp
	}
	if err := h.relationships.Update(r.Context(), rel); err != nil {
		log.Printf("modify relationship %s: %v", rel.ID, err)
		auth.WriteError(w, http.StatusInternalServerError, "Unable to modify relationship.")
		return
	}
	writeJSON(w, http.StatusOK, rel)
}

// NotifyDelegate re-issues the invitation code for a pending, unclaimed
// relationship.
func (h *RelationshipHandler) NotifyDelegate(w http.ResponseWriter, r *http.Request) {
	rel, ok := h.loadRelationship(w, r)
	if !ok {
		return
	}
	principal := auth.GetAuthenticatedPrincipal(r.Context())
	if !h.permit(r.Context(), permissions.ActionNotifyDelegate, principal, rel) {
		writeForbidden(w, principal, permissions.ActionNotifyDelegate, rel)
		return
	}
	rel.InvitationCode = bunx.NewUUIDv7()
	if err := h.relationships.Update(r.Context(), rel); err != nil {
		log.Printf("notify delegate for relationship %s: %v", rel.ID, err)
		auth.WriteError(w, http.StatusInternalServerError, "Unable to notify delegate.")
		return
	}
	writeJSON(w, http.StatusOK, rel)
}

// Claim attaches the authenticated identity as delegate of the pending
// relationship matching the invitation code.
func (h *RelationshipHandler) Claim(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	rel, err := h.relationships.FindByInvitationCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.WriteError(w, http.StatusNotFound, "Invitation not found.")
			return
		}
		log.Printf("claim invitation %s: %v", code, err)
		auth.WriteError(w, http.StatusInternalServerError, "Unable to claim relationship.")
		return
	}

	principal := auth.GetAuthenticatedPrincipal(r.Context())
	if !h.permit(r.Context(), permissions.ActionClaim, principal, rel) {
		writeForbidden(w, principal, permissions.ActionClaim, rel)
		return
	}

	identity := auth.GetAuthenticatedIdentity(r.Context())
	rel.DelegateIDValue = principal.IDValue
	partyID := identity.PartyID
	rel.DelegatePartyID = &partyID
	if err := h.relationships.Update(r.Context(), rel); err != nil {
		log.Printf("claim relationship %s: %v", rel.ID, err)
		auth.WriteError(w, http.StatusInternalServerError, "Unable to claim relationship.")
		return
	}
	writeJSON(w, http.StatusOK, rel)
}

// transition loads the relationship, checks the enforcers for the action,
// applies the mutation, and persists it.
func (h *RelationshipHandler) transition(w http.ResponseWriter, r *http.Request, action permissions.Action, mutate func(*models.Relationship)) {
	rel, ok := h.loadRelationship(w, r)
	if !ok {
		return
	}
	principal := auth.GetAuthenticatedPrincipal(r.Context())
	if !h.permit(r.Context(), action, principal, rel) {
		writeForbidden(w, principal, action, rel)
		return
	}
	mutate(rel)
	if err := h.relationships.Update(r.Context(), rel); err != nil {
		log.Printf("%s relationship %s: %v", action, rel.ID, err)
		auth.WriteError(w, http.StatusInternalServerError, "Unable to update relationship.")
		return
	}
	writeJSON(w, http.StatusOK, rel)
}

func (h *RelationshipHandler) loadRelationship(w http.ResponseWriter, r *http.Request) (*models.Relationship, bool) {
	id := chi.URLParam(r, "id")
	rel, err := h.relationships.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.WriteError(w, http.StatusNotFound, "Relationship not found.")
			return nil, false
		}
		log.Printf("load relationship %s: %v", id, err)
		auth.WriteError(w, http.StatusInternalServerError, "Unable to load relationship.")
		return nil, false
	}
	return rel, true
}

func (h *RelationshipHandler) permit(ctx context.Context, action permissions.Action, principal *auth.Principal, rel *models.Relationship) bool {
	_, span := telemetry.StartSpan(ctx, "ramapi/server", "permissions.Evaluate",
		attribute.String(telemetry.AttrPermissionAction, string(action)),
		attribute.String(telemetry.AttrRelationshipID, rel.ID),
		attribute.String(telemetry.AttrRelationshipStatus, string(rel.Status)),
		attribute.String(telemetry.AttrPrincipalID, principalID(principal)),
		attribute.Bool(telemetry.AttrPrincipalAgency, principal != nil && principal.AgencyUserInd),
	)
	defer span.End()

	allowed := permissions.Evaluate(h.registry.Relationship(), action, principal, rel)
	span.SetAttributes(attribute.Bool(telemetry.AttrPermissionAllowed, allowed))
	return allowed
}

func principalID(principal *auth.Principal) string {
	if principal == nil {
		return ""
	}
	return principal.IDValue
}

func writeForbidden(w http.ResponseWriter, principal *auth.Principal, action permissions.Action, rel *models.Relationship) {
	log.Printf("permission denied: principal=%s action=%s relationship=%s", principalID(principal), action, rel.ID)
	auth.WriteError(w, http.StatusForbidden, "You are not authorised to perform this action.")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
