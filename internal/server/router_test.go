package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcaldbick/RAM/internal/auth"
	"github.com/mcaldbick/RAM/internal/db/models"
	"github.com/mcaldbick/RAM/internal/repository"
	"github.com/mcaldbick/RAM/internal/services/iam"
)

// mockIdentityRepository backs the resolver in router-level tests.
type mockIdentityRepository struct {
	identities map[string]*models.Identity
}

func (m *mockIdentityRepository) FindByIDValue(ctx context.Context, idValue string) (*models.Identity, error) {
	if identity, ok := m.identities[idValue]; ok {
		return identity, nil
	}
	return nil, fmt.Errorf("identity %s: %w", idValue, repository.ErrNotFound)
}

func (m *mockIdentityRepository) FindByRawIDValue(ctx context.Context, rawIDValue string) (*models.Identity, error) {
	for _, identity := range m.identities {
		if identity.RawIDValue == rawIDValue {
			return identity, nil
		}
	}
	return nil, fmt.Errorf("identity %s: %w", rawIDValue, repository.ErrNotFound)
}

func (m *mockIdentityRepository) CreateFromRequest(ctx context.Context, req repository.CreateIdentityRequest) (*models.Identity, error) {
	return nil, fmt.Errorf("not implemented")
}

func newTestRouterWithIdentity(t *testing.T) http.Handler {
	t.Helper()
	repo := &mockIdentityRepository{identities: map[string]*models.Identity{
		"idvalue-1": {
			ID:      "id-1",
			IDValue: "idvalue-1",
			PartyID: "party-1",
			Profile: &models.Profile{
				Name: &models.Name{GivenName: "Jo", FamilyName: "Lee"},
			},
		},
	}}
	resolver, err := iam.NewIdentityResolver(repo, 8)
	require.NoError(t, err)

	return NewRouter(RouterOptions{
		Resolver:      resolver,
		Relationships: newMockRelationshipRepository(),
		Roles:         newMockRoleRepository(),
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouterWithIdentity(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_MeRequiresAuthentication(t *testing.T) {
	router := newTestRouterWithIdentity(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp auth.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Not authenticated."}, resp.Alert.Messages)
}

func TestRouter_MeWithIdentityHeader(t *testing.T) {
	router := newTestRouterWithIdentity(t)

	r := httptest.NewRequest("GET", "/api/v1/me", nil)
	r.Header.Set(auth.HeaderIdentityIDValue, "idvalue-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var view principalView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "idvalue-1", view.IDValue)
	assert.Equal(t, "Jo Lee", view.DisplayName)
}

func TestRouter_AgencyRouteRejectsIndividual(t *testing.T) {
	router := newTestRouterWithIdentity(t)

	r := httptest.NewRequest("GET", "/api/v1/agency/user", nil)
	r.Header.Set(auth.HeaderIdentityIDValue, "idvalue-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp auth.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Not authenticated as agency user."}, resp.Alert.Messages)
}

func TestRouter_AgencyRoute(t *testing.T) {
	router := newTestRouterWithIdentity(t)

	r := httptest.NewRequest("GET", "/api/v1/agency/user", nil)
	r.Header.Set(auth.HeaderAgencyUserLoginID, "agency-123")
	r.Header.Set(auth.HeaderGivenName, "Pat")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var u auth.AgencyUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, "agency-123", u.ID)
	assert.Equal(t, "Pat", u.GivenName)
}
