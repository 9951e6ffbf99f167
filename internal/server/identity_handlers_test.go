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
)

// mockRoleRepository is a map-backed role store.
type mockRoleRepository struct {
	roles    map[string][]models.Role // partyID → roles
	failWith error
}

func newMockRoleRepository() *mockRoleRepository {
	return &mockRoleRepository{roles: make(map[string][]models.Role)}
}

func (m *mockRoleRepository) Create(ctx context.Context, role *models.Role) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.roles[role.PartyID] = append(m.roles[role.PartyID], *role)
	return nil
}

func (m *mockRoleRepository) ListForParty(ctx context.Context, partyID string) ([]models.Role, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.roles[partyID], nil
}

func TestMe_Identity(t *testing.T) {
	h := NewIdentityHandler(newMockRoleRepository())

	r := httptest.NewRequest("GET", "/me", nil)
	r = withIdentityState(r, "idvalue-1", "party-1")
	w := httptest.NewRecorder()
	h.Me(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var view principalView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "idvalue-1", view.IDValue)
	assert.False(t, view.AgencyUserInd)
	assert.Nil(t, view.AgencyUser)
}

func TestMe_AgencyUser(t *testing.T) {
	h := NewIdentityHandler(newMockRoleRepository())

	r := httptest.NewRequest("GET", "/me", nil)
	r = withAgencyState(r, "agency-123")
	w := httptest.NewRecorder()
	h.Me(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var view principalView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "agency-123", view.IDValue)
	assert.True(t, view.AgencyUserInd)
	require.NotNil(t, view.AgencyUser)
	assert.Equal(t, "agency-123", view.AgencyUser.ID)
}

func TestMyIdentity(t *testing.T) {
	h := NewIdentityHandler(newMockRoleRepository())

	t.Run("individual", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me/identity", nil)
		r = withIdentityState(r, "idvalue-1", "party-1")
		w := httptest.NewRecorder()
		h.MyIdentity(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var identity models.Identity
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &identity))
		assert.Equal(t, "idvalue-1", identity.IDValue)
	})

	t.Run("agency user has no identity", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me/identity", nil)
		r = withAgencyState(r, "agency-123")
		w := httptest.NewRecorder()
		h.MyIdentity(w, r)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMyRoles(t *testing.T) {
	roles := newMockRoleRepository()
	roles.roles["party-1"] = []models.Role{
		{ID: "role-1", TypeCode: "AGENT", PartyID: "party-1", Program: "medicare"},
	}
	h := NewIdentityHandler(roles)

	t.Run("lists the party's roles", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me/roles", nil)
		r = withIdentityState(r, "idvalue-1", "party-1")
		w := httptest.NewRecorder()
		h.MyRoles(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var got []models.Role
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "medicare", got[0].Program)
	})

	t.Run("store failure is 500", func(t *testing.T) {
		roles.failWith = fmt.Errorf("connection refused")
		defer func() { roles.failWith = nil }()

		r := httptest.NewRequest("GET", "/me/roles", nil)
		r = withIdentityState(r, "idvalue-1", "party-1")
		w := httptest.NewRecorder()
		h.MyRoles(w, r)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("agency user has no roles", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me/roles", nil)
		r = withAgencyState(r, "agency-123")
		w := httptest.NewRecorder()
		h.MyRoles(w, r)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAgencyUserRoute(t *testing.T) {
	h := NewIdentityHandler(newMockRoleRepository())

	r := httptest.NewRequest("GET", "/agency/user", nil)
	r = withAgencyState(r, "agency-123")
	w := httptest.NewRecorder()
	h.AgencyUser(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var u auth.AgencyUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, "agency-123", u.ID)
}
