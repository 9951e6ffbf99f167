package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
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

// mockIdentityRepository for testing
type mockIdentityRepository struct {
	identities map[string]*models.Identity // idValue → identity
	failWith   error
	creates    int
}

func newMockIdentityRepository() *mockIdentityRepository {
	return &mockIdentityRepository{identities: make(map[string]*models.Identity)}
}

func (m *mockIdentityRepository) FindByIDValue(ctx context.Context, idValue string) (*models.Identity, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
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
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.creates++
	identity := &models.Identity{
		ID:         fmt.Sprintf("id-%d", m.creates),
		IDValue:    fmt.Sprintf("idvalue-%d", m.creates),
		RawIDValue: req.RawIDValue,
		PartyID:    fmt.Sprintf("party-%d", m.creates),
		Profile: &models.Profile{
			Name: &models.Name{
				GivenName:  req.GivenName,
				FamilyName: req.FamilyName,
			},
		},
	}
	if req.SharedSecretTypeCode != "" && req.SharedSecretValue != "" {
		identity.Profile.SharedSecrets = []*models.SharedSecret{
			{TypeCode: req.SharedSecretTypeCode, Value: req.SharedSecretValue},
		}
	}
	m.identities[identity.IDValue] = identity
	return identity, nil
}

func newTestResolver(t *testing.T, repo repository.IdentityRepository) *iam.IdentityResolver {
	t.Helper()
	resolver, err := iam.NewIdentityResolver(repo, 8)
	require.NoError(t, err)
	return resolver
}

// captureState runs PrepareRequest over a no-op handler and returns the
// request state the handler observed.
func captureState(t *testing.T, resolver *iam.IdentityResolver, r *http.Request) (*auth.RequestState, *httptest.ResponseRecorder) {
	t.Helper()
	var state *auth.RequestState
	handler := PrepareRequest(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state = auth.RequestStateFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return state, w
}

func TestPrepareRequest_Anonymous(t *testing.T) {
	resolver := newTestResolver(t, newMockIdentityRepository())
	r := httptest.NewRequest("GET", "/", nil)

	state, w := captureState(t, resolver, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, state, "anonymous requests still carry a request state")
	assert.Nil(t, state.Principal())
	assert.False(t, state.Authenticated())
}

func TestPrepareRequest_AgencyUser(t *testing.T) {
	resolver := newTestResolver(t, newMockIdentityRepository())
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set(auth.HeaderAgencyUserLoginID, "agency-123")
	r.Header.Set(auth.HeaderGivenName, "Jo")
	r.Header.Set(auth.HeaderFamilyName, "Lee")
	r.Header.Set(auth.HeaderAgencyUserAgency, "DHS")
	r.Header.Set(auth.HeaderAgencyUserProgramRoles, "medicare:preparer,centrelink:viewer")

	state, w := captureState(t, resolver, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, state.Authenticated())

	principal := state.Principal()
	assert.Equal(t, "agency-123", principal.IDValue)
	assert.Equal(t, "Jo Lee", principal.DisplayName)
	assert.True(t, principal.AgencyUserInd)
	assert.Nil(t, state.Identity())

	agencyUser := state.AgencyUser()
	require.NotNil(t, agencyUser)
	assert.Equal(t, "DHS", agencyUser.AgencyCode)
	assert.Equal(t, []auth.AgencyUserProgramRole{
		{Program: "medicare", Role: "preparer"},
		{Program: "centrelink", Role: "viewer"},
	}, agencyUser.ProgramRoles)
}

func TestPrepareRequest_AgencyUserTakesPriorityOverIdentity(t *testing.T) {
	repo := newMockIdentityRepository()
	repo.identities["idvalue-1"] = &models.Identity{IDValue: "idvalue-1", Profile: &models.Profile{}}
	resolver := newTestResolver(t, repo)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set(auth.HeaderAgencyUserLoginID, "agency-123")
	r.Header.Set(auth.HeaderIdentityIDValue, "idvalue-1")

	state, _ := captureState(t, resolver, r)

	require.True(t, state.Authenticated())
	assert.True(t, state.Principal().AgencyUserInd)
	assert.Nil(t, state.Identity())
}

func TestPrepareRequest_ExistingIdentity(t *testing.T) {
	repo := newMockIdentityRepository()
	repo.identities["idvalue-1"] = &models.Identity{
		ID:         "id-1",
		IDValue:    "idvalue-1",
		RawIDValue: "raw-1",
		Profile: &models.Profile{
			Name: &models.Name{GivenName: "Jo", FamilyName: "Lee"},
			SharedSecrets: []*models.SharedSecret{
				{TypeCode: models.DOBSharedSecretTypeCode, Value: "1990-01-31"},
			},
		},
	}
	resolver := newTestResolver(t, repo)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set(auth.HeaderIdentityIDValue, "idvalue-1")

	state, w := captureState(t, resolver, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, state.Authenticated())

	principal := state.Principal()
	assert.Equal(t, "idvalue-1", principal.IDValue)
	assert.Equal(t, "Jo Lee", principal.DisplayName)
	assert.False(t, principal.AgencyUserInd)

	require.NotNil(t, state.Identity())
	assert.Equal(t, "idvalue-1", state.Local(auth.HeaderIdentityIDValue))
	assert.Equal(t, "raw-1", state.Local(auth.HeaderIdentityRawIDValue))
	assert.Equal(t, "Jo", state.Local(auth.HeaderGivenName))
	assert.Equal(t, "Lee", state.Local(auth.HeaderFamilyName))
	assert.Equal(t, "1990-01-31", state.Local(auth.SharedSecretLocalKey(models.DOBSharedSecretTypeCode)))
}

func TestPrepareRequest_CreatesIdentityFromHeaders(t *testing.T) {
	repo := newMockIdentityRepository()
	resolver := newTestResolver(t, repo)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set(auth.HeaderIdentityIDValue, "unknown")
	r.Header.Set(auth.HeaderIdentityRawIDValue, "raw-new")
	r.Header.Set(auth.HeaderGivenName, "Jo")
	r.Header.Set(auth.HeaderFamilyName, "Lee")
	r.Header.Set(auth.HeaderDOB, "1990-01-31")

	state, w := captureState(t, resolver, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, repo.creates)
	require.True(t, state.Authenticated())
	assert.Equal(t, "Jo Lee", state.Principal().DisplayName)
	assert.Equal(t, "raw-new", state.Identity().RawIDValue)
	assert.Equal(t, "1990-01-31", state.Local(auth.SharedSecretLocalKey(models.DOBSharedSecretTypeCode)))
}

func TestPrepareRequest_UnknownIdentityWithoutRawIDIsAnonymous(t *testing.T) {
	repo := newMockIdentityRepository()
	resolver := newTestResolver(t, repo)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set(auth.HeaderIdentityIDValue, "unknown")

	state, w := captureState(t, resolver, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, repo.creates)
	assert.False(t, state.Authenticated())
}

func TestPrepareRequest_StoreFailureIs401(t *testing.T) {
	repo := newMockIdentityRepository()
	repo.failWith = errors.New("connection refused")
	resolver := newTestResolver(t, repo)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set(auth.HeaderIdentityIDValue, "idvalue-1")

	state, w := captureState(t, resolver, r)

	assert.Nil(t, state, "downstream handler must not run")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp auth.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Unable to look up identity."}, resp.Alert.Messages)
	assert.Equal(t, auth.AlertError, resp.Alert.AlertType)
}

func TestPrepareRequest_IdentityFromCookie(t *testing.T) {
	repo := newMockIdentityRepository()
	repo.identities["idvalue-1"] = &models.Identity{IDValue: "idvalue-1", Profile: &models.Profile{}}
	resolver := newTestResolver(t, repo)

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{
		Name:  auth.HeaderIdentityIDValue,
		Value: base64.StdEncoding.EncodeToString([]byte("idvalue-1")),
	})

	state, _ := captureState(t, resolver, r)

	require.True(t, state.Authenticated())
	assert.Equal(t, "idvalue-1", state.Principal().IDValue)
}

func TestPrepareRequest_PropagatesApplicationHeaders(t *testing.T) {
	resolver := newTestResolver(t, newMockIdentityRepository())

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-RAM-Custom-Flag", "on")
	r.Header.Set("X-Other-Header", "ignored")

	state, _ := captureState(t, resolver, r)

	assert.Equal(t, "on", state.Local("x-ram-custom-flag"))
	assert.Equal(t, "", state.Local("x-other-header"))
}
