package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcaldbick/RAM/internal/db/models"
)

func TestRequestStateLocals_CaseInsensitive(t *testing.T) {
	state := NewRequestState()
	state.SetLocal("X-RAM-GivenName", "Jo")

	assert.Equal(t, "Jo", state.Local("x-ram-givenname"))
	assert.Equal(t, "Jo", state.Local("X-RAM-GIVENNAME"))
	assert.Equal(t, "", state.Local("x-ram-familyname"))
}

func TestRequestStateAuthenticated(t *testing.T) {
	state := NewRequestState()
	assert.False(t, state.Authenticated())

	state.SetPrincipal(&Principal{IDValue: ""})
	assert.False(t, state.Authenticated())

	state.SetPrincipal(&Principal{IDValue: "id-1"})
	assert.True(t, state.Authenticated())

	var nilState *RequestState
	assert.False(t, nilState.Authenticated())
}

func TestRequestStateContextRoundTrip(t *testing.T) {
	state := NewRequestState()
	state.SetPrincipal(&Principal{IDValue: "id-1", DisplayName: "Jo Lee"})
	state.SetIdentity(&models.Identity{IDValue: "id-1", RawIDValue: "raw-1"})

	ctx := WithRequestState(context.Background(), state)

	require.NotNil(t, RequestStateFromContext(ctx))
	assert.Equal(t, "id-1", GetAuthenticatedPrincipalIDValue(ctx))
	assert.Equal(t, "id-1", GetAuthenticatedIdentityIDValue(ctx))
	assert.Nil(t, GetAuthenticatedAgencyUser(ctx))
	assert.Equal(t, "", GetAuthenticatedAgencyUserLoginID(ctx))
}

func TestAccessors_EmptyContext(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, RequestStateFromContext(ctx))
	assert.Nil(t, GetAuthenticatedPrincipal(ctx))
	assert.Equal(t, "", GetAuthenticatedPrincipalIDValue(ctx))
	assert.Nil(t, GetAuthenticatedIdentity(ctx))
	assert.Equal(t, "", GetAuthenticatedIdentityIDValue(ctx))
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusUnauthorized, "Not authenticated.")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Not authenticated."}, resp.Alert.Messages)
	assert.Equal(t, AlertError, resp.Alert.AlertType)
}
