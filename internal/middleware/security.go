package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/mcaldbick/RAM/internal/auth"
	"github.com/mcaldbick/RAM/internal/db/models"
	"github.com/mcaldbick/RAM/internal/repository"
	"github.com/mcaldbick/RAM/internal/services/iam"
)

// PrepareRequest builds the request-scoped authentication context for every
// inbound request.
//
// The pipeline runs as one sequential progression:
//
//  1. locate credentials: the agency-user login id takes priority over the
//     identity id; each may arrive as a header, a local, or a base64 cookie
//  2. agency branch: rebuild the agency user from upstream claims
//     identity branch: look up the identity, creating it from header
//     attributes when absent and a raw id value was supplied
//     anonymous branch: no credential, no principal
//  3. propagate every application-prefixed header into the request state
//
// Only a store failure aborts the request (401 with a generic message);
// a missing credential proceeds as anonymous. The downstream handler always
// receives a fully-populated RequestState on its context.
func PrepareRequest(resolver *iam.IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := auth.NewRequestState()

			agencyLoginID := auth.LocateCredential(r, state, auth.HeaderAgencyUserLoginID)
			identityIDValue := auth.LocateCredential(r, state, auth.HeaderIdentityIDValue)

			switch {
			case agencyLoginID != "":
				prepareAgencyUserState(r, state, agencyLoginID)
			case identityIDValue != "":
				identity, err := resolver.ResolveOrCreate(r.Context(), identityIDValue, creationRequestFromHeaders(r))
				if err != nil {
					log.Printf("unable to look up identity %s: %v", identityIDValue, err)
					auth.WriteError(w, http.StatusUnauthorized, "Unable to look up identity.")
					return
				}
				prepareIdentityState(state, identity)
			default:
				// No credential supplied; carry on anonymously.
				prepareIdentityState(state, nil)
			}

			propagateApplicationHeaders(r, state)

			next.ServeHTTP(w, r.WithContext(auth.WithRequestState(r.Context(), state)))
		})
	}
}

// prepareAgencyUserState rebuilds the agency-user principal from upstream
// claims. Agency users are never persisted; every request reconstructs the
// full value from headers, locals, or cookies.
func prepareAgencyUserState(r *http.Request, state *auth.RequestState, loginID string) {
	givenName := auth.LocateCredential(r, state, auth.HeaderGivenName)
	familyName := auth.LocateCredential(r, state, auth.HeaderFamilyName)
	displayName := auth.JoinName(givenName, familyName)
	programRoles := auth.ParseProgramRoles(auth.LocateCredential(r, state, auth.HeaderAgencyUserProgramRoles))

	log.Printf("agency user context: %s", loginID)

	state.SetPrincipal(&auth.Principal{
		IDValue:       loginID,
		DisplayName:   displayName,
		AgencyUserInd: true,
	})
	state.SetAgencyUser(&auth.AgencyUser{
		ID:           loginID,
		GivenName:    givenName,
		FamilyName:   familyName,
		DisplayName:  displayName,
		AgencyCode:   auth.LocateCredential(r, state, auth.HeaderAgencyUserAgency),
		ProgramRoles: programRoles,
	})
	state.SetLocal(auth.HeaderAgencyUserLoginID, loginID)
}

// prepareIdentityState populates the request state from a resolved
// identity. A nil identity is the anonymous case and populates nothing.
func prepareIdentityState(state *auth.RequestState, identity *models.Identity) {
	if identity == nil {
		log.Printf("identity context: [not found]")
		return
	}
	log.Printf("identity context: %s", identity.IDValue)

	state.SetPrincipal(&auth.Principal{
		IDValue:       identity.IDValue,
		DisplayName:   identity.Profile.DisplayName(),
		AgencyUserInd: false,
	})
	state.SetIdentity(identity)
	state.SetLocal(auth.HeaderIdentityIDValue, identity.IDValue)
	state.SetLocal(auth.HeaderIdentityRawIDValue, identity.RawIDValue)
	if identity.Profile != nil && identity.Profile.Name != nil {
		state.SetLocal(auth.HeaderGivenName, identity.Profile.Name.GivenName)
		state.SetLocal(auth.HeaderFamilyName, identity.Profile.Name.FamilyName)
		state.SetLocal(auth.HeaderUnstructuredName, identity.Profile.Name.UnstructuredName)
	}
	if identity.Profile != nil {
		for _, secret := range identity.Profile.SharedSecrets {
			state.SetLocal(auth.SharedSecretLocalKey(secret.TypeCode), secret.Value)
		}
	}
}

// propagateApplicationHeaders copies every application-namespaced header
// into the request state under its lower-cased name. Runs on all three
// branches so downstream logic reads one surface regardless of transport
// casing or whether earlier steps already consumed a header.
func propagateApplicationHeaders(r *http.Request, state *auth.RequestState) {
	for name, values := range r.Header {
		if !auth.IsApplicationHeader(name) || len(values) == 0 {
			continue
		}
		state.SetLocal(strings.ToLower(name), values[0])
	}
}

// creationRequestFromHeaders decodes the application headers into the
// identity creation request. Header names are lower-cased first so the
// mapstructure tags match regardless of transport casing.
func creationRequestFromHeaders(r *http.Request) repository.CreateIdentityRequest {
	headers := make(map[string]string)
	for name, values := range r.Header {
		if !auth.IsApplicationHeader(name) || len(values) == 0 {
			continue
		}
		headers[strings.ToLower(name)] = values[0]
	}

	var req repository.CreateIdentityRequest
	// Decoding from a string map into string fields cannot fail; the error
	// branch guards future shape changes.
	if err := mapstructure.Decode(headers, &req); err != nil {
		log.Printf("decode identity creation headers: %v", err)
	}
	return req
}
