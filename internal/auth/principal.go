package auth

import "strings"

// Principal represents the authenticated actor for one request.
//
// This struct is immutable after construction. It is built once by the
// request preparation middleware, stored in the request context, and
// discarded when the response ends. Exactly one of the two detail kinds
// (agency user or identity) backs a principal, selected by AgencyUserInd.
type Principal struct {
	// IDValue is the stable identifier: the agency login id for agency
	// users, or the identity idValue for individuals.
	IDValue string

	// DisplayName is the human-readable name resolved at construction.
	DisplayName string

	// AgencyUserInd distinguishes agency-staff principals from
	// individual/identity principals.
	AgencyUserInd bool
}

// AgencyUserProgramRole is one (program, role) capability pair granted to
// an agency user.
type AgencyUserProgramRole struct {
	Program string `json:"program"`
	Role    string `json:"role"`
}

// AgencyUser is a staff-side actor reconstructed per request from trusted
// upstream claims. It is never persisted; the upstream identity provider
// is the system of record.
type AgencyUser struct {
	ID           string                  `json:"id"`
	GivenName    string                  `json:"givenName"`
	FamilyName   string                  `json:"familyName"`
	DisplayName  string                  `json:"displayName"`
	AgencyCode   string                  `json:"agency"`
	ProgramRoles []AgencyUserProgramRole `json:"programRoles"`
}

// HasRoleForProgram reports whether the agency user carries the given role
// for the given program.
func (u *AgencyUser) HasRoleForProgram(program, role string) bool {
	if u == nil {
		return false
	}
	for _, pr := range u.ProgramRoles {
		if pr.Program == program && pr.Role == role {
			return true
		}
	}
	return false
}

// ParseProgramRoles parses a comma-separated list of "program:role" pairs,
// preserving input order. Entries with a missing role half are tolerated
// and yield an empty role; parsing never fails.
func ParseProgramRoles(raw string) []AgencyUserProgramRole {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	roles := make([]AgencyUserProgramRole, 0, len(parts))
	for _, part := range parts {
		program, role, _ := strings.Cut(part, ":")
		roles = append(roles, AgencyUserProgramRole{Program: program, Role: role})
	}
	return roles
}

// JoinName builds a display name from given and family names, either half
// optional, space-joined when both are present.
func JoinName(givenName, familyName string) string {
	switch {
	case givenName != "" && familyName != "":
		return givenName + " " + familyName
	case givenName != "":
		return givenName
	default:
		return familyName
	}
}
