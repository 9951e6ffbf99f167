package auth

import "strings"

// HeaderPrefix is the reserved namespace for application headers. Every
// header carrying identity context from the upstream gateway starts with
// this prefix, and every prefixed header is copied into the request state
// so downstream handlers read one surface regardless of transport casing.
const HeaderPrefix = "x-ram"

// Recognized request identifiers. Each may arrive as a header, a
// request-state local, or a base64-encoded cookie; matching is
// case-insensitive in all three sources.
const (
	HeaderAgencyUserLoginID      = "x-ram-agencyuserloginid"
	HeaderIdentityIDValue        = "x-ram-identity-idvalue"
	HeaderIdentityRawIDValue     = "x-ram-identity-rawidvalue"
	HeaderPartyType              = "x-ram-partytype"
	HeaderGivenName              = "x-ram-givenname"
	HeaderFamilyName             = "x-ram-familyname"
	HeaderUnstructuredName       = "x-ram-unstructuredname"
	HeaderDOB                    = "x-ram-dob"
	HeaderIdentityType           = "x-ram-identitytype"
	HeaderAgencyScheme           = "x-ram-agencyscheme"
	HeaderAgencyToken            = "x-ram-agencytoken"
	HeaderLinkIDScheme           = "x-ram-linkidscheme"
	HeaderLinkIDConsumer         = "x-ram-linkidconsumer"
	HeaderPublicIdentifierScheme = "x-ram-publicidentifierscheme"
	HeaderProfileProvider        = "x-ram-profileprovider"
	HeaderAgencyUserAgency       = "x-ram-agencyuseragency"
	HeaderAgencyUserProgramRoles = "x-ram-agencyuserprogramroles"
)

// IsApplicationHeader reports whether the header name belongs to the
// reserved application namespace.
func IsApplicationHeader(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), HeaderPrefix)
}

// SharedSecretLocalKey returns the request-state key under which a profile
// shared secret of the given type code is exposed, e.g.
// "x-ram-date_of_birth".
func SharedSecretLocalKey(typeCode string) string {
	return strings.ToLower(HeaderPrefix + "-" + typeCode)
}
