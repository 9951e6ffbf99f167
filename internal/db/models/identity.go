package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DOBSharedSecretTypeCode is the fixed shared-secret type used when an
// identity is created from a date-of-birth supplied by the gateway.
const DOBSharedSecretTypeCode = "DATE_OF_BIRTH"

// Identity is a durable record of a real-world person or entity known to
// the system. IDValue is unique and immutable once assigned; RawIDValue is
// the external correlation key supplied by the upstream credential and is
// what lookup/creation deduplicates on.
type Identity struct {
	bun.BaseModel `bun:"table:identities,alias:i"`

	ID                     string    `bun:"id,pk,type:uuid"`
	IDValue                string    `bun:"id_value,notnull,unique"`
	RawIDValue             string    `bun:"raw_id_value,notnull,unique"`
	IdentityType           string    `bun:"identity_type,notnull"`
	AgencyScheme           string    `bun:"agency_scheme"`
	AgencyToken            string    `bun:"agency_token"`
	LinkIDScheme           string    `bun:"link_id_scheme"`
	LinkIDConsumer         string    `bun:"link_id_consumer"`
	PublicIdentifierScheme string    `bun:"public_identifier_scheme"`
	PartyID                string    `bun:"party_id,notnull,type:uuid"` // FK to parties(id)
	CreatedAt              time.Time `bun:"created_at,notnull,default:current_timestamp"`

	Party   *Party   `bun:"rel:belongs-to,join:party_id=id"`
	Profile *Profile `bun:"rel:has-one,join:id=identity_id"`
}

// Profile groups the name and shared secrets attached to an identity.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:pr"`

	ID         string `bun:"id,pk,type:uuid"`
	IdentityID string `bun:"identity_id,notnull,unique,type:uuid"` // FK to identities(id)
	Provider   string `bun:"provider"`

	Name          *Name           `bun:"rel:has-one,join:id=profile_id"`
	SharedSecrets []*SharedSecret `bun:"rel:has-many,join:id=profile_id"`
}

// DisplayName returns the profile's computed display name, or "" when no
// name row exists.
func (p *Profile) DisplayName() string {
	if p == nil || p.Name == nil {
		return ""
	}
	return p.Name.DisplayName()
}

// Name holds the structured and unstructured name halves for a profile.
type Name struct {
	bun.BaseModel `bun:"table:names,alias:n"`

	ID               string `bun:"id,pk,type:uuid"`
	ProfileID        string `bun:"profile_id,notnull,unique,type:uuid"` // FK to profiles(id)
	GivenName        string `bun:"given_name"`
	FamilyName       string `bun:"family_name"`
	UnstructuredName string `bun:"unstructured_name"`
}

// DisplayName prefers the unstructured name when present, otherwise joins
// the structured halves with a space, either half optional.
func (n *Name) DisplayName() string {
	if n == nil {
		return ""
	}
	if n.UnstructuredName != "" {
		return n.UnstructuredName
	}
	switch {
	case n.GivenName != "" && n.FamilyName != "":
		return n.GivenName + " " + n.FamilyName
	case n.GivenName != "":
		return n.GivenName
	default:
		return n.FamilyName
	}
}

// SharedSecretType describes a kind of identity-verifying information.
type SharedSecretType struct {
	bun.BaseModel `bun:"table:shared_secret_types,alias:sst"`

	Code        string `bun:"code,pk"`
	Description string `bun:"description"`
	Domain      string `bun:"domain"`
}

// SharedSecret is one piece of identity-verifying information (e.g. date
// of birth) attached to a profile.
type SharedSecret struct {
	bun.BaseModel `bun:"table:shared_secrets,alias:ss"`

	ID        string `bun:"id,pk,type:uuid"`
	ProfileID string `bun:"profile_id,notnull,type:uuid"` // FK to profiles(id)
	TypeCode  string `bun:"type_code,notnull"`            // FK to shared_secret_types(code)
	Value     string `bun:"value,notnull"`

	Type *SharedSecretType `bun:"rel:belongs-to,join:type_code=code"`
}
