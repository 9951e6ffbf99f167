package repository

import (
	"context"

	"github.com/mcaldbick/RAM/internal/db/models"
)

// CreateIdentityRequest carries the header-derived attributes needed to
// create a new identity together with its party, profile, name, and
// initial shared secret. The mapstructure tags match the lower-cased
// application header names so the request can be decoded straight from the
// propagated header map.
type CreateIdentityRequest struct {
	RawIDValue             string `mapstructure:"x-ram-identity-rawidvalue"`
	PartyType              string `mapstructure:"x-ram-partytype"`
	GivenName              string `mapstructure:"x-ram-givenname"`
	FamilyName             string `mapstructure:"x-ram-familyname"`
	UnstructuredName       string `mapstructure:"x-ram-unstructuredname"`
	SharedSecretValue      string `mapstructure:"x-ram-dob"`
	IdentityType           string `mapstructure:"x-ram-identitytype"`
	AgencyScheme           string `mapstructure:"x-ram-agencyscheme"`
	AgencyToken            string `mapstructure:"x-ram-agencytoken"`
	LinkIDScheme           string `mapstructure:"x-ram-linkidscheme"`
	LinkIDConsumer         string `mapstructure:"x-ram-linkidconsumer"`
	PublicIdentifierScheme string `mapstructure:"x-ram-publicidentifierscheme"`
	ProfileProvider        string `mapstructure:"x-ram-profileprovider"`

	// SharedSecretTypeCode is set by the caller, not decoded from headers.
	// The preparation pipeline always pairs the supplied date of birth with
	// the fixed DOB type code.
	SharedSecretTypeCode string `mapstructure:"-"`
}

// IdentityRepository is the durable identity store. Lookups return
// ErrNotFound (wrapped) when no row matches; callers distinguish "absent"
// from store failure with errors.Is.
type IdentityRepository interface {
	// FindByIDValue loads an identity with its party, profile, name, and
	// shared secrets.
	FindByIDValue(ctx context.Context, idValue string) (*models.Identity, error)

	// FindByRawIDValue loads an identity by its external correlation key.
	FindByRawIDValue(ctx context.Context, rawIDValue string) (*models.Identity, error)

	// CreateFromRequest creates the identity and its owning party, profile,
	// name, and initial shared secret in one transaction, deduplicating by
	// raw id value: when a row for the raw id already exists it is returned
	// unchanged.
	CreateFromRequest(ctx context.Context, req CreateIdentityRequest) (*models.Identity, error)
}

// PartyRepository exposes persistence operations for parties.
type PartyRepository interface {
	Create(ctx context.Context, party *models.Party) error
	GetByID(ctx context.Context, id string) (*models.Party, error)
}

// RelationshipRepository exposes persistence operations for relationships.
type RelationshipRepository interface {
	Create(ctx context.Context, rel *models.Relationship) error
	GetByID(ctx context.Context, id string) (*models.Relationship, error)
	Update(ctx context.Context, rel *models.Relationship) error
	// ListForIDValue returns relationships where the identity is subject or
	// delegate, newest first.
	ListForIDValue(ctx context.Context, idValue string) ([]models.Relationship, error)
	// FindByInvitationCode locates a pending, unclaimed relationship by its
	// invitation code.
	FindByInvitationCode(ctx context.Context, code string) (*models.Relationship, error)
}

// RoleRepository exposes persistence operations for program-scoped roles.
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	ListForParty(ctx context.Context, partyID string) ([]models.Role, error)
}
