package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/mcaldbick/RAM/internal/db/bunx"
	"github.com/mcaldbick/RAM/internal/db/models"
)

// BunIdentityRepository implements IdentityRepository using Bun ORM
type BunIdentityRepository struct {
	db *bun.DB
}

// NewBunIdentityRepository creates a new Bun-based identity repository
func NewBunIdentityRepository(db *bun.DB) *BunIdentityRepository {
	return &BunIdentityRepository{db: db}
}

// FindByIDValue retrieves an identity by its idValue with party, profile,
// name, and shared secrets loaded.
func (r *BunIdentityRepository) FindByIDValue(ctx context.Context, idValue string) (*models.Identity, error) {
	return r.findOne(ctx, "i.id_value = ?", idValue)
}

// FindByRawIDValue retrieves an identity by its external raw id value.
func (r *BunIdentityRepository) FindByRawIDValue(ctx context.Context, rawIDValue string) (*models.Identity, error) {
	return r.findOne(ctx, "i.raw_id_value = ?", rawIDValue)
}

func (r *BunIdentityRepository) findOne(ctx context.Context, where string, arg string) (*models.Identity, error) {
	identity := new(models.Identity)
	err := r.db.NewSelect().
		Model(identity).
		Relation("Party").
		Relation("Profile").
		Relation("Profile.Name").
		Relation("Profile.SharedSecrets").
		Relation("Profile.SharedSecrets.Type").
		Where(where, arg).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("identity %s: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return identity, nil
}

// CreateFromRequest creates a party, identity, profile, name, and initial
// shared secret in one transaction. Creation deduplicates on the raw id
// value: if an identity for req.RawIDValue already exists it is returned
// unchanged and nothing is written.
func (r *BunIdentityRepository) CreateFromRequest(ctx context.Context, req CreateIdentityRequest) (*models.Identity, error) {
	if req.RawIDValue == "" {
		return nil, errors.New("create identity: raw id value is required")
	}

	existing, err := r.FindByRawIDValue(ctx, req.RawIDValue)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	partyType := models.PartyType(strings.ToUpper(req.PartyType))
	if partyType == "" {
		partyType = models.PartyTypeIndividual
	}

	identity := &models.Identity{
		ID:                     bunx.NewUUIDv7(),
		IDValue:                bunx.NewUUIDv7(),
		RawIDValue:             req.RawIDValue,
		IdentityType:           req.IdentityType,
		AgencyScheme:           req.AgencyScheme,
		AgencyToken:            req.AgencyToken,
		LinkIDScheme:           req.LinkIDScheme,
		LinkIDConsumer:         req.LinkIDConsumer,
		PublicIdentifierScheme: req.PublicIdentifierScheme,
		CreatedAt:              time.Now(),
	}

	err = r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		party := &models.Party{
			ID:        bunx.NewUUIDv7(),
			PartyType: partyType,
			CreatedAt: time.Now(),
		}
		if _, err := tx.NewInsert().Model(party).Exec(ctx); err != nil {
			return fmt.Errorf("create party: %w", err)
		}
		identity.PartyID = party.ID
		identity.Party = party

		if _, err := tx.NewInsert().Model(identity).Exec(ctx); err != nil {
			return fmt.Errorf("create identity: %w", err)
		}

		profile := &models.Profile{
			ID:         bunx.NewUUIDv7(),
			IdentityID: identity.ID,
			Provider:   req.ProfileProvider,
		}
		if _, err := tx.NewInsert().Model(profile).Exec(ctx); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}

		name := &models.Name{
			ID:               bunx.NewUUIDv7(),
			ProfileID:        profile.ID,
			GivenName:        req.GivenName,
			FamilyName:       req.FamilyName,
			UnstructuredName: req.UnstructuredName,
		}
		if _, err := tx.NewInsert().Model(name).Exec(ctx); err != nil {
			return fmt.Errorf("create name: %w", err)
		}
		profile.Name = name

		if req.SharedSecretTypeCode != "" && req.SharedSecretValue != "" {
			secret := &models.SharedSecret{
				ID:        bunx.NewUUIDv7(),
				ProfileID: profile.ID,
				TypeCode:  req.SharedSecretTypeCode,
				Value:     req.SharedSecretValue,
			}
			if _, err := tx.NewInsert().Model(secret).Exec(ctx); err != nil {
				return fmt.Errorf("create shared secret: %w", err)
			}
			profile.SharedSecrets = append(profile.SharedSecrets, secret)
		}

		identity.Profile = profile
		return nil
	})
	if err != nil {
		// A concurrent request may have created the same raw id first.
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
			return r.FindByRawIDValue(ctx, req.RawIDValue)
		}
		return nil, err
	}

	return identity, nil
}
