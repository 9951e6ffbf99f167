package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/mcaldbick/RAM/internal/db/models"
)

// BunPartyRepository implements PartyRepository using Bun ORM
type BunPartyRepository struct {
	db *bun.DB
}

// NewBunPartyRepository creates a new Bun-based party repository
func NewBunPartyRepository(db *bun.DB) *BunPartyRepository {
	return &BunPartyRepository{db: db}
}

// Create inserts a new party
func (r *BunPartyRepository) Create(ctx context.Context, party *models.Party) error {
	if _, err := r.db.NewInsert().Model(party).Exec(ctx); err != nil {
		return fmt.Errorf("create party: %w", err)
	}
	return nil
}

// GetByID retrieves a party by its id
func (r *BunPartyRepository) GetByID(ctx context.Context, id string) (*models.Party, error) {
	party := new(models.Party)
	err := r.db.NewSelect().Model(party).Where("p.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("party %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	return party, nil
}
