package repository

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/mcaldbick/RAM/internal/db/models"
)

// BunRoleRepository implements RoleRepository using Bun ORM
type BunRoleRepository struct {
	db *bun.DB
}

// NewBunRoleRepository creates a new Bun-based role repository
func NewBunRoleRepository(db *bun.DB) *BunRoleRepository {
	return &BunRoleRepository{db: db}
}

// Create inserts a new role
func (r *BunRoleRepository) Create(ctx context.Context, role *models.Role) error {
	if _, err := r.db.NewInsert().Model(role).Exec(ctx); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// ListForParty returns the roles held by a party, newest first.
func (r *BunRoleRepository) ListForParty(ctx context.Context, partyID string) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.NewSelect().
		Model(&roles).
		Where("ro.party_id = ?", partyID).
		Order("ro.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}
