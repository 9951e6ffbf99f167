package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/mcaldbick/RAM/internal/db/models"
)

// BunRelationshipRepository implements RelationshipRepository using Bun ORM
type BunRelationshipRepository struct {
	db *bun.DB
}

// NewBunRelationshipRepository creates a new Bun-based relationship repository
func NewBunRelationshipRepository(db *bun.DB) *BunRelationshipRepository {
	return &BunRelationshipRepository{db: db}
}

// Create inserts a new relationship
func (r *BunRelationshipRepository) Create(ctx context.Context, rel *models.Relationship) error {
	if _, err := r.db.NewInsert().Model(rel).Exec(ctx); err != nil {
		return fmt.Errorf("create relationship: %w", err)
	}
	return nil
}

// GetByID retrieves a relationship by its id
func (r *BunRelationshipRepository) GetByID(ctx context.Context, id string) (*models.Relationship, error) {
	rel := new(models.Relationship)
	err := r.db.NewSelect().Model(rel).Where("rel.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("relationship %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get relationship: %w", err)
	}
	return rel, nil
}

// Update persists a modified relationship and bumps its updated timestamp.
func (r *BunRelationshipRepository) Update(ctx context.Context, rel *models.Relationship) error {
	rel.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().Model(rel).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update relationship: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("relationship %s: %w", rel.ID, ErrNotFound)
	}
	return nil
}

// ListForIDValue returns relationships where the identity is subject or
// delegate, newest first.
func (r *BunRelationshipRepository) ListForIDValue(ctx context.Context, idValue string) ([]models.Relationship, error) {
	var rels []models.Relationship
	err := r.db.NewSelect().
		Model(&rels).
		Where("rel.subject_id_value = ?", idValue).
		WhereOr("rel.delegate_id_value = ?", idValue).
		Order("rel.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	return rels, nil
}

// FindByInvitationCode locates a pending, unclaimed relationship by its
// invitation code.
func (r *BunRelationshipRepository) FindByInvitationCode(ctx context.Context, code string) (*models.Relationship, error) {
	rel := new(models.Relationship)
	err := r.db.NewSelect().
		Model(rel).
		Where("rel.invitation_code = ?", code).
		Where("rel.status = ?", models.RelationshipStatusPending).
		Where("rel.delegate_id_value = ''").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invitation %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("find relationship by invitation: %w", err)
	}
	return rel, nil
}
