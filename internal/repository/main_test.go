package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/mcaldbick/RAM/internal/db/bunx"
	"github.com/mcaldbick/RAM/internal/db/models"
)

// setupTestDB opens a fresh in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := bunx.NewDB(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	ctx := context.Background()
	for _, model := range []any{
		(*models.Party)(nil),
		(*models.Identity)(nil),
		(*models.Profile)(nil),
		(*models.Name)(nil),
		(*models.SharedSecretType)(nil),
		(*models.SharedSecret)(nil),
		(*models.Relationship)(nil),
		(*models.Role)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	return db
}
