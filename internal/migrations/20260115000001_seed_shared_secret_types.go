package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/mcaldbick/RAM/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20260115000001, down_20260115000001)
}

// up_20260115000001 seeds the reference shared-secret types the identity
// creation path depends on.
func up_20260115000001(ctx context.Context, db *bun.DB) error {
	types := []models.SharedSecretType{
		{Code: models.DOBSharedSecretTypeCode, Description: "Date of birth", Domain: "DEFAULT"},
	}

	fmt.Print(" [up] seeding shared_secret_types...")
	for _, t := range types {
		_, err := db.NewInsert().
			Model(&t).
			On("CONFLICT (code) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed shared secret type %s: %w", t.Code, err)
		}
	}
	fmt.Println(" OK")
	return nil
}

func down_20260115000001(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDelete().
		Model((*models.SharedSecretType)(nil)).
		Where("code = ?", models.DOBSharedSecretTypeCode).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove seeded shared secret types: %w", err)
	}
	return nil
}
