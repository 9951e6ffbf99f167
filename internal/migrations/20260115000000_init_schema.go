package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/mcaldbick/RAM/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20260115000000, down_20260115000000)
}

// up_20260115000000 initializes the full database schema
func up_20260115000000(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating parties table...")
	if _, err := db.NewCreateTable().Model((*models.Party)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create parties table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating identities table...")
	q := db.NewCreateTable().Model((*models.Identity)(nil)).IfNotExists()
	if IsSQLite(db) {
		q = q.ForeignKey(`(party_id) REFERENCES parties(id)`)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create identities table: %w", err)
	}
	if _, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_identities_id_value ON identities(id_value)`); err != nil {
		return fmt.Errorf("failed to create index on id_value: %w", err)
	}
	if _, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_identities_raw_id_value ON identities(raw_id_value)`); err != nil {
		return fmt.Errorf("failed to create index on raw_id_value: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating profiles table...")
	q = db.NewCreateTable().Model((*models.Profile)(nil)).IfNotExists()
	if IsSQLite(db) {
		q = q.ForeignKey(`(identity_id) REFERENCES identities(id) ON DELETE CASCADE`)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create profiles table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating names table...")
	q = db.NewCreateTable().Model((*models.Name)(nil)).IfNotExists()
	if IsSQLite(db) {
		q = q.ForeignKey(`(profile_id) REFERENCES profiles(id) ON DELETE CASCADE`)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create names table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating shared_secret_types table...")
	if _, err := db.NewCreateTable().Model((*models.SharedSecretType)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create shared_secret_types table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating shared_secrets table...")
	q = db.NewCreateTable().Model((*models.SharedSecret)(nil)).IfNotExists()
	if IsSQLite(db) {
		q = q.ForeignKey(`(profile_id) REFERENCES profiles(id) ON DELETE CASCADE`)
		q = q.ForeignKey(`(type_code) REFERENCES shared_secret_types(code)`)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create shared_secrets table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_shared_secrets_profile ON shared_secrets(profile_id)`); err != nil {
		return fmt.Errorf("failed to create index on shared_secrets: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating relationships table...")
	q = db.NewCreateTable().Model((*models.Relationship)(nil)).IfNotExists()
	if IsSQLite(db) {
		q = q.ForeignKey(`(subject_party_id) REFERENCES parties(id)`)
		q = q.ForeignKey(`(delegate_party_id) REFERENCES parties(id)`)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create relationships table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_relationships_subject ON relationships(subject_id_value)`); err != nil {
		return fmt.Errorf("failed to create index on subject_id_value: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_relationships_delegate ON relationships(delegate_id_value)`); err != nil {
		return fmt.Errorf("failed to create index on delegate_id_value: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_relationships_invitation ON relationships(invitation_code)`); err != nil {
		return fmt.Errorf("failed to create index on invitation_code: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating roles table...")
	q = db.NewCreateTable().Model((*models.Role)(nil)).IfNotExists()
	if IsSQLite(db) {
		q = q.ForeignKey(`(party_id) REFERENCES parties(id) ON DELETE CASCADE`)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create roles table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_roles_party ON roles(party_id)`); err != nil {
		return fmt.Errorf("failed to create index on roles: %w", err)
	}
	fmt.Println(" OK")

	return nil
}

// down_20260115000000 drops all tables in dependency order
func down_20260115000000(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{
		(*models.Role)(nil),
		(*models.Relationship)(nil),
		(*models.SharedSecret)(nil),
		(*models.SharedSecretType)(nil),
		(*models.Name)(nil),
		(*models.Profile)(nil),
		(*models.Identity)(nil),
		(*models.Party)(nil),
	} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
