package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the collection all schema migrations register into.
var Migrations = migrate.NewMigrations()
