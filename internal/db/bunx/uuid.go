package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for database primary
// keys and identity idValues. Time ordering keeps index inserts append-only
// on both PostgreSQL and SQLite, with no dependency on gen_random_uuid().
//
// Panics only on entropy-source exhaustion, at which point no id generation
// can proceed anyway.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
