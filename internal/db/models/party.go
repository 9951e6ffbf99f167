package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PartyType distinguishes individuals from organisations.
type PartyType string

const (
	PartyTypeIndividual   PartyType = "INDIVIDUAL"
	PartyTypeOrganisation PartyType = "ORGANISATION"
)

// Party is the legal entity a relationship connects. Every identity links
// to exactly one party; a party may hold several identities over time
// (e.g. after a credential migration).
type Party struct {
	bun.BaseModel `bun:"table:parties,alias:p"`

	ID        string    `bun:"id,pk,type:uuid"`
	PartyType PartyType `bun:"party_type,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
