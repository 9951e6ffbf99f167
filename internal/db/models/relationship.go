package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RelationshipStatus tracks the lifecycle of a delegation.
type RelationshipStatus string

const (
	RelationshipStatusPending   RelationshipStatus = "PENDING"
	RelationshipStatusActive    RelationshipStatus = "ACTIVE"
	RelationshipStatusRejected  RelationshipStatus = "REJECTED"
	RelationshipStatusCancelled RelationshipStatus = "CANCELLED"
)

// Relationship is a delegation of authority from a subject party to a
// delegate party. A relationship created on behalf of a delegate who has
// not yet presented a credential starts unclaimed: DelegateIDValue is
// empty until a claim succeeds.
type Relationship struct {
	bun.BaseModel `bun:"table:relationships,alias:rel"`

	ID              string             `bun:"id,pk,type:uuid"`
	TypeCode        string             `bun:"type_code,notnull"` // e.g. "UNIVERSAL_REPRESENTATIVE"
	SubjectPartyID  string             `bun:"subject_party_id,notnull,type:uuid"`  // FK to parties(id)
	DelegatePartyID *string            `bun:"delegate_party_id,type:uuid"`         // FK to parties(id), nil until claimed
	SubjectIDValue  string             `bun:"subject_id_value,notnull"`            // identity idValue of the authorising party
	DelegateIDValue string             `bun:"delegate_id_value"`                   // identity idValue of the acting party, "" until claimed
	SubjectNickname string             `bun:"subject_nickname"`
	DelegateName    string             `bun:"delegate_name"`
	InvitationCode  string             `bun:"invitation_code"`
	Status          RelationshipStatus `bun:"status,notnull,default:'PENDING'"`
	StartTimestamp  time.Time          `bun:"start_timestamp,notnull"`
	EndTimestamp    *time.Time         `bun:"end_timestamp"`
	CreatedAt       time.Time          `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time          `bun:"updated_at,notnull,default:current_timestamp"`
}

// Claimed reports whether a delegate identity has attached itself to the
// relationship.
func (r *Relationship) Claimed() bool {
	return r != nil && r.DelegateIDValue != ""
}

// Terminal reports whether the relationship can no longer change state.
func (r *Relationship) Terminal() bool {
	if r == nil {
		return false
	}
	return r.Status == RelationshipStatusRejected || r.Status == RelationshipStatusCancelled
}

// Role is a program-scoped capability grant attached to a party.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:ro"`

	ID             string     `bun:"id,pk,type:uuid"`
	TypeCode       string     `bun:"type_code,notnull"`
	PartyID        string     `bun:"party_id,notnull,type:uuid"` // FK to parties(id)
	Program        string     `bun:"program,notnull"`
	StartTimestamp time.Time  `bun:"start_timestamp,notnull"`
	EndTimestamp   *time.Time `bun:"end_timestamp"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp"`
}
