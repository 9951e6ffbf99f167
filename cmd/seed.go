package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcaldbick/RAM/internal/db/bunx"
	"github.com/mcaldbick/RAM/internal/db/models"
	"github.com/mcaldbick/RAM/internal/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample identities and relationships",
	Long: `Inserts a small set of sample identities and relationships for local
development. Seeding is idempotent: identities deduplicate on their raw id
value, and relationships are only created when the subject has none.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		identityRepo := repository.NewBunIdentityRepository(db)
		relationshipRepo := repository.NewBunRelationshipRepository(db)
		roleRepo := repository.NewBunRoleRepository(db)

		ctx := context.Background()

		subject, err := identityRepo.CreateFromRequest(ctx, repository.CreateIdentityRequest{
			RawIDValue:           "seed-subject-001",
			PartyType:            string(models.PartyTypeIndividual),
			GivenName:            "Alex",
			FamilyName:           "Minifie",
			IdentityType:         "LINK_ID",
			SharedSecretValue:    "1978-03-14",
			SharedSecretTypeCode: models.DOBSharedSecretTypeCode,
		})
		if err != nil {
			return fmt.Errorf("seed subject identity: %w", err)
		}
		log.Printf("Seeded subject identity %s", subject.IDValue)

		delegate, err := identityRepo.CreateFromRequest(ctx, repository.CreateIdentityRequest{
			RawIDValue:           "seed-delegate-001",
			PartyType:            string(models.PartyTypeIndividual),
			GivenName:            "Sam",
			FamilyName:           "Korres",
			IdentityType:         "LINK_ID",
			SharedSecretValue:    "1985-11-02",
			SharedSecretTypeCode: models.DOBSharedSecretTypeCode,
		})
		if err != nil {
			return fmt.Errorf("seed delegate identity: %w", err)
		}
		log.Printf("Seeded delegate identity %s", delegate.IDValue)

		existing, err := relationshipRepo.ListForIDValue(ctx, subject.IDValue)
		if err != nil {
			return fmt.Errorf("check existing relationships: %w", err)
		}
		if len(existing) > 0 {
			log.Printf("Relationships already seeded, nothing to do")
			return nil
		}

		now := time.Now()

		// One claimed, active relationship between the two seeded parties.
		active := &models.Relationship{
			ID:              bunx.NewUUIDv7(),
			TypeCode:        "UNIVERSAL_REPRESENTATIVE",
			SubjectPartyID:  subject.PartyID,
			DelegatePartyID: &delegate.PartyID,
			SubjectIDValue:  subject.IDValue,
			DelegateIDValue: delegate.IDValue,
			SubjectNickname: "Alex M",
			DelegateName:    "Sam Korres",
			InvitationCode:  bunx.NewUUIDv7(),
			Status:          models.RelationshipStatusActive,
			StartTimestamp:  now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := relationshipRepo.Create(ctx, active); err != nil {
			return fmt.Errorf("seed active relationship: %w", err)
		}
		log.Printf("Seeded active relationship %s", active.ID)

		// One pending invitation awaiting a claim.
		pending := &models.Relationship{
			ID:             bunx.NewUUIDv7(),
			TypeCode:       "UNIVERSAL_REPRESENTATIVE",
			SubjectPartyID: subject.PartyID,
			SubjectIDValue: subject.IDValue,
			DelegateName:   "Pending Delegate",
			InvitationCode: bunx.NewUUIDv7(),
			Status:         models.RelationshipStatusPending,
			StartTimestamp: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := relationshipRepo.Create(ctx, pending); err != nil {
			return fmt.Errorf("seed pending relationship: %w", err)
		}
		log.Printf("Seeded pending relationship %s (invitation %s)", pending.ID, pending.InvitationCode)

		role := &models.Role{
			ID:             bunx.NewUUIDv7(),
			TypeCode:       "AGENT",
			PartyID:        delegate.PartyID,
			Program:        "medicare",
			StartTimestamp: now,
			CreatedAt:      now,
		}
		if err := roleRepo.Create(ctx, role); err != nil {
			return fmt.Errorf("seed role: %w", err)
		}
		log.Printf("Seeded role %s for party %s", role.ID, role.PartyID)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
