package iam

import (
	"context"
	"errors"
	"fmt"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mcaldbick/RAM/internal/db/models"
	"github.com/mcaldbick/RAM/internal/repository"
	"github.com/mcaldbick/RAM/internal/telemetry"
)

// DefaultIdentityCacheSize bounds the resolver's identity cache when the
// configuration does not set one.
const DefaultIdentityCacheSize = 1024

// IdentityResolver looks up durable identities by idValue and lazily
// creates them from header-derived attributes on first contact.
//
// Resolved identities are held in a bounded LRU keyed by idValue. Entries
// are immutable snapshots; this subsystem never mutates an identity after
// resolution, so staleness only matters for profile edits made elsewhere,
// and those flows evict through Invalidate.
type IdentityResolver struct {
	identities repository.IdentityRepository
	cache      *lru.Cache[string, *models.Identity]
}

// NewIdentityResolver builds a resolver over the identity store with a
// cache of the given size (DefaultIdentityCacheSize when <= 0).
func NewIdentityResolver(identities repository.IdentityRepository, cacheSize int) (*IdentityResolver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultIdentityCacheSize
	}
	cache, err := lru.New[string, *models.Identity](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("identity cache: %w", err)
	}
	return &IdentityResolver{identities: identities, cache: cache}, nil
}

// FindByIDValue returns the identity for idValue, or (nil, nil) when no
// identity exists. Store errors other than not-found are returned as-is.
func (r *IdentityResolver) FindByIDValue(ctx context.Context, idValue string) (*models.Identity, error) {
	if idValue == "" {
		return nil, nil
	}
	if identity, ok := r.cache.Get(idValue); ok {
		return identity, nil
	}
	identity, err := r.identities.FindByIDValue(ctx, idValue)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	r.cache.Add(identity.IDValue, identity)
	return identity, nil
}

// ResolveOrCreate implements the identity branch of the preparation
// pipeline:
//
//  1. an identity found for idValue wins unchanged, no re-creation
//  2. otherwise, without a raw id value there is nothing to create and the
//     request proceeds anonymously: (nil, nil)
//  3. otherwise a new identity is created from the supplied attributes,
//     paired with the fixed DOB shared-secret type code
//
// Any store failure is returned and the caller must abort the request; no
// partial identity is ever exposed.
func (r *IdentityResolver) ResolveOrCreate(ctx context.Context, idValue string, req repository.CreateIdentityRequest) (*models.Identity, error) {
	ctx, span := telemetry.StartSpan(ctx, "ramapi/services/iam", "iam.ResolveOrCreate",
		attribute.String(telemetry.AttrIdentityIDValue, idValue),
	)
	defer span.End()

	identity, err := r.FindByIDValue(ctx, idValue)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if identity != nil {
		log.Printf("identity context: using existing identity %s", identity.IDValue)
		telemetry.AddEvent(span, "identity.resolved")
		return identity, nil
	}

	if req.RawIDValue == "" {
		log.Printf("identity context: no raw id value supplied, proceeding without identity")
		telemetry.AddEvent(span, "identity.no_credentials")
		return nil, nil
	}

	req.SharedSecretTypeCode = models.DOBSharedSecretTypeCode
	identity, err = r.identities.CreateFromRequest(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create identity: %w", err)
	}
	log.Printf("identity context: created identity %s for raw id", identity.IDValue)
	telemetry.AddEvent(span, "identity.created",
		attribute.String(telemetry.AttrIdentityIDValue, identity.IDValue),
		attribute.String(telemetry.AttrIdentityRawIDValue, identity.RawIDValue),
	)
	r.cache.Add(identity.IDValue, identity)
	return identity, nil
}

// Invalidate evicts a cached identity after an out-of-band profile change.
func (r *IdentityResolver) Invalidate(idValue string) {
	r.cache.Remove(idValue)
}
