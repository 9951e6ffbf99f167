// Package permissions decides whether a principal may perform an action on
// a domain entity instance. Enforcers are stateless predicates registered
// per entity kind at process start; the registry is frozen before serving.
package permissions

import (
	"github.com/mcaldbick/RAM/internal/auth"
	"github.com/mcaldbick/RAM/internal/db/models"
)

// Action is a verb a principal may perform on an entity.
type Action string

const (
	ActionAccept         Action = "accept"
	ActionClaim          Action = "claim"
	ActionModify         Action = "modify"
	ActionNotifyDelegate Action = "notify-delegate"
	ActionReject         Action = "reject"
	ActionView           Action = "view"
)

// Enforcer is a stateless yes/no predicate bound to one action on one
// entity kind. Implementations are evaluated fresh per call and must not
// retain per-request state.
type Enforcer[T any] interface {
	Action() Action
	Allow(principal *auth.Principal, entity T) bool
}

// Evaluate applies every enforcer registered for the given action against
// (principal, entity). The action is permitted only if all of them allow it
// (logical AND, short-circuit on first deny). An empty list allows by
// default: kinds with no registered enforcers are unrestricted.
func Evaluate[T any](enforcers []Enforcer[T], action Action, principal *auth.Principal, entity T) bool {
	for _, e := range enforcers {
		if e.Action() != action {
			continue
		}
		if !e.Allow(principal, entity) {
			return false
		}
	}
	return true
}

// Registry is the per-entity-kind collection of enforcers. It is built
// once at startup via Builder and read-only afterward. In the shipped
// configuration only relationships carry enforcers; every other kind has
// an empty list, which Evaluate treats as allowed by default.
type Registry struct {
	relationship []Enforcer[*models.Relationship]
	identity     []Enforcer[*models.Identity]
	party        []Enforcer[*models.Party]
	profile      []Enforcer[*models.Profile]
	name         []Enforcer[*models.Name]
	sharedSecret []Enforcer[*models.SharedSecret]
	role         []Enforcer[*models.Role]
}

// Relationship returns the enforcers registered for relationships.
func (r *Registry) Relationship() []Enforcer[*models.Relationship] { return r.relationship }

// Identity returns the enforcers registered for identities.
func (r *Registry) Identity() []Enforcer[*models.Identity] { return r.identity }

// Party returns the enforcers registered for parties.
func (r *Registry) Party() []Enforcer[*models.Party] { return r.party }

// Profile returns the enforcers registered for profiles.
func (r *Registry) Profile() []Enforcer[*models.Profile] { return r.profile }

// Name returns the enforcers registered for names.
func (r *Registry) Name() []Enforcer[*models.Name] { return r.name }

// SharedSecret returns the enforcers registered for shared secrets.
func (r *Registry) SharedSecret() []Enforcer[*models.SharedSecret] { return r.sharedSecret }

// Role returns the enforcers registered for roles.
func (r *Registry) Role() []Enforcer[*models.Role] { return r.role }

// Builder assembles a Registry before it is frozen. Registration after
// Build is not possible without constructing a new registry, keeping live
// mutation out of the request path.
type Builder struct {
	registry Registry
}

// NewBuilder returns an empty registry builder.
func NewBuilder() *Builder { return &Builder{} }

// RegisterRelationship appends relationship enforcers in evaluation order.
func (b *Builder) RegisterRelationship(enforcers ...Enforcer[*models.Relationship]) *Builder {
	b.registry.relationship = append(b.registry.relationship, enforcers...)
	return b
}

// RegisterIdentity appends identity enforcers in evaluation order.
func (b *Builder) RegisterIdentity(enforcers ...Enforcer[*models.Identity]) *Builder {
	b.registry.identity = append(b.registry.identity, enforcers...)
	return b
}

// Build freezes and returns the registry.
func (b *Builder) Build() *Registry {
	registry := b.registry
	return &registry
}

// DefaultRegistry returns the shipped enforcer configuration: six
// relationship enforcers, one per action, and nothing for any other kind.
//
// The empty lists mean relationship mutations are the only gated
// operations. Whether identity, party, profile, role, and shared-secret
// mutations should stay unrestricted is an open policy question rather
// than a settled decision; the configuration is kept here in one place so
// tightening it is a one-line registration.
func DefaultRegistry() *Registry {
	return NewBuilder().
		RegisterRelationship(
			RelationshipCanAccept{},
			RelationshipCanClaim{},
			RelationshipCanModify{},
			RelationshipCanNotifyDelegate{},
			RelationshipCanReject{},
			RelationshipCanView{},
		).
		Build()
}
