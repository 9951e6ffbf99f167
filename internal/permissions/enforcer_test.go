package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcaldbick/RAM/internal/auth"
	"github.com/mcaldbick/RAM/internal/db/models"
)

// stubEnforcer is a fixed-answer enforcer for registry semantics tests.
type stubEnforcer struct {
	action Action
	allow  bool
	called *bool
}

func (s stubEnforcer) Action() Action { return s.action }

func (s stubEnforcer) Allow(_ *auth.Principal, _ *models.Relationship) bool {
	if s.called != nil {
		*s.called = true
	}
	return s.allow
}

func TestEvaluate_EmptyListAllows(t *testing.T) {
	ok := Evaluate(nil, ActionView, &auth.Principal{IDValue: "p"}, &models.Relationship{})
	assert.True(t, ok)
}

func TestEvaluate_AllMustAllow(t *testing.T) {
	enforcers := []Enforcer[*models.Relationship]{
		stubEnforcer{action: ActionView, allow: true},
		stubEnforcer{action: ActionView, allow: false},
	}

	ok := Evaluate(enforcers, ActionView, &auth.Principal{IDValue: "p"}, &models.Relationship{})
	assert.False(t, ok)
}

func TestEvaluate_ShortCircuitsOnDeny(t *testing.T) {
	secondCalled := false
	enforcers := []Enforcer[*models.Relationship]{
		stubEnforcer{action: ActionView, allow: false},
		stubEnforcer{action: ActionView, allow: true, called: &secondCalled},
	}

	ok := Evaluate(enforcers, ActionView, &auth.Principal{IDValue: "p"}, &models.Relationship{})
	assert.False(t, ok)
	assert.False(t, secondCalled)
}

func TestEvaluate_SkipsOtherActions(t *testing.T) {
	denyAccept := false
	enforcers := []Enforcer[*models.Relationship]{
		stubEnforcer{action: ActionAccept, allow: false, called: &denyAccept},
		stubEnforcer{action: ActionView, allow: true},
	}

	ok := Evaluate(enforcers, ActionView, &auth.Principal{IDValue: "p"}, &models.Relationship{})
	assert.True(t, ok)
	assert.False(t, denyAccept)
}

func TestDefaultRegistry_OnlyRelationshipsGated(t *testing.T) {
	registry := DefaultRegistry()

	assert.Len(t, registry.Relationship(), 6)
	assert.Empty(t, registry.Identity())
	assert.Empty(t, registry.Party())
	assert.Empty(t, registry.Profile())
	assert.Empty(t, registry.Name())
	assert.Empty(t, registry.SharedSecret())
	assert.Empty(t, registry.Role())
}

func TestBuilder_OrderPreserved(t *testing.T) {
	first := stubEnforcer{action: ActionView, allow: true}
	second := stubEnforcer{action: ActionAccept, allow: false}

	registry := NewBuilder().
		RegisterRelationship(first).
		RegisterRelationship(second).
		Build()

	enforcers := registry.Relationship()
	assert.Len(t, enforcers, 2)
	assert.Equal(t, ActionView, enforcers[0].Action())
	assert.Equal(t, ActionAccept, enforcers[1].Action())
}
