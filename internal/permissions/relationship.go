package permissions

import (
	"github.com/mcaldbick/RAM/internal/auth"
	"github.com/mcaldbick/RAM/internal/db/models"
)

// isSubject reports whether the principal is the authorising party of the
// relationship. Agency users act for their agency, not for a party, so
// they are never the subject or delegate.
func isSubject(principal *auth.Principal, rel *models.Relationship) bool {
	return principal != nil && !principal.AgencyUserInd && principal.IDValue == rel.SubjectIDValue
}

func isDelegate(principal *auth.Principal, rel *models.Relationship) bool {
	return principal != nil && !principal.AgencyUserInd && rel.Claimed() && principal.IDValue == rel.DelegateIDValue
}

func isAgencyUser(principal *auth.Principal) bool {
	return principal != nil && principal.AgencyUserInd
}

// RelationshipCanAccept permits the pending delegate (or agency staff) to
// accept a claimed, pending relationship.
type RelationshipCanAccept struct{}

func (RelationshipCanAccept) Action() Action { return ActionAccept }

func (RelationshipCanAccept) Allow(principal *auth.Principal, rel *models.Relationship) bool {
	if rel == nil || rel.Status != models.RelationshipStatusPending || !rel.Claimed() {
		return false
	}
	return isAgencyUser(principal) || isDelegate(principal, rel)
}

// RelationshipCanClaim permits any authenticated individual to claim a
// pending relationship that no delegate has attached to yet.
type RelationshipCanClaim struct{}

func (RelationshipCanClaim) Action() Action { return ActionClaim }

func (RelationshipCanClaim) Allow(principal *auth.Principal, rel *models.Relationship) bool {
	if principal == nil || principal.AgencyUserInd {
		return false
	}
	if rel == nil || rel.Status != models.RelationshipStatusPending || rel.Claimed() {
		return false
	}
	// The subject cannot claim its own invitation.
	return principal.IDValue != rel.SubjectIDValue
}

// RelationshipCanModify permits the subject (or agency staff) to modify a
// relationship that has not reached a terminal state.
type RelationshipCanModify struct{}

func (RelationshipCanModify) Action() Action { return ActionModify }

func (RelationshipCanModify) Allow(principal *auth.Principal, rel *models.Relationship) bool {
	if rel == nil || rel.Terminal() {
		return false
	}
	return isAgencyUser(principal) || isSubject(principal, rel)
}

// RelationshipCanNotifyDelegate permits the subject (or agency staff) to
// re-send the invitation for a pending, unclaimed relationship.
type RelationshipCanNotifyDelegate struct{}

func (RelationshipCanNotifyDelegate) Action() Action { return ActionNotifyDelegate }

func (RelationshipCanNotifyDelegate) Allow(principal *auth.Principal, rel *models.Relationship) bool {
	if rel == nil || rel.Status != models.RelationshipStatusPending || rel.Claimed() {
		return false
	}
	return isAgencyUser(principal) || isSubject(principal, rel)
}

// RelationshipCanReject permits the pending delegate (or agency staff) to
// reject a claimed, pending relationship.
type RelationshipCanReject struct{}

func (RelationshipCanReject) Action() Action { return ActionReject }

func (RelationshipCanReject) Allow(principal *auth.Principal, rel *models.Relationship) bool {
	if rel == nil || rel.Status != models.RelationshipStatusPending || !rel.Claimed() {
		return false
	}
	return isAgencyUser(principal) || isDelegate(principal, rel)
}

// RelationshipCanView permits either party to the relationship, or agency
// staff, to view it.
type RelationshipCanView struct{}

func (RelationshipCanView) Action() Action { return ActionView }

func (RelationshipCanView) Allow(principal *auth.Principal, rel *models.Relationship) bool {
	if rel == nil {
		return false
	}
	return isAgencyUser(principal) || isSubject(principal, rel) || isDelegate(principal, rel)
}
