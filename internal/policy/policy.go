// Package policy answers authorization questions for household-scoped
// operations.
//
// Authorization rules:
//   - Any member of a household can view it and its contents
//   - Admins and the owner can manage the household: edit settings,
//     add/remove members, and manage invitations
//   - Only the owner can transfer ownership; admins cannot
//   - A user with no membership is denied everything; a missing
//     membership is a deny, never an error
//
// The evaluator is a pure query surface over the membership store: it
// never mutates state and never caches decisions. Errors are returned
// only when the underlying store fails, which is an infrastructure
// problem distinct from an authorization deny.
package policy

import "pantrypal/internal/models"

// MembershipReader is the slice of the membership store the evaluator
// needs: a point lookup returning nil when no membership exists.
type MembershipReader interface {
	GetMember(householdID, userID int64) (*models.Membership, error)
}

// Evaluator answers capability queries for an actor within a household.
type Evaluator struct {
	members MembershipReader
}

// NewEvaluator creates an evaluator over the given membership store.
func NewEvaluator(members MembershipReader) *Evaluator {
	return &Evaluator{members: members}
}

// CanView reports whether the user has any membership in the household.
func (e *Evaluator) CanView(householdID, userID int64) (bool, error) {
	member, err := e.members.GetMember(householdID, userID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

// CanManage reports whether the user may edit the household, manage its
// members, and manage invitations: role ADMIN or OWNER.
func (e *Evaluator) CanManage(householdID, userID int64) (bool, error) {
	member, err := e.members.GetMember(householdID, userID)
	if err != nil {
		return false, err
	}
	return member != nil && member.Role.AtLeast(models.RoleAdmin), nil
}

// CanInvite reports whether the user may send household invitations:
// same rule as CanManage.
func (e *Evaluator) CanInvite(householdID, userID int64) (bool, error) {
	return e.CanManage(householdID, userID)
}

// CanTransferOwnership reports whether the user is the current owner.
// Admins may not transfer ownership.
func (e *Evaluator) CanTransferOwnership(householdID, userID int64) (bool, error) {
	member, err := e.members.GetMember(householdID, userID)
	if err != nil {
		return false, err
	}
	return member != nil && member.Role == models.RoleOwner, nil
}
