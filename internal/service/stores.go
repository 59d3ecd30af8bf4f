package service

import "pantrypal/internal/models"

// HouseholdStore is the persistence surface the household and invitation
// services need for households and memberships. Satisfied by
// repository.HouseholdRepository; tests substitute in-memory fakes.
type HouseholdStore interface {
	CreateHousehold(name string, ownerID int64) (*models.Household, error)
	GetHousehold(id int64) (*models.Household, error)
	ListHouseholdsForUser(userID int64) ([]models.Household, error)
	UpdateHousehold(household *models.Household) error
	DeleteHousehold(id int64) error

	GetMember(householdID, userID int64) (*models.Membership, error)
	ListMembers(householdID int64) ([]models.Membership, error)
	AddMember(householdID, userID int64, role models.Role) (*models.Membership, error)
	RemoveMember(householdID, userID int64, currentRole models.Role) error
	UpdateMemberRole(householdID, userID int64, role, currentRole models.Role) error
	CountMembers(householdID int64) (int, error)
	TransferOwnership(householdID, fromUserID, toUserID int64) error
}

// InvitationStore is the persistence surface for invitations. Satisfied
// by repository.InvitationRepository.
type InvitationStore interface {
	CreateInvitation(inv *models.Invitation) error
	GetInvitation(id int64) (*models.Invitation, error)
	FindPendingInvitation(householdID int64, email string) (*models.Invitation, error)
	ListHouseholdInvitations(householdID int64) ([]models.Invitation, error)
	ListInvitationsForEmail(email string) ([]models.Invitation, error)
	MarkStatus(id int64, from, to models.InvitationStatus) (bool, error)
	UpdatePendingInvitation(inv *models.Invitation) (bool, error)
	MarkOverdueExpired() (int64, error)
	AcceptInvitation(inv *models.Invitation, userID int64) error
}

// UserDirectory is the read-only slice of the user store the household
// and invitation services need to resolve actors and invitees.
type UserDirectory interface {
	GetUserByID(id int64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
}
