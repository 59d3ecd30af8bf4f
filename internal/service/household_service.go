package service

import (
	"fmt"

	"pantrypal/internal/apperr"
	"pantrypal/internal/models"
	"pantrypal/internal/policy"
	"pantrypal/internal/validation"
)

// HouseholdService implements household and membership operations. Every
// operation takes the acting user's id first and enforces authorization
// through the policy evaluator before touching state.
type HouseholdService struct {
	households HouseholdStore
	users      UserDirectory
	policy     *policy.Evaluator
}

// NewHouseholdService creates a new household service
func NewHouseholdService(households HouseholdStore, users UserDirectory, eval *policy.Evaluator) *HouseholdService {
	return &HouseholdService{households: households, users: users, policy: eval}
}

// CreateHousehold creates a household with the actor as its owner
func (s *HouseholdService) CreateHousehold(actorID int64, name string) (*models.Household, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, apperr.Validation("invalid_name", err.Error())
	}
	household, err := s.households.CreateHousehold(name, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to create household: %w", err)
	}
	return household, nil
}

// GetHousehold returns a household the actor is a member of
func (s *HouseholdService) GetHousehold(actorID, householdID int64) (*models.Household, error) {
	household, err := s.households.GetHousehold(householdID)
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, apperr.NotFound("household_not_found", "household does not exist")
	}
	allowed, err := s.policy.CanView(householdID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("not_member", "you are not a member of this household")
	}
	return household, nil
}

// ListHouseholds returns all households the actor belongs to
func (s *HouseholdService) ListHouseholds(actorID int64) ([]models.Household, error) {
	return s.households.ListHouseholdsForUser(actorID)
}

// UpdateHousehold renames a household. Requires admin or owner.
func (s *HouseholdService) UpdateHousehold(actorID, householdID int64, name string) (*models.Household, error) {
	household, err := s.GetHousehold(actorID, householdID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.policy.CanManage(householdID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("cannot_manage", "only admins and the owner can edit the household")
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, apperr.Validation("invalid_name", err.Error())
	}
	household.Name = name
	if err := s.households.UpdateHousehold(household); err != nil {
		return nil, err
	}
	return s.households.GetHousehold(householdID)
}

// DeleteHousehold removes a household and everything in it. Owner only.
func (s *HouseholdService) DeleteHousehold(actorID, householdID int64) error {
	if _, err := s.GetHousehold(actorID, householdID); err != nil {
		return err
	}
	allowed, err := s.policy.CanTransferOwnership(householdID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("not_owner", "only the owner can delete the household")
	}
	return s.households.DeleteHousehold(householdID)
}

// ListMembers returns the household's members. Any member may look.
func (s *HouseholdService) ListMembers(actorID, householdID int64) ([]models.Membership, error) {
	if _, err := s.GetHousehold(actorID, householdID); err != nil {
		return nil, err
	}
	return s.households.ListMembers(householdID)
}

// AddMember adds an existing user directly to the household. Requires
// admin or owner; the owner role can never be granted this way.
func (s *HouseholdService) AddMember(actorID, householdID, userID int64, role models.Role) (*models.Membership, error) {
	if _, err := s.GetHousehold(actorID, householdID); err != nil {
		return nil, err
	}
	allowed, err := s.policy.CanManage(householdID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("cannot_manage", "only admins and the owner can add members")
	}
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() || role == models.RoleOwner {
		return nil, apperr.Validation("invalid_role", "role must be admin or member")
	}
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user_not_found", "user does not exist")
	}
	return s.households.AddMember(householdID, userID, role)
}

// RemoveMember removes a member from the household. Admins and the owner
// can remove others; anyone can remove themselves via Leave. The owner
// cannot be removed, only replaced through ownership transfer.
func (s *HouseholdService) RemoveMember(actorID, householdID, userID int64) error {
	if actorID == userID {
		return s.Leave(actorID, householdID)
	}
	if _, err := s.GetHousehold(actorID, householdID); err != nil {
		return err
	}
	allowed, err := s.policy.CanManage(householdID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("cannot_manage", "only admins and the owner can remove members")
	}
	target, err := s.households.GetMember(householdID, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.NotFound("member_not_found", "user is not a member of this household")
	}
	if target.Role == models.RoleOwner {
		return apperr.StateConflict("owner_cannot_leave", "the owner cannot be removed; transfer ownership first")
	}
	return s.households.RemoveMember(householdID, userID, target.Role)
}

// Leave removes the actor's own membership. The owner must transfer
// ownership before leaving.
func (s *HouseholdService) Leave(actorID, householdID int64) error {
	member, err := s.households.GetMember(householdID, actorID)
	if err != nil {
		return err
	}
	if member == nil {
		return apperr.NotFound("member_not_found", "you are not a member of this household")
	}
	if member.Role == models.RoleOwner {
		return apperr.StateConflict("owner_cannot_leave", "the owner cannot leave; transfer ownership first")
	}
	return s.households.RemoveMember(householdID, actorID, member.Role)
}

// UpdateRole changes a member's role between admin and member. The owner
// role is granted and revoked only through ownership transfer.
func (s *HouseholdService) UpdateRole(actorID, householdID, userID int64, role models.Role) (*models.Membership, error) {
	if _, err := s.GetHousehold(actorID, householdID); err != nil {
		return nil, err
	}
	allowed, err := s.policy.CanManage(householdID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("cannot_manage", "only admins and the owner can change roles")
	}
	if !role.Valid() || role == models.RoleOwner {
		return nil, apperr.Validation("invalid_role", "role must be admin or member; ownership changes via transfer")
	}
	target, err := s.households.GetMember(householdID, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperr.NotFound("member_not_found", "user is not a member of this household")
	}
	if target.Role == models.RoleOwner {
		return nil, apperr.StateConflict("owner_role_locked", "the owner's role changes only via ownership transfer")
	}
	if err := s.households.UpdateMemberRole(householdID, userID, role, target.Role); err != nil {
		return nil, err
	}
	return s.households.GetMember(householdID, userID)
}

// TransferOwnership makes another member the owner and demotes the
// current owner to admin. Owner only.
func (s *HouseholdService) TransferOwnership(actorID, householdID, newOwnerID int64) error {
	if _, err := s.GetHousehold(actorID, householdID); err != nil {
		return err
	}
	allowed, err := s.policy.CanTransferOwnership(householdID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("not_owner", "only the owner can transfer ownership")
	}
	if actorID == newOwnerID {
		return apperr.Validation("invalid_target", "you are already the owner")
	}
	target, err := s.households.GetMember(householdID, newOwnerID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.NotFound("member_not_found", "target user is not a member of this household")
	}
	return s.households.TransferOwnership(householdID, actorID, newOwnerID)
}
