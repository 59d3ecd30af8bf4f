package service

import (
	"fmt"
	"log"
	"time"

	"pantrypal/internal/apperr"
	"pantrypal/internal/models"
	"pantrypal/internal/policy"
	"pantrypal/internal/validation"
)

// DefaultInvitationExpiry is how long an invitation stays acceptable
// when the sender doesn't pick an expiry.
const DefaultInvitationExpiry = 7 * 24 * time.Hour

// InvitationMailer sends invitation notifications. Satisfied by
// EmailService; nil disables sending.
type InvitationMailer interface {
	SendInvitationEmail(inv *models.Invitation) error
}

// InvitationService implements the invitation lifecycle: send, resend,
// accept, decline, cancel. Expiry is lazy: a stored PENDING invitation
// past its expires_at reads and transitions as EXPIRED, and when expiry
// and a terminal transition race, expiry wins.
type InvitationService struct {
	invitations InvitationStore
	households  HouseholdStore
	users       UserDirectory
	policy      *policy.Evaluator
	mailer      InvitationMailer
	expiry      time.Duration
}

// NewInvitationService creates a new invitation service. A nil mailer
// disables invitation emails; a non-positive expiry selects the default.
func NewInvitationService(invitations InvitationStore, households HouseholdStore, users UserDirectory, eval *policy.Evaluator, mailer InvitationMailer, expiry time.Duration) *InvitationService {
	if expiry <= 0 {
		expiry = DefaultInvitationExpiry
	}
	return &InvitationService{
		invitations: invitations,
		households:  households,
		users:       users,
		policy:      eval,
		mailer:      mailer,
		expiry:      expiry,
	}
}

// SendInvitation creates a PENDING invitation to join the household at
// the given role and emails the invitee. Requires admin or owner.
func (s *InvitationService) SendInvitation(actorID, householdID int64, email string, role models.Role, expiresAt *time.Time) (*models.Invitation, error) {
	household, err := s.households.GetHousehold(householdID)
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, apperr.NotFound("household_not_found", "household does not exist")
	}
	allowed, err := s.policy.CanInvite(householdID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("cannot_invite", "only admins and the owner can send invitations")
	}

	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperr.Validation("invalid_email", err.Error())
	}
	email = validation.NormalizeEmail(email)

	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() || role == models.RoleOwner {
		return nil, apperr.Validation("invalid_role", "invitations can grant admin or member, not owner")
	}

	now := time.Now()
	expiry := now.Add(s.expiry)
	if expiresAt != nil {
		if !expiresAt.After(now) {
			return nil, apperr.Validation("invalid_expiry", "expiry must be in the future")
		}
		expiry = *expiresAt
	}

	actor, err := s.users.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor != nil && validation.NormalizeEmail(actor.Email) == email {
		return nil, apperr.Validation("self_invite", "you cannot invite yourself")
	}

	// Resolve the invitee up front so an existing member is a conflict
	// rather than a dangling invitation.
	var invitedUserID *int64
	invitee, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if invitee != nil {
		member, err := s.households.GetMember(householdID, invitee.ID)
		if err != nil {
			return nil, err
		}
		if member != nil {
			return nil, apperr.Conflict("member_exists", "user is already a member of this household")
		}
		invitedUserID = &invitee.ID
	}

	existing, err := s.invitations.FindPendingInvitation(householdID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsPending() {
			return nil, apperr.Conflict("invitation_exists", "a pending invitation for this email already exists")
		}
		// Stored PENDING but past expiry: persist the expiry and let the
		// new invitation through.
		if _, err := s.invitations.MarkStatus(existing.ID, models.InvitationPending, models.InvitationExpired); err != nil {
			return nil, err
		}
	}

	inv := &models.Invitation{
		HouseholdID:   householdID,
		Email:         email,
		InvitedUserID: invitedUserID,
		Role:          role,
		Status:        models.InvitationPending,
		InvitedBy:     actorID,
		ExpiresAt:     expiry,
		HouseholdName: household.Name,
	}
	if actor != nil {
		inv.InviterName = actor.Name
	}
	if err := s.invitations.CreateInvitation(inv); err != nil {
		return nil, err
	}

	s.notify(inv)
	return s.getFresh(inv)
}

// ResendInvitation refreshes a pending invitation's expiry and re-sends
// the email, keeping the same invitation id. An invitation past its
// expiry cannot be resent; sending a new invitation to the same email is
// the recovery path.
func (s *InvitationService) ResendInvitation(actorID, invitationID int64, expiresAt *time.Time) (*models.Invitation, error) {
	inv, err := s.invitations.GetInvitation(invitationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperr.NotFound("invitation_not_found", "invitation does not exist")
	}
	allowed, err := s.policy.CanInvite(inv.HouseholdID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("cannot_invite", "only admins and the owner can resend invitations")
	}
	if status := inv.EffectiveStatus(); status != models.InvitationPending {
		if status == models.InvitationExpired {
			return nil, apperr.StateConflict("invitation_expired", "invitation has expired")
		}
		return nil, apperr.StateConflict("invitation_not_pending", fmt.Sprintf("invitation is %s", status))
	}

	newExpiry := time.Now().Add(s.expiry)
	if expiresAt != nil {
		if !expiresAt.After(time.Now()) {
			return nil, apperr.Validation("invalid_expiry", "expiry must be in the future")
		}
		newExpiry = *expiresAt
	}
	inv.ExpiresAt = newExpiry
	updated, err := s.invitations.UpdatePendingInvitation(inv)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperr.StateConflict("invitation_not_pending", "invitation is no longer pending")
	}

	s.notify(inv)
	return s.getFresh(inv)
}

// UpdateInvitation changes a pending invitation's role or expiry.
// Requires admin or owner; the invitation must still be acceptable.
func (s *InvitationService) UpdateInvitation(actorID, invitationID int64, role models.Role, expiresAt *time.Time) (*models.Invitation, error) {
	inv, err := s.invitations.GetInvitation(invitationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperr.NotFound("invitation_not_found", "invitation does not exist")
	}
	allowed, err := s.policy.CanInvite(inv.HouseholdID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("cannot_invite", "only admins and the owner can edit invitations")
	}
	if status := inv.EffectiveStatus(); status != models.InvitationPending {
		return nil, apperr.StateConflict("invitation_not_pending", fmt.Sprintf("invitation is %s", status))
	}

	if role != "" {
		if !role.Valid() || role == models.RoleOwner {
			return nil, apperr.Validation("invalid_role", "invitations can grant admin or member, not owner")
		}
		inv.Role = role
	}
	if expiresAt != nil {
		if !expiresAt.After(time.Now()) {
			return nil, apperr.Validation("invalid_expiry", "expiry must be in the future")
		}
		inv.ExpiresAt = *expiresAt
	}

	updated, err := s.invitations.UpdatePendingInvitation(inv)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperr.StateConflict("invitation_not_pending", "invitation is no longer pending")
	}
	return s.getFresh(inv)
}

// AcceptInvitation accepts an invitation addressed to the actor,
// creating the membership atomically with the status flip.
func (s *InvitationService) AcceptInvitation(actorID, invitationID int64) (*models.Membership, error) {
	inv, err := s.getForInvitee(actorID, invitationID)
	if err != nil {
		return nil, err
	}

	if status := inv.EffectiveStatus(); status != models.InvitationPending {
		if status == models.InvitationExpired {
			return nil, apperr.StateConflict("invitation_expired", "invitation has expired")
		}
		return nil, apperr.StateConflict("invitation_not_pending", fmt.Sprintf("invitation is %s", status))
	}

	if err := s.invitations.AcceptInvitation(inv, actorID); err != nil {
		return nil, err
	}
	return s.households.GetMember(inv.HouseholdID, actorID)
}

// DeclineInvitation declines an invitation addressed to the actor
func (s *InvitationService) DeclineInvitation(actorID, invitationID int64) error {
	inv, err := s.getForInvitee(actorID, invitationID)
	if err != nil {
		return err
	}

	if status := inv.EffectiveStatus(); status != models.InvitationPending {
		if status == models.InvitationExpired {
			return apperr.StateConflict("invitation_expired", "invitation has expired")
		}
		return apperr.StateConflict("invitation_not_pending", fmt.Sprintf("invitation is %s", status))
	}

	changed, err := s.invitations.MarkStatus(inv.ID, models.InvitationPending, models.InvitationDeclined)
	if err != nil {
		return err
	}
	if !changed {
		return apperr.StateConflict("invitation_not_pending", "invitation is no longer pending")
	}
	return nil
}

// CancelInvitation withdraws a pending invitation. Requires admin or
// owner in the household.
func (s *InvitationService) CancelInvitation(actorID, invitationID int64) error {
	inv, err := s.invitations.GetInvitation(invitationID)
	if err != nil {
		return err
	}
	if inv == nil {
		return apperr.NotFound("invitation_not_found", "invitation does not exist")
	}
	allowed, err := s.policy.CanInvite(inv.HouseholdID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("cannot_invite", "only admins and the owner can cancel invitations")
	}

	if status := inv.EffectiveStatus(); status != models.InvitationPending {
		if status == models.InvitationExpired {
			return apperr.StateConflict("invitation_expired", "invitation has expired")
		}
		return apperr.StateConflict("invitation_not_pending", fmt.Sprintf("invitation is %s", status))
	}

	changed, err := s.invitations.MarkStatus(inv.ID, models.InvitationPending, models.InvitationCancelled)
	if err != nil {
		return err
	}
	if !changed {
		return apperr.StateConflict("invitation_not_pending", "invitation is no longer pending")
	}
	return nil
}

// GetInvitation returns an invitation visible to the actor: household
// admins, the owner, or the invitee.
func (s *InvitationService) GetInvitation(actorID, invitationID int64) (*models.Invitation, error) {
	inv, err := s.invitations.GetInvitation(invitationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperr.NotFound("invitation_not_found", "invitation does not exist")
	}
	allowed, err := s.policy.CanInvite(inv.HouseholdID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		if ok, err := s.isInvitee(actorID, inv); err != nil {
			return nil, err
		} else if !ok {
			return nil, apperr.Forbidden("cannot_view", "you cannot view this invitation")
		}
	}
	inv.Status = inv.EffectiveStatus()
	return inv, nil
}

// ListHouseholdInvitations returns all of a household's invitations,
// with lazy expiry applied. Requires admin or owner.
func (s *InvitationService) ListHouseholdInvitations(actorID, householdID int64) ([]models.Invitation, error) {
	household, err := s.households.GetHousehold(householdID)
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, apperr.NotFound("household_not_found", "household does not exist")
	}
	allowed, err := s.policy.CanInvite(householdID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("cannot_invite", "only admins and the owner can view invitations")
	}

	invitations, err := s.invitations.ListHouseholdInvitations(householdID)
	if err != nil {
		return nil, err
	}
	for i := range invitations {
		invitations[i].Status = invitations[i].EffectiveStatus()
	}
	return invitations, nil
}

// ListMyInvitations returns the actor's open invitations across all
// households, dropping anything past its expiry.
func (s *InvitationService) ListMyInvitations(actorID int64) ([]models.Invitation, error) {
	actor, err := s.users.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperr.NotFound("user_not_found", "user does not exist")
	}

	invitations, err := s.invitations.ListInvitationsForEmail(validation.NormalizeEmail(actor.Email))
	if err != nil {
		return nil, err
	}
	open := invitations[:0]
	for _, inv := range invitations {
		if inv.IsPending() {
			open = append(open, inv)
		}
	}
	return open, nil
}

// ExpireOverdue persists the EXPIRED status for every pending invitation
// past its expiry. Called periodically; reads never depend on it.
func (s *InvitationService) ExpireOverdue() (int64, error) {
	return s.invitations.MarkOverdueExpired()
}

// getForInvitee loads an invitation and verifies the actor is its
// addressee, either by resolved user id or by email.
func (s *InvitationService) getForInvitee(actorID, invitationID int64) (*models.Invitation, error) {
	inv, err := s.invitations.GetInvitation(invitationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperr.NotFound("invitation_not_found", "invitation does not exist")
	}
	ok, err := s.isInvitee(actorID, inv)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("not_invitee", "this invitation is not addressed to you")
	}
	return inv, nil
}

func (s *InvitationService) isInvitee(actorID int64, inv *models.Invitation) (bool, error) {
	if inv.InvitedUserID != nil && *inv.InvitedUserID == actorID {
		return true, nil
	}
	actor, err := s.users.GetUserByID(actorID)
	if err != nil {
		return false, err
	}
	if actor == nil {
		return false, nil
	}
	return validation.NormalizeEmail(actor.Email) == validation.NormalizeEmail(inv.Email), nil
}

// notify sends the invitation email. Delivery failures are logged, never
// surfaced: the invitation exists either way.
func (s *InvitationService) notify(inv *models.Invitation) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendInvitationEmail(inv); err != nil {
		log.Printf("Failed to send invitation email to %s: %v", inv.Email, err)
	}
}

// getFresh re-reads an invitation so callers see JOIN-populated fields
// and database-assigned timestamps.
func (s *InvitationService) getFresh(inv *models.Invitation) (*models.Invitation, error) {
	fresh, err := s.invitations.GetInvitation(inv.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return inv, nil
	}
	fresh.Status = fresh.EffectiveStatus()
	return fresh, nil
}
