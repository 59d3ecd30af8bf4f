package service

import (
	"testing"
	"time"

	"pantrypal/internal/apperr"
	"pantrypal/internal/models"
	"pantrypal/internal/policy"
)

type invitationFixture struct {
	store     *fakeStore
	mailer    *fakeMailer
	svc       *InvitationService
	owner     *models.User
	admin     *models.User
	member    *models.User
	invitee   *models.User
	household *models.Household
}

func newInvitationFixture(t *testing.T) *invitationFixture {
	t.Helper()
	f := newFakeStore()
	mailer := &fakeMailer{}
	eval := policy.NewEvaluator(f)
	fx := &invitationFixture{
		store:   f,
		mailer:  mailer,
		svc:     NewInvitationService(f, f, f, eval, mailer, 0),
		owner:   f.addUser("owner@example.com", "Olive"),
		admin:   f.addUser("admin@example.com", "Ada"),
		member:  f.addUser("member@example.com", "Mo"),
		invitee: f.addUser("invitee@example.com", "Ida"),
	}
	h, err := f.CreateHousehold("Maple Street", fx.owner.ID)
	if err != nil {
		t.Fatalf("CreateHousehold() error = %v", err)
	}
	fx.household = h
	if _, err := f.AddMember(h.ID, fx.admin.ID, models.RoleAdmin); err != nil {
		t.Fatalf("AddMember(admin) error = %v", err)
	}
	if _, err := f.AddMember(h.ID, fx.member.ID, models.RoleMember); err != nil {
		t.Fatalf("AddMember(member) error = %v", err)
	}
	return fx
}

func (fx *invitationFixture) send(t *testing.T) *models.Invitation {
	t.Helper()
	inv, err := fx.svc.SendInvitation(fx.owner.ID, fx.household.ID, fx.invitee.Email, models.RoleMember, nil)
	if err != nil {
		t.Fatalf("SendInvitation() error = %v", err)
	}
	return inv
}

// expire rewrites a stored invitation's expiry into the past, simulating
// the passage of time.
func (fx *invitationFixture) expire(id int64) {
	fx.store.invitations[id].ExpiresAt = time.Now().Add(-time.Hour)
}

func TestSendInvitation(t *testing.T) {
	fx := newInvitationFixture(t)

	inv := fx.send(t)
	if inv.Status != models.InvitationPending {
		t.Errorf("status = %v, want %v", inv.Status, models.InvitationPending)
	}
	if inv.InvitedUserID == nil || *inv.InvitedUserID != fx.invitee.ID {
		t.Errorf("invited user not resolved to existing account")
	}
	wantExpiry := time.Now().Add(DefaultInvitationExpiry)
	if inv.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || inv.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expiry = %v, want about %v", inv.ExpiresAt, wantExpiry)
	}
	if len(fx.mailer.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(fx.mailer.sent))
	}
	if fx.mailer.sent[0].HouseholdName != "Maple Street" {
		t.Errorf("email household = %q, want %q", fx.mailer.sent[0].HouseholdName, "Maple Street")
	}
}

func TestSendInvitationNormalizesEmail(t *testing.T) {
	fx := newInvitationFixture(t)

	inv, err := fx.svc.SendInvitation(fx.owner.ID, fx.household.ID, "  New@Example.COM ", models.RoleMember, nil)
	if err != nil {
		t.Fatalf("SendInvitation() error = %v", err)
	}
	if inv.Email != "new@example.com" {
		t.Errorf("email = %q, want %q", inv.Email, "new@example.com")
	}
}

func TestSendInvitationRules(t *testing.T) {
	fx := newInvitationFixture(t)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name      string
		actorID   int64
		email     string
		role      models.Role
		expiresAt *time.Time
		kind      apperr.Kind
		code      string
	}{
		{name: "member cannot invite", actorID: fx.member.ID, email: "x@example.com", role: models.RoleMember, kind: apperr.KindForbidden, code: "cannot_invite"},
		{name: "invalid email", actorID: fx.owner.ID, email: "not-an-email", role: models.RoleMember, kind: apperr.KindValidation, code: "invalid_email"},
		{name: "owner role not grantable", actorID: fx.owner.ID, email: "x@example.com", role: models.RoleOwner, kind: apperr.KindValidation, code: "invalid_role"},
		{name: "self invite", actorID: fx.owner.ID, email: "Owner@example.com", role: models.RoleMember, kind: apperr.KindValidation, code: "self_invite"},
		{name: "already a member", actorID: fx.owner.ID, email: fx.member.Email, role: models.RoleMember, kind: apperr.KindConflict, code: "member_exists"},
		{name: "past expiry", actorID: fx.owner.ID, email: "x@example.com", role: models.RoleMember, expiresAt: &past, kind: apperr.KindValidation, code: "invalid_expiry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.SendInvitation(tt.actorID, fx.household.ID, tt.email, tt.role, tt.expiresAt)
			wantKind(t, err, tt.kind, tt.code)
		})
	}

	t.Run("unknown household", func(t *testing.T) {
		_, err := fx.svc.SendInvitation(fx.owner.ID, 9999, "x@example.com", models.RoleMember, nil)
		wantKind(t, err, apperr.KindNotFound, "household_not_found")
	})
}

func TestSendInvitationDuplicatePending(t *testing.T) {
	fx := newInvitationFixture(t)
	fx.send(t)

	_, err := fx.svc.SendInvitation(fx.admin.ID, fx.household.ID, fx.invitee.Email, models.RoleMember, nil)
	wantKind(t, err, apperr.KindConflict, "invitation_exists")
}

func TestSendInvitationReplacesExpiredPending(t *testing.T) {
	fx := newInvitationFixture(t)
	old := fx.send(t)
	fx.expire(old.ID)

	fresh, err := fx.svc.SendInvitation(fx.owner.ID, fx.household.ID, fx.invitee.Email, models.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("SendInvitation() after expiry error = %v", err)
	}
	if fresh.ID == old.ID {
		t.Errorf("expected a new invitation, got the old id %d", old.ID)
	}
	if fx.store.invitations[old.ID].Status != models.InvitationExpired {
		t.Errorf("old invitation status = %v, want %v", fx.store.invitations[old.ID].Status, models.InvitationExpired)
	}
}

func TestResendInvitationKeepsID(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)
	fx.store.invitations[inv.ID].ExpiresAt = time.Now().Add(time.Hour)

	resent, err := fx.svc.ResendInvitation(fx.admin.ID, inv.ID, nil)
	if err != nil {
		t.Fatalf("ResendInvitation() error = %v", err)
	}
	if resent.ID != inv.ID {
		t.Errorf("resend created a new invitation: id %d, want %d", resent.ID, inv.ID)
	}
	if !resent.ExpiresAt.After(time.Now().Add(time.Hour)) {
		t.Errorf("expiry not refreshed: %v", resent.ExpiresAt)
	}
	if len(fx.mailer.sent) != 2 {
		t.Errorf("emails sent = %d, want 2", len(fx.mailer.sent))
	}
}

func TestResendInvitationCustomExpiry(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)
	newExpiry := time.Now().Add(48 * time.Hour)

	resent, err := fx.svc.ResendInvitation(fx.owner.ID, inv.ID, &newExpiry)
	if err != nil {
		t.Fatalf("ResendInvitation() error = %v", err)
	}
	if !resent.ExpiresAt.Equal(newExpiry) {
		t.Errorf("expiry = %v, want %v", resent.ExpiresAt, newExpiry)
	}

	past := time.Now().Add(-time.Hour)
	_, err = fx.svc.ResendInvitation(fx.owner.ID, inv.ID, &past)
	wantKind(t, err, apperr.KindValidation, "invalid_expiry")
}

func TestResendExpiredInvitation(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)
	fx.expire(inv.ID)

	_, err := fx.svc.ResendInvitation(fx.owner.ID, inv.ID, nil)
	wantKind(t, err, apperr.KindStateConflict, "invitation_expired")

	// The stored row is untouched; sending again replaces it.
	if got := fx.store.invitations[inv.ID].Status; got != models.InvitationPending {
		t.Errorf("stored status = %v, want %v", got, models.InvitationPending)
	}
	fresh, err := fx.svc.SendInvitation(fx.owner.ID, fx.household.ID, fx.invitee.Email, models.RoleMember, nil)
	if err != nil {
		t.Fatalf("SendInvitation() after expiry error = %v", err)
	}
	if fresh.ID == inv.ID {
		t.Errorf("expected a new invitation, got the old id %d", inv.ID)
	}
}

func TestResendTerminalInvitation(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)
	if err := fx.svc.DeclineInvitation(fx.invitee.ID, inv.ID); err != nil {
		t.Fatalf("DeclineInvitation() error = %v", err)
	}

	_, err := fx.svc.ResendInvitation(fx.owner.ID, inv.ID, nil)
	wantKind(t, err, apperr.KindStateConflict, "invitation_not_pending")
}

func TestAcceptInvitation(t *testing.T) {
	fx := newInvitationFixture(t)
	inv, err := fx.svc.SendInvitation(fx.owner.ID, fx.household.ID, fx.invitee.Email, models.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("SendInvitation() error = %v", err)
	}

	m, err := fx.svc.AcceptInvitation(fx.invitee.ID, inv.ID)
	if err != nil {
		t.Fatalf("AcceptInvitation() error = %v", err)
	}
	if m.Role != models.RoleAdmin {
		t.Errorf("membership role = %v, want %v", m.Role, models.RoleAdmin)
	}
	if got := fx.store.invitations[inv.ID].Status; got != models.InvitationAccepted {
		t.Errorf("invitation status = %v, want %v", got, models.InvitationAccepted)
	}
}

func TestAcceptInvitationTwice(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)

	if _, err := fx.svc.AcceptInvitation(fx.invitee.ID, inv.ID); err != nil {
		t.Fatalf("first AcceptInvitation() error = %v", err)
	}
	_, err := fx.svc.AcceptInvitation(fx.invitee.ID, inv.ID)
	wantKind(t, err, apperr.KindStateConflict, "invitation_not_pending")
}

func TestAcceptInvitationRules(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)

	t.Run("stranger cannot accept", func(t *testing.T) {
		stranger := fx.store.addUser("stranger@example.com", "Sid")
		_, err := fx.svc.AcceptInvitation(stranger.ID, inv.ID)
		wantKind(t, err, apperr.KindForbidden, "not_invitee")
	})

	t.Run("unknown invitation", func(t *testing.T) {
		_, err := fx.svc.AcceptInvitation(fx.invitee.ID, 9999)
		wantKind(t, err, apperr.KindNotFound, "invitation_not_found")
	})

	t.Run("expired invitation", func(t *testing.T) {
		fx.expire(inv.ID)
		_, err := fx.svc.AcceptInvitation(fx.invitee.ID, inv.ID)
		wantKind(t, err, apperr.KindStateConflict, "invitation_expired")
	})
}

func TestAcceptWhenAlreadyMember(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)

	// Joined through some other path after the invitation went out.
	if _, err := fx.store.AddMember(fx.household.ID, fx.invitee.ID, models.RoleMember); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	_, err := fx.svc.AcceptInvitation(fx.invitee.ID, inv.ID)
	wantKind(t, err, apperr.KindConflict, "member_exists")
}

func TestDeclineInvitation(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)

	if err := fx.svc.DeclineInvitation(fx.invitee.ID, inv.ID); err != nil {
		t.Fatalf("DeclineInvitation() error = %v", err)
	}
	if got := fx.store.invitations[inv.ID].Status; got != models.InvitationDeclined {
		t.Errorf("status = %v, want %v", got, models.InvitationDeclined)
	}
	if m, _ := fx.store.GetMember(fx.household.ID, fx.invitee.ID); m != nil {
		t.Errorf("declining must not create a membership")
	}

	err := fx.svc.DeclineInvitation(fx.invitee.ID, inv.ID)
	wantKind(t, err, apperr.KindStateConflict, "invitation_not_pending")
}

func TestCancelInvitation(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)

	err := fx.svc.CancelInvitation(fx.member.ID, inv.ID)
	wantKind(t, err, apperr.KindForbidden, "cannot_invite")

	if err := fx.svc.CancelInvitation(fx.admin.ID, inv.ID); err != nil {
		t.Fatalf("CancelInvitation() error = %v", err)
	}
	if got := fx.store.invitations[inv.ID].Status; got != models.InvitationCancelled {
		t.Errorf("status = %v, want %v", got, models.InvitationCancelled)
	}

	_, err = fx.svc.AcceptInvitation(fx.invitee.ID, inv.ID)
	wantKind(t, err, apperr.KindStateConflict, "invitation_not_pending")
}

func TestCancelExpiredInvitation(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)
	fx.expire(inv.ID)

	err := fx.svc.CancelInvitation(fx.owner.ID, inv.ID)
	wantKind(t, err, apperr.KindStateConflict, "invitation_expired")
}

func TestUpdateInvitation(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)
	newExpiry := time.Now().Add(48 * time.Hour)

	updated, err := fx.svc.UpdateInvitation(fx.owner.ID, inv.ID, models.RoleAdmin, &newExpiry)
	if err != nil {
		t.Fatalf("UpdateInvitation() error = %v", err)
	}
	if updated.Role != models.RoleAdmin {
		t.Errorf("role = %v, want %v", updated.Role, models.RoleAdmin)
	}
	if !updated.ExpiresAt.Equal(newExpiry) {
		t.Errorf("expiry = %v, want %v", updated.ExpiresAt, newExpiry)
	}

	_, err = fx.svc.UpdateInvitation(fx.owner.ID, inv.ID, models.RoleOwner, nil)
	wantKind(t, err, apperr.KindValidation, "invalid_role")
}

func TestGetInvitationVisibility(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)

	if _, err := fx.svc.GetInvitation(fx.admin.ID, inv.ID); err != nil {
		t.Errorf("admin GetInvitation() error = %v", err)
	}
	if _, err := fx.svc.GetInvitation(fx.invitee.ID, inv.ID); err != nil {
		t.Errorf("invitee GetInvitation() error = %v", err)
	}
	_, err := fx.svc.GetInvitation(fx.member.ID, inv.ID)
	wantKind(t, err, apperr.KindForbidden, "cannot_view")
}

func TestGetInvitationReportsLazyExpiry(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)
	fx.expire(inv.ID)

	got, err := fx.svc.GetInvitation(fx.owner.ID, inv.ID)
	if err != nil {
		t.Fatalf("GetInvitation() error = %v", err)
	}
	if got.Status != models.InvitationExpired {
		t.Errorf("status = %v, want %v", got.Status, models.InvitationExpired)
	}
	// The stored row is untouched until a sweep runs.
	if fx.store.invitations[inv.ID].Status != models.InvitationPending {
		t.Errorf("stored status changed on read")
	}
}

func TestListMyInvitationsSkipsExpired(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)
	fx.expire(inv.ID)

	open, err := fx.svc.ListMyInvitations(fx.invitee.ID)
	if err != nil {
		t.Fatalf("ListMyInvitations() error = %v", err)
	}
	if len(open) != 0 {
		t.Errorf("open invitations = %d, want 0", len(open))
	}
}

func TestExpireOverdue(t *testing.T) {
	fx := newInvitationFixture(t)
	inv := fx.send(t)
	fx.expire(inv.ID)

	n, err := fx.svc.ExpireOverdue()
	if err != nil {
		t.Fatalf("ExpireOverdue() error = %v", err)
	}
	if n != 1 {
		t.Errorf("expired count = %d, want 1", n)
	}
	if got := fx.store.invitations[inv.ID].Status; got != models.InvitationExpired {
		t.Errorf("status = %v, want %v", got, models.InvitationExpired)
	}
}
