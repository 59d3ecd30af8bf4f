package models

import (
	"testing"
	"time"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required Role
		want     bool
	}{
		{name: "owner at least owner", role: RoleOwner, required: RoleOwner, want: true},
		{name: "owner at least admin", role: RoleOwner, required: RoleAdmin, want: true},
		{name: "owner at least member", role: RoleOwner, required: RoleMember, want: true},
		{name: "admin not at least owner", role: RoleAdmin, required: RoleOwner, want: false},
		{name: "admin at least admin", role: RoleAdmin, required: RoleAdmin, want: true},
		{name: "admin at least member", role: RoleAdmin, required: RoleMember, want: true},
		{name: "member not at least admin", role: RoleMember, required: RoleAdmin, want: false},
		{name: "member at least member", role: RoleMember, required: RoleMember, want: true},
		{name: "unknown role at least nothing", role: Role("guest"), required: RoleMember, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.AtLeast(tt.required); got != tt.want {
				t.Errorf("Role(%q).AtLeast(%q) = %v, want %v", tt.role, tt.required, got, tt.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleOwner, true},
		{RoleAdmin, true},
		{RoleMember, true},
		{Role(""), false},
		{Role("superuser"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.Valid(); got != tt.want {
				t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				UserID:    1,
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			if got := session.IsExpired(); got != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvitationEffectiveStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    InvitationStatus
		expiresAt time.Time
		want      InvitationStatus
	}{
		{
			name:      "pending not expired",
			status:    InvitationPending,
			expiresAt: time.Now().Add(24 * time.Hour),
			want:      InvitationPending,
		},
		{
			name:      "pending past expiry reads as expired",
			status:    InvitationPending,
			expiresAt: time.Now().Add(-1 * time.Minute),
			want:      InvitationExpired,
		},
		{
			name:      "accepted stays accepted even past expiry",
			status:    InvitationAccepted,
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      InvitationAccepted,
		},
		{
			name:      "cancelled stays cancelled",
			status:    InvitationCancelled,
			expiresAt: time.Now().Add(24 * time.Hour),
			want:      InvitationCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Invitation{Status: tt.status, ExpiresAt: tt.expiresAt}
			if got := inv.EffectiveStatus(); got != tt.want {
				t.Errorf("EffectiveStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvitationIsPending(t *testing.T) {
	tests := []struct {
		name      string
		status    InvitationStatus
		expiresAt time.Time
		want      bool
	}{
		{name: "pending with future expiry", status: InvitationPending, expiresAt: time.Now().Add(time.Hour), want: true},
		{name: "pending past expiry", status: InvitationPending, expiresAt: time.Now().Add(-time.Hour), want: false},
		{name: "declined", status: InvitationDeclined, expiresAt: time.Now().Add(time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Invitation{Status: tt.status, ExpiresAt: tt.expiresAt}
			if got := inv.IsPending(); got != tt.want {
				t.Errorf("IsPending() = %v, want %v", got, tt.want)
			}
		})
	}
}
