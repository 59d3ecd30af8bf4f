package models

import "time"

// InvitationStatus is the lifecycle state of an invitation. PENDING is the
// only non-terminal state; the other four are immutable once reached.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationDeclined  InvitationStatus = "declined"
	InvitationCancelled InvitationStatus = "cancelled"
	InvitationExpired   InvitationStatus = "expired"
)

// Invitation is a pending offer of a role within a household, addressed to
// an email (and resolved to a user id when the target already has an
// account). Expiry is evaluated lazily: a stored PENDING row whose
// expires_at has passed behaves as EXPIRED on every read and transition.
type Invitation struct {
	ID            int64            `json:"id"`
	HouseholdID   int64            `json:"household_id"`
	Email         string           `json:"email"`
	InvitedUserID *int64           `json:"invited_user_id,omitempty"`
	Role          Role             `json:"role"`
	Status        InvitationStatus `json:"status"`
	InvitedBy     int64            `json:"invited_by"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	ExpiresAt     time.Time        `json:"expires_at"`

	// InviterName and HouseholdName are populated via JOIN for listings
	// and invitation emails.
	InviterName   string `json:"inviter_name,omitempty"`
	HouseholdName string `json:"household_name,omitempty"`
}

// IsExpired reports whether the invitation's expiry time has passed.
func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsPending reports whether the invitation can still be acted on: stored
// status PENDING and not past its expiry.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationPending && !i.IsExpired()
}

// EffectiveStatus returns the status as observed by callers: a stored
// PENDING past its expiry reads as EXPIRED without a storage write.
func (i *Invitation) EffectiveStatus() InvitationStatus {
	if i.Status == InvitationPending && i.IsExpired() {
		return InvitationExpired
	}
	return i.Status
}
