package handlers

import (
	"net/http"
	"time"

	"pantrypal/internal/models"
	"pantrypal/internal/service"
)

// InvitationHandler serves invitation lifecycle endpoints
type InvitationHandler struct {
	invitations *service.InvitationService
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitations *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// Send handles POST /api/households/{id}/invitations
func (h *InvitationHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Email     string      `json:"email"`
		Role      models.Role `json:"role"`
		ExpiresAt *time.Time  `json:"expires_at"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	inv, err := h.invitations.SendInvitation(user.ID, householdID, req.Email, req.Role, req.ExpiresAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// ListForHousehold handles GET /api/households/{id}/invitations
func (h *InvitationHandler) ListForHousehold(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	invitations, err := h.invitations.ListHouseholdInvitations(user.ID, householdID)
	if err != nil {
		writeError(w, err)
		return
	}
	if invitations == nil {
		invitations = []models.Invitation{}
	}
	writeJSON(w, http.StatusOK, invitations)
}

// ListMine handles GET /api/invitations
func (h *InvitationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	invitations, err := h.invitations.ListMyInvitations(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if invitations == nil {
		invitations = []models.Invitation{}
	}
	writeJSON(w, http.StatusOK, invitations)
}

// Get handles GET /api/invitations/{id}
func (h *InvitationHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	invitationID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	inv, err := h.invitations.GetInvitation(user.ID, invitationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// Update handles PUT /api/invitations/{id}
func (h *InvitationHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	invitationID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Role      models.Role `json:"role"`
		ExpiresAt *time.Time  `json:"expires_at"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	inv, err := h.invitations.UpdateInvitation(user.ID, invitationID, req.Role, req.ExpiresAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// Accept handles POST /api/invitations/{id}/accept
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	invitationID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	member, err := h.invitations.AcceptInvitation(user.ID, invitationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// Decline handles POST /api/invitations/{id}/decline
func (h *InvitationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	invitationID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.invitations.DeclineInvitation(user.ID, invitationID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cancel handles POST /api/invitations/{id}/cancel
func (h *InvitationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	invitationID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.invitations.CancelInvitation(user.ID, invitationID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Resend handles POST /api/invitations/{id}/resend. The body is
// optional; without one the default expiry window applies.
func (h *InvitationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	invitationID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	inv, err := h.invitations.ResendInvitation(user.ID, invitationID, req.ExpiresAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
