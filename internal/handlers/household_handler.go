package handlers

import (
	"net/http"

	"pantrypal/internal/models"
	"pantrypal/internal/service"
)

// HouseholdHandler serves household and membership endpoints
type HouseholdHandler struct {
	households *service.HouseholdService
}

// NewHouseholdHandler creates a new household handler
func NewHouseholdHandler(households *service.HouseholdService) *HouseholdHandler {
	return &HouseholdHandler{households: households}
}

// Create handles POST /api/households
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	household, err := h.households.CreateHousehold(user.ID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, household)
}

// List handles GET /api/households
func (h *HouseholdHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	households, err := h.households.ListHouseholds(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if households == nil {
		households = []models.Household{}
	}
	writeJSON(w, http.StatusOK, households)
}

// Get handles GET /api/households/{id}
func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	household, err := h.households.GetHousehold(user.ID, householdID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, household)
}

// Update handles PUT /api/households/{id}
func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	household, err := h.households.UpdateHousehold(user.ID, householdID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, household)
}

// Delete handles DELETE /api/households/{id}
func (h *HouseholdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.households.DeleteHousehold(user.ID, householdID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMembers handles GET /api/households/{id}/members
func (h *HouseholdHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	members, err := h.households.ListMembers(user.ID, householdID)
	if err != nil {
		writeError(w, err)
		return
	}
	if members == nil {
		members = []models.Membership{}
	}
	writeJSON(w, http.StatusOK, members)
}

// AddMember handles POST /api/households/{id}/members
func (h *HouseholdHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		UserID int64       `json:"user_id"`
		Role   models.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	member, err := h.households.AddMember(user.ID, householdID, req.UserID, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// RemoveMember handles DELETE /api/households/{id}/members/{userID}
func (h *HouseholdHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.households.RemoveMember(user.ID, householdID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateRole handles PUT /api/households/{id}/members/{userID}
func (h *HouseholdHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	member, err := h.households.UpdateRole(user.ID, householdID, userID, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// Leave handles POST /api/households/{id}/leave
func (h *HouseholdHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.households.Leave(user.ID, householdID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransferOwnership handles POST /api/households/{id}/transfer-ownership
func (h *HouseholdHandler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		NewOwnerID int64 `json:"new_owner_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.households.TransferOwnership(user.ID, householdID, req.NewOwnerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
