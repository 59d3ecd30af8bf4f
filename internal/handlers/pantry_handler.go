package handlers

import (
	"net/http"
	"strconv"
	"time"

	"pantrypal/internal/apperr"
	"pantrypal/internal/models"
	"pantrypal/internal/service"
)

// PantryHandler serves storage location and pantry item endpoints
type PantryHandler struct {
	pantry *service.PantryService
}

// NewPantryHandler creates a new pantry handler
func NewPantryHandler(pantry *service.PantryService) *PantryHandler {
	return &PantryHandler{pantry: pantry}
}

// CreateLocation handles POST /api/households/{id}/locations
func (h *PantryHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	loc, err := h.pantry.CreateLocation(user.ID, householdID, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

// ListLocations handles GET /api/households/{id}/locations
func (h *PantryHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	locations, err := h.pantry.ListLocations(user.ID, householdID)
	if err != nil {
		writeError(w, err)
		return
	}
	if locations == nil {
		locations = []models.Location{}
	}
	writeJSON(w, http.StatusOK, locations)
}

// UpdateLocation handles PUT /api/locations/{id}
func (h *PantryHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	locationID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	loc, err := h.pantry.UpdateLocation(user.ID, locationID, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// DeleteLocation handles DELETE /api/locations/{id}
func (h *PantryHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	locationID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.pantry.DeleteLocation(user.ID, locationID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pantryItemRequest struct {
	LocationID *int64     `json:"location_id"`
	Name       string     `json:"name"`
	Quantity   float64    `json:"quantity"`
	Unit       string     `json:"unit"`
	BestBefore *time.Time `json:"best_before"`
	Notes      string     `json:"notes"`
}

// CreateItem handles POST /api/households/{id}/items
func (h *PantryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req pantryItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.pantry.CreateItem(user.ID, &models.PantryItem{
		HouseholdID: householdID,
		LocationID:  req.LocationID,
		Name:        req.Name,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		BestBefore:  req.BestBefore,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// ListItems handles GET /api/households/{id}/items with an optional
// ?location_id= filter
func (h *PantryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	householdID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var locationID *int64
	if raw := r.URL.Query().Get("location_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, apperr.Validation("invalid_id", "invalid location_id"))
			return
		}
		locationID = &id
	}

	items, err := h.pantry.ListItems(user.ID, householdID, locationID)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.PantryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetItem handles GET /api/items/{id}
func (h *PantryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.pantry.GetItem(user.ID, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UpdateItem handles PUT /api/items/{id}
func (h *PantryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req pantryItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.pantry.UpdateItem(user.ID, &models.PantryItem{
		ID:         itemID,
		LocationID: req.LocationID,
		Name:       req.Name,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		BestBefore: req.BestBefore,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/items/{id}
func (h *PantryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.pantry.DeleteItem(user.ID, itemID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
