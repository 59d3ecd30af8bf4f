package service

import (
	"strings"

	"pantrypal/internal/apperr"
	"pantrypal/internal/models"
	"pantrypal/internal/policy"
	"pantrypal/internal/repository"
)

// PantryService implements storage locations and pantry items. Any
// member may view and edit the inventory; changing the set of locations
// requires admin or owner.
type PantryService struct {
	locations *repository.LocationRepository
	items     *repository.PantryRepository
	policy    *policy.Evaluator
}

// NewPantryService creates a new pantry service
func NewPantryService(locations *repository.LocationRepository, items *repository.PantryRepository, eval *policy.Evaluator) *PantryService {
	return &PantryService{locations: locations, items: items, policy: eval}
}

// CreateLocation adds a storage location to the household. Requires
// admin or owner; names are unique per household.
func (s *PantryService) CreateLocation(actorID, householdID int64, name, description string) (*models.Location, error) {
	if err := s.requireManage(householdID, actorID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("invalid_name", "location name is required")
	}
	loc := &models.Location{
		HouseholdID: householdID,
		Name:        name,
		Description: description,
	}
	if err := s.locations.CreateLocation(loc); err != nil {
		return nil, err
	}
	return s.locations.GetLocation(loc.ID)
}

// ListLocations returns the household's storage locations
func (s *PantryService) ListLocations(actorID, householdID int64) ([]models.Location, error) {
	if err := s.requireView(householdID, actorID); err != nil {
		return nil, err
	}
	return s.locations.ListLocations(householdID)
}

// UpdateLocation renames a storage location. Requires admin or owner.
func (s *PantryService) UpdateLocation(actorID, locationID int64, name, description string) (*models.Location, error) {
	loc, err := s.locations.GetLocation(locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, apperr.NotFound("location_not_found", "location does not exist")
	}
	if err := s.requireManage(loc.HouseholdID, actorID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("invalid_name", "location name is required")
	}
	loc.Name = name
	loc.Description = description
	if err := s.locations.UpdateLocation(loc); err != nil {
		return nil, err
	}
	return s.locations.GetLocation(locationID)
}

// DeleteLocation removes a storage location. Items stored there stay in
// the household with no location. Requires admin or owner.
func (s *PantryService) DeleteLocation(actorID, locationID int64) error {
	loc, err := s.locations.GetLocation(locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return apperr.NotFound("location_not_found", "location does not exist")
	}
	if err := s.requireManage(loc.HouseholdID, actorID); err != nil {
		return err
	}
	return s.locations.DeleteLocation(locationID)
}

// CreateItem adds a pantry item to the household. Any member may do this.
func (s *PantryService) CreateItem(actorID int64, item *models.PantryItem) (*models.PantryItem, error) {
	if err := s.requireView(item.HouseholdID, actorID); err != nil {
		return nil, err
	}
	if err := s.validateItem(item); err != nil {
		return nil, err
	}
	if err := s.items.CreateItem(item); err != nil {
		return nil, err
	}
	return s.items.GetItem(item.ID)
}

// GetItem returns a pantry item visible to the actor
func (s *PantryService) GetItem(actorID, itemID int64) (*models.PantryItem, error) {
	item, err := s.items.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("item_not_found", "pantry item does not exist")
	}
	if err := s.requireView(item.HouseholdID, actorID); err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns the household's pantry items, optionally filtered to
// one location
func (s *PantryService) ListItems(actorID, householdID int64, locationID *int64) ([]models.PantryItem, error) {
	if err := s.requireView(householdID, actorID); err != nil {
		return nil, err
	}
	if locationID != nil {
		return s.items.ListItemsByLocation(householdID, *locationID)
	}
	return s.items.ListItems(householdID)
}

// UpdateItem updates a pantry item's fields. Any member may do this.
func (s *PantryService) UpdateItem(actorID int64, item *models.PantryItem) (*models.PantryItem, error) {
	existing, err := s.items.GetItem(item.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("item_not_found", "pantry item does not exist")
	}
	if err := s.requireView(existing.HouseholdID, actorID); err != nil {
		return nil, err
	}
	item.HouseholdID = existing.HouseholdID
	if err := s.validateItem(item); err != nil {
		return nil, err
	}
	if err := s.items.UpdateItem(item); err != nil {
		return nil, err
	}
	return s.items.GetItem(item.ID)
}

// DeleteItem removes a pantry item. Any member may do this.
func (s *PantryService) DeleteItem(actorID, itemID int64) error {
	item, err := s.items.GetItem(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.NotFound("item_not_found", "pantry item does not exist")
	}
	if err := s.requireView(item.HouseholdID, actorID); err != nil {
		return err
	}
	return s.items.DeleteItem(itemID)
}

func (s *PantryService) validateItem(item *models.PantryItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return apperr.Validation("invalid_name", "item name is required")
	}
	if item.Quantity < 0 {
		return apperr.Validation("invalid_quantity", "quantity cannot be negative")
	}
	if item.LocationID != nil {
		loc, err := s.locations.GetLocation(*item.LocationID)
		if err != nil {
			return err
		}
		if loc == nil || loc.HouseholdID != item.HouseholdID {
			return apperr.Validation("invalid_location", "location does not belong to this household")
		}
	}
	return nil
}

func (s *PantryService) requireView(householdID, actorID int64) error {
	allowed, err := s.policy.CanView(householdID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("not_member", "you are not a member of this household")
	}
	return nil
}

func (s *PantryService) requireManage(householdID, actorID int64) error {
	allowed, err := s.policy.CanManage(householdID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("cannot_manage", "only admins and the owner can manage locations")
	}
	return nil
}
