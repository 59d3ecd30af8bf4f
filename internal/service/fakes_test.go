package service

import (
	"time"

	"pantrypal/internal/apperr"
	"pantrypal/internal/models"
)

// fakeStore is an in-memory implementation of HouseholdStore,
// InvitationStore, and UserDirectory with the same error semantics as
// the SQL repositories. All getters return copies so callers can't
// mutate stored state by accident.
type fakeStore struct {
	nextID      int64
	users       map[int64]*models.User
	households  map[int64]*models.Household
	members     map[int64]map[int64]*models.Membership
	invitations map[int64]*models.Invitation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[int64]*models.User),
		households:  make(map[int64]*models.Household),
		members:     make(map[int64]map[int64]*models.Membership),
		invitations: make(map[int64]*models.Invitation),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addUser(email, name string) *models.User {
	u := &models.User{ID: f.id(), Email: email, Name: name}
	f.users[u.ID] = u
	return u
}

// GetUserByID implements UserDirectory
func (f *fakeStore) GetUserByID(id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

// GetUserByEmail implements UserDirectory
func (f *fakeStore) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateHousehold(name string, ownerID int64) (*models.Household, error) {
	h := &models.Household{ID: f.id(), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.households[h.ID] = h
	f.members[h.ID] = map[int64]*models.Membership{
		ownerID: {ID: f.id(), HouseholdID: h.ID, UserID: ownerID, Role: models.RoleOwner},
	}
	copied := *h
	return &copied, nil
}

func (f *fakeStore) GetHousehold(id int64) (*models.Household, error) {
	h, ok := f.households[id]
	if !ok {
		return nil, nil
	}
	copied := *h
	return &copied, nil
}

func (f *fakeStore) ListHouseholdsForUser(userID int64) ([]models.Household, error) {
	var out []models.Household
	for hid, members := range f.members {
		if _, ok := members[userID]; ok {
			out = append(out, *f.households[hid])
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateHousehold(household *models.Household) error {
	h, ok := f.households[household.ID]
	if !ok {
		return apperr.NotFound("household_not_found", "household does not exist")
	}
	h.Name = household.Name
	h.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) DeleteHousehold(id int64) error {
	delete(f.households, id)
	delete(f.members, id)
	for iid, inv := range f.invitations {
		if inv.HouseholdID == id {
			delete(f.invitations, iid)
		}
	}
	return nil
}

func (f *fakeStore) GetMember(householdID, userID int64) (*models.Membership, error) {
	m, ok := f.members[householdID][userID]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (f *fakeStore) ListMembers(householdID int64) ([]models.Membership, error) {
	var out []models.Membership
	for _, m := range f.members[householdID] {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeStore) AddMember(householdID, userID int64, role models.Role) (*models.Membership, error) {
	if _, ok := f.members[householdID][userID]; ok {
		return nil, apperr.Conflict("member_exists", "user is already a member of this household")
	}
	if f.members[householdID] == nil {
		f.members[householdID] = make(map[int64]*models.Membership)
	}
	m := &models.Membership{ID: f.id(), HouseholdID: householdID, UserID: userID, Role: role}
	f.members[householdID][userID] = m
	copied := *m
	return &copied, nil
}

func (f *fakeStore) RemoveMember(householdID, userID int64, currentRole models.Role) error {
	m, ok := f.members[householdID][userID]
	if !ok || m.Role != currentRole {
		return apperr.StateConflict("member_changed", "membership changed concurrently")
	}
	delete(f.members[householdID], userID)
	return nil
}

func (f *fakeStore) UpdateMemberRole(householdID, userID int64, role, currentRole models.Role) error {
	m, ok := f.members[householdID][userID]
	if !ok || m.Role != currentRole {
		return apperr.StateConflict("member_changed", "membership changed concurrently")
	}
	m.Role = role
	return nil
}

func (f *fakeStore) CountMembers(householdID int64) (int, error) {
	return len(f.members[householdID]), nil
}

func (f *fakeStore) TransferOwnership(householdID, fromUserID, toUserID int64) error {
	from, ok := f.members[householdID][fromUserID]
	if !ok || from.Role != models.RoleOwner {
		return apperr.StateConflict("not_owner", "user is no longer the household owner")
	}
	to, ok := f.members[householdID][toUserID]
	if !ok {
		return apperr.NotFound("member_not_found", "target user is not a member of this household")
	}
	from.Role = models.RoleAdmin
	to.Role = models.RoleOwner
	return nil
}

func (f *fakeStore) CreateInvitation(inv *models.Invitation) error {
	inv.ID = f.id()
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = time.Now()
	stored := *inv
	f.invitations[inv.ID] = &stored
	return nil
}

func (f *fakeStore) GetInvitation(id int64) (*models.Invitation, error) {
	inv, ok := f.invitations[id]
	if !ok {
		return nil, nil
	}
	copied := *inv
	if h, ok := f.households[inv.HouseholdID]; ok {
		copied.HouseholdName = h.Name
	}
	if u, ok := f.users[inv.InvitedBy]; ok {
		copied.InviterName = u.Name
	}
	return &copied, nil
}

func (f *fakeStore) FindPendingInvitation(householdID int64, email string) (*models.Invitation, error) {
	for _, inv := range f.invitations {
		if inv.HouseholdID == householdID && inv.Email == email && inv.Status == models.InvitationPending {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListHouseholdInvitations(householdID int64) ([]models.Invitation, error) {
	var out []models.Invitation
	for _, inv := range f.invitations {
		if inv.HouseholdID == householdID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeStore) ListInvitationsForEmail(email string) ([]models.Invitation, error) {
	var out []models.Invitation
	for _, inv := range f.invitations {
		if inv.Email == email && inv.Status == models.InvitationPending {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkStatus(id int64, from, to models.InvitationStatus) (bool, error) {
	inv, ok := f.invitations[id]
	if !ok || inv.Status != from {
		return false, nil
	}
	inv.Status = to
	inv.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeStore) UpdatePendingInvitation(updated *models.Invitation) (bool, error) {
	inv, ok := f.invitations[updated.ID]
	if !ok || inv.Status != models.InvitationPending {
		return false, nil
	}
	inv.Role = updated.Role
	inv.ExpiresAt = updated.ExpiresAt
	inv.InvitedUserID = updated.InvitedUserID
	inv.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeStore) MarkOverdueExpired() (int64, error) {
	var n int64
	for _, inv := range f.invitations {
		if inv.Status == models.InvitationPending && inv.IsExpired() {
			inv.Status = models.InvitationExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) AcceptInvitation(inv *models.Invitation, userID int64) error {
	stored, ok := f.invitations[inv.ID]
	if !ok || stored.Status != models.InvitationPending {
		return apperr.StateConflict("invitation_not_pending", "invitation is no longer pending")
	}
	if _, ok := f.members[stored.HouseholdID][userID]; ok {
		return apperr.Conflict("member_exists", "user is already a member of this household")
	}
	stored.Status = models.InvitationAccepted
	stored.InvitedUserID = &userID
	if f.members[stored.HouseholdID] == nil {
		f.members[stored.HouseholdID] = make(map[int64]*models.Membership)
	}
	f.members[stored.HouseholdID][userID] = &models.Membership{
		ID: f.id(), HouseholdID: stored.HouseholdID, UserID: userID, Role: stored.Role,
	}
	return nil
}

// fakeMailer records invitation emails instead of sending them
type fakeMailer struct {
	sent []models.Invitation
}

func (m *fakeMailer) SendInvitationEmail(inv *models.Invitation) error {
	m.sent = append(m.sent, *inv)
	return nil
}
