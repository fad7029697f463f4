package store

import (
	"slices"
	"strings"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/shared"
)

// Me returns the user every request acts as.
func (s *Store) Me() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meLocked()
}

// AddUser registers an account that items can be shared with.
func (s *Store) AddUser(u models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = s.newID()
	}
	s.users[u.ID] = &u
	cp := u
	return &cp
}

// Users returns up to max users whose email or name contains query.
// max <= 0 means no limit.
func (s *Store) Users(query string, max int) []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	out := []*models.User{}
	for _, u := range s.users {
		if q != "" && !strings.Contains(strings.ToLower(u.Email), q) && !strings.Contains(strings.ToLower(u.FullName), q) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *models.User) int { return strings.Compare(a.Email, b.Email) })
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// UpdateUser applies the non-nil fields of req. Only the current user may
// be updated.
func (s *Store) UpdateUser(id string, req models.UpdateUserRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, shared.ErrorNotFound
	}
	if id != s.meID {
		return nil, shared.ErrorValidation
	}
	if req.Language != nil {
		u.Language = *req.Language
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	cp := *u
	return &cp, nil
}

// Accesses lists the accesses of a visible item.
func (s *Store) Accesses(itemID string) ([]*models.Access, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.visibleLocked(itemID); err != nil {
		return nil, err
	}
	out := make([]*models.Access, 0, len(s.accesses[itemID]))
	for _, a := range s.accesses[itemID] {
		out = append(out, copyAccess(a))
	}
	return out, nil
}

// CreateAccess grants an existing user a role on an item.
func (s *Store) CreateAccess(itemID string, req models.CreateAccessRequest) (*models.Access, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.visibleLocked(itemID); err != nil {
		return nil, err
	}
	if !validRole(req.Role) {
		return nil, shared.ErrorValidation
	}
	u, ok := s.users[req.UserID]
	if !ok {
		return nil, shared.ErrorNotFound
	}
	for _, a := range s.accesses[itemID] {
		if a.User != nil && a.User.ID == req.UserID {
			return nil, shared.ErrorAlreadyExists
		}
	}

	uc := *u
	a := &models.Access{ID: s.newID(), Role: req.Role, User: &uc}
	s.accesses[itemID] = append(s.accesses[itemID], a)
	return copyAccess(a), nil
}

// UpdateAccess changes the role of an access.
func (s *Store) UpdateAccess(itemID, accessID string, role models.Role) (*models.Access, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validRole(role) {
		return nil, shared.ErrorValidation
	}
	for _, a := range s.accesses[itemID] {
		if a.ID == accessID {
			a.Role = role
			return copyAccess(a), nil
		}
	}
	return nil, shared.ErrorNotFound
}

// DeleteAccess revokes an access.
func (s *Store) DeleteAccess(itemID, accessID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.accesses[itemID]
	for i, a := range list {
		if a.ID == accessID {
			s.accesses[itemID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return shared.ErrorNotFound
}

// Invitations lists the pending invitations of a visible item.
func (s *Store) Invitations(itemID string) ([]*models.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.visibleLocked(itemID); err != nil {
		return nil, err
	}
	out := make([]*models.Invitation, 0, len(s.invitations[itemID]))
	for _, inv := range s.invitations[itemID] {
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

// CreateInvitation invites an email address; one invitation per address.
func (s *Store) CreateInvitation(itemID string, req models.CreateInvitationRequest) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.visibleLocked(itemID); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") || !validRole(req.Role) {
		return nil, shared.ErrorValidation
	}
	for _, inv := range s.invitations[itemID] {
		if inv.Email == email {
			return nil, shared.ErrorAlreadyExists
		}
	}

	inv := &models.Invitation{
		ID:        s.newID(),
		Email:     email,
		Role:      req.Role,
		Issuer:    s.meID,
		CreatedAt: s.now(),
	}
	s.invitations[itemID] = append(s.invitations[itemID], inv)
	cp := *inv
	return &cp, nil
}

// UpdateInvitation changes the role of an invitation.
func (s *Store) UpdateInvitation(itemID, invitationID string, role models.Role) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validRole(role) {
		return nil, shared.ErrorValidation
	}
	for _, inv := range s.invitations[itemID] {
		if inv.ID == invitationID {
			inv.Role = role
			cp := *inv
			return &cp, nil
		}
	}
	return nil, shared.ErrorNotFound
}

// DeleteInvitation withdraws an invitation.
func (s *Store) DeleteInvitation(itemID, invitationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.invitations[itemID]
	for i, inv := range list {
		if inv.ID == invitationID {
			s.invitations[itemID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return shared.ErrorNotFound
}

// PostRelayEvent stores ev for token, replacing any unread event.
func (s *Store) PostRelayEvent(token string, ev models.SDKRelayEvent) error {
	if token == "" || ev.Type == "" {
		return shared.ErrorValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relay[token] = ev
	return nil
}

// TakeRelayEvent returns and forgets the event for token. ok is false when
// nothing was posted yet.
func (s *Store) TakeRelayEvent(token string) (ev models.SDKRelayEvent, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok = s.relay[token]
	delete(s.relay, token)
	return ev, ok
}

func validRole(r models.Role) bool {
	switch r {
	case models.RoleReader, models.RoleEditor, models.RoleAdministrator, models.RoleOwner:
		return true
	}
	return false
}

func copyAccess(a *models.Access) *models.Access {
	cp := *a
	if a.User != nil {
		u := *a.User
		cp.User = &u
	}
	return &cp
}
