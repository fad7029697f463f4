package store

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/shared"
)

type node struct {
	item      models.Item
	parentID  string
	deletedAt time.Time

	// storageKey is set while a file waits for its upload to end.
	storageKey string
}

// Store is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	nodes       map[string]*node
	favorites   map[string]bool
	accesses    map[string][]*models.Access
	invitations map[string][]*models.Invitation
	users       map[string]*models.User
	meID        string
	relay       map[string]models.SDKRelayEvent

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the uuid generator, for tests.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New returns a store holding a single user, me, who owns everything.
func New(me models.User, opts ...Option) *Store {
	s := &Store{
		nodes:       map[string]*node{},
		favorites:   map[string]bool{},
		accesses:    map[string][]*models.Access{},
		invitations: map[string][]*models.Invitation{},
		users:       map[string]*models.User{},
		relay:       map[string]models.SDKRelayEvent{},
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if me.ID == "" {
		me.ID = s.newID()
	}
	s.users[me.ID] = &me
	s.meID = me.ID
	return s
}

// ListFilter narrows a listing. Zero values match everything.
type ListFilter struct {
	Type     models.ItemType
	Title    string
	Ordering string
}

func (f ListFilter) match(it *models.Item) bool {
	if f.Type != "" && it.Type != f.Type {
		return false
	}
	if f.Title != "" && !strings.Contains(strings.ToLower(it.Title), strings.ToLower(f.Title)) {
		return false
	}
	return true
}

// CreateItem adds a file or folder under parentID, or at the root when
// parentID is empty. Files start in the pending upload state.
func (s *Store) CreateItem(parentID string, typ models.ItemType, title, description string) (*models.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" || (typ != models.ItemTypeFile && typ != models.ItemTypeFolder) {
		return nil, shared.ErrorValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	depth := 1
	path := ""
	if parentID != "" {
		parent, err := s.visibleLocked(parentID)
		if err != nil {
			return nil, err
		}
		if !parent.item.IsFolder() {
			return nil, shared.ErrorNotAFolder
		}
		depth = parent.item.Depth + 1
		path = parent.item.Path + "."
		parent.item.NumChild++
	}

	now := s.now()
	id := s.newID()
	n := &node{
		parentID: parentID,
		item: models.Item{
			ID:            id,
			Title:         title,
			Type:          typ,
			Description:   description,
			Depth:         depth,
			Path:          path + id,
			MainWorkspace: parentID == "" && typ == models.ItemTypeFolder,
			LinkReach:     "restricted",
			LinkRole:      string(models.RoleReader),
			Creator:       s.meLocked(),
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
	if typ == models.ItemTypeFile {
		n.item.Filename = title
		n.item.UploadState = models.UploadStatePending
	}
	s.nodes[id] = n
	s.accesses[id] = []*models.Access{{ID: s.newID(), Role: models.RoleOwner, User: s.meLocked()}}

	return s.viewLocked(n), nil
}

// Item returns a visible item.
func (s *Store) Item(id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.visibleLocked(id)
	if err != nil {
		return nil, err
	}
	return s.viewLocked(n), nil
}

// UpdateItem applies the non-nil fields of req.
func (s *Store) UpdateItem(id string, req models.UpdateItemRequest) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.visibleLocked(id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return nil, shared.ErrorValidation
		}
		n.item.Title = t
	}
	if req.Description != nil {
		n.item.Description = *req.Description
	}
	if req.LinkReach != nil {
		n.item.LinkReach = *req.LinkReach
	}
	if req.LinkRole != nil {
		n.item.LinkRole = *req.LinkRole
	}
	n.item.UpdatedAt = s.now()
	return s.viewLocked(n), nil
}

// Children lists the visible children of parentID, or the root items when
// parentID is empty.
func (s *Store) Children(parentID string, f ListFilter) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if parentID != "" {
		parent, err := s.visibleLocked(parentID)
		if err != nil {
			return nil, err
		}
		if !parent.item.IsFolder() {
			return nil, shared.ErrorNotAFolder
		}
	}
	return s.collectLocked(f, func(n *node) bool {
		return n.parentID == parentID && !s.hiddenLocked(n)
	}), nil
}

// Search lists every visible item matching f.
func (s *Store) Search(f ListFilter) []*models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(f, func(n *node) bool { return !s.hiddenLocked(n) })
}

// Recent lists visible items, most recently updated first.
func (s *Store) Recent(f ListFilter) []*models.Item {
	f.Ordering = "-updated_at"
	return s.Search(f)
}

// Favorites lists the visible favorite items.
func (s *Store) Favorites(f ListFilter) []*models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(f, func(n *node) bool { return s.favorites[n.item.ID] && !s.hiddenLocked(n) })
}

// Trash lists the items deleted directly, not those hidden by a deleted
// ancestor.
func (s *Store) Trash(f ListFilter) []*models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(f, func(n *node) bool { return !n.deletedAt.IsZero() })
}

// SetFavorite marks or unmarks a visible item as favorite.
func (s *Store) SetFavorite(id string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.visibleLocked(id); err != nil {
		return err
	}
	if on {
		s.favorites[id] = true
	} else {
		delete(s.favorites, id)
	}
	return nil
}

// Move reparents id under targetID.
func (s *Store) Move(id, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.visibleLocked(id)
	if err != nil {
		return err
	}
	target, err := s.visibleLocked(targetID)
	if err != nil {
		return err
	}
	if !target.item.IsFolder() {
		return shared.ErrorNotAFolder
	}
	for cur := target; cur != nil; cur = s.nodes[cur.parentID] {
		if cur.item.ID == id {
			return shared.ErrorMoveIntoItself
		}
	}

	if old := s.nodes[n.parentID]; old != nil {
		old.item.NumChild--
	}
	target.item.NumChild++
	n.parentID = targetID
	n.item.MainWorkspace = false
	n.item.UpdatedAt = s.now()
	s.reindexLocked(n, target.item.Path+".", target.item.Depth+1)
	return nil
}

// SoftDelete moves a visible item to the trash; its subtree becomes hidden.
func (s *Store) SoftDelete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.visibleLocked(id)
	if err != nil {
		return err
	}
	n.deletedAt = s.now()
	return nil
}

// Restore takes an item out of the trash.
func (s *Store) Restore(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok || n.deletedAt.IsZero() {
		return shared.ErrorNotFound
	}
	n.deletedAt = time.Time{}
	n.item.UpdatedAt = s.now()
	return nil
}

// HardDelete removes a trashed item and its subtree for good.
func (s *Store) HardDelete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return shared.ErrorNotFound
	}
	if n.deletedAt.IsZero() {
		return shared.ErrorValidation
	}
	if parent := s.nodes[n.parentID]; parent != nil {
		parent.item.NumChild--
	}
	s.removeLocked(id)
	return nil
}

// Breadcrumb returns the path from the root to id, id included.
func (s *Store) Breadcrumb(id string) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.visibleLocked(id)
	if err != nil {
		return nil, err
	}
	var out []*models.Item
	for cur := n; cur != nil; cur = s.nodes[cur.parentID] {
		out = append(out, s.viewLocked(cur))
	}
	slices.Reverse(out)
	return out, nil
}

// Tree returns id with its visible descendants nested in Children.
func (s *Store) Tree(id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.visibleLocked(id)
	if err != nil {
		return nil, err
	}
	return s.treeLocked(n), nil
}

func (s *Store) treeLocked(n *node) *models.Item {
	it := s.viewLocked(n)
	if !n.item.IsFolder() {
		return it
	}
	it.Children = []*models.Item{}
	for _, c := range s.collectLocked(ListFilter{}, func(c *node) bool { return c.parentID == n.item.ID && c.deletedAt.IsZero() }) {
		it.Children = append(it.Children, s.treeLocked(s.nodes[c.ID]))
	}
	return it
}

// BeginUpload records key as the pending storage object of a file item and
// resets it to the pending state.
func (s *Store) BeginUpload(id, key string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.visibleLocked(id)
	if err != nil {
		return nil, err
	}
	if n.item.Type != models.ItemTypeFile {
		return nil, shared.ErrorValidation
	}
	n.storageKey = key
	n.item.UploadState = models.UploadStatePending
	return s.viewLocked(n), nil
}

// PendingKey returns the storage key a file is waiting for.
func (s *Store) PendingKey(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.visibleLocked(id)
	if err != nil {
		return "", err
	}
	if n.storageKey == "" {
		return "", shared.ErrorNoPolicy
	}
	return n.storageKey, nil
}

// EndUpload marks a pending file as ready with the stored size and type.
func (s *Store) EndUpload(id string, size int64, mimeType, url string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.visibleLocked(id)
	if err != nil {
		return nil, err
	}
	if n.storageKey == "" {
		return nil, shared.ErrorNoPolicy
	}
	n.storageKey = ""
	n.item.UploadState = models.UploadStateReady
	n.item.Size = size
	n.item.Mimetype = mimeType
	n.item.URL = url
	n.item.UpdatedAt = s.now()
	return s.viewLocked(n), nil
}

func (s *Store) removeLocked(id string) {
	for cid, c := range s.nodes {
		if c.parentID == id {
			s.removeLocked(cid)
		}
	}
	delete(s.nodes, id)
	delete(s.favorites, id)
	delete(s.accesses, id)
	delete(s.invitations, id)
}

func (s *Store) reindexLocked(n *node, prefix string, depth int) {
	n.item.Path = prefix + n.item.ID
	n.item.Depth = depth
	for _, c := range s.nodes {
		if c.parentID == n.item.ID {
			s.reindexLocked(c, n.item.Path+".", depth+1)
		}
	}
}

// hiddenLocked reports whether n or one of its ancestors is in the trash.
func (s *Store) hiddenLocked(n *node) bool {
	for cur := n; cur != nil; cur = s.nodes[cur.parentID] {
		if !cur.deletedAt.IsZero() {
			return true
		}
	}
	return false
}

func (s *Store) visibleLocked(id string) (*node, error) {
	n, ok := s.nodes[id]
	if !ok || s.hiddenLocked(n) {
		return nil, shared.ErrorNotFound
	}
	return n, nil
}

func (s *Store) viewLocked(n *node) *models.Item {
	it := n.item
	it.IsFavorite = s.favorites[it.ID]
	it.Children = nil
	if it.Creator != nil {
		c := *it.Creator
		it.Creator = &c
	}
	return &it
}

func (s *Store) meLocked() *models.User {
	u := *s.users[s.meID]
	return &u
}

func (s *Store) collectLocked(f ListFilter, keep func(*node) bool) []*models.Item {
	out := []*models.Item{}
	for _, n := range s.nodes {
		if keep(n) && f.match(&n.item) {
			out = append(out, s.viewLocked(n))
		}
	}
	sortItems(out, f.Ordering)
	return out
}

// sortItems orders by a comma-separated list of fields, each optionally
// prefixed with "-" for descending order. Ties fall back to the id.
func sortItems(items []*models.Item, ordering string) {
	if ordering == "" {
		ordering = "-type,-created_at"
	}
	fields := strings.Split(ordering, ",")
	slices.SortStableFunc(items, func(a, b *models.Item) int {
		for _, f := range fields {
			f = strings.TrimSpace(f)
			desc := strings.HasPrefix(f, "-")
			f = strings.TrimPrefix(f, "-")

			var c int
			switch f {
			case "type":
				c = cmp.Compare(a.Type, b.Type)
			case "title":
				c = cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
			case "created_at":
				c = a.CreatedAt.Compare(b.CreatedAt)
			case "updated_at":
				c = a.UpdatedAt.Compare(b.UpdatedAt)
			case "size":
				c = cmp.Compare(a.Size, b.Size)
			}
			if desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
