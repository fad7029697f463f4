package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/server/storage"
	"github.com/suitenumerique/drive-sub001/internal/server/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type page struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []*models.Item `json:"results"`
}

func listFilter(r *http.Request) store.ListFilter {
	q := r.URL.Query()
	return store.ListFilter{
		Type:     models.ItemType(q.Get("type")),
		Title:    q.Get("title"),
		Ordering: q.Get("ordering"),
	}
}

func queryInt(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// paginate slices items into the page requested by ?page= and ?page_size=,
// with absolute next and previous links.
func (s *Server) paginate(r *http.Request, items []*models.Item) page {
	q := r.URL.Query()
	num := queryInt(q, "page", 1)
	size := min(queryInt(q, "page_size", defaultPageSize), maxPageSize)

	p := page{Count: len(items), Results: []*models.Item{}}
	start := (num - 1) * size
	if start < len(items) {
		p.Results = items[start:min(start+size, len(items))]
	}

	link := func(n int) *string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(n))
		u := strings.TrimSuffix(s.config.PublicURL, "/") + r.URL.Path + "?" + q.Encode()
		return &u
	}
	if start+size < len(items) {
		p.Next = link(num + 1)
	}
	if num > 1 {
		p.Previous = link(num - 1)
	}
	return p
}

func (s *Server) listRoot(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Children("", listFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.paginate(r, items))
}

func (s *Server) listChildren(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Children(chi.URLParam(r, "id"), listFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.paginate(r, items))
}

func (s *Server) listRecent(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.paginate(r, s.store.Recent(listFilter(r))))
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.paginate(r, s.store.Favorites(listFilter(r))))
}

func (s *Server) listTrash(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.paginate(r, s.store.Trash(listFilter(r))))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.paginate(r, s.store.Search(listFilter(r))))
}

type createItemRequest struct {
	Type        models.ItemType `json:"type"`
	Title       string          `json:"title"`
	Filename    string          `json:"filename"`
	Description string          `json:"description"`
}

func (s *Server) createRootItem(w http.ResponseWriter, r *http.Request) {
	s.createItem(w, r, "")
}

func (s *Server) createChild(w http.ResponseWriter, r *http.Request) {
	s.createItem(w, r, chi.URLParam(r, "id"))
}

// createItem adds a folder or a file placeholder. Files come back with the
// upload policy for their first PUT.
func (s *Server) createItem(w http.ResponseWriter, r *http.Request, parentID string) {
	var req createItemRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	title := req.Title
	if req.Type == models.ItemTypeFile && strings.TrimSpace(title) == "" {
		title = req.Filename
	}

	item, err := s.store.CreateItem(parentID, req.Type, title, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if item.Type == models.ItemTypeFile {
		target, err := s.beginUpload(r, item)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		item.Policy = &models.UploadPolicy{URL: target}
	}

	s.logger.Debug(r.Context(), "item created", "item_id", item.ID, "type", item.Type)
	s.writeJSON(w, r, http.StatusCreated, item)
}

func (s *Server) beginUpload(r *http.Request, item *models.Item) (string, error) {
	key := storage.Key(item.ID, item.Filename)
	if _, err := s.store.BeginUpload(item.ID, key); err != nil {
		return "", err
	}
	return s.storage.PresignPut(r.Context(), item.ID, key)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.Item(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateItemRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.store.UpdateItem(chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SoftDelete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) breadcrumb(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Breadcrumb(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) tree(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.Tree(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) move(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetItemID string `json:"target_item_id"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.TargetItemID == "" {
		s.writeJSON(w, r, http.StatusBadRequest, map[string][]string{"target_item_id": {"This field is required."}})
		return
	}
	if err := s.store.Move(chi.URLParam(r, "id"), req.TargetItemID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"message": "item moved successfully."})
}

func (s *Server) restore(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Restore(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) hardDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.HardDelete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) favorite(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SetFavorite(chi.URLParam(r, "id"), true); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, map[string]string{"detail": "item marked as favorite"})
}

func (s *Server) unfavorite(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SetFavorite(chi.URLParam(r, "id"), false); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
