package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
)

type roleRequest struct {
	Role models.Role `json:"role"`
}

func (s *Server) listAccesses(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.Accesses(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, list)
}

func (s *Server) createAccess(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccessRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.store.CreateAccess(chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, a)
}

func (s *Server) updateAccess(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.store.UpdateAccess(chi.URLParam(r, "id"), chi.URLParam(r, "accessID"), req.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, a)
}

func (s *Server) deleteAccess(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAccess(chi.URLParam(r, "id"), chi.URLParam(r, "accessID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listInvitations answers with the paginated envelope, unlike accesses.
func (s *Server) listInvitations(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.Invitations(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"count":    len(list),
		"next":     nil,
		"previous": nil,
		"results":  list,
	})
}

func (s *Server) createInvitation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateInvitationRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	inv, err := s.store.CreateInvitation(chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, inv)
}

func (s *Server) updateInvitation(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	inv, err := s.store.UpdateInvitation(chi.URLParam(r, "id"), chi.URLParam(r, "invitationID"), req.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, inv)
}

func (s *Server) deleteInvitation(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteInvitation(chi.URLParam(r, "id"), chi.URLParam(r, "invitationID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("page_max"))
	s.writeJSON(w, r, http.StatusOK, s.store.Users(q.Get("q"), limit))
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.store.Me())
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.store.UpdateUser(chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, u)
}
