package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/suitenumerique/drive-sub001/internal/shared"
)

var errBadJSON = errors.New("malformed request body")

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), "encode response", "error", err)
	}
}

func detail(msg string) map[string]string { return map[string]string{"detail": msg} }

// writeError maps store and token errors onto the statuses the client expects.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrorValidation),
		errors.Is(err, shared.ErrorNotAFolder),
		errors.Is(err, shared.ErrorMoveIntoItself),
		errors.Is(err, shared.ErrorNoPolicy),
		errors.Is(err, shared.ErrorAlreadyExists),
		errors.Is(err, errBadJSON):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrorInvalidToken), errors.Is(err, shared.ErrorExpiredToken):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		s.writeJSON(w, r, status, detail("internal error"))
		return
	}
	s.writeJSON(w, r, status, detail(err.Error()))
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadJSON, err)
	}
	return nil
}
