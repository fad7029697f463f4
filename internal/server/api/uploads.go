package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/common"
	"github.com/suitenumerique/drive-sub001/internal/netx"
	"github.com/suitenumerique/drive-sub001/internal/server/storage"
	"github.com/suitenumerique/drive-sub001/internal/shared"
)

// maxUploadBytes caps a single local storage PUT.
const maxUploadBytes = 512 << 20

// uploadPolicy issues a fresh policy for an existing file whose previous
// one expired or failed. It answers with the plain URL form.
func (s *Server) uploadPolicy(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.Item(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if item.Type != models.ItemTypeFile {
		s.writeJSON(w, r, http.StatusBadRequest, detail("only files can be uploaded"))
		return
	}

	target, err := s.beginUpload(r, item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"policy": target})
}

// uploadEnded checks that the object reached storage and marks the file
// ready.
func (s *Server) uploadEnded(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	key, err := s.store.PendingKey(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	obj, err := s.storage.Stat(r.Context(), key)
	if errors.Is(err, shared.ErrorNotFound) {
		s.writeJSON(w, r, http.StatusBadRequest, detail("the file has not been uploaded"))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.store.EndUpload(id, obj.Size, obj.ContentType, s.storage.URL(key))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "upload ended", "item_id", id, "size", obj.Size)
	s.writeJSON(w, r, http.StatusOK, item)
}

// putObject accepts the direct upload of a local storage URL. Like S3 it
// answers 403 for a bad signature and 400 without the ACL header.
func (s *Server) putObject(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, storage.UploadPrefix)

	if _, err := s.local.Authorize(r.URL.Query().Get("token"), key); err != nil {
		http.Error(w, "SignatureDoesNotMatch", http.StatusForbidden)
		return
	}
	if r.Header.Get(common.StorageACLHeaderName) != netx.StorageACL {
		http.Error(w, "InvalidArgument: x-amz-acl", http.StatusBadRequest)
		return
	}

	n, err := s.local.Put(key, r.Header.Get("Content-Type"), http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, "EntityTooLarge", http.StatusBadRequest)
		return
	}
	s.logger.Debug(r.Context(), "object stored", "key", key, "size", n)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) getObject(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.local.Get(strings.TrimPrefix(r.URL.Path, storage.MediaPrefix))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	_, _ = w.Write(data)
}
