package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/common"
	"github.com/suitenumerique/drive-sub001/internal/server/config"
	"github.com/suitenumerique/drive-sub001/internal/shared"
)

// wopiTokenTTL is the lifetime of an editor access token.
const wopiTokenTTL = 10 * time.Hour

// getConfig returns the frontend configuration and hands out the csrftoken
// cookie when the caller has none.
func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(common.CSRFCookieName); err != nil {
		token, err := shared.MakeRandHexString(16)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     common.CSRFCookieName,
			Value:    token,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		})
	}

	media := strings.TrimSuffix(s.config.PublicURL, "/")
	if s.config.Storage == config.StorageS3 {
		media = strings.TrimSuffix(s.config.S3BaseEndpoint, "/") + "/" + s.config.S3Bucket
	}
	s.writeJSON(w, r, http.StatusOK, models.ApiConfig{
		Environment:  "development",
		LanguageCode: "en-us",
		Languages:    [][]string{{"en-us", "English"}, {"fr-fr", "Français"}},
		MediaBaseURL: media,
	})
}

func (s *Server) getEntitlements(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, models.Entitlements{
		CanUpload: models.Entitlement{Result: true},
		CanAccess: models.Entitlement{Result: true},
	})
}

// wopi returns editor launch details for files that finished uploading.
func (s *Server) wopi(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.Item(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if item.Type != models.ItemTypeFile || item.UploadState != models.UploadStateReady {
		s.writeJSON(w, r, http.StatusBadRequest, detail("this item cannot be opened in an editor"))
		return
	}

	token, err := shared.MakeRandHexString(24)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, models.WopiInfo{
		AccessToken:    token,
		AccessTokenTTL: time.Now().Add(wopiTokenTTL).UnixMilli(),
		LaunchURL:      strings.TrimSuffix(s.config.PublicURL, "/") + "/wopi/launch/?item=" + item.ID,
	})
}

func (s *Server) postRelayEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string               `json:"token"`
		Event models.SDKRelayEvent `json:"event"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.PostRelayEvent(req.Token, req.Event); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, struct{}{})
}

// getRelayEvent hands out the pending event once; an empty object means
// nothing was posted yet.
func (s *Server) getRelayEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.store.TakeRelayEvent(chi.URLParam(r, "token"))
	if !ok {
		s.writeJSON(w, r, http.StatusOK, struct{}{})
		return
	}
	s.writeJSON(w, r, http.StatusOK, ev)
}
