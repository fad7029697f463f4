// Package api serves the Drive HTTP contract over the in-memory store, for
// local development and integration tests of the client.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/suitenumerique/drive-sub001/internal/logging"
	"github.com/suitenumerique/drive-sub001/internal/server/config"
	"github.com/suitenumerique/drive-sub001/internal/server/storage"
	"github.com/suitenumerique/drive-sub001/internal/server/store"
)

// APIPrefix is the versioned root every endpoint lives under.
const APIPrefix = "/api/v1.0"

type Server struct {
	config  *config.Config
	store   *store.Store
	storage storage.Backend
	local   *storage.Local
	logger  logging.Logger
}

// NewServer wires the handlers. Local storage endpoints are only mounted
// when backend is a *storage.Local.
func NewServer(c *config.Config, st *store.Store, backend storage.Backend, l logging.Logger) *Server {
	s := &Server{
		config:  c,
		store:   st,
		storage: backend,
		logger:  l.With("module", "api"),
	}
	if local, ok := backend.(*storage.Local); ok {
		s.local = local
	}
	return s
}

// Handler returns the router with CORS, rate limiting and request logging.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if s.config.RequestsPerSecond > 0 {
		r.Use(NewRateLimiter(rate.Limit(s.config.RequestsPerSecond), s.config.Burst).Limit)
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.config.AppOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-CSRFToken", "X-amz-acl"},
		AllowCredentials: true,
	}).Handler)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(csrfProtect)

		r.Get("/config/", s.getConfig)
		r.Get("/entitlements/", s.getEntitlements)

		r.Get("/items/", s.listRoot)
		r.Post("/items/", s.createRootItem)
		r.Get("/items/recents/", s.listRecent)
		r.Get("/items/favorite_list/", s.listFavorites)
		r.Get("/items/trashbin/", s.listTrash)
		r.Get("/items/search/", s.search)

		r.Get("/items/{id}/", s.getItem)
		r.Patch("/items/{id}/", s.updateItem)
		r.Delete("/items/{id}/", s.deleteItem)
		r.Get("/items/{id}/children/", s.listChildren)
		r.Post("/items/{id}/children/", s.createChild)
		r.Get("/items/{id}/breadcrumb/", s.breadcrumb)
		r.Get("/items/{id}/tree/", s.tree)
		r.Post("/items/{id}/move/", s.move)
		r.Post("/items/{id}/restore/", s.restore)
		r.Delete("/items/{id}/hard-delete/", s.hardDelete)
		r.Post("/items/{id}/favorite/", s.favorite)
		r.Delete("/items/{id}/favorite/", s.unfavorite)

		r.Post("/items/{id}/upload-policy/", s.uploadPolicy)
		r.Post("/items/{id}/upload-ended/", s.uploadEnded)
		r.Get("/items/{id}/wopi/", s.wopi)

		r.Get("/items/{id}/accesses/", s.listAccesses)
		r.Post("/items/{id}/accesses/", s.createAccess)
		r.Patch("/items/{id}/accesses/{accessID}/", s.updateAccess)
		r.Delete("/items/{id}/accesses/{accessID}/", s.deleteAccess)
		r.Get("/items/{id}/invitations/", s.listInvitations)
		r.Post("/items/{id}/invitations/", s.createInvitation)
		r.Patch("/items/{id}/invitations/{invitationID}/", s.updateInvitation)
		r.Delete("/items/{id}/invitations/{invitationID}/", s.deleteInvitation)

		r.Get("/users/", s.listUsers)
		r.Get("/users/me/", s.getMe)
		r.Patch("/users/{id}/", s.updateUser)

		r.Post("/sdk-relay/events/", s.postRelayEvent)
		r.Get("/sdk-relay/events/{token}/", s.getRelayEvent)
	})

	if s.local != nil {
		r.Put(storage.UploadPrefix+"*", s.putObject)
		r.Get(storage.MediaPrefix+"*", s.getObject)
	}

	return r
}
