// Package runtimecfg holds the server-delivered configuration for the
// lifetime of a session.
//
// The config is written once, right after it has been fetched at bootstrap,
// and read by many collaborators afterwards (transport timeouts, upload
// phases, the CLI). The Store is handed to those collaborators explicitly.
package runtimecfg

import (
	"sync/atomic"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/client/timebounds"
)

// Store is a single-writer, many-reader holder for *models.ApiConfig.
type Store struct {
	cfg atomic.Pointer[models.ApiConfig]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set publishes cfg. It is meant to be called once per session.
func (s *Store) Set(cfg *models.ApiConfig) {
	s.cfg.Store(cfg)
}

// Get returns the published config, or nil before Set.
func (s *Store) Get() *models.ApiConfig {
	if s == nil {
		return nil
	}
	return s.cfg.Load()
}

// Bounds resolves the time bound of op against the published config.
func (s *Store) Bounds(op timebounds.Operation) timebounds.TimeBound {
	return timebounds.Get(op, s.Get())
}
