// Package storage hands out upload destinations for file items and reports
// what was actually stored once a client says the upload has ended.
package storage

import (
	"context"
	"strings"
)

// Object describes a stored upload.
type Object struct {
	Size        int64
	ContentType string
}

// Backend is implemented by the in-memory and S3 storages.
type Backend interface {
	// PresignPut returns a URL accepting a single PUT of key.
	PresignPut(ctx context.Context, itemID, key string) (string, error)
	// Stat reports the object stored under key, or shared.ErrorNotFound.
	Stat(ctx context.Context, key string) (Object, error)
	// URL is where the stored object can be read back.
	URL(key string) string
}

// Key returns the storage key of an item's upload.
func Key(itemID, filename string) string {
	name := strings.ReplaceAll(strings.TrimSpace(filename), "/", "_")
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return "item/" + itemID + "/" + name
}
