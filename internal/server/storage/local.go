package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/suitenumerique/drive-sub001/internal/server/auth"
	"github.com/suitenumerique/drive-sub001/internal/shared"
)

// Path prefixes served by the API for local storage.
const (
	UploadPrefix = "/storage/"
	MediaPrefix  = "/media/"
)

type blob struct {
	data        []byte
	contentType string
}

// Local keeps uploads in memory. Upload URLs point back at the API and carry
// a token scoped to a single key.
type Local struct {
	mu        sync.RWMutex
	publicURL string
	secret    []byte
	ttl       time.Duration
	objects   map[string]blob
}

func NewLocal(publicURL string, secret []byte, ttl time.Duration) *Local {
	return &Local{
		publicURL: strings.TrimSuffix(publicURL, "/"),
		secret:    secret,
		ttl:       ttl,
		objects:   map[string]blob{},
	}
}

func (l *Local) PresignPut(_ context.Context, itemID, key string) (string, error) {
	token, err := auth.GenerateUploadToken(itemID, key, l.secret, l.ttl)
	if err != nil {
		return "", err
	}
	return l.publicURL + UploadPrefix + escapeKey(key) + "?token=" + url.QueryEscape(token), nil
}

// Authorize checks that token allows a PUT of key.
func (l *Local) Authorize(token, key string) (*auth.UploadClaims, error) {
	claims, err := auth.ParseUploadToken(token, l.secret)
	if err != nil {
		return nil, err
	}
	if claims.Key != key {
		return nil, shared.ErrorInvalidToken
	}
	return claims, nil
}

// Put stores the body under key, replacing any previous object.
func (l *Local) Put(key, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	l.objects[key] = blob{data: data, contentType: contentType}
	l.mu.Unlock()
	return int64(len(data)), nil
}

// Get returns a stored object and its content type.
func (l *Local) Get(key string) ([]byte, string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.objects[key]
	if !ok {
		return nil, "", shared.ErrorNotFound
	}
	return b.data, b.contentType, nil
}

func (l *Local) Stat(_ context.Context, key string) (Object, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.objects[key]
	if !ok {
		return Object{}, shared.ErrorNotFound
	}
	return Object{Size: int64(len(b.data)), ContentType: b.contentType}, nil
}

func (l *Local) URL(key string) string {
	return l.publicURL + MediaPrefix + escapeKey(key)
}

func escapeKey(key string) string {
	return (&url.URL{Path: key}).EscapedPath()
}
