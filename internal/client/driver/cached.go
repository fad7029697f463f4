package driver

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
)

const (
	keyConfig       = "config"
	keyEntitlements = "entitlements"
	keyMe           = "me"
	itemKeyPrefix   = "item:"
)

// CachedDriver wraps a Driver with a read-through cache for configuration,
// entitlements, the current user and single items. Mutations evict the
// items they touch; listings are never cached.
type CachedDriver struct {
	Driver
	cache *cache.Cache
}

var _ Driver = (*CachedDriver)(nil)

// NewCachedDriver caches reads of next for ttl.
func NewCachedDriver(next Driver, ttl time.Duration) *CachedDriver {
	return &CachedDriver{Driver: next, cache: cache.New(ttl, 2*ttl)}
}

// Flush drops every cached entry.
func (c *CachedDriver) Flush() { c.cache.Flush() }

func cached[T any](c *CachedDriver, key string, load func() (T, error)) (T, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.(T), nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.cache.SetDefault(key, v)
	return v, nil
}

func (c *CachedDriver) GetConfig(ctx context.Context) (*models.ApiConfig, error) {
	return cached(c, keyConfig, func() (*models.ApiConfig, error) { return c.Driver.GetConfig(ctx) })
}

func (c *CachedDriver) GetEntitlements(ctx context.Context) (*models.Entitlements, error) {
	return cached(c, keyEntitlements, func() (*models.Entitlements, error) { return c.Driver.GetEntitlements(ctx) })
}

func (c *CachedDriver) GetMe(ctx context.Context) (*models.User, error) {
	return cached(c, keyMe, func() (*models.User, error) { return c.Driver.GetMe(ctx) })
}

func (c *CachedDriver) GetItem(ctx context.Context, id string) (*models.Item, error) {
	return cached(c, itemKeyPrefix+id, func() (*models.Item, error) { return c.Driver.GetItem(ctx, id) })
}

func (c *CachedDriver) evict(ids ...string) {
	for _, id := range ids {
		c.cache.Delete(itemKeyPrefix + id)
	}
}

func (c *CachedDriver) UpdateItem(ctx context.Context, id string, req models.UpdateItemRequest) (*models.Item, error) {
	defer c.evict(id)
	return c.Driver.UpdateItem(ctx, id, req)
}

func (c *CachedDriver) MoveItem(ctx context.Context, id, targetID string) error {
	defer c.evict(id, targetID)
	return c.Driver.MoveItem(ctx, id, targetID)
}

func (c *CachedDriver) MoveItems(ctx context.Context, ids []string, targetID string) error {
	defer c.evict(ids...)
	defer c.evict(targetID)
	return c.Driver.MoveItems(ctx, ids, targetID)
}

func (c *CachedDriver) DeleteItem(ctx context.Context, id string) error {
	defer c.evict(id)
	return c.Driver.DeleteItem(ctx, id)
}

func (c *CachedDriver) DeleteItems(ctx context.Context, ids []string) error {
	defer c.evict(ids...)
	return c.Driver.DeleteItems(ctx, ids)
}

func (c *CachedDriver) HardDeleteItem(ctx context.Context, id string) error {
	defer c.evict(id)
	return c.Driver.HardDeleteItem(ctx, id)
}

func (c *CachedDriver) HardDeleteItems(ctx context.Context, ids []string) error {
	defer c.evict(ids...)
	return c.Driver.HardDeleteItems(ctx, ids)
}

func (c *CachedDriver) RestoreItem(ctx context.Context, id string) error {
	defer c.evict(id)
	return c.Driver.RestoreItem(ctx, id)
}

func (c *CachedDriver) RestoreItems(ctx context.Context, ids []string) error {
	defer c.evict(ids...)
	return c.Driver.RestoreItems(ctx, ids)
}

func (c *CachedDriver) CreateFavorite(ctx context.Context, id string) error {
	defer c.evict(id)
	return c.Driver.CreateFavorite(ctx, id)
}

func (c *CachedDriver) DeleteFavorite(ctx context.Context, id string) error {
	defer c.evict(id)
	return c.Driver.DeleteFavorite(ctx, id)
}

func (c *CachedDriver) UpdateWorkspace(ctx context.Context, id string, req models.UpdateItemRequest) (*models.Item, error) {
	defer c.evict(id)
	return c.Driver.UpdateWorkspace(ctx, id, req)
}

func (c *CachedDriver) DeleteWorkspace(ctx context.Context, id string) error {
	defer c.evict(id)
	return c.Driver.DeleteWorkspace(ctx, id)
}

func (c *CachedDriver) ReinitiateUpload(ctx context.Context, req ReinitiateUploadRequest, onProgress ProgressFunc) (*models.Item, error) {
	defer c.evict(req.ItemID)
	return c.Driver.ReinitiateUpload(ctx, req, onProgress)
}

func (c *CachedDriver) FinalizeUpload(ctx context.Context, itemID string) (*models.Item, error) {
	defer c.evict(itemID)
	return c.Driver.FinalizeUpload(ctx, itemID)
}

func (c *CachedDriver) UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	defer c.cache.Delete(keyMe)
	return c.Driver.UpdateUser(ctx, id, req)
}
