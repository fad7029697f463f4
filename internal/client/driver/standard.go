package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/client/runtimecfg"
	"github.com/suitenumerique/drive-sub001/internal/client/timebounds"
	"github.com/suitenumerique/drive-sub001/internal/client/transport"
	"github.com/suitenumerique/drive-sub001/internal/logging"
	"github.com/suitenumerique/drive-sub001/internal/netx"
)

const (
	// DefaultPageSize is applied to listings that do not set one.
	DefaultPageSize = 50
	// DefaultOrdering lists folders first, then the most recent items.
	DefaultOrdering = "-type,-created_at"
)

// API is the subset of transport.Client the driver needs.
type API interface {
	CallJSON(ctx context.Context, path string, opts *transport.Opts, out any) error
}

// Uploader sends file bodies to presigned storage URLs.
type Uploader interface {
	UploadToPresignedURL(ctx context.Context, url string, body io.Reader, size int64, contentType string, onProgress netx.ProgressFunc) error
}

// Option configures a StandardDriver.
type Option func(*StandardDriver)

// WithUploader replaces the storage uploader.
func WithUploader(u Uploader) Option {
	return func(d *StandardDriver) { d.uploader = u }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(d *StandardDriver) { d.logger = l }
}

// WithRequestTimeout bounds the requests that have no operation time bound;
// 0 leaves them unbounded.
func WithRequestTimeout(t time.Duration) Option {
	return func(d *StandardDriver) { d.requestTimeout = t }
}

// StandardDriver talks to the drive API through the transport.
type StandardDriver struct {
	api            API
	store          *runtimecfg.Store
	uploader       Uploader
	logger         logging.Logger
	requestTimeout time.Duration
}

var _ Driver = (*StandardDriver)(nil)

// NewStandardDriver returns a driver over api. store receives the config
// fetched by GetConfig and provides the operation time bounds.
func NewStandardDriver(api API, store *runtimecfg.Store, opts ...Option) *StandardDriver {
	if store == nil {
		store = runtimecfg.NewStore()
	}
	d := &StandardDriver{
		api:      api,
		store:    store,
		uploader: netx.NewUploader(nil),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Store returns the runtime config handle shared with the driver.
func (d *StandardDriver) Store() *runtimecfg.Store { return d.store }

func (d *StandardDriver) opts(method string, body any) *transport.Opts {
	return &transport.Opts{Method: method, Body: body, Timeout: d.requestTimeout}
}

func (d *StandardDriver) bounded(op timebounds.Operation, method string, body any) *transport.Opts {
	return &transport.Opts{Method: method, Body: body, Timeout: d.store.Bounds(op).Fail}
}

func itemPath(id string, sub ...string) string {
	p := "items/" + url.PathEscape(id) + "/"
	for _, s := range sub {
		p += s + "/"
	}
	return p
}

// GetConfig fetches the server configuration and publishes it to the store.
func (d *StandardDriver) GetConfig(ctx context.Context) (*models.ApiConfig, error) {
	var cfg models.ApiConfig
	if err := d.api.CallJSON(ctx, "config/", d.bounded(timebounds.ConfigLoad, http.MethodGet, nil), &cfg); err != nil {
		return nil, err
	}
	d.store.Set(&cfg)
	return &cfg, nil
}

func (d *StandardDriver) GetItem(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := d.api.CallJSON(ctx, itemPath(id), d.opts(http.MethodGet, nil), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *StandardDriver) GetItems(ctx context.Context, filters models.ItemFilters) (*models.PaginatedItems, error) {
	return d.list(ctx, "items/", filters)
}

func (d *StandardDriver) UpdateItem(ctx context.Context, id string, req models.UpdateItemRequest) (*models.Item, error) {
	var item models.Item
	if err := d.api.CallJSON(ctx, itemPath(id), d.opts(http.MethodPatch, req), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *StandardDriver) MoveItem(ctx context.Context, id, targetID string) error {
	body := map[string]string{"target_item_id": targetID}
	return d.api.CallJSON(ctx, itemPath(id, "move"), d.opts(http.MethodPost, body), nil)
}

func (d *StandardDriver) MoveItems(ctx context.Context, ids []string, targetID string) error {
	return forEach(ctx, ids, func(ctx context.Context, id string) error {
		return d.MoveItem(ctx, id, targetID)
	})
}

func (d *StandardDriver) DeleteItem(ctx context.Context, id string) error {
	return d.api.CallJSON(ctx, itemPath(id), d.opts(http.MethodDelete, nil), nil)
}

func (d *StandardDriver) DeleteItems(ctx context.Context, ids []string) error {
	return forEach(ctx, ids, d.DeleteItem)
}

func (d *StandardDriver) HardDeleteItem(ctx context.Context, id string) error {
	return d.api.CallJSON(ctx, itemPath(id, "hard-delete"), d.opts(http.MethodDelete, nil), nil)
}

func (d *StandardDriver) HardDeleteItems(ctx context.Context, ids []string) error {
	return forEach(ctx, ids, d.HardDeleteItem)
}

func (d *StandardDriver) RestoreItem(ctx context.Context, id string) error {
	return d.api.CallJSON(ctx, itemPath(id, "restore"), d.opts(http.MethodPost, nil), nil)
}

func (d *StandardDriver) RestoreItems(ctx context.Context, ids []string) error {
	return forEach(ctx, ids, d.RestoreItem)
}

func (d *StandardDriver) CreateFolder(ctx context.Context, req models.CreateFolderRequest) (*models.Item, error) {
	path := "items/"
	if req.ParentID != "" {
		path = itemPath(req.ParentID, "children")
	}
	body := map[string]string{"type": string(models.ItemTypeFolder), "title": req.Title}

	var item models.Item
	if err := d.api.CallJSON(ctx, path, d.opts(http.MethodPost, body), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *StandardDriver) CreateFavorite(ctx context.Context, id string) error {
	return d.api.CallJSON(ctx, itemPath(id, "favorite"), d.opts(http.MethodPost, nil), nil)
}

func (d *StandardDriver) DeleteFavorite(ctx context.Context, id string) error {
	return d.api.CallJSON(ctx, itemPath(id, "favorite"), d.opts(http.MethodDelete, nil), nil)
}

func (d *StandardDriver) GetChildren(ctx context.Context, id string, filters models.ItemFilters) (*models.PaginatedItems, error) {
	return d.list(ctx, itemPath(id, "children"), filters)
}

func (d *StandardDriver) GetRecentItems(ctx context.Context, filters models.ItemFilters) (*models.PaginatedItems, error) {
	return d.list(ctx, "items/recents/", filters)
}

func (d *StandardDriver) GetFavoriteItems(ctx context.Context, filters models.ItemFilters) (*models.PaginatedItems, error) {
	return d.list(ctx, "items/favorite_list/", filters)
}

func (d *StandardDriver) GetTrashItems(ctx context.Context, filters models.ItemFilters) (*models.PaginatedItems, error) {
	return d.list(ctx, "items/trashbin/", filters)
}

func (d *StandardDriver) SearchItems(ctx context.Context, filters models.ItemFilters) (*models.PaginatedItems, error) {
	return d.list(ctx, "items/search/", filters)
}

func (d *StandardDriver) GetBreadcrumb(ctx context.Context, id string) ([]*models.Item, error) {
	var items []*models.Item
	if err := d.api.CallJSON(ctx, itemPath(id, "breadcrumb"), d.opts(http.MethodGet, nil), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (d *StandardDriver) GetTree(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := d.api.CallJSON(ctx, itemPath(id, "tree"), d.opts(http.MethodGet, nil), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *StandardDriver) GetItemAccesses(ctx context.Context, itemID string) ([]*models.Access, error) {
	return getList[*models.Access](ctx, d, itemPath(itemID, "accesses"), nil)
}

func (d *StandardDriver) CreateAccess(ctx context.Context, itemID string, req models.CreateAccessRequest) (*models.Access, error) {
	var a models.Access
	if err := d.api.CallJSON(ctx, itemPath(itemID, "accesses"), d.opts(http.MethodPost, req), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (d *StandardDriver) UpdateAccess(ctx context.Context, itemID, accessID string, role models.Role) (*models.Access, error) {
	var a models.Access
	body := map[string]models.Role{"role": role}
	if err := d.api.CallJSON(ctx, itemPath(itemID, "accesses", url.PathEscape(accessID)), d.opts(http.MethodPatch, body), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (d *StandardDriver) DeleteAccess(ctx context.Context, itemID, accessID string) error {
	return d.api.CallJSON(ctx, itemPath(itemID, "accesses", url.PathEscape(accessID)), d.opts(http.MethodDelete, nil), nil)
}

func (d *StandardDriver) GetItemInvitations(ctx context.Context, itemID string) ([]*models.Invitation, error) {
	return getList[*models.Invitation](ctx, d, itemPath(itemID, "invitations"), nil)
}

func (d *StandardDriver) CreateInvitation(ctx context.Context, itemID string, req models.CreateInvitationRequest) (*models.Invitation, error) {
	var inv models.Invitation
	if err := d.api.CallJSON(ctx, itemPath(itemID, "invitations"), d.opts(http.MethodPost, req), &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (d *StandardDriver) UpdateInvitation(ctx context.Context, itemID, invitationID string, role models.Role) (*models.Invitation, error) {
	var inv models.Invitation
	body := map[string]models.Role{"role": role}
	if err := d.api.CallJSON(ctx, itemPath(itemID, "invitations", url.PathEscape(invitationID)), d.opts(http.MethodPatch, body), &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (d *StandardDriver) DeleteInvitation(ctx context.Context, itemID, invitationID string) error {
	return d.api.CallJSON(ctx, itemPath(itemID, "invitations", url.PathEscape(invitationID)), d.opts(http.MethodDelete, nil), nil)
}

func (d *StandardDriver) GetMe(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := d.api.CallJSON(ctx, "users/me/", d.opts(http.MethodGet, nil), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *StandardDriver) GetUsers(ctx context.Context, filters models.UserFilters) ([]*models.User, error) {
	params := url.Values{}
	if filters.Query != "" {
		params.Set("q", filters.Query)
	}
	if filters.ItemID != "" {
		params.Set("item_id", filters.ItemID)
	}
	if filters.PageMax > 0 {
		params.Set("page_max", strconv.Itoa(filters.PageMax))
	}
	return getList[*models.User](ctx, d, "users/", params)
}

func (d *StandardDriver) UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	var u models.User
	if err := d.api.CallJSON(ctx, "users/"+url.PathEscape(id)+"/", d.opts(http.MethodPatch, req), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *StandardDriver) CreateWorkspace(ctx context.Context, req models.CreateWorkspaceRequest) (*models.Item, error) {
	body := map[string]string{"type": string(models.ItemTypeFolder), "title": req.Title}
	if req.Description != "" {
		body["description"] = req.Description
	}

	var item models.Item
	if err := d.api.CallJSON(ctx, "items/", d.opts(http.MethodPost, body), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *StandardDriver) UpdateWorkspace(ctx context.Context, id string, req models.UpdateItemRequest) (*models.Item, error) {
	return d.UpdateItem(ctx, id, req)
}

func (d *StandardDriver) DeleteWorkspace(ctx context.Context, id string) error {
	return d.DeleteItem(ctx, id)
}

func (d *StandardDriver) GetWopiInfo(ctx context.Context, itemID string) (*models.WopiInfo, error) {
	var info models.WopiInfo
	if err := d.api.CallJSON(ctx, itemPath(itemID, "wopi"), d.bounded(timebounds.WopiInfo, http.MethodGet, nil), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *StandardDriver) GetEntitlements(ctx context.Context) (*models.Entitlements, error) {
	var e models.Entitlements
	if err := d.api.CallJSON(ctx, "entitlements/", d.opts(http.MethodGet, nil), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (d *StandardDriver) CreateSDKRelayEvent(ctx context.Context, token string, event models.SDKRelayEvent) error {
	body := struct {
		Token string               `json:"token"`
		Event models.SDKRelayEvent `json:"event"`
	}{Token: token, Event: event}
	return d.api.CallJSON(ctx, "sdk-relay/events/", d.opts(http.MethodPost, body), nil)
}

// GetSDKRelayEvent returns the pending event for token. An empty event
// (Empty() == true) means nothing was posted yet.
func (d *StandardDriver) GetSDKRelayEvent(ctx context.Context, token string) (*models.SDKRelayEvent, error) {
	var ev models.SDKRelayEvent
	if err := d.api.CallJSON(ctx, "sdk-relay/events/"+url.PathEscape(token)+"/", d.opts(http.MethodGet, nil), &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

type listResponse struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []*models.Item `json:"results"`
}

func (d *StandardDriver) list(ctx context.Context, path string, filters models.ItemFilters) (*models.PaginatedItems, error) {
	params, page := filterParams(filters)

	var resp listResponse
	opts := d.opts(http.MethodGet, nil)
	opts.Params = params
	if err := d.api.CallJSON(ctx, path, opts, &resp); err != nil {
		return nil, err
	}

	items := resp.Results
	if items == nil {
		items = []*models.Item{}
	}
	return &models.PaginatedItems{
		Items: items,
		Pagination: models.Pagination{
			CurrentPage: page,
			TotalCount:  resp.Count,
			HasMore:     resp.Next != nil && *resp.Next != "",
		},
	}, nil
}

func filterParams(f models.ItemFilters) (url.Values, int) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	ordering := f.Ordering
	if ordering == "" {
		ordering = DefaultOrdering
	}

	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("page_size", strconv.Itoa(size))
	v.Set("ordering", ordering)
	if f.Type != "" {
		v.Set("type", string(f.Type))
	}
	if f.Title != "" {
		v.Set("title", f.Title)
	}
	if f.Workspace != "" {
		v.Set("workspace", f.Workspace)
	}
	if f.IsCreatorMe != nil {
		v.Set("is_creator_me", strconv.FormatBool(*f.IsCreatorMe))
	}
	return v, page
}

// getList decodes either a bare JSON array or a paginated {results: [...]}
// envelope; the API uses both for small collections.
func getList[T any](ctx context.Context, d *StandardDriver, path string, params url.Values) ([]T, error) {
	var raw json.RawMessage
	opts := d.opts(http.MethodGet, nil)
	opts.Params = params
	if err := d.api.CallJSON(ctx, path, opts, &raw); err != nil {
		return nil, err
	}

	var out []T
	if len(raw) == 0 {
		return out, nil
	}
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return out, nil
	}

	var env struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return env.Results, nil
}
