package driver

import (
	"context"
	"fmt"
	"io"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
)

// Driver is the capability-complete surface over the drive API.
type Driver interface {
	GetConfig(ctx context.Context) (*models.ApiConfig, error)

	GetItem(ctx context.Context, id string) (*models.Item, error)
	GetItems(ctx context.Context, filters models.ItemFilters) (*models.PaginatedItems, error)
	UpdateItem(ctx context.Context, id string, req models.UpdateItemRequest) (*models.Item, error)
	MoveItem(ctx context.Context, id, targetID string) error
	MoveItems(ctx context.Context, ids []string, targetID string) error
	DeleteItem(ctx context.Context, id string) error
	DeleteItems(ctx context.Context, ids []string) error
	HardDeleteItem(ctx context.Context, id string) error
	HardDeleteItems(ctx context.Context, ids []string) error
	RestoreItem(ctx context.Context, id string) error
	RestoreItems(ctx context.Context, ids []string) error
	CreateFolder(ctx context.Context, req models.CreateFolderRequest) (*models.Item, error)
	CreateFavorite(ctx context.Context, id string) error
	DeleteFavorite(ctx context.Context, id string) error

	GetChildren(ctx context.Context, id string, filters models.ItemFilters) (*models.PaginatedItems, error)
	GetRecentItems(ctx context.Context, filters models.ItemFilters) (*models.PaginatedItems, error)
	GetFavoriteItems(ctx context.Context, filters models.ItemFilters) (*models.PaginatedItems, error)
	GetTrashItems(ctx context.Context, filters models.ItemFilters) (*models.PaginatedItems, error)
	SearchItems(ctx context.Context, filters models.ItemFilters) (*models.PaginatedItems, error)

	GetBreadcrumb(ctx context.Context, id string) ([]*models.Item, error)
	GetTree(ctx context.Context, id string) (*models.Item, error)

	GetItemAccesses(ctx context.Context, itemID string) ([]*models.Access, error)
	CreateAccess(ctx context.Context, itemID string, req models.CreateAccessRequest) (*models.Access, error)
	UpdateAccess(ctx context.Context, itemID, accessID string, role models.Role) (*models.Access, error)
	DeleteAccess(ctx context.Context, itemID, accessID string) error

	GetItemInvitations(ctx context.Context, itemID string) ([]*models.Invitation, error)
	CreateInvitation(ctx context.Context, itemID string, req models.CreateInvitationRequest) (*models.Invitation, error)
	UpdateInvitation(ctx context.Context, itemID, invitationID string, role models.Role) (*models.Invitation, error)
	DeleteInvitation(ctx context.Context, itemID, invitationID string) error

	GetMe(ctx context.Context) (*models.User, error)
	GetUsers(ctx context.Context, filters models.UserFilters) ([]*models.User, error)
	UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error)

	CreateWorkspace(ctx context.Context, req models.CreateWorkspaceRequest) (*models.Item, error)
	UpdateWorkspace(ctx context.Context, id string, req models.UpdateItemRequest) (*models.Item, error)
	DeleteWorkspace(ctx context.Context, id string) error

	CreateFile(ctx context.Context, req CreateFileRequest, onProgress ProgressFunc) (*models.Item, error)
	ReinitiateUpload(ctx context.Context, req ReinitiateUploadRequest, onProgress ProgressFunc) (*models.Item, error)
	FinalizeUpload(ctx context.Context, itemID string) (*models.Item, error)

	GetWopiInfo(ctx context.Context, itemID string) (*models.WopiInfo, error)
	GetEntitlements(ctx context.Context) (*models.Entitlements, error)

	CreateSDKRelayEvent(ctx context.Context, token string, event models.SDKRelayEvent) error
	GetSDKRelayEvent(ctx context.Context, token string) (*models.SDKRelayEvent, error)
}

// ProgressFunc receives upload progress in percent.
type ProgressFunc func(percent int)

// CreateFileRequest describes a new file. Size is the byte length of
// Content; it drives Content-Length and progress reporting.
type CreateFileRequest struct {
	ParentID string
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// ReinitiateUploadRequest re-uploads Content into the existing placeholder
// ItemID with a fresh policy.
type ReinitiateUploadRequest struct {
	ItemID   string
	MimeType string
	Size     int64
	Content  io.Reader
}

// BatchError reports the id that stopped a batch operation.
type BatchError struct {
	ID    string
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch stopped at %s (index %d): %v", e.ID, e.Index, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// forEach runs fn for every id in order and stops at the first error.
func forEach(ctx context.Context, ids []string, fn func(ctx context.Context, id string) error) error {
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return &BatchError{ID: id, Index: i, Err: err}
		}
		if err := fn(ctx, id); err != nil {
			return &BatchError{ID: id, Index: i, Err: err}
		}
	}
	return nil
}
