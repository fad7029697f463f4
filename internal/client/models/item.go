// Package models defines the resources exchanged with the drive API: items,
// users, accesses, invitations, server configuration and SDK relay events.
package models

import (
	"encoding/json"
	"errors"
	"net/url"
	"time"
)

// ItemType classifies an item.
type ItemType string

const (
	ItemTypeFile   ItemType = "file"
	ItemTypeFolder ItemType = "folder"
)

// UploadState is the server-side lifecycle tag of a file item.
type UploadState string

const (
	UploadStatePending      UploadState = "pending"
	UploadStateAnalyzing    UploadState = "analyzing"
	UploadStateSuspicious   UploadState = "suspicious"
	UploadStateFileTooLarge UploadState = "file_too_large"
	UploadStateReady        UploadState = "ready"
)

// Item is a file or folder.
//
// Policy is only present between item creation and a completed upload.
// Children is only present on expanded tree nodes.
type Item struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Filename      string        `json:"filename,omitempty"`
	Type          ItemType      `json:"type"`
	UploadState   UploadState   `json:"upload_state,omitempty"`
	Mimetype      string        `json:"mimetype,omitempty"`
	Size          int64         `json:"size,omitempty"`
	Description   string        `json:"description,omitempty"`
	Path          string        `json:"path,omitempty"`
	Depth         int           `json:"depth,omitempty"`
	NumChild      int           `json:"numchild,omitempty"`
	MainWorkspace bool          `json:"main_workspace,omitempty"`
	IsFavorite    bool          `json:"is_favorite,omitempty"`
	LinkReach     string        `json:"link_reach,omitempty"`
	LinkRole      string        `json:"link_role,omitempty"`
	Creator       *User         `json:"creator,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Children      []*Item       `json:"children,omitempty"`
	Policy        *UploadPolicy `json:"policy,omitempty"`
	URL           string        `json:"url,omitempty"`
}

// IsFolder reports whether the item is a folder.
func (i *Item) IsFolder() bool { return i.Type == ItemTypeFolder }

// UploadPolicy is a one-time credential bundle for a direct upload to object
// storage: a destination URL plus optional signing fields
// (AWSAccessKeyId, acl, policy, key, signature).
//
// The API sends it either as a plain presigned URL string or as an object
// {"url": ..., "fields": {...}}; both forms decode into UploadPolicy.
type UploadPolicy struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields,omitempty"`
}

var errEmptyPolicy = errors.New("upload policy has no url")

func (p *UploadPolicy) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err == nil {
		p.URL = raw
		p.Fields = nil
		return nil
	}

	type plain UploadPolicy
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = UploadPolicy(v)
	return nil
}

// TargetURL returns the PUT destination with the signing fields merged into
// the query string.
func (p *UploadPolicy) TargetURL() (string, error) {
	if p == nil || p.URL == "" {
		return "", errEmptyPolicy
	}
	if len(p.Fields) == 0 {
		return p.URL, nil
	}

	u, err := url.Parse(p.URL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range p.Fields {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ItemFilters narrows listing and search operations. Zero values mean
// "server default" except Page, PageSize and Ordering which the driver fills
// in when unset.
type ItemFilters struct {
	Type        ItemType
	Title       string
	Workspace   string
	Page        int
	PageSize    int
	Ordering    string
	IsCreatorMe *bool
}

// Pagination describes the page returned by a listing.
type Pagination struct {
	CurrentPage int
	TotalCount  int
	HasMore     bool
}

// PaginatedItems is a page of items.
type PaginatedItems struct {
	Items      []*Item
	Pagination Pagination
}

// UpdateItemRequest is a partial update; nil fields are left untouched.
type UpdateItemRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	LinkReach   *string `json:"link_reach,omitempty"`
	LinkRole    *string `json:"link_role,omitempty"`
}

// CreateFolderRequest creates a folder under ParentID, or at the root when
// ParentID is empty.
type CreateFolderRequest struct {
	ParentID string `json:"-"`
	Title    string `json:"title"`
}

// CreateWorkspaceRequest creates a top-level shared folder.
type CreateWorkspaceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// WopiInfo is what an office editor needs to open an item.
type WopiInfo struct {
	AccessToken    string `json:"access_token"`
	AccessTokenTTL int64  `json:"access_token_ttl"`
	LaunchURL      string `json:"launch_url"`
}

// Entitlement is a capability check result.
type Entitlement struct {
	Result  bool   `json:"result"`
	Message string `json:"message,omitempty"`
}

// Entitlements gates user actions.
type Entitlements struct {
	CanUpload Entitlement `json:"can_upload"`
	CanAccess Entitlement `json:"can_access"`
}
