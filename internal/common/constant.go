// Package common contains shared constants and error types used across the
// drive client, the CLI and the development backend.
package common

const (
	// CSRFCookieName is the cookie carrying the anti-forgery token.
	CSRFCookieName = "csrftoken"

	// CSRFHeaderName is the request header echoing the anti-forgery token on
	// unsafe methods.
	CSRFHeaderName = "X-CSRFToken"

	// SessionCookieName is the session cookie set by the backend after login.
	SessionCookieName = "sessionid"

	// StorageACLHeaderName is sent with every direct PUT to object storage.
	StorageACLHeaderName = "X-amz-acl"
)
