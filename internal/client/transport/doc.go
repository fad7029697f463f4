// Package transport is the single network gateway to the drive API.
//
// # Overview
//
// Client.FetchAPI builds the versioned API URL, bootstraps the anti-forgery
// cookie before the first unsafe request, attaches cookies and the
// X-CSRFToken header, applies an optional timeout and turns HTTP failures
// into *APIError values.
//
// # Anti-forgery bootstrap
//
// When a POST/PUT/PATCH/DELETE is about to be sent and the jar has no
// csrftoken cookie, a GET to the bootstrap path (config/ by default) is
// issued first. Concurrent callers share a single bootstrap request; once it
// settled the next caller that still misses the cookie starts a new one.
//
// # Error Handling
//
//   - Timeout set through Opts.Timeout: *TimeoutError (errors.Is ErrTimeout),
//     with a message from the configured Translator.
//   - 401/403 (unless Opts.NoRedirectOn40x): the current location is saved
//     for post-login return (401 only), the Navigator is sent to the error
//     page and *APIError{Status} is returned. IsRedirecting detects it.
//   - Any other non-2xx: *APIError with the parsed JSON body when available.
//   - Other errors from the HTTP client are returned wrapped, unclassified.
package transport
