// Package driver is the only sanctioned path from the rest of the client to
// the drive API.
//
// # Overview
//
// Driver lists every remote operation the application needs: configuration,
// items and folders, paginated listings, the folder tree, accesses and
// invitations, users, workspaces, file uploads, WOPI sessions, entitlements
// and the SDK relay. Callers depend on the interface so that test doubles or
// alternative backends can be swapped in without touching them.
//
// StandardDriver implements Driver on top of transport.Client. CachedDriver
// wraps any Driver with a short-lived read-through cache.
//
// # Batches
//
// MoveItems, DeleteItems, HardDeleteItems and RestoreItems issue one request
// per id, in order. The first failure stops the loop and is returned as a
// *BatchError naming the failing id; ids before it stay mutated and ids after
// it are never attempted. There is no rollback.
//
// # Uploads
//
// CreateFile runs three phases, each bounded by its own operation time
// bound:
//
//  1. create: POST a placeholder item and receive an upload policy,
//  2. put: PUT the bytes to the presigned storage URL, reporting 0..99,
//  3. finalize: POST upload-ended, after which progress 100 is reported once.
//
// Failures are returned as *common.UploadError, whose NextAction tells the
// caller whether to retry, to call ReinitiateUpload for a fresh policy, or
// to give up. A create response without a policy is a *common.AppError.
package driver
