// Package store keeps the development backend's state in memory: the item
// tree with its trash, favorites, accesses and invitations, the users, and
// the SDK relay mailbox.
//
// Every method returns copies; callers never share memory with the store.
// Errors are the sentinels of the shared package (shared.ErrorNotFound,
// shared.ErrorNotAFolder, ...), which the HTTP layer maps to statuses.
package store
