package shared

import "errors"

var (
	ErrorNotFound = errors.New("not found")

	// token errors
	ErrorInvalidToken = errors.New("invalid token")
	ErrorExpiredToken = errors.New("expired token")

	ErrorAlreadyExists = errors.New("already exists")
	ErrorValidation    = errors.New("validation error")

	// item tree errors
	ErrorNotAFolder     = errors.New("target is not a folder")
	ErrorMoveIntoItself = errors.New("cannot move an item into itself")
	ErrorNoPolicy       = errors.New("item has no pending upload")
)
