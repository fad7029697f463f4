package sdk

import (
	"context"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
)

// Window is an opened popup.
type Window interface {
	Closed() bool
	Close()
	// PostMessage delivers event to the popup if its origin is targetOrigin.
	PostMessage(event models.SDKRelayEvent, targetOrigin string) error
}

// WindowOpener opens popups.
type WindowOpener interface {
	Open(ctx context.Context, url string) (Window, error)
}

// Message is an event received by the embedding page.
type Message struct {
	Origin string
	Event  models.SDKRelayEvent
}

// Inbox delivers the messages posted to the embedding page.
type Inbox interface {
	Messages() <-chan Message
}

// ResultType tells how a popup protocol ended.
type ResultType string

const (
	ResultPicked    ResultType = "picked"
	ResultSaved     ResultType = "saved"
	ResultCancelled ResultType = "cancelled"
)
