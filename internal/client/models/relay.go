package models

import "encoding/json"

// SDK relay event types.
const (
	EventItemsSelected = "ITEMS_SELECTED"
	EventSaverReady    = "SAVER_READY"
	EventSaverPayload  = "SAVER_PAYLOAD"
	EventItemSaved     = "ITEM_SAVED"
)

// SDKRelayEvent is a tagged message exchanged between an embedding page and
// the popup, either through the server relay or via postMessage.
type SDKRelayEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Empty reports whether the relay returned no event yet.
func (e *SDKRelayEvent) Empty() bool { return e == nil || e.Type == "" }

// ItemsSelectedData is the payload of ITEMS_SELECTED.
type ItemsSelectedData struct {
	Items []*Item `json:"items"`
}

// SaverFile is one file the embedding page asks the saver to store.
type SaverFile struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimetype,omitempty"`
	URL      string `json:"url,omitempty"`
	Content  []byte `json:"content,omitempty"`
}

// SaverPayloadData is the payload of SAVER_PAYLOAD.
type SaverPayloadData struct {
	Files []SaverFile `json:"files"`
}

// ItemSavedData is the payload of ITEM_SAVED.
type ItemSavedData struct {
	Item *Item `json:"item"`
}
