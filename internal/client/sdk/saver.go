package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/logging"
)

// SaverResult is the outcome of Saver.Open.
type SaverResult struct {
	Type ResultType
	Item *models.Item
}

// Saver opens the saver popup and hands it the files to store.
type Saver struct {
	AppOrigin           string
	Opener              WindowOpener
	Inbox               Inbox
	Logger              logging.Logger
	ClosedCheckInterval time.Duration
}

// NewSaver returns a Saver with the default closed-check interval.
func NewSaver(appOrigin string, opener WindowOpener, inbox Inbox, logger logging.Logger) *Saver {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Saver{
		AppOrigin:           strings.TrimRight(appOrigin, "/"),
		Opener:              opener,
		Inbox:               inbox,
		Logger:              logger,
		ClosedCheckInterval: DefaultClosedCheckInterval,
	}
}

// SaverURL is the popup address.
func (s *Saver) SaverURL() string { return s.AppOrigin + "/sdk/saver/" }

// Open runs one saver session with payload.
func (s *Saver) Open(ctx context.Context, payload models.SaverPayloadData) (*SaverResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode saver payload: %w", err)
	}

	win, err := s.Opener.Open(ctx, s.SaverURL())
	if err != nil {
		return nil, fmt.Errorf("open saver: %w", err)
	}

	ticker := time.NewTicker(s.ClosedCheckInterval)
	defer ticker.Stop()

	inbox := s.Inbox.Messages()
	sent := false
	for {
		select {
		case <-ctx.Done():
			win.Close()
			return nil, ctx.Err()

		case <-ticker.C:
			if win.Closed() {
				s.Logger.Debug(ctx, "saver closed by user")
				return &SaverResult{Type: ResultCancelled}, nil
			}

		case msg, ok := <-inbox:
			if !ok {
				win.Close()
				return nil, fmt.Errorf("saver inbox closed")
			}
			if msg.Origin != s.AppOrigin {
				s.Logger.Debug(ctx, "ignoring message from unexpected origin", "origin", msg.Origin, "type", msg.Event.Type)
				continue
			}

			switch msg.Event.Type {
			case models.EventSaverReady:
				if sent {
					continue
				}
				ev := models.SDKRelayEvent{Type: models.EventSaverPayload, Data: data}
				if err := win.PostMessage(ev, s.AppOrigin); err != nil {
					win.Close()
					return nil, fmt.Errorf("post saver payload: %w", err)
				}
				sent = true

			case models.EventItemSaved:
				if !sent {
					s.Logger.Debug(ctx, "ignoring ITEM_SAVED before the payload was sent")
					continue
				}
				var saved models.ItemSavedData
				if len(msg.Event.Data) > 0 {
					if err := json.Unmarshal(msg.Event.Data, &saved); err != nil {
						s.Logger.Warn(ctx, "malformed saved item", "error", err)
					}
				}
				win.Close()
				return &SaverResult{Type: ResultSaved, Item: saved.Item}, nil
			}
		}
	}
}
