package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/logging"
	"github.com/suitenumerique/drive-sub001/internal/shared"
)

const (
	DefaultPollInterval        = time.Second
	DefaultClosedCheckInterval = 100 * time.Millisecond

	tokenBytes = 16
)

// Relay reads the event posted under a picker token.
type Relay interface {
	GetSDKRelayEvent(ctx context.Context, token string) (*models.SDKRelayEvent, error)
}

// PickerResult is the outcome of Picker.Open.
type PickerResult struct {
	Type  ResultType
	Items []*models.Item
}

// Picker opens the explorer popup and waits for a selection.
type Picker struct {
	AppOrigin           string
	Opener              WindowOpener
	Relay               Relay
	Logger              logging.Logger
	PollInterval        time.Duration
	ClosedCheckInterval time.Duration

	newToken func() (string, error)
}

// NewPicker returns a Picker with the default intervals.
func NewPicker(appOrigin string, opener WindowOpener, relay Relay, logger logging.Logger) *Picker {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Picker{
		AppOrigin:           strings.TrimRight(appOrigin, "/"),
		Opener:              opener,
		Relay:               relay,
		Logger:              logger,
		PollInterval:        DefaultPollInterval,
		ClosedCheckInterval: DefaultClosedCheckInterval,
		newToken:            func() (string, error) { return shared.MakeRandHexString(tokenBytes) },
	}
}

// PickerURL is the popup address for token.
func (p *Picker) PickerURL(token string) string {
	return p.AppOrigin + "/sdk/explorer/?token=" + url.QueryEscape(token)
}

// Open runs one picker session. Cancelling ctx closes the popup and returns
// ctx.Err().
func (p *Picker) Open(ctx context.Context) (*PickerResult, error) {
	token, err := p.newToken()
	if err != nil {
		return nil, fmt.Errorf("picker token: %w", err)
	}

	win, err := p.Opener.Open(ctx, p.PickerURL(token))
	if err != nil {
		return nil, fmt.Errorf("open picker: %w", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	results := make(chan *PickerResult, 2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.pollRelay(watchCtx, token, results)
	}()
	go func() {
		defer wg.Done()
		watchClosed(watchCtx, win, p.ClosedCheckInterval, func() {
			results <- &PickerResult{Type: ResultCancelled}
		})
	}()

	var res *PickerResult
	select {
	case res = <-results:
	case <-ctx.Done():
	}
	cancel()
	wg.Wait()

	if res == nil {
		win.Close()
		return nil, ctx.Err()
	}
	if res.Type == ResultPicked {
		win.Close()
	}
	p.Logger.Debug(ctx, "picker finished", "result", res.Type, "items", len(res.Items))
	return res, nil
}

func (p *Picker) pollRelay(ctx context.Context, token string, results chan<- *PickerResult) {
	ticker := time.NewTicker(p.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		ev, err := p.Relay.GetSDKRelayEvent(ctx, token)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.Logger.Warn(ctx, "relay poll failed", "error", err)
			continue
		}
		if ev.Empty() {
			continue
		}
		if ev.Type != models.EventItemsSelected {
			p.Logger.Debug(ctx, "ignoring relay event", "type", ev.Type)
			continue
		}

		var data models.ItemsSelectedData
		if len(ev.Data) > 0 {
			if err := json.Unmarshal(ev.Data, &data); err != nil {
				p.Logger.Warn(ctx, "malformed selection", "error", err)
				continue
			}
		}
		results <- &PickerResult{Type: ResultPicked, Items: data.Items}
		return
	}
}

// watchClosed calls onClosed once when win reports closed, unless ctx ends
// first.
func watchClosed(ctx context.Context, win Window, every time.Duration, onClosed func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if win.Closed() {
				onClosed()
				return
			}
		}
	}
}

// EventSender publishes relay events; the driver implements it.
type EventSender interface {
	CreateSDKRelayEvent(ctx context.Context, token string, event models.SDKRelayEvent) error
}

// SelectionRelay is the popup side of the picker.
type SelectionRelay struct {
	sender EventSender
}

func NewSelectionRelay(sender EventSender) *SelectionRelay {
	return &SelectionRelay{sender: sender}
}

// Send publishes items under token for the waiting picker.
func (r *SelectionRelay) Send(ctx context.Context, token string, items []*models.Item) error {
	if token == "" {
		return fmt.Errorf("empty picker token")
	}
	if items == nil {
		items = []*models.Item{}
	}
	data, err := json.Marshal(models.ItemsSelectedData{Items: items})
	if err != nil {
		return err
	}
	return r.sender.CreateSDKRelayEvent(ctx, token, models.SDKRelayEvent{Type: models.EventItemsSelected, Data: data})
}
