package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
)

const appOrigin = "https://drive.example.test"

type fakeWindow struct {
	closed atomic.Bool
	closes atomic.Int32

	mu     sync.Mutex
	posted []models.SDKRelayEvent
	target []string
}

func (w *fakeWindow) Closed() bool { return w.closed.Load() }

func (w *fakeWindow) Close() {
	w.closes.Add(1)
	w.closed.Store(true)
}

func (w *fakeWindow) PostMessage(ev models.SDKRelayEvent, targetOrigin string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.posted = append(w.posted, ev)
	w.target = append(w.target, targetOrigin)
	return nil
}

func (w *fakeWindow) postedEvents() []models.SDKRelayEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.SDKRelayEvent(nil), w.posted...)
}

type fakeOpener struct {
	win *fakeWindow
	url string
	err error
}

func (o *fakeOpener) Open(_ context.Context, url string) (Window, error) {
	o.url = url
	if o.err != nil {
		return nil, o.err
	}
	return o.win, nil
}

type fakeRelay struct {
	calls   atomic.Int32
	respond func(n int32) (*models.SDKRelayEvent, error)
}

func (r *fakeRelay) GetSDKRelayEvent(_ context.Context, _ string) (*models.SDKRelayEvent, error) {
	n := r.calls.Add(1)
	if r.respond == nil {
		return &models.SDKRelayEvent{}, nil
	}
	return r.respond(n)
}

func newTestPicker(opener WindowOpener, relay Relay) *Picker {
	p := NewPicker(appOrigin+"/", opener, relay, nil)
	p.PollInterval = 10 * time.Millisecond
	p.ClosedCheckInterval = 5 * time.Millisecond
	p.newToken = func() (string, error) { return "tok123", nil }
	return p
}

func selectionEvent(t *testing.T, ids ...string) *models.SDKRelayEvent {
	t.Helper()
	items := make([]*models.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, &models.Item{ID: id})
	}
	data, err := json.Marshal(models.ItemsSelectedData{Items: items})
	require.NoError(t, err)
	return &models.SDKRelayEvent{Type: models.EventItemsSelected, Data: data}
}

func TestPicker_ClosedPopupCancelsAndStopsPolling(t *testing.T) {
	win := &fakeWindow{}
	opener := &fakeOpener{win: win}
	relay := &fakeRelay{}
	p := newTestPicker(opener, relay)

	time.AfterFunc(60*time.Millisecond, func() { win.closed.Store(true) })

	res, err := p.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultCancelled, res.Type)
	assert.Equal(t, appOrigin+"/sdk/explorer/?token=tok123", opener.url)

	calls := relay.calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, relay.calls.Load(), "relay polled after the picker resolved")
}

func TestPicker_SelectionWins(t *testing.T) {
	win := &fakeWindow{}
	relay := &fakeRelay{}
	relay.respond = func(n int32) (*models.SDKRelayEvent, error) {
		switch {
		case n == 1:
			return nil, errors.New("relay hiccup")
		case n < 4:
			return &models.SDKRelayEvent{}, nil
		}
		return selectionEvent(t, "a", "b"), nil
	}
	p := newTestPicker(&fakeOpener{win: win}, relay)

	res, err := p.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultPicked, res.Type)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "a", res.Items[0].ID)
	assert.EqualValues(t, 1, win.closes.Load())
	assert.EqualValues(t, 4, relay.calls.Load())
}

func TestPicker_IgnoresOtherEventTypes(t *testing.T) {
	win := &fakeWindow{}
	relay := &fakeRelay{}
	relay.respond = func(n int32) (*models.SDKRelayEvent, error) {
		if n == 1 {
			return &models.SDKRelayEvent{Type: models.EventSaverReady}, nil
		}
		return selectionEvent(t, "x"), nil
	}
	p := newTestPicker(&fakeOpener{win: win}, relay)

	res, err := p.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultPicked, res.Type)
	assert.EqualValues(t, 2, relay.calls.Load())
}

func TestPicker_ContextCancelClosesPopup(t *testing.T) {
	win := &fakeWindow{}
	p := newTestPicker(&fakeOpener{win: win}, &fakeRelay{})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	res, err := p.Open(ctx)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, win.Closed())
}

func TestPicker_OpenError(t *testing.T) {
	p := newTestPicker(&fakeOpener{err: errors.New("popup blocked")}, &fakeRelay{})

	_, err := p.Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "popup blocked")
}

func TestPicker_PrintingOpener(t *testing.T) {
	var out bytes.Buffer
	relay := &fakeRelay{}
	relay.respond = func(n int32) (*models.SDKRelayEvent, error) {
		if n < 2 {
			return &models.SDKRelayEvent{}, nil
		}
		return selectionEvent(t, "p1"), nil
	}
	p := newTestPicker(PrintingOpener{Out: &out}, relay)

	res, err := p.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultPicked, res.Type)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "p1", res.Items[0].ID)
	assert.Contains(t, out.String(), appOrigin+"/sdk/explorer/?token=tok123")
}

func TestPrintingOpener_Window(t *testing.T) {
	win, err := PrintingOpener{Out: &bytes.Buffer{}}.Open(context.Background(), "http://x")
	require.NoError(t, err)

	assert.False(t, win.Closed())
	assert.Error(t, win.PostMessage(models.SDKRelayEvent{Type: models.EventSaverPayload}, appOrigin))
	win.Close()
	assert.True(t, win.Closed())
}

type recordingSender struct {
	token string
	event models.SDKRelayEvent
}

func (s *recordingSender) CreateSDKRelayEvent(_ context.Context, token string, ev models.SDKRelayEvent) error {
	s.token = token
	s.event = ev
	return nil
}

func TestSelectionRelay_Send(t *testing.T) {
	sender := &recordingSender{}
	r := NewSelectionRelay(sender)

	require.NoError(t, r.Send(context.Background(), "tok", []*models.Item{{ID: "a"}}))
	assert.Equal(t, "tok", sender.token)
	assert.Equal(t, models.EventItemsSelected, sender.event.Type)

	var data models.ItemsSelectedData
	require.NoError(t, json.Unmarshal(sender.event.Data, &data))
	require.Len(t, data.Items, 1)
	assert.Equal(t, "a", data.Items[0].ID)

	assert.Error(t, r.Send(context.Background(), "", nil))
}

type chanInbox chan Message

func (c chanInbox) Messages() <-chan Message { return c }

func newTestSaver(win *fakeWindow, inbox chanInbox) *Saver {
	s := NewSaver(appOrigin, &fakeOpener{win: win}, inbox, nil)
	s.ClosedCheckInterval = 5 * time.Millisecond
	return s
}

func TestSaver_IgnoresForeignOriginAndSaves(t *testing.T) {
	win := &fakeWindow{}
	inbox := make(chanInbox)
	s := newTestSaver(win, inbox)

	type outcome struct {
		res *SaverResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.Open(context.Background(), models.SaverPayloadData{Files: []models.SaverFile{{Filename: "a.txt"}}})
		done <- outcome{res, err}
	}()

	inbox <- Message{Origin: "https://evil.example.test", Event: models.SDKRelayEvent{Type: models.EventSaverReady}}
	require.Never(t, func() bool { return len(win.postedEvents()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	inbox <- Message{Origin: appOrigin, Event: models.SDKRelayEvent{Type: models.EventSaverReady}}
	require.Eventually(t, func() bool { return len(win.postedEvents()) == 1 }, time.Second, 5*time.Millisecond)

	posted := win.postedEvents()[0]
	assert.Equal(t, models.EventSaverPayload, posted.Type)
	assert.JSONEq(t, `{"files":[{"filename":"a.txt"}]}`, string(posted.Data))
	win.mu.Lock()
	assert.Equal(t, []string{appOrigin}, win.target)
	win.mu.Unlock()

	inbox <- Message{Origin: appOrigin, Event: models.SDKRelayEvent{
		Type: models.EventItemSaved,
		Data: json.RawMessage(`{"item":{"id":"saved-1"}}`),
	}}

	select {
	case o := <-done:
		require.NoError(t, o.err)
		assert.Equal(t, ResultSaved, o.res.Type)
		require.NotNil(t, o.res.Item)
		assert.Equal(t, "saved-1", o.res.Item.ID)
		assert.True(t, win.Closed())
	case <-time.After(time.Second):
		t.Fatal("saver did not resolve")
	}
}

func TestSaver_IgnoresItemSavedBeforePayload(t *testing.T) {
	win := &fakeWindow{}
	inbox := make(chanInbox)
	s := newTestSaver(win, inbox)

	done := make(chan *SaverResult, 1)
	go func() {
		res, err := s.Open(context.Background(), models.SaverPayloadData{})
		assert.NoError(t, err)
		done <- res
	}()

	inbox <- Message{Origin: appOrigin, Event: models.SDKRelayEvent{
		Type: models.EventItemSaved,
		Data: json.RawMessage(`{"item":{"id":"early"}}`),
	}}
	require.Never(t, func() bool { return len(done) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.False(t, win.Closed())

	inbox <- Message{Origin: appOrigin, Event: models.SDKRelayEvent{Type: models.EventSaverReady}}
	inbox <- Message{Origin: appOrigin, Event: models.SDKRelayEvent{
		Type: models.EventItemSaved,
		Data: json.RawMessage(`{"item":{"id":"late"}}`),
	}}

	select {
	case res := <-done:
		assert.Equal(t, ResultSaved, res.Type)
		require.NotNil(t, res.Item)
		assert.Equal(t, "late", res.Item.ID)
	case <-time.After(time.Second):
		t.Fatal("saver did not resolve")
	}
}

func TestSaver_ClosedPopupCancels(t *testing.T) {
	win := &fakeWindow{}
	s := newTestSaver(win, make(chanInbox))

	time.AfterFunc(30*time.Millisecond, func() { win.closed.Store(true) })

	res, err := s.Open(context.Background(), models.SaverPayloadData{})
	require.NoError(t, err)
	assert.Equal(t, ResultCancelled, res.Type)
	assert.Empty(t, win.postedEvents())
}

func TestSaver_ContextCancel(t *testing.T) {
	win := &fakeWindow{}
	s := newTestSaver(win, make(chanInbox))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := s.Open(ctx, models.SaverPayloadData{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, win.Closed())
}
