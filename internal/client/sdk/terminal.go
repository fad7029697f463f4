package sdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
)

var errNoMessaging = errors.New("sdk: printed windows cannot receive messages")

// PrintingOpener "opens" a popup by printing its address for the user to
// visit in a browser. It fits protocols that only need the relay, like the
// picker; the saver needs a real message channel.
type PrintingOpener struct {
	Out io.Writer
}

func (o PrintingOpener) Open(_ context.Context, url string) (Window, error) {
	if _, err := fmt.Fprintf(o.Out, "Open this address in your browser:\n  %s\n", url); err != nil {
		return nil, err
	}
	return &printedWindow{}, nil
}

// printedWindow is never closed by the user; only Close ends it.
type printedWindow struct {
	closed atomic.Bool
}

func (w *printedWindow) Closed() bool { return w.closed.Load() }

func (w *printedWindow) Close() { w.closed.Store(true) }

func (w *printedWindow) PostMessage(models.SDKRelayEvent, string) error { return errNoMessaging }
