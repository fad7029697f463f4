package cli

import (
	"context"
	"fmt"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/client/sdk"
)

// pickerPollInterval is a test seam for the relay polling period.
var pickerPollInterval = sdk.DefaultPollInterval

// Pick prints the explorer address and waits until the items selected there
// arrive through the relay.
func (a *App) Pick(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usageError("pick")
	}

	p := sdk.NewPicker(a.nav.appOrigin, sdk.PrintingOpener{Out: a.out}, a.driver, a.logger.With("component", "picker"))
	p.PollInterval = pickerPollInterval

	res, err := p.Open(ctx)
	if err != nil {
		return err
	}
	if res.Type != sdk.ResultPicked {
		fmt.Fprintln(a.out, "Nothing picked.")
		return nil
	}

	fmt.Fprintf(a.out, "Picked %d item(s):\n", len(res.Items))
	printItems(a.out, &models.PaginatedItems{Items: res.Items})
	return nil
}
