package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/suitenumerique/drive-sub001/internal/client/driver"
	"github.com/suitenumerique/drive-sub001/internal/client/transport"
	"github.com/suitenumerique/drive-sub001/internal/common"
)

// usageError is returned by handlers called with the wrong arguments.
type usageError string

func (e usageError) Error() string { return "usage: " + string(e) }

// describeError renders err for the terminal. It returns "" for errors the
// user was already told about, like a 401/403 the transport redirected on.
func describeError(err error) string {
	if err == nil || transport.IsRedirecting(err) {
		return ""
	}

	var (
		usage    usageError
		uploadEr *common.UploadError
		batchEr  *driver.BatchError
		timeout  *transport.TimeoutError
		appEr    *common.AppError
		apiEr    *transport.APIError
	)
	switch {
	case errors.As(err, &usage):
		return usage.Error()

	case errors.As(err, &uploadEr):
		return uploadHint(uploadEr)

	case errors.As(err, &batchEr):
		inner := describeError(batchEr.Err)
		if inner == "" {
			return ""
		}
		return fmt.Sprintf("Stopped at %s (item %d): %s", batchEr.ID, batchEr.Index+1, inner)

	case errors.As(err, &timeout):
		return timeout.Message

	case errors.Is(err, context.Canceled):
		return "Cancelled."

	case errors.As(err, &appEr):
		return "Error: " + appEr.Message

	case errors.As(err, &apiEr):
		if apiEr.Data != nil {
			return fmt.Sprintf("The server refused the request (%d): %v", apiEr.Status, apiEr.Data)
		}
		return fmt.Sprintf("The server refused the request (%d).", apiEr.Status)
	}

	return "Error: " + err.Error()
}

// uploadHint tells the user which recovery the server state allows.
func uploadHint(e *common.UploadError) string {
	if transport.IsRedirecting(e.Err) {
		return ""
	}
	switch e.NextAction {
	case common.ActionReinitiate:
		return fmt.Sprintf("The upload link is no longer valid. Run: reupload %s <path>", e.ItemID)
	case common.ActionContactAdmin:
		return "The upload could not be started. Please contact your administrator."
	case common.ActionRetry:
		switch e.Kind {
		case common.UploadFinalizeFailed:
			return fmt.Sprintf("The file was sent but could not be confirmed (item %s). Run: finalize %s", e.ItemID, e.ItemID)
		case common.UploadTimeout:
			return "The upload took too long. Please try again."
		}
		if e.Message != "" {
			return fmt.Sprintf("The upload failed: %s. Please try again.", e.Message)
		}
		return "The upload failed. Please try again."
	}
	return "Error: " + e.Error()
}
