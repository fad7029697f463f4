package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suitenumerique/drive-sub001/internal/client/driver"
	"github.com/suitenumerique/drive-sub001/internal/client/transport"
	"github.com/suitenumerique/drive-sub001/internal/common"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unauthorized is neutral", &transport.APIError{Status: 401}, ""},
		{"forbidden is neutral", fmt.Errorf("wrapped: %w", &transport.APIError{Status: 403}), ""},
		{"usage", usageError("cd <folder-id>"), "usage: cd <folder-id>"},
		{"timeout", &transport.TimeoutError{Message: "too slow", Timeout: time.Second}, "too slow"},
		{"cancelled", fmt.Errorf("x: %w", context.Canceled), "Cancelled."},
		{"app error", common.NewAppError("no upload policy", common.ErrUnexpectedState), "Error: no upload policy"},
		{"api error with data", &transport.APIError{Status: 400, Data: map[string]any{"title": "required"}}, "The server refused the request (400): map[title:required]"},
		{"api error without data", &transport.APIError{Status: 500}, "The server refused the request (500)."},
		{"plain", errors.New("boom"), "Error: boom"},
		{
			"batch",
			&driver.BatchError{ID: "b", Index: 1, Err: &transport.APIError{Status: 404}},
			"Stopped at b (item 2): The server refused the request (404).",
		},
		{"batch stopped by redirect", &driver.BatchError{ID: "b", Err: &transport.APIError{Status: 401}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeError(tt.err))
		})
	}
}

func TestDescribeError_UploadHints(t *testing.T) {
	tests := []struct {
		name     string
		err      *common.UploadError
		contains string
	}{
		{
			"reinitiate names the item",
			&common.UploadError{Kind: common.UploadPutFailed, NextAction: common.ActionReinitiate, ItemID: "it-1"},
			"reupload it-1 <path>",
		},
		{
			"contact admin",
			&common.UploadError{Kind: common.UploadCreateFailed, NextAction: common.ActionContactAdmin},
			"contact your administrator",
		},
		{
			"finalize retry",
			&common.UploadError{Kind: common.UploadFinalizeFailed, NextAction: common.ActionRetry, ItemID: "it-2"},
			"could not be confirmed (item it-2). Run: finalize it-2",
		},
		{
			"timeout retry",
			&common.UploadError{Kind: common.UploadTimeout, NextAction: common.ActionRetry},
			"took too long",
		},
		{
			"put retry with message",
			&common.UploadError{Kind: common.UploadPutFailed, NextAction: common.ActionRetry, Message: "storage is unavailable"},
			"storage is unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, describeError(fmt.Errorf("upload: %w", tt.err)), tt.contains)
		})
	}

	t.Run("redirect during create is neutral", func(t *testing.T) {
		err := &common.UploadError{Kind: common.UploadCreateFailed, NextAction: common.ActionContactAdmin, Err: &transport.APIError{Status: 401}}
		assert.Equal(t, "", describeError(err))
	})
}
