package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadError_ErrorsAs(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("create file: %w", &UploadError{
		Kind:       UploadPutFailed,
		NextAction: ActionRetry,
		ItemID:     "item-1",
		Err:        cause,
	})

	var ue *UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, UploadPutFailed, ue.Kind)
	assert.Equal(t, ActionRetry, ue.NextAction)
	assert.Equal(t, "item-1", ue.ItemID)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "put_failed")
	assert.Contains(t, err.Error(), "retry")
}

func TestAppError_Message(t *testing.T) {
	assert.Equal(t, "boom", (&AppError{Message: "boom"}).Error())

	err := NewAppError("no upload policy", ErrUnexpectedState)
	assert.ErrorIs(t, err, ErrUnexpectedState)
	assert.Equal(t, "no upload policy: unexpected server state", err.Error())
}
