package driver

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/client/timebounds"
	"github.com/suitenumerique/drive-sub001/internal/common"
	"github.com/suitenumerique/drive-sub001/internal/netx"
)

var errPutTimeout = errors.New("driver: storage upload deadline reached")

// CreateFile creates a placeholder item, uploads Content to storage and
// confirms the upload. onProgress may be nil.
func (d *StandardDriver) CreateFile(ctx context.Context, req CreateFileRequest, onProgress ProgressFunc) (*models.Item, error) {
	path := "items/"
	if req.ParentID != "" {
		path = itemPath(req.ParentID, "children")
	}
	body := map[string]string{"type": string(models.ItemTypeFile), "filename": req.Filename}

	var item models.Item
	if err := d.api.CallJSON(ctx, path, d.bounded(timebounds.UploadCreate, http.MethodPost, body), &item); err != nil {
		return nil, &common.UploadError{
			Kind:       common.UploadCreateFailed,
			NextAction: common.ActionContactAdmin,
			Message:    "could not create " + req.Filename,
			Err:        err,
		}
	}
	if item.Policy == nil {
		return nil, common.NewAppError("no upload policy", common.ErrUnexpectedState)
	}

	d.logger.Debug(ctx, "file placeholder created", "item_id", item.ID, "filename", req.Filename)
	return d.upload(ctx, &item, req.Content, req.Size, req.MimeType, onProgress)
}

// ReinitiateUpload asks for a fresh policy for an existing placeholder and
// runs the put and finalize phases again.
func (d *StandardDriver) ReinitiateUpload(ctx context.Context, req ReinitiateUploadRequest, onProgress ProgressFunc) (*models.Item, error) {
	var resp struct {
		Policy *models.UploadPolicy `json:"policy"`
	}
	if err := d.api.CallJSON(ctx, itemPath(req.ItemID, "upload-policy"), d.bounded(timebounds.UploadCreate, http.MethodPost, nil), &resp); err != nil {
		return nil, &common.UploadError{
			Kind:       common.UploadCreateFailed,
			NextAction: common.ActionContactAdmin,
			ItemID:     req.ItemID,
			Message:    "could not renew the upload policy",
			Err:        err,
		}
	}
	if resp.Policy == nil {
		return nil, common.NewAppError("no upload policy", common.ErrUnexpectedState)
	}

	item := &models.Item{ID: req.ItemID, Policy: resp.Policy}
	return d.upload(ctx, item, req.Content, req.Size, req.MimeType, onProgress)
}

func (d *StandardDriver) upload(ctx context.Context, item *models.Item, content io.Reader, size int64, mimeType string, onProgress ProgressFunc) (*models.Item, error) {
	target, err := item.Policy.TargetURL()
	if err != nil {
		return nil, common.NewAppError("invalid upload policy", errors.Join(common.ErrUnexpectedState, err))
	}

	report := func(int) {}
	if onProgress != nil {
		last := -1
		report = func(p int) {
			if p > 99 {
				p = 99
			}
			if p > last {
				last = p
				onProgress(p)
			}
		}
	}

	putCtx, cancel := ctx, context.CancelFunc(func() {})
	if fail := d.store.Bounds(timebounds.UploadPut).Fail; fail > 0 {
		putCtx, cancel = context.WithTimeoutCause(ctx, fail, errPutTimeout)
	}
	err = d.uploader.UploadToPresignedURL(putCtx, target, content, size, mimeType, netx.ProgressFunc(report))
	cause := context.Cause(putCtx)
	cancel()
	if err != nil {
		d.logger.Warn(ctx, "storage upload failed", "item_id", item.ID, "error", err)
		return nil, classifyPut(item.ID, err, cause)
	}

	if err := d.finalize(ctx, item); err != nil {
		return nil, err
	}
	if onProgress != nil {
		onProgress(100)
	}
	return item, nil
}

// FinalizeUpload confirms an upload whose bytes already reached storage.
// It is the recovery path for a finalize_failed error and never re-sends
// content.
func (d *StandardDriver) FinalizeUpload(ctx context.Context, itemID string) (*models.Item, error) {
	item := &models.Item{ID: itemID}
	if err := d.finalize(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// finalize posts upload-ended for item and decodes the answer over it.
func (d *StandardDriver) finalize(ctx context.Context, item *models.Item) error {
	id := item.ID
	if err := d.api.CallJSON(ctx, itemPath(id, "upload-ended"), d.bounded(timebounds.UploadFinalize, http.MethodPost, nil), item); err != nil {
		return &common.UploadError{
			Kind:       common.UploadFinalizeFailed,
			NextAction: common.ActionRetry,
			ItemID:     id,
			Message:    "could not confirm the upload",
			Err:        err,
		}
	}
	if item.ID == "" {
		item.ID = id
	}
	item.Policy = nil
	return nil
}

func classifyPut(itemID string, err, cause error) *common.UploadError {
	ue := &common.UploadError{
		Kind:       common.UploadPutFailed,
		NextAction: common.ActionRetry,
		ItemID:     itemID,
		Err:        err,
	}

	var se *netx.StatusError
	switch {
	case errors.As(err, &se) && (se.StatusCode == http.StatusBadRequest || se.StatusCode == http.StatusForbidden):
		ue.NextAction = common.ActionReinitiate
		ue.Message = "the upload policy has expired"
	case errors.As(err, &se) && se.StatusCode >= http.StatusInternalServerError:
		ue.Message = "storage is unavailable"
	case errors.Is(cause, errPutTimeout):
		ue.Kind = common.UploadTimeout
		ue.Message = "the upload took too long"
	}
	return ue
}
