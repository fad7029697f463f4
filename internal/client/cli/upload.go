package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/suitenumerique/drive-sub001/internal/client/driver"
	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/client/phase"
	"github.com/suitenumerique/drive-sub001/internal/client/timebounds"
	"github.com/suitenumerique/drive-sub001/internal/common"
)

const sniffLen = 512

var errIsDirectory = errors.New("is a directory")

// localFile is an opened file ready to be uploaded.
type localFile struct {
	*os.File
	Name     string
	Size     int64
	MimeType string
}

// openLocal opens path and detects its MIME type from the extension,
// falling back to content sniffing.
func openLocal(path string) (*localFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, errIsDirectory)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		buf := make([]byte, sniffLen)
		n, err := io.ReadFull(f, buf)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			f.Close()
			return nil, err
		}
		mimeType = http.DetectContentType(buf[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &localFile{File: f, Name: info.Name(), Size: info.Size(), MimeType: mimeType}, nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("upload <path>")
	}

	ent, err := a.driver.GetEntitlements(ctx)
	if err != nil {
		return err
	}
	if !ent.CanUpload.Result {
		msg := ent.CanUpload.Message
		if msg == "" {
			msg = "uploads are not allowed for this account"
		}
		return common.NewAppError(msg, nil)
	}

	lf, err := openLocal(args[0])
	if err != nil {
		return err
	}
	defer lf.Close()

	bar := newProgressBar(a.out, lf.Name)
	var item *models.Item
	err = a.trackUpload(func() error {
		item, err = a.driver.CreateFile(ctx, driver.CreateFileRequest{
			ParentID: a.currentFolderID(),
			Filename: lf.Name,
			MimeType: lf.MimeType,
			Size:     lf.Size,
			Content:  lf,
		}, bar.Update)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s (%s)\n", displayName(item), item.ID)
	return nil
}

func (a *App) Reupload(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("reupload <item-id> <path>")
	}

	lf, err := openLocal(args[1])
	if err != nil {
		return err
	}
	defer lf.Close()

	bar := newProgressBar(a.out, lf.Name)
	var item *models.Item
	err = a.trackUpload(func() error {
		item, err = a.driver.ReinitiateUpload(ctx, driver.ReinitiateUploadRequest{
			ItemID:   args[0],
			MimeType: lf.MimeType,
			Size:     lf.Size,
			Content:  lf,
		}, bar.Update)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s (%s)\n", displayName(item), item.ID)
	return nil
}

// Finalize confirms an upload whose content is already in storage, without
// sending it again.
func (a *App) Finalize(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("finalize <item-id>")
	}

	item, err := a.driver.FinalizeUpload(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s (%s)\n", displayName(item), item.ID)
	return nil
}

// trackUpload runs fn under a phase tracker so long transfers print a
// "still uploading" notice. The driver enforces the failure bound itself.
func (a *App) trackUpload(fn func() error) error {
	tracker := phase.NewTracker(a.store.Bounds(timebounds.UploadPut), phase.WithOnChange(func(p phase.Phase) {
		if p == phase.StillWorking {
			printlnFn("Still uploading...")
		}
	}))
	defer tracker.Stop()

	tracker.SetActive(true)
	defer tracker.SetActive(false)
	return fn()
}
