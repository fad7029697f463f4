// Package netx uploads file bodies straight to object storage through
// presigned URLs.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/suitenumerique/drive-sub001/internal/common"
)

// StorageACL is the canned ACL sent with every presigned PUT.
const StorageACL = "private"

// ProgressFunc receives an upload percentage in [0, 99].
type ProgressFunc func(percent int)

// StatusError is a non-2xx response from the storage endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload failed: %d %s; body: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Uploader PUTs bodies to presigned URLs.
type Uploader struct {
	client *http.Client
}

// NewUploader returns an Uploader using hc, or http.DefaultClient when nil.
// The storage endpoint lives on another origin, so hc should not carry the
// API cookie jar.
func NewUploader(hc *http.Client) *Uploader {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Uploader{client: hc}
}

// UploadToPresignedURL sends body with a PUT to url. size is used for
// Content-Length and progress; when size <= 0 no progress is reported.
// The percentage never reaches 100: callers report completion themselves
// once the upload has been confirmed to the API.
func (u *Uploader) UploadToPresignedURL(ctx context.Context, url string, body io.Reader, size int64, contentType string, onProgress ProgressFunc) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var r io.Reader = body
	if onProgress != nil && size > 0 {
		r = &progressReader{r: body, total: size, report: onProgress}
		onProgress(0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, r)
	if err != nil {
		return err
	}
	if size > 0 {
		req.ContentLength = size
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(common.StorageACLHeaderName, StorageACL)

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// UploadToPresignedURL uses a default Uploader.
func UploadToPresignedURL(ctx context.Context, url string, body io.Reader, size int64, contentType string, onProgress ProgressFunc) error {
	return NewUploader(nil).UploadToPresignedURL(ctx, url, body, size, contentType, onProgress)
}

type progressReader struct {
	mu     sync.Mutex
	r      io.Reader
	total  int64
	sent   int64
	last   int
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)

	p.mu.Lock()
	p.sent += int64(n)
	pct := int(p.sent * 100 / p.total)
	if pct > 99 {
		pct = 99
	}
	changed := pct > p.last
	if changed {
		p.last = pct
	}
	p.mu.Unlock()

	if changed {
		p.report(pct)
	}
	return n, err
}
