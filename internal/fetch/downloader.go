package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/nicholasgasior/markitdown-server/internal/logger"
	"github.com/nicholasgasior/markitdown-server/internal/security"
)

const copyChunkSize = 8192

// Options configures a Downloader.
type Options struct {
	MaxBytes        int64
	DownloadTimeout time.Duration
	UserAgent       string
	MaxRedirects    int
	MaxConnections  int
	MaxIdlePerHost  int
}

// Downloader fetches validated URLs into temp-file artifacts. One
// Downloader with its pooled client is shared across all requests.
type Downloader struct {
	client  *http.Client
	guard   *security.Guard
	opts    Options
	tempDir string
	log     logger.Interface
}

// New builds a Downloader. Every redirect hop is re-validated against
// the guard before it is followed, so a chain cannot escape the policy
// by bouncing through an approved host.
func New(guard *security.Guard, opts Options, log logger.Interface) *Downloader {
	if log == nil {
		log = logger.NewNop()
	}
	d := &Downloader{
		guard:   guard,
		opts:    opts,
		tempDir: os.TempDir(),
		log:     log,
	}
	d.client = &http.Client{
		Transport: newTransport(opts.MaxConnections, opts.MaxIdlePerHost),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= opts.MaxRedirects {
				return ErrTooManyRedirects
			}
			if err := guard.CheckURL(req.Context(), req.URL.String()); err != nil {
				return &RedirectBlockedError{URL: req.URL.String(), Err: err}
			}
			return nil
		},
	}
	return d
}

// Close releases the client's idle connections.
func (d *Downloader) Close() {
	d.client.CloseIdleConnections()
}

// Fetch downloads u into a temp file. u must already have passed
// Guard.CheckURL; Fetch enforces the byte cap and the download
// timeout, and re-validates any redirects.
func (d *Downloader) Fetch(ctx context.Context, u *url.URL) (*Artifact, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", d.opts.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, unwrapClientError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	// Content-Length lets us refuse oversized documents before
	// reading a single body byte. Absent or lying headers are caught
	// by the streaming counter below.
	if resp.ContentLength > d.opts.MaxBytes {
		return nil, ErrFileTooLarge
	}

	tmp, err := os.CreateTemp(d.tempDir, "markitdown-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	size, err := d.spool(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close temp file: %w", closeErr)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	declared := resp.Header.Get("Content-Type")
	if declared != "" {
		if mt, _, perr := mime.ParseMediaType(declared); perr == nil {
			declared = mt
		}
	}

	d.log.Debug("download complete",
		"url", u.String(),
		"size", size,
		"declared_type", declared,
	)
	return &Artifact{path: tmp.Name(), size: size, DeclaredType: declared}, nil
}

// spool copies body to w in fixed-size chunks, failing as soon as the
// byte cap is crossed.
func (d *Downloader) spool(w io.Writer, body io.Reader) (int64, error) {
	var total int64
	buf := make([]byte, copyChunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > d.opts.MaxBytes {
				return total, ErrFileTooLarge
			}
			if _, werr := w.Write(buf[:n]); werr != nil {
				return total, fmt.Errorf("write temp file: %w", werr)
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("read response body: %w", err)
		}
	}
}

// unwrapClientError strips the url.Error envelope so redirect policy
// failures keep their types.
func unwrapClientError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		var rb *RedirectBlockedError
		if errors.As(ue.Err, &rb) {
			return rb
		}
		if errors.Is(ue.Err, ErrTooManyRedirects) {
			return ErrTooManyRedirects
		}
	}
	return err
}
