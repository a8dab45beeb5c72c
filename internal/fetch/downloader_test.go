package fetch

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicholasgasior/markitdown-server/internal/security"
)

type staticResolver struct{}

func (staticResolver) LookupIPAddr(_ context.Context, _ string) ([]net.IPAddr, error) {
	return []net.IPAddr{{IP: net.ParseIP("93.184.216.34")}}, nil
}

func testDownloader(t *testing.T, opts Options) *Downloader {
	t.Helper()
	if opts.MaxBytes == 0 {
		opts.MaxBytes = 1 << 20
	}
	if opts.DownloadTimeout == 0 {
		opts.DownloadTimeout = 5 * time.Second
	}
	if opts.MaxRedirects == 0 {
		opts.MaxRedirects = 10
	}
	opts.UserAgent = "MarkItDown-Service/1.0"
	guard := security.NewGuard(
		security.NewPolicy([]string{"http", "https"}, []int{80, 443, 8080, 8443}),
		staticResolver{},
	)
	return New(guard, opts, nil)
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestFetchSuccess(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	d := testDownloader(t, Options{})
	artifact, err := d.Fetch(context.Background(), mustParse(t, srv.URL))
	require.NoError(t, err)
	defer artifact.Release()

	assert.Equal(t, int64(len("hello world")), artifact.Size())
	assert.Equal(t, "text/plain", artifact.DeclaredType)
	assert.Equal(t, "MarkItDown-Service/1.0", gotUA)

	data, err := os.ReadFile(artifact.Path())
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestFetchSizeLimitStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No Content-Length: stream chunks past the cap.
		w.WriteHeader(http.StatusOK)
		chunk := make([]byte, 4096)
		for i := 0; i < 100; i++ {
			w.(http.Flusher).Flush()
			w.Write(chunk)
		}
	}))
	defer srv.Close()

	d := testDownloader(t, Options{MaxBytes: 16 * 1024})
	_, err := d.Fetch(context.Background(), mustParse(t, srv.URL))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestFetchSizeLimitContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "104857600")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := testDownloader(t, Options{MaxBytes: 1024})
	_, err := d.Fetch(context.Background(), mustParse(t, srv.URL))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestFetchRedirectToBlockedHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://169.254.169.254/latest/meta-data/", http.StatusFound)
	}))
	defer srv.Close()

	d := testDownloader(t, Options{})
	_, err := d.Fetch(context.Background(), mustParse(t, srv.URL))
	require.Error(t, err)
	var rb *RedirectBlockedError
	assert.ErrorAs(t, err, &rb)
}

func TestFetchRedirectToPrivateNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://192.168.1.10/secret", http.StatusMovedPermanently)
	}))
	defer srv.Close()

	d := testDownloader(t, Options{})
	_, err := d.Fetch(context.Background(), mustParse(t, srv.URL))
	var rb *RedirectBlockedError
	require.ErrorAs(t, err, &rb)
	assert.True(t, security.IsValidationError(rb.Err))
}

func TestFetchTooManyRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer srv.Close()

	// The hop cap trips before the redirect target is validated.
	d := testDownloader(t, Options{MaxRedirects: -1})
	_, err := d.Fetch(context.Background(), mustParse(t, srv.URL))
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d := testDownloader(t, Options{})
	_, err := d.Fetch(context.Background(), mustParse(t, srv.URL))
	var se *HTTPStatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestArtifactReleaseIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	d := testDownloader(t, Options{})
	artifact, err := d.Fetch(context.Background(), mustParse(t, srv.URL))
	require.NoError(t, err)

	require.NoError(t, artifact.Release())
	_, statErr := os.Stat(artifact.Path())
	assert.True(t, os.IsNotExist(statErr))

	// Second release must not fail on the missing file.
	assert.NoError(t, artifact.Release())
}
