package fetch

import (
	"os"
	"sync"
)

// Artifact is a downloaded document spooled to a temp file. Callers
// must Release it when done; Release is safe to call more than once.
type Artifact struct {
	path string
	size int64

	// DeclaredType is the Content-Type header as sent by the origin,
	// with parameters stripped. It is advisory only; the pipeline
	// detects the real type from content.
	DeclaredType string

	releaseOnce sync.Once
	releaseErr  error
}

// NewArtifact wraps an already spooled file, for documents that did
// not come through the downloader. The caller transfers ownership of
// the file; Release removes it.
func NewArtifact(path string, size int64, declaredType string) *Artifact {
	return &Artifact{path: path, size: size, DeclaredType: declaredType}
}

// Path returns the location of the spooled file.
func (a *Artifact) Path() string { return a.path }

// Size returns the downloaded byte count.
func (a *Artifact) Size() int64 { return a.size }

// Open opens the spooled file for reading.
func (a *Artifact) Open() (*os.File, error) {
	return os.Open(a.path)
}

// Release removes the spooled file. Only the first call does work.
func (a *Artifact) Release() error {
	a.releaseOnce.Do(func() {
		a.releaseErr = os.Remove(a.path)
	})
	return a.releaseErr
}
