// Package pipeline orchestrates the conversion of a remote URL into
// markdown: URL validation, DNS checks, bounded download, content
// type detection and the conversion itself, with every failure
// classified for the client.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	markitdown "github.com/nicholasgasior/markitdown-server"
	"github.com/nicholasgasior/markitdown-server/internal/convert"
	"github.com/nicholasgasior/markitdown-server/internal/fetch"
	"github.com/nicholasgasior/markitdown-server/internal/logger"
	"github.com/nicholasgasior/markitdown-server/internal/memguard"
	"github.com/nicholasgasior/markitdown-server/internal/metrics"
	"github.com/nicholasgasior/markitdown-server/internal/security"
)

// Stage names, logged as each request moves through the pipeline.
const (
	stageValidating    = "validating"
	stageResolving     = "resolving"
	stageDownloading   = "downloading"
	stageDetectingType = "detecting_type"
	stageConverting    = "converting"
)

// Outcome is the result of one pipeline run. Err is nil on success.
// FileType is the canonical dotted extension (".pdf"). FileSize is the
// downloaded byte count, reported even when a stage after the download
// fails.
type Outcome struct {
	Success        bool
	Markdown       string
	FileType       string
	Err            *Error
	ProcessingTime time.Duration
	FileSize       int64
}

// Fetcher downloads a validated URL into an artifact; implemented by
// fetch.Downloader.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL) (*fetch.Artifact, error)
}

// Pipeline wires the stages together. One Pipeline serves all
// requests concurrently.
type Pipeline struct {
	guard   *security.Guard
	fetcher Fetcher
	adapter *convert.Adapter
	mem     *memguard.Guard
	metrics *metrics.Metrics
	log     logger.Interface
}

// New builds a Pipeline. mem and m may be nil, disabling the memory
// guard and metrics respectively.
func New(guard *security.Guard, fetcher Fetcher, adapter *convert.Adapter, mem *memguard.Guard, m *metrics.Metrics, log logger.Interface) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{
		guard:   guard,
		fetcher: fetcher,
		adapter: adapter,
		mem:     mem,
		metrics: m,
		log:     log,
	}
}

// Run converts the document at rawURL to markdown. Policy rejections,
// oversized files, timeouts and converter failures all come back as a
// classified Outcome rather than an error; Run itself never fails.
func (p *Pipeline) Run(ctx context.Context, rawURL string) *Outcome {
	start := time.Now()
	if p.metrics != nil {
		p.metrics.InFlight.Inc()
		defer p.metrics.InFlight.Dec()
	}

	out := p.run(ctx, rawURL)
	out.ProcessingTime = time.Since(start)

	if out.Success {
		p.log.Info("conversion complete",
			"url", rawURL,
			"file_type", out.FileType,
			"file_size", out.FileSize,
			"duration", out.ProcessingTime,
		)
		if p.metrics != nil {
			p.metrics.ObserveOutcome("success", out.ProcessingTime.Seconds())
		}
	} else {
		p.log.Warn("conversion failed",
			"url", rawURL,
			"kind", string(out.Err.Kind),
			"reason", out.Err.Reason,
			"error", out.Err.Cause,
			"duration", out.ProcessingTime,
		)
		if p.metrics != nil {
			p.metrics.ObserveOutcome(string(out.Err.Kind), out.ProcessingTime.Seconds())
		}
	}
	return out
}

func (p *Pipeline) run(ctx context.Context, rawURL string) *Outcome {
	log := p.log.With("url", rawURL)

	log.Debug("pipeline stage", "stage", stageValidating)
	u, err := p.guard.Policy().ValidateURL(rawURL)
	if err != nil {
		return failed(classify(err))
	}

	log.Debug("pipeline stage", "stage", stageResolving)
	if _, err := p.guard.ResolveAndCheck(ctx, u.Hostname()); err != nil {
		return failed(classify(err))
	}

	var baseline uint64
	if p.mem != nil {
		baseline = p.mem.Baseline()
	}

	log.Debug("pipeline stage", "stage", stageDownloading)
	artifact, err := p.fetcher.Fetch(ctx, u)
	if err != nil {
		pe := classify(err)
		if pe.Kind == KindInternal {
			pe = failure(KindNetwork, "download failed", err)
		}
		return failed(pe)
	}
	defer artifact.Release()
	size := artifact.Size()
	if p.metrics != nil {
		p.metrics.DownloadedBytes.Observe(float64(size))
	}

	// From here on the failure outcome still reports the downloaded size.
	failedAfterDownload := func(pe *Error) *Outcome {
		out := failed(pe)
		out.FileSize = size
		return out
	}
	if err := p.checkMemory(baseline); err != nil {
		return failedAfterDownload(classify(err))
	}

	log.Debug("pipeline stage", "stage", stageDetectingType,
		"declared_type", artifact.DeclaredType, "size", size)
	f, err := artifact.Open()
	if err != nil {
		return failedAfterDownload(failure(KindInternal, "internal processing error", fmt.Errorf("open artifact: %w", err)))
	}
	defer f.Close()

	mime := markitdown.DetectMIME(f, "")
	ext, ok := markitdown.ExtensionForMIME(mime)
	if !ok && artifact.DeclaredType != "" {
		// Sniffing failed; fall back to what the origin claimed.
		mime = markitdown.BaseMIME(artifact.DeclaredType)
		ext, ok = markitdown.ExtensionForMIME(mime)
	}
	if !ok {
		return failedAfterDownload(failure(KindUnsupportedType,
			fmt.Sprintf("unsupported file type: %s", mime), nil))
	}
	if _, err := f.Seek(0, 0); err != nil {
		return failedAfterDownload(failure(KindInternal, "internal processing error", fmt.Errorf("seek artifact: %w", err)))
	}

	log.Debug("pipeline stage", "stage", stageConverting, "mime_type", mime, "extension", ext)
	result, err := p.adapter.Convert(ctx, f, markitdown.SourceInfo{
		MIMEType:  mime,
		Extension: ext,
		Filename:  u.Path,
	})
	if err != nil {
		return failedAfterDownload(classify(err))
	}
	if err := p.checkMemory(baseline); err != nil {
		return failedAfterDownload(classify(err))
	}
	if strings.TrimSpace(result.Markdown) == "" {
		return failedAfterDownload(failure(KindConversionFailed, "conversion produced no content", nil))
	}

	return &Outcome{
		Success:  true,
		Markdown: result.Markdown,
		FileType: ext,
		FileSize: size,
	}
}

func (p *Pipeline) checkMemory(baseline uint64) error {
	if p.mem == nil {
		return nil
	}
	return p.mem.Check(baseline)
}

func failed(err *Error) *Outcome {
	return &Outcome{Err: err}
}
