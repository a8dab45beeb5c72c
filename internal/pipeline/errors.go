package pipeline

import (
	"errors"
	"fmt"

	markitdown "github.com/nicholasgasior/markitdown-server"
	"github.com/nicholasgasior/markitdown-server/internal/convert"
	"github.com/nicholasgasior/markitdown-server/internal/fetch"
	"github.com/nicholasgasior/markitdown-server/internal/memguard"
	"github.com/nicholasgasior/markitdown-server/internal/security"
)

// Kind classifies pipeline failures for clients and metrics.
type Kind string

const (
	KindSecurityValidation Kind = "security_validation"
	KindNetwork            Kind = "network"
	KindSizeLimit          Kind = "size_limit_exceeded"
	KindUnsupportedType    Kind = "unsupported_file_type"
	KindConversionTimeout  Kind = "conversion_timeout"
	KindConversionFailed   Kind = "conversion_failed"
	KindMemoryLimit        Kind = "memory_limit_exceeded"
	KindInternal           Kind = "internal"
)

// Error is a classified pipeline failure. Reason is written for
// clients; Cause keeps the underlying error for logs.
type Error struct {
	Kind   Kind
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

func failure(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Cause: cause}
}

// classify maps raw errors from the stages into client-facing kinds.
func classify(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	var ve *security.ValidationError
	if errors.As(err, &ve) {
		return failure(KindSecurityValidation, ve.Reason, err)
	}
	var rb *fetch.RedirectBlockedError
	if errors.As(err, &rb) {
		return failure(KindSecurityValidation, rb.Error(), err)
	}
	if errors.Is(err, fetch.ErrFileTooLarge) {
		return failure(KindSizeLimit, "file exceeds maximum allowed size", err)
	}
	if errors.Is(err, fetch.ErrTooManyRedirects) {
		return failure(KindNetwork, "too many redirects", err)
	}
	var se *fetch.HTTPStatusError
	if errors.As(err, &se) {
		return failure(KindNetwork, se.Error(), err)
	}
	if errors.Is(err, convert.ErrTimeout) {
		return failure(KindConversionTimeout, "conversion timed out", err)
	}
	if errors.Is(err, memguard.ErrMemoryLimitExceeded) {
		return failure(KindMemoryLimit, "memory limit exceeded during processing", err)
	}
	var ue *markitdown.UnsupportedFormatError
	if errors.As(err, &ue) {
		return failure(KindUnsupportedType, ue.Error(), err)
	}
	var ce *markitdown.ConversionError
	if errors.As(err, &ce) {
		return failure(KindConversionFailed, "document conversion failed", err)
	}
	return failure(KindInternal, "internal processing error", err)
}
