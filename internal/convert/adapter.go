// Package convert runs engine conversions under a deadline. The
// engine itself has no notion of cancellation, so the adapter runs it
// in a goroutine and abandons it when the deadline passes. An
// abandoned conversion keeps running until it finishes on its own;
// the memory guard upstream bounds the damage a runaway can do.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	markitdown "github.com/nicholasgasior/markitdown-server"
	"github.com/nicholasgasior/markitdown-server/internal/logger"
)

// ErrTimeout is returned when a conversion does not finish within the
// configured deadline.
var ErrTimeout = errors.New("conversion timed out")

// Adapter wraps an Engine with deadline and panic handling.
type Adapter struct {
	engine  *markitdown.Engine
	timeout time.Duration
	log     logger.Interface
}

// New builds an Adapter around engine with the given per-conversion
// timeout.
func New(engine *markitdown.Engine, timeout time.Duration, log logger.Interface) *Adapter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{engine: engine, timeout: timeout, log: log}
}

type outcome struct {
	result *markitdown.Result
	err    error
}

// Convert runs the engine on r with info, bounded by both ctx and the
// adapter timeout. Converter panics are turned into errors instead of
// taking the server down.
func (a *Adapter) Convert(ctx context.Context, r io.ReadSeeker, info markitdown.SourceInfo) (*markitdown.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- outcome{err: fmt.Errorf("converter panic: %v", rec)}
			}
		}()
		result, err := a.engine.ConvertReader(r, info)
		ch <- outcome{result: result, err: err}
	}()

	select {
	case out := <-ch:
		return out.result, out.err
	case <-ctx.Done():
		a.log.Warn("conversion abandoned",
			"mime_type", info.MIMEType,
			"extension", info.Extension,
			"timeout", a.timeout,
		)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}
