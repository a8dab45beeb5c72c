// Package memguard tracks the process resident set size so the
// pipeline can abort work that would exhaust memory. The check is a
// best-effort backstop: concurrent conversions share one RSS figure,
// so attribution is approximate by design of the measurement, not
// exact accounting.
package memguard

import (
	"errors"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrMemoryLimitExceeded is returned when process memory grew past
// the configured ceiling since the baseline was taken.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Guard snapshots RSS and compares later readings against a ceiling.
type Guard struct {
	proc    *process.Process
	maxRise uint64
}

// New builds a Guard watching the current process. maxRise is the
// allowed RSS growth in bytes between Baseline and Check.
func New(maxRise uint64) (*Guard, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open process handle: %w", err)
	}
	return &Guard{proc: proc, maxRise: maxRise}, nil
}

// RSS returns the current resident set size in bytes.
func (g *Guard) RSS() (uint64, error) {
	mi, err := g.proc.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("read memory info: %w", err)
	}
	return mi.RSS, nil
}

// Baseline takes an RSS snapshot to compare later readings against.
// Errors reading memory info are swallowed into a zero baseline so a
// broken procfs never blocks conversions.
func (g *Guard) Baseline() uint64 {
	rss, err := g.RSS()
	if err != nil {
		return 0
	}
	return rss
}

// Check returns ErrMemoryLimitExceeded when RSS grew more than the
// ceiling since baseline. A zero baseline disables the check for this
// call.
func (g *Guard) Check(baseline uint64) error {
	if baseline == 0 {
		return nil
	}
	rss, err := g.RSS()
	if err != nil {
		return nil
	}
	if rss > baseline && rss-baseline > g.maxRise {
		return fmt.Errorf("%w: grew %d bytes (limit %d)", ErrMemoryLimitExceeded, rss-baseline, g.maxRise)
	}
	return nil
}
