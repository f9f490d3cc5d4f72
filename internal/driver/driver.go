// Package driver provides a software audio backend. It stands in for a
// hardware callback: a dedicated OS thread wakes once per block period and
// asks the engine to process the next block.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/vk/dawgraph/internal/ctxlog"
)

// Processor is the engine entry point the driver calls every period.
type Processor interface {
	Process(nframes int, position int64) error
}

// Locator is implemented by processors that want to hear about transport
// jumps.
type Locator interface {
	Locate()
}

// Config configures a Dummy driver.
type Config struct {
	SampleRate int
	BlockSize  int
}

// Period returns the wall-clock length of one block.
func (c Config) Period() time.Duration {
	return time.Duration(c.BlockSize) * time.Second / time.Duration(c.SampleRate)
}

// Dummy is a timer-driven backend.
type Dummy struct {
	proc Processor
	cfg  Config

	running  atomic.Bool
	position atomic.Int64
	locate   atomic.Int64
	jumped   atomic.Bool
	cycles   atomic.Uint64
	misses   atomic.Uint64
}

// New creates a driver calling proc.
func New(proc Processor, cfg Config) (*Dummy, error) {
	if cfg.SampleRate <= 0 || cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("invalid driver config: sample rate %d, block size %d", cfg.SampleRate, cfg.BlockSize)
	}
	return &Dummy{proc: proc, cfg: cfg}, nil
}

// Run drives the processor until ctx is done or Process fails. It occupies
// the calling goroutine, locked to its OS thread.
func (d *Dummy) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("driver is already running")
	}
	defer d.running.Store(false)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	logger := ctxlog.FromContext(ctx)
	period := d.cfg.Period()
	logger.Info("Driver started.", "period", period, "block_size", d.cfg.BlockSize, "sample_rate", d.cfg.SampleRate)

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Driver stopped.", "cycles", d.cycles.Load(), "misses", d.misses.Load())
			return nil
		case <-ticker.C:
		}

		if d.jumped.Swap(false) {
			d.position.Store(d.locate.Load())
			if l, ok := d.proc.(Locator); ok {
				l.Locate()
			}
		}

		start := time.Now()
		pos := d.position.Load()
		if err := d.proc.Process(d.cfg.BlockSize, pos); err != nil {
			return fmt.Errorf("cycle %d: %w", d.cycles.Load(), err)
		}
		if time.Since(start) > period {
			d.misses.Add(1)
		}
		d.position.Store(pos + int64(d.cfg.BlockSize))
		d.cycles.Add(1)
	}
}

// Locate moves the transport to position before the next cycle.
func (d *Dummy) Locate(position int64) {
	d.locate.Store(position)
	d.jumped.Store(true)
}

// Position returns the transport position of the next cycle.
func (d *Dummy) Position() int64 { return d.position.Load() }

// Cycles returns the number of completed cycles.
func (d *Dummy) Cycles() uint64 { return d.cycles.Load() }

// Misses returns the number of cycles that overran their period.
func (d *Dummy) Misses() uint64 { return d.misses.Load() }
