package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Counter exposes a monotonically increasing count of completed requests.
// *runner.Runner satisfies it.
type Counter interface {
	Completed() int64
}

// ProgressReporter displays a live completion line for one target's run.
type ProgressReporter struct {
	label    string
	total    int
	counter  Counter
	writer   io.Writer
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	active   int32
}

// NewProgressReporter creates a reporter polling counter every interval.
func NewProgressReporter(label string, total int, counter Counter, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		label:    label,
		total:    total,
		counter:  counter,
		writer:   writer,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts updates and blocks until the display goroutine has printed the
// final count and exited. Safe to call more than once.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprintf(p.writer, "\r%s: %d/%d completed", p.label, p.counter.Completed(), p.total)
		case <-p.done:
			fmt.Fprintf(p.writer, "\r%s: %d/%d completed\n", p.label, p.counter.Completed(), p.total)
			return
		}
	}
}
