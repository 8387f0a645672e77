package printer

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one printer is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("printer pool closed")

// Pool hands out Printers, each with its own browser, so several documents
// can print at once. Printers are created lazily on first Acquire.
type Pool struct {
	size     int
	factory  func() *Printer
	printers []*Printer
	sem      chan *Printer
	mu       sync.Mutex
	created  int
	closed   bool
}

// NewPool creates a pool of at most n rod-backed printers.
func NewPool(n int, timeout time.Duration) *Pool {
	return NewPoolWith(n, func() *Printer { return NewRod(timeout) })
}

// NewPoolWith creates a pool that builds printers with factory.
func NewPoolWith(n int, factory func() *Printer) *Pool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	if factory == nil {
		panic("printer: nil factory")
	}
	return &Pool{
		size:     n,
		factory:  factory,
		printers: make([]*Printer, 0, n),
		sem:      make(chan *Printer, n),
	}
}

// Acquire gets a printer, creating one if the pool is not full yet.
// Blocks while all printers are in use, until ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Printer, error) {
	select {
	case pr, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return pr, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		pr := p.factory()

		p.mu.Lock()
		p.printers = append(p.printers, pr)
		closed := p.closed
		p.mu.Unlock()

		if closed {
			_ = pr.Close()
			return nil, ErrPoolClosed
		}
		return pr, nil
	}
	p.mu.Unlock()

	select {
	case pr, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return pr, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a printer to the pool. The channel holds one slot per
// printer, so the send never blocks while the lock is held.
func (p *Pool) Release(pr *Printer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.sem <- pr
	}
}

// Close shuts down every browser the pool started.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	printers := p.printers
	p.mu.Unlock()

	var errs []error
	for _, pr := range printers {
		if err := pr.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return p.size
}

// ResolvePoolSize returns workers when positive, otherwise half of
// GOMAXPROCS clamped to [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
