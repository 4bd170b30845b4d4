package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"linktrack/internal/conf"
	"linktrack/internal/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
)

const (
	defaultQueueSize    = 1024
	defaultWorkers      = 4
	defaultEventTimeout = 5 * time.Second
)

var _ transport.Server = (*Dispatcher)(nil)

// Dispatcher hands clicks from the redirect path to a fixed pool of workers
// through a bounded queue. Submit never blocks; a full queue drops the click.
// It runs as a kratos server so the app starts and drains it.
type Dispatcher struct {
	tracker      *TrackingService
	queue        chan ClickInput
	workers      int
	eventTimeout time.Duration
	metrics      *metrics.Metrics
	log          *log.Helper

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

func NewDispatcher(tracker *TrackingService, c *conf.Tracking, m *metrics.Metrics, logger log.Logger) *Dispatcher {
	queueSize, workers, timeout := defaultQueueSize, defaultWorkers, defaultEventTimeout
	if c != nil {
		if c.QueueSize > 0 {
			queueSize = c.QueueSize
		}
		if c.Workers > 0 {
			workers = c.Workers
		}
		if d := c.EventTimeout.AsDuration(); d > 0 {
			timeout = d
		}
	}
	return &Dispatcher{
		tracker:      tracker,
		queue:        make(chan ClickInput, queueSize),
		workers:      workers,
		eventTimeout: timeout,
		metrics:      m,
		log:          log.NewHelper(log.With(logger, "module", "usecase/dispatcher")),
	}
}

// Start launches the workers and returns immediately.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return errors.New("click dispatcher already started")
	}
	if d.stopped {
		return ErrDispatcherStopped
	}

	d.log.Infof("starting click dispatcher: workers=%d queue=%d", d.workers, cap(d.queue))
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.started = true
	return nil
}

// Stop refuses new clicks and waits for queued ones to be tracked, or for
// ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.started || d.stopped {
		d.stopped = true
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info("click dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.log.Warnf("click dispatcher stopped with %d clicks pending", len(d.queue))
		return fmt.Errorf("drain click queue: %w", ctx.Err())
	}
}

// Submit enqueues in without blocking.
func (d *Dispatcher) Submit(in ClickInput) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.started || d.stopped {
		d.metrics.RecordDispatch("rejected")
		return ErrDispatcherStopped
	}

	select {
	case d.queue <- in:
		d.metrics.RecordDispatch("queued")
		d.metrics.DispatchQueueDepth.Set(float64(len(d.queue)))
		return nil
	default:
		d.metrics.RecordDispatch("dropped")
		shortURI := ""
		if in.ShortURL != nil {
			shortURI = in.ShortURL.ShortURI
		}
		d.log.Errorf("click queue full, dropping click for %q", shortURI)
		return ErrQueueFull
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for in := range d.queue {
		d.metrics.DispatchQueueDepth.Set(float64(len(d.queue)))
		d.process(id, in)
	}
}

func (d *Dispatcher) process(worker int, in ClickInput) {
	ctx, cancel := context.WithTimeout(context.Background(), d.eventTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("click worker %d recovered from panic: %v", worker, r)
		}
	}()

	// TrackClick logs and counts its own failures.
	_ = d.tracker.TrackClick(ctx, in)
}
