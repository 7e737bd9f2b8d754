package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher decouples event emission from sink latency. Events land in a
// buffered channel and a single worker goroutine feeds the sink, so a slow
// sink never stalls a login or refresh call. Disabled auditing is a nil
// *Dispatcher, which every method accepts.
type Dispatcher struct {
	sink       Sink
	dropIfFull bool

	mu     sync.RWMutex
	closed bool
	ch     chan Event

	worker  sync.WaitGroup
	dropped atomic.Uint64
}

// NewDispatcher starts the worker goroutine, or returns nil when auditing
// is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}

	d := &Dispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		ch:         make(chan Event, buffer),
	}

	d.worker.Add(1)
	go func() {
		defer d.worker.Done()
		for event := range d.ch {
			d.sink.Emit(context.Background(), event)
		}
	}()

	return d
}

// Emit queues an event for the sink. Under DropIfFull a saturated buffer
// discards the event and counts it; otherwise Emit waits for a free slot or
// for ctx to end. After Close, Emit is a no-op.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Holding the read lock keeps Close from closing the channel while a
	// send is in flight.
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropIfFull {
		select {
		case d.ch <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
	}
}

// Close stops intake and returns once the worker has drained the buffer
// into the sink. Close is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.ch)
	d.mu.Unlock()

	d.worker.Wait()
}

// Dropped reports how many events were discarded under DropIfFull.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
