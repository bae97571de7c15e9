package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	BufferSize int
	Logger     *slog.Logger
	Now        func() time.Time
}

// Dispatcher forwards events to a sink from a single background goroutine.
// Emit never blocks a request: when the buffer is full the event is dropped
// and counted.
type Dispatcher struct {
	sink   Sink
	ch     chan Event
	done   chan struct{}
	logger *slog.Logger
	now    func() time.Time

	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

var _ Sink = (*Dispatcher)(nil)

// NewDispatcher starts a dispatcher that delivers to sink.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	d := &Dispatcher{
		sink:   sink,
		ch:     make(chan Event, cfg.BufferSize),
		done:   make(chan struct{}),
		logger: cfg.Logger,
		now:    cfg.Now,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case e := <-d.ch:
			d.sink.Emit(context.Background(), e)
		case <-d.done:
			for {
				select {
				case e := <-d.ch:
					d.sink.Emit(context.Background(), e)
				default:
					return
				}
			}
		}
	}
}

// Emit queues the event for delivery.
func (d *Dispatcher) Emit(_ context.Context, e Event) {
	if d == nil || d.closed.Load() {
		return
	}
	e = e.Normalize(d.now())
	select {
	case d.ch <- e:
	default:
		if n := d.dropped.Add(1); n == 1 || n%100 == 0 {
			d.logger.Warn("security event buffer full, dropping events",
				"event_type", string(e.EventType),
				"dropped_total", n,
			)
		}
	}
}

// Close stops accepting events and drains the queue.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the buffer was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
