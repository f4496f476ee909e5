package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/BruksfildServices01/storefront/internal/metrics"
)

type Event struct {
	UserID   *uint
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

// Recorder is what handlers and use cases depend on.
type Recorder interface {
	Dispatch(ev Event)
}

type Dispatcher struct {
	logger *Logger
	queue  chan Event
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(logger *Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		queue:  make(chan Event, 100),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		if err := d.logger.Log(context.Background(), ev); err != nil {
			slog.Error("audit write failed", "action", ev.Action, "entity", ev.Entity, "error", err)
		}
	}
}

// Dispatch never blocks; a full or closed queue drops the event.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.QueueDropped.WithLabelValues("audit").Inc()
		slog.Warn("audit queue closed, dropping event", "action", ev.Action)
		return
	}

	select {
	case d.queue <- ev:
	default:
		metrics.QueueDropped.WithLabelValues("audit").Inc()
		slog.Warn("audit queue full, dropping event", "action", ev.Action)
	}
}

// Close flushes pending events. Later events are dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Sync writes events inline. Tests use it to assert on audit rows.
type Sync struct {
	Logger *Logger
}

func (s Sync) Dispatch(ev Event) {
	if err := s.Logger.Log(context.Background(), ev); err != nil {
		slog.Error("audit write failed", "action", ev.Action, "error", err)
	}
}

func Ptr(id uint) *uint {
	return &id
}
