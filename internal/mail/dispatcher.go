package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BruksfildServices01/storefront/internal/metrics"
)

const sendTimeout = 30 * time.Second

// Dispatcher queues messages for a single worker so requests never wait on SMTP.
type Dispatcher struct {
	mailer Mailer
	queue  chan Message
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(mailer Mailer, size int) *Dispatcher {
	d := &Dispatcher{
		mailer: mailer,
		queue:  make(chan Message, size),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.mailer.Send(ctx, msg); err != nil {
			slog.Error("mail send failed", "to", msg.To, "subject", msg.Subject, "error", err)
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.QueueDropped.WithLabelValues("mail").Inc()
		slog.Warn("mail queue closed, dropping message", "to", msg.To, "subject", msg.Subject)
		return
	}

	select {
	case d.queue <- msg:
	default:
		metrics.QueueDropped.WithLabelValues("mail").Inc()
		slog.Warn("mail queue full, dropping message", "to", msg.To, "subject", msg.Subject)
	}
}

// Close drains the queue and waits for the worker. Messages dispatched
// afterwards are dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Inline sends on the caller's goroutine. Tests and one-off commands use it.
type Inline struct {
	Mailer Mailer
}

func (i Inline) Dispatch(msg Message) {
	if err := i.Mailer.Send(context.Background(), msg); err != nil {
		slog.Error("mail send failed", "to", msg.To, "subject", msg.Subject, "error", err)
	}
}
