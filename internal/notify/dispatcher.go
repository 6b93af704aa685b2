// Package notify delivers notifications asynchronously: producers enqueue, workers persist and publish.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"eventteams/internal/domain"
)

const deliverTimeout = 5 * time.Second

// Dispatcher is a domain.NotificationSink backed by a bounded queue and a worker pool.
// Notify never blocks: when the queue is full or the dispatcher is shut down the notification is dropped and logged.
type Dispatcher struct {
	repo      domain.NotificationRepository
	publisher domain.NotificationPublisher
	logger    *slog.Logger
	clock     domain.Clock
	workers   int

	queue  chan domain.NotificationInput
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

func NewDispatcher(repo domain.NotificationRepository, publisher domain.NotificationPublisher, logger *slog.Logger, clock domain.Clock, buffer, workers int) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		clock:     clock,
		workers:   workers,
		queue:     make(chan domain.NotificationInput, buffer),
	}
}

// Start launches the workers. It is safe to call more than once.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.run()
		}
	})
}

func (d *Dispatcher) Notify(ctx context.Context, in domain.NotificationInput) {
	if !in.Type.Valid() {
		d.logger.WarnContext(ctx, "notification dropped", "reason", "unknown type", "type", in.Type, "user_id", in.UserID)
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.WarnContext(ctx, "notification dropped", "reason", "dispatcher closed", "type", in.Type, "user_id", in.UserID)
		return
	}
	select {
	case d.queue <- in:
	default:
		d.logger.WarnContext(ctx, "notification dropped", "reason", "queue full", "type", in.Type, "user_id", in.UserID)
	}
}

// Shutdown stops accepting notifications and waits for the queue to drain or ctx to end.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	// Workers that were never started cannot drain the queue.
	d.Start()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return d.publisher.Close()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for in := range d.queue {
		d.deliver(in)
	}
}

func (d *Dispatcher) deliver(in domain.NotificationInput) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	n := &domain.Notification{
		UserID:     in.UserID,
		FromUserID: in.FromUserID,
		Type:       in.Type,
		Message:    in.Message,
		Link:       in.Link,
		CreatedAt:  d.clock.Now(),
	}
	if err := d.repo.Create(ctx, n); err != nil {
		d.logger.ErrorContext(ctx, "persist notification failed", "type", n.Type, "user_id", n.UserID, "err", err)
		return
	}
	if err := d.publisher.Publish(ctx, n); err != nil {
		d.logger.ErrorContext(ctx, "publish notification failed", "id", n.ID, "type", n.Type, "user_id", n.UserID, "err", err)
	}
}
