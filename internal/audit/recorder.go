package audit

import (
	"context"
	"sync"
	"time"

	"taskhub.org/internal/ids"
	"taskhub.org/internal/obs"
)

const (
	defaultQueueSize    = 256
	defaultAttempts     = 3
	defaultBackoff      = 100 * time.Millisecond
	defaultWriteTimeout = 5 * time.Second
)

// Recorder writes audit entries asynchronously. Record never blocks the
// mutation path: entries are queued and written by a background worker with
// bounded retries. A failed write is reported through the structured log and
// the audit_write_failures_total counter; the business mutation that produced
// the entry is never rolled back for it.
type Recorder struct {
	store Appender

	queue chan Entry
	wg    sync.WaitGroup

	now          func() time.Time
	newID        func() string
	attempts     int
	backoff      time.Duration
	writeTimeout time.Duration
}

// RecorderOption configures Recorder behavior.
type RecorderOption func(*Recorder)

// WithQueueSize overrides the queue capacity.
func WithQueueSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.queue = make(chan Entry, n)
		}
	}
}

// WithAttempts bounds the number of write attempts per entry.
func WithAttempts(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithBackoff sets the delay between write attempts.
func WithBackoff(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d >= 0 {
			r.backoff = d
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if fn != nil {
			r.now = fn
		}
	}
}

// NewRecorder constructs a Recorder and starts its worker.
func NewRecorder(store Appender, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:        store,
		queue:        make(chan Entry, defaultQueueSize),
		now:          time.Now,
		newID:        ids.New,
		attempts:     defaultAttempts,
		backoff:      defaultBackoff,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record enqueues one audit entry for a committed mutation. It must be called
// only after the mutation is durable. The returned entry reflects what was
// queued; persistence happens asynchronously. When the queue is full the
// entry is dropped and the loss is reported rather than delaying the caller.
func (r *Recorder) Record(ctx context.Context, actorID, action, detail string) Entry {
	entry := Entry{
		ID:        r.newID(),
		ActorID:   actorID,
		Action:    action,
		Detail:    detail,
		CreatedAt: r.now().UTC(),
	}
	select {
	case r.queue <- entry:
		obs.SetAuditQueueDepth(len(r.queue))
	default:
		obs.CountAuditWriteFailure()
		obs.Log("error", "audit queue full, entry dropped", map[string]any{
			"action":     action,
			"actor_id":   actorID,
			"request_id": RequestIDFromContext(ctx),
		})
	}
	return entry
}

// Close drains the queue and stops the worker.
func (r *Recorder) Close() {
	close(r.queue)
	r.wg.Wait()
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for entry := range r.queue {
		r.write(entry)
		obs.SetAuditQueueDepth(len(r.queue))
	}
}

func (r *Recorder) write(entry Entry) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 && r.backoff > 0 {
			time.Sleep(r.backoff << (attempt - 1))
		}
		// The request that produced the entry has already been answered;
		// writes run against a fresh context with their own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
		err := r.store.AppendAudit(ctx, &entry)
		cancel()
		if err == nil {
			return
		}
		lastErr = err
	}
	obs.CountAuditWriteFailure()
	obs.Log("error", "audit write failed", map[string]any{
		"entry_id": entry.ID,
		"action":   entry.Action,
		"actor_id": entry.ActorID,
		"attempts": r.attempts,
		"error":    lastErr.Error(),
	})
}
