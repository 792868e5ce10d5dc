package execution

import (
	"context"
	"errors"
	"sync"
	"time"

	"gitlab.com/codearena-2026.net/internal/core/ports/primary"
	"gitlab.com/codearena-2026.net/internal/domain"
)

var (
	// ErrQueueTimeout is returned when a request waited past its timeout for a
	// free execution slot. Such a request is never executed late.
	ErrQueueTimeout = errors.New("execution request timed out in queue")

	// ErrQueueCleared is returned for pending requests rejected by Clear
	ErrQueueCleared = errors.New("execution queue cleared")
)

// ExecuteFunc is the execution callback injected into the queue
type ExecuteFunc func(ctx context.Context, req *domain.ExecutionRequest) (*domain.ExecutionResult, error)

// Listener receives queue lifecycle signals for observability
type Listener interface {
	Queued(req *domain.ExecutionRequest)
	Started(req *domain.ExecutionRequest)
	Finished(req *domain.ExecutionRequest, result *domain.ExecutionResult, err error)
}

type noopListener struct{}

func (noopListener) Queued(*domain.ExecutionRequest)  {}
func (noopListener) Started(*domain.ExecutionRequest) {}
func (noopListener) Finished(*domain.ExecutionRequest, *domain.ExecutionResult, error) {
}

// QueueStats exposes the queue's operational state
type QueueStats struct {
	Pending       int `json:"pending"`
	Active        int `json:"active"`
	MaxConcurrent int `json:"maxConcurrent"`
}

type queueItem struct {
	req        *domain.ExecutionRequest
	enqueuedAt time.Time

	once   sync.Once
	done   chan struct{}
	result *domain.ExecutionResult
	err    error

	timer *time.Timer
}

func (it *queueItem) resolve(result *domain.ExecutionResult, err error) {
	it.once.Do(func() {
		it.result = result
		it.err = err
		if it.timer != nil {
			it.timer.Stop()
		}
		close(it.done)
	})
}

// Queue is a FIFO admission queue with a cap on simultaneously executing
// requests. Excess requests wait in order and expire after the configured
// timeout without ever executing.
type Queue struct {
	execute       ExecuteFunc
	maxConcurrent int
	timeout       time.Duration
	listener      Listener
	logger        primary.Logger

	mu      sync.Mutex
	pending []*queueItem
	active  int
}

// NewQueue creates a new execution queue around the injected execute callback
func NewQueue(maxConcurrent int, timeout time.Duration, execute ExecuteFunc, listener Listener, logger primary.Logger) *Queue {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if listener == nil {
		listener = noopListener{}
	}
	return &Queue{
		execute:       execute,
		maxConcurrent: maxConcurrent,
		timeout:       timeout,
		listener:      listener,
		logger:        logger,
	}
}

// Add enqueues a request and blocks until it resolves with a result, a queue
// error, or the caller's context ends. A request whose context ends before
// admission is removed from the queue without executing.
func (q *Queue) Add(ctx context.Context, req *domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	item := &queueItem{
		req:        req,
		enqueuedAt: time.Now(),
		done:       make(chan struct{}),
	}

	// Expire the item in place if it is still waiting when the timeout fires
	item.timer = time.AfterFunc(q.timeout, func() {
		q.expire(item)
	})

	q.mu.Lock()
	q.pending = append(q.pending, item)
	q.mu.Unlock()

	q.listener.Queued(req)
	q.logger.Debug("Execution request queued", "requestId", req.ID)
	q.dispatch()

	select {
	case <-item.done:
		return item.result, item.err
	case <-ctx.Done():
		q.remove(item)
		item.resolve(nil, ctx.Err())
		return nil, ctx.Err()
	}
}

// Stats returns queue length, active count and the configured concurrency cap
func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Pending:       len(q.pending),
		Active:        q.active,
		MaxConcurrent: q.maxConcurrent,
	}
}

// Clear rejects all pending requests immediately. In-flight executions are not
// interrupted.
func (q *Queue) Clear() {
	q.mu.Lock()
	cleared := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, item := range cleared {
		item.resolve(nil, ErrQueueCleared)
	}
	if len(cleared) > 0 {
		q.logger.Warn("Execution queue cleared", "rejected", len(cleared))
	}
}

// dispatch admits pending items while slots are free. Items that already waited
// past the timeout are rejected here instead of executed stale.
func (q *Queue) dispatch() {
	for {
		q.mu.Lock()
		if q.active >= q.maxConcurrent || len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		item := q.pending[0]
		q.pending = q.pending[1:]

		if time.Since(item.enqueuedAt) > q.timeout {
			q.mu.Unlock()
			item.resolve(nil, ErrQueueTimeout)
			continue
		}

		q.active++
		q.mu.Unlock()

		go q.run(item)
	}
}

func (q *Queue) run(item *queueItem) {
	q.listener.Started(item.req)

	result, err := q.execute(context.Background(), item.req)

	q.mu.Lock()
	q.active--
	q.mu.Unlock()

	item.resolve(result, err)
	q.listener.Finished(item.req, result, err)

	// A freed slot may admit the next waiter
	q.dispatch()
}

// expire rejects an item that is still pending when its timeout fires
func (q *Queue) expire(item *queueItem) {
	if q.remove(item) {
		item.resolve(nil, ErrQueueTimeout)
		q.logger.Warn("Execution request expired in queue", "requestId", item.req.ID)
	}
}

// remove takes an item out of the pending list; reports whether it was found
func (q *Queue) remove(item *queueItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, it := range q.pending {
		if it == item {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}
