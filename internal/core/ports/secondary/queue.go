package secondary

import (
	"context"
	"time"

	"gitlab.com/codearena-2026.net/internal/domain"
)

// SubmissionQueue is the external work queue the contest executor drains.
// Pop semantics must guarantee at-most-one consumer receives a given item.
type SubmissionQueue interface {
	// Push enqueues a submission descriptor
	Push(ctx context.Context, msg *domain.SubmissionMessage) error

	// Pop blocks for at most timeout and returns (nil, nil) when the queue is
	// empty for the whole window
	Pop(ctx context.Context, timeout time.Duration) (*domain.SubmissionMessage, error)
}

// StatusEventPublisher broadcasts processed-submission events to live
// leaderboard consumers
type StatusEventPublisher interface {
	PublishStatus(ctx context.Context, event *domain.StatusEvent) error
}
