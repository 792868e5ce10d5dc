package submissionqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/codearena-2026.net/internal/core/ports/primary"
	"gitlab.com/codearena-2026.net/internal/domain"
)

const (
	// submissionListKey is the work queue list; intake LPUSHes, executors BRPOP
	submissionListKey = "judge:submissions"
	// eventChannelPrefix scopes the status broadcast per contest
	eventChannelPrefix = "judge:contest:"
)

// Queue implements the SubmissionQueue and StatusEventPublisher ports with
// Redis. BRPOP gives the at-most-one-consumer pop semantics the contest
// executor relies on.
type Queue struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewQueue creates a new Redis submission queue
func NewQueue(redisClient *redis.Client, logger primary.Logger) *Queue {
	return &Queue{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Push enqueues a submission descriptor for the contest executors
func (q *Queue) Push(ctx context.Context, msg *domain.SubmissionMessage) error {
	msgJSON, err := json.Marshal(msg)
	if err != nil {
		q.logger.Error("Failed to marshal submission message", "error", err)
		return fmt.Errorf("failed to marshal submission message: %w", err)
	}

	if err := q.redisClient.LPush(ctx, submissionListKey, msgJSON).Err(); err != nil {
		q.logger.Error("Failed to push submission", "submissionId", msg.SubmissionID, "error", err)
		return fmt.Errorf("failed to push submission: %w", err)
	}

	return nil
}

// Pop blocks for at most timeout waiting for a submission; (nil, nil) when the
// queue stayed empty
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*domain.SubmissionMessage, error) {
	values, err := q.redisClient.BRPop(ctx, timeout, submissionListKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop submission: %w", err)
	}

	// BRPOP returns [key, value]
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(values))
	}

	var msg domain.SubmissionMessage
	if err := json.Unmarshal([]byte(values[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submission message: %w", err)
	}

	return &msg, nil
}

// PublishStatus broadcasts a processed-submission event on the contest's
// channel for live leaderboard consumers
func (q *Queue) PublishStatus(ctx context.Context, event *domain.StatusEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		q.logger.Error("Failed to marshal status event", "error", err)
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	channel := fmt.Sprintf("%s%s:events", eventChannelPrefix, event.ContestID)
	if err := q.redisClient.Publish(ctx, channel, eventJSON).Err(); err != nil {
		q.logger.Error("Failed to publish status event", "submissionId", event.SubmissionID, "error", err)
		return fmt.Errorf("failed to publish status event: %w", err)
	}

	return nil
}
