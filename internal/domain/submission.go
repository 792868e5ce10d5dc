package domain

import (
	"time"

	"github.com/google/uuid"
)

// Submission represents a contest submission persisted by the surrounding system.
// The judging core only mutates status, score, runtime, memory, feedback and the
// completion timestamp.
type Submission struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	UserName    string          `db:"user_name"`
	ProblemID   uuid.UUID       `db:"problem_id"`
	ContestID   *uuid.UUID      `db:"contest_id"`
	Code        string          `db:"code"`
	Language    string          `db:"language"`
	Status      ExecutionStatus `db:"status"`
	Score       int             `db:"score"`
	RuntimeMs   *int64          `db:"runtime_ms"`
	MemoryKB    *int64          `db:"memory_kb"`
	Feedback    *string         `db:"feedback"`
	SubmittedAt time.Time       `db:"submitted_at"`
	CompletedAt *time.Time      `db:"completed_at"`
}

// SubmissionMessage represents a submission descriptor carried on the work queue
type SubmissionMessage struct {
	SubmissionID uuid.UUID `json:"submissionId"`
	UserID       uuid.UUID `json:"userId"`
	ProblemID    uuid.UUID `json:"problemId"`
	ContestID    uuid.UUID `json:"contestId"`
	Code         string    `json:"code"`
	Language     string    `json:"language"`
}

// StatusEvent represents a processed-submission event published for live
// leaderboard consumers
type StatusEvent struct {
	ContestID    uuid.UUID       `json:"contestId"`
	SubmissionID uuid.UUID       `json:"submissionId"`
	Status       ExecutionStatus `json:"status"`
	Score        int             `json:"score"`
	RuntimeMs    int64           `json:"runtime"`
	MemoryKB     int64           `json:"memory"`
	Feedback     string          `json:"feedback,omitempty"`
}
