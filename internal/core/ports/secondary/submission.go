package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/codearena-2026.net/internal/domain"
)

// SubmissionRepository defines the persistence contract for submissions.
// Schema ownership lives outside this core.
type SubmissionRepository interface {
	// GetSubmission retrieves a submission by ID; (nil, nil) when absent
	GetSubmission(ctx context.Context, submissionID uuid.UUID) (*domain.Submission, error)

	// UpdateStatus transitions a submission's status
	UpdateStatus(ctx context.Context, submissionID uuid.UUID, status domain.ExecutionStatus) error

	// SaveResult persists status, score, runtime, memory, feedback and the
	// completion timestamp of a judged submission
	SaveResult(ctx context.Context, submission *domain.Submission) error

	// ListByContestProblem retrieves all submissions for a (contest, problem) pair
	ListByContestProblem(ctx context.Context, contestID, problemID uuid.UUID) ([]*domain.Submission, error)

	// ListTerminalByContestUser retrieves a user's submissions in a contest that
	// carry a terminal status
	ListTerminalByContestUser(ctx context.Context, contestID, userID uuid.UUID) ([]*domain.Submission, error)
}
