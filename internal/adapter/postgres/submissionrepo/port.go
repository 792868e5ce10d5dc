// Package submissionrepo contains the PostgreSQL implementation of the
// submission persistence contract
package submissionrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/codearena-2026.net/internal/core/ports/primary"
	"gitlab.com/codearena-2026.net/internal/domain"
)

// SubmissionRepository implements the SubmissionRepository port with PostgreSQL
type SubmissionRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewSubmissionRepository creates a new PostgreSQL submission repository
func NewSubmissionRepository(db *sqlx.DB, logger primary.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

const submissionColumns = `
	s.id, s.user_id, u.user_name, s.problem_id, s.contest_id, s.code, s.language,
	s.status, s.score, s.runtime_ms, s.memory_kb, s.feedback, s.submitted_at, s.completed_at
`

// GetSubmission retrieves a submission from PostgreSQL by ID
func (r *SubmissionRepository) GetSubmission(ctx context.Context, submissionID uuid.UUID) (*domain.Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM submissions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1
	`, submissionColumns)

	var submission domain.Submission
	if err := r.db.GetContext(ctx, &submission, query, submissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get submission", "submissionId", submissionID, "error", err)
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return &submission, nil
}

// UpdateStatus transitions a submission's status
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, submissionID uuid.UUID, status domain.ExecutionStatus) error {
	query := `UPDATE submissions SET status = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, submissionID, status); err != nil {
		r.logger.Error("Failed to update submission status", "submissionId", submissionID, "error", err)
		return fmt.Errorf("failed to update submission status: %w", err)
	}

	return nil
}

// SaveResult persists the judged outcome onto the submission
func (r *SubmissionRepository) SaveResult(ctx context.Context, submission *domain.Submission) error {
	query := `
		UPDATE submissions SET
			status = $2,
			score = $3,
			runtime_ms = $4,
			memory_kb = $5,
			feedback = $6,
			completed_at = $7
		WHERE id = $1
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		submission.ID,
		submission.Status,
		submission.Score,
		submission.RuntimeMs,
		submission.MemoryKB,
		submission.Feedback,
		submission.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save submission result", "submissionId", submission.ID, "error", err)
		return fmt.Errorf("failed to save submission result: %w", err)
	}

	return nil
}

// ListByContestProblem retrieves all submissions for a (contest, problem) pair,
// oldest first
func (r *SubmissionRepository) ListByContestProblem(ctx context.Context, contestID, problemID uuid.UUID) ([]*domain.Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM submissions s
		JOIN users u ON u.id = s.user_id
		WHERE s.contest_id = $1 AND s.problem_id = $2
		ORDER BY s.submitted_at ASC
	`, submissionColumns)

	var submissions []*domain.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, contestID, problemID); err != nil {
		r.logger.Error("Failed to list submissions", "contestId", contestID, "problemId", problemID, "error", err)
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, nil
}

// ListTerminalByContestUser retrieves a user's terminally judged submissions in
// a contest
func (r *SubmissionRepository) ListTerminalByContestUser(ctx context.Context, contestID, userID uuid.UUID) ([]*domain.Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM submissions s
		JOIN users u ON u.id = s.user_id
		WHERE s.contest_id = $1
		  AND s.user_id = $2
		  AND s.status NOT IN ('PENDING', 'PROCESSING')
		ORDER BY s.submitted_at ASC
	`, submissionColumns)

	var submissions []*domain.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, contestID, userID); err != nil {
		r.logger.Error("Failed to list terminal submissions", "contestId", contestID, "userId", userID, "error", err)
		return nil, fmt.Errorf("failed to list terminal submissions: %w", err)
	}

	return submissions, nil
}
