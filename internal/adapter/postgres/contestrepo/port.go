// Package contestrepo contains the PostgreSQL read adapter for contests
package contestrepo

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

// ContestRepository implements the ContestRepository port with PostgreSQL
type ContestRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewContestRepository creates a new PostgreSQL contest repository
func NewContestRepository(db *sqlx.DB, logger primary.Logger) *ContestRepository {
	return &ContestRepository{
		db:     db,
		logger: logger,
	}
}

// GetContest retrieves a contest record (timer data and scoring policy) by ID
func (r *ContestRepository) GetContest(ctx context.Context, contestID uuid.UUID) (*domain.Contest, error) {
	query := `
		SELECT id, name, start_time, end_time, scoring_policy
		FROM contests
		WHERE id = $1
	`

	var contest domain.Contest
	if err := r.db.GetContext(ctx, &contest, query, contestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get contest", "contestId", contestID, "error", err)
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}

	return &contest, nil
}
