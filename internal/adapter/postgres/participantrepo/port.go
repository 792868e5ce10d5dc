// Package participantrepo contains the PostgreSQL adapter for contest
// participant aggregate scores
package participantrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/codearena-2026.net/internal/core/ports/primary"
)

// ParticipantRepository implements the ParticipantRepository port with
// PostgreSQL
type ParticipantRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewParticipantRepository creates a new PostgreSQL participant repository
func NewParticipantRepository(db *sqlx.DB, logger primary.Logger) *ParticipantRepository {
	return &ParticipantRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertScore writes the recomputed aggregate score for one (contest, user)
// pair. The full recomputation makes the write idempotent, so concurrent
// executors racing on the same participant converge on the same value.
func (r *ParticipantRepository) UpsertScore(ctx context.Context, contestID, userID uuid.UUID, score int) error {
	query := `
		INSERT INTO contest_participants (contest_id, user_id, score, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (contest_id, user_id) DO UPDATE SET
			score = EXCLUDED.score,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, contestID, userID, score, time.Now()); err != nil {
		r.logger.Error("Failed to upsert participant score", "contestId", contestID, "userId", userID, "error", err)
		return fmt.Errorf("failed to upsert participant score: %w", err)
	}

	return nil
}
