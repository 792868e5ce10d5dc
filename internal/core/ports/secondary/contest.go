package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/codearena-2026.net/internal/domain"
)

// ContestRepository defines read access to contest records (timer data and
// scoring policy)
type ContestRepository interface {
	// GetContest retrieves a contest by ID; (nil, nil) when absent
	GetContest(ctx context.Context, contestID uuid.UUID) (*domain.Contest, error)
}

// ParticipantRepository defines the upsert-by-(contest,user) contract for
// aggregate scores
type ParticipantRepository interface {
	// UpsertScore writes the recomputed aggregate score for one participant
	UpsertScore(ctx context.Context, contestID, userID uuid.UUID, score int) error
}
