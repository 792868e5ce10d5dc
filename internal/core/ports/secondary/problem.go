package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/codearena-2026.net/internal/domain"
)

// ProblemRepository defines read access to problems, including example test
// cases and the difficulty tier
type ProblemRepository interface {
	// GetProblem retrieves a problem by ID; (nil, nil) when absent
	GetProblem(ctx context.Context, problemID uuid.UUID) (*domain.Problem, error)
}
