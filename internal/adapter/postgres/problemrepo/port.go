// Package problemrepo contains the PostgreSQL read adapter for problems
package problemrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/codearena-2026.net/internal/core/ports/primary"
	"gitlab.com/codearena-2026.net/internal/domain"
)

// ProblemRepository implements the ProblemRepository port with PostgreSQL
type ProblemRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewProblemRepository creates a new PostgreSQL problem repository
func NewProblemRepository(db *sqlx.DB, logger primary.Logger) *ProblemRepository {
	return &ProblemRepository{
		db:     db,
		logger: logger,
	}
}

type problemRow struct {
	ID            uuid.UUID         `db:"id"`
	Title         string            `db:"title"`
	Difficulty    domain.Difficulty `db:"difficulty"`
	TimeLimitSec  int               `db:"time_limit_sec"`
	MemoryLimitMB int               `db:"memory_limit_mb"`
	Examples      []byte            `db:"examples"`
}

// GetProblem retrieves a problem by ID, decoding the JSONB example test cases
func (r *ProblemRepository) GetProblem(ctx context.Context, problemID uuid.UUID) (*domain.Problem, error) {
	query := `
		SELECT id, title, difficulty, time_limit_sec, memory_limit_mb, examples
		FROM problems
		WHERE id = $1
	`

	var row problemRow
	if err := r.db.GetContext(ctx, &row, query, problemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get problem", "problemId", problemID, "error", err)
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}

	problem := &domain.Problem{
		ID:            row.ID,
		Title:         row.Title,
		Difficulty:    row.Difficulty,
		TimeLimitSec:  row.TimeLimitSec,
		MemoryLimitMB: row.MemoryLimitMB,
	}

	if len(row.Examples) > 0 {
		if err := json.Unmarshal(row.Examples, &problem.Examples); err != nil {
			r.logger.Error("Failed to unmarshal problem examples", "problemId", problemID, "error", err)
			return nil, fmt.Errorf("failed to unmarshal problem examples: %w", err)
		}
	}

	return problem, nil
}
