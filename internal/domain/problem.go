package domain

import "github.com/google/uuid"

// Difficulty represents a problem difficulty tier
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Problem represents a contest problem as read from the persistence layer
type Problem struct {
	ID            uuid.UUID  `db:"id"`
	Title         string     `db:"title"`
	Difficulty    Difficulty `db:"difficulty"`
	TimeLimitSec  int        `db:"time_limit_sec"`
	MemoryLimitMB int        `db:"memory_limit_mb"`
	Examples      []TestCase
}
