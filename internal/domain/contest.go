package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScoringPolicy represents the rule set mapping an outcome to a contest score
type ScoringPolicy string

const (
	PolicyACM    ScoringPolicy = "ACM"
	PolicyIOI    ScoringPolicy = "IOI"
	PolicyCustom ScoringPolicy = "CUSTOM"
)

// Contest represents a contest as read from the persistence layer
type Contest struct {
	ID            uuid.UUID     `db:"id"`
	Name          string        `db:"name"`
	StartTime     time.Time     `db:"start_time"`
	EndTime       time.Time     `db:"end_time"`
	ScoringPolicy ScoringPolicy `db:"scoring_policy"`
}

// ContestParticipant holds the aggregate score for one (contest, user) pair
type ContestParticipant struct {
	ContestID uuid.UUID `db:"contest_id"`
	UserID    uuid.UUID `db:"user_id"`
	Score     int       `db:"score"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ContestPhase represents where a contest stands relative to the current time
type ContestPhase string

const (
	PhaseWaiting ContestPhase = "WAITING"
	PhaseActive  ContestPhase = "ACTIVE"
	PhaseEnded   ContestPhase = "ENDED"
)

// ContestTimer classifies the current instant against the contest boundaries.
// Remaining is the duration until the next phase boundary; zero once ended.
type ContestTimer struct {
	Phase     ContestPhase  `json:"phase"`
	Remaining time.Duration `json:"remainingMs"`
}
