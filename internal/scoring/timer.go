package scoring

import (
	"errors"
	"time"

	"gitlab.com/codearena-2026.net/internal/domain"
)

// ErrTimerNotInitialized is returned when a contest has no usable start/end
// timestamps. Callers must initialize a contest's timer before querying it.
var ErrTimerNotInitialized = errors.New("contest timer not initialized")

// ContestTimer classifies now against the contest boundaries and returns the
// time remaining until the next phase change
func ContestTimer(contest *domain.Contest, now time.Time) (*domain.ContestTimer, error) {
	if contest == nil || contest.StartTime.IsZero() || contest.EndTime.IsZero() {
		return nil, ErrTimerNotInitialized
	}

	switch {
	case now.Before(contest.StartTime):
		return &domain.ContestTimer{
			Phase:     domain.PhaseWaiting,
			Remaining: contest.StartTime.Sub(now),
		}, nil
	case now.Before(contest.EndTime):
		return &domain.ContestTimer{
			Phase:     domain.PhaseActive,
			Remaining: contest.EndTime.Sub(now),
		}, nil
	default:
		return &domain.ContestTimer{Phase: domain.PhaseEnded}, nil
	}
}
