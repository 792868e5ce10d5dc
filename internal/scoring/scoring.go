// Package scoring holds the pure contest logic: scoring policies, plagiarism
// similarity and contest timers.
package scoring

import (
	"math"

	"gitlab.com/codearena-2026.net/internal/domain"
)

// customBase maps a problem difficulty tier to the CUSTOM policy's base score
var customBase = map[domain.Difficulty]int{
	domain.DifficultyEasy:   100,
	domain.DifficultyMedium: 200,
	domain.DifficultyHard:   300,
}

const defaultCustomBase = 100

// Outcome is what the scoring policies see of a judged submission
type Outcome struct {
	Status          domain.ExecutionStatus
	TestCasesPassed int
	// TestCasesTotal == 0 means partial counts are absent
	TestCasesTotal int
	Difficulty     domain.Difficulty
}

// CalculateContestScore maps a judged outcome to a contest score under the
// given policy. Unknown policies fall back to ACM semantics.
func CalculateContestScore(outcome Outcome, policy domain.ScoringPolicy) int {
	switch policy {
	case domain.PolicyIOI:
		return partialScore(outcome, 100)
	case domain.PolicyCustom:
		base, ok := customBase[outcome.Difficulty]
		if !ok {
			base = defaultCustomBase
		}
		return partialScore(outcome, base)
	default:
		// ACM and anything unrecognized: binary scoring
		if outcome.Status == domain.StatusAccepted {
			return 1
		}
		return 0
	}
}

// partialScore awards the full base for ACCEPTED and a rounded pass-ratio
// share of it otherwise, when partial counts are available
func partialScore(outcome Outcome, base int) int {
	if outcome.Status == domain.StatusAccepted {
		return base
	}
	if outcome.TestCasesTotal > 0 {
		ratio := float64(outcome.TestCasesPassed) / float64(outcome.TestCasesTotal)
		return int(math.Round(ratio * float64(base)))
	}
	return 0
}

// AggregateScore recomputes a participant's contest total from their
// terminally judged submissions. Under ACM it is the sum across ACCEPTED
// submissions; under partial-credit policies it is the sum over problems of
// the best score, so repeated attempts never double-count.
func AggregateScore(policy domain.ScoringPolicy, submissions []*domain.Submission) int {
	switch policy {
	case domain.PolicyIOI, domain.PolicyCustom:
		best := make(map[string]int)
		for _, s := range submissions {
			if !s.Status.IsTerminal() {
				continue
			}
			key := s.ProblemID.String()
			if s.Score > best[key] {
				best[key] = s.Score
			}
		}
		total := 0
		for _, score := range best {
			total += score
		}
		return total
	default:
		total := 0
		for _, s := range submissions {
			if s.Status == domain.StatusAccepted {
				total += s.Score
			}
		}
		return total
	}
}
