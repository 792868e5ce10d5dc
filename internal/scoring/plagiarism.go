package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gitlab.com/codearena-2026.net/internal/core/ports/primary"
	"gitlab.com/codearena-2026.net/internal/core/ports/secondary"
	"gitlab.com/codearena-2026.net/internal/domain"
)

// PlagiarismThreshold is the similarity above which a prior submission is
// reported as a match
const PlagiarismThreshold = 0.7

// PlagiarismChecker compares new code against a problem's prior submissions
type PlagiarismChecker struct {
	submissions secondary.SubmissionRepository
	logger      primary.Logger
}

// NewPlagiarismChecker creates a new plagiarism checker
func NewPlagiarismChecker(submissions secondary.SubmissionRepository, logger primary.Logger) *PlagiarismChecker {
	return &PlagiarismChecker{
		submissions: submissions,
		logger:      logger,
	}
}

// CheckPlagiarism compares code against every other user's prior submissions
// for the (contest, problem) pair. The result's overall similarity is the
// maximum across matches above the threshold, zero when none qualify.
func (c *PlagiarismChecker) CheckPlagiarism(ctx context.Context, contestID, problemID uuid.UUID, code string, currentUserID uuid.UUID) (*domain.PlagiarismResult, error) {
	prior, err := c.submissions.ListByContestProblem(ctx, contestID, problemID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prior submissions: %w", err)
	}

	result := &domain.PlagiarismResult{Matches: []domain.PlagiarismMatch{}}

	for _, submission := range prior {
		if submission.UserID == currentUserID {
			continue
		}

		similarity := Similarity(code, submission.Code)
		if similarity < PlagiarismThreshold {
			continue
		}

		result.Matches = append(result.Matches, domain.PlagiarismMatch{
			UserID:     submission.UserID,
			UserName:   submission.UserName,
			Similarity: similarity,
		})
		if similarity > result.Similarity {
			result.Similarity = similarity
		}
	}

	if len(result.Matches) > 0 {
		c.logger.Warn("Plagiarism suspected",
			"contestId", contestID,
			"problemId", problemID,
			"userId", currentUserID,
			"similarity", result.Similarity,
			"matches", len(result.Matches))
	}

	return result, nil
}

// Similarity scores two code strings in [0,1]: byte-identical short-circuits
// to 1, otherwise the maximum of a diff-derived ratio and a bigram Dice
// coefficient.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	diff := diffSimilarity(a, b)
	dice := diceSimilarity(a, b)
	if diff > dice {
		return diff
	}
	return dice
}

// diffSimilarity is the unchanged share of a character diff: the common
// subsequence length over the total diff length
func diffSimilarity(a, b string) float64 {
	common := lcsLength(a, b)
	total := len(a) + len(b) - common
	if total == 0 {
		return 1
	}
	return float64(common) / float64(total)
}

// lcsLength computes the longest-common-subsequence length with a two-row
// table
func lcsLength(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// diceSimilarity is the Dice coefficient over character bigrams, whitespace
// collapsed so formatting changes alone do not hide copying
func diceSimilarity(a, b string) float64 {
	a = strings.Join(strings.Fields(a), " ")
	b = strings.Join(strings.Fields(b), " ")
	if len(a) < 2 || len(b) < 2 {
		if a == b {
			return 1
		}
		return 0
	}

	bigrams := make(map[string]int)
	for i := 0; i < len(a)-1; i++ {
		bigrams[a[i:i+2]]++
	}

	intersection := 0
	for i := 0; i < len(b)-1; i++ {
		pair := b[i : i+2]
		if bigrams[pair] > 0 {
			bigrams[pair]--
			intersection++
		}
	}

	return 2 * float64(intersection) / float64(len(a)-1+len(b)-1)
}
