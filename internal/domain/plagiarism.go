package domain

import "github.com/google/uuid"

// PlagiarismMatch represents one prior submission whose similarity exceeded the
// detection threshold
type PlagiarismMatch struct {
	UserID     uuid.UUID `json:"userId"`
	UserName   string    `json:"userName"`
	Similarity float64   `json:"similarity"`
}

// PlagiarismResult represents the outcome of a plagiarism check. Similarity is
// the maximum across all matches, in [0,1]; zero when no match exceeds the
// threshold.
type PlagiarismResult struct {
	Similarity float64           `json:"similarity"`
	Matches    []PlagiarismMatch `json:"matches"`
}
