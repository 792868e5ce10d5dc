package executions

import (
	"github.com/google/uuid"

	"gitlab.com/codearena-2026.net/internal/domain"
)

// CreateExecutionRequest represents an execution intake request
type CreateExecutionRequest struct {
	Code           string `json:"code"`
	Language       string `json:"language"`
	Input          string `json:"input,omitempty"`
	ExpectedOutput string `json:"expectedOutput,omitempty"`
	TimeLimit      int    `json:"timeLimit,omitempty"`
	MemoryLimit    int    `json:"memoryLimit,omitempty"`
	ProblemID      string `json:"problemId,omitempty"`
	ContestID      string `json:"contestId,omitempty"`
}

// CreateExecutionResponse carries the terminal verdict back to the caller
type CreateExecutionResponse struct {
	ExecutionID  uuid.UUID              `json:"executionId"`
	Status       domain.ExecutionStatus `json:"status"`
	Output       string                 `json:"output,omitempty"`
	ErrorMessage string                 `json:"errorMessage,omitempty"`
	RuntimeMs    int64                  `json:"runtimeMs"`
	MemoryKB     int64                  `json:"memoryKb"`
}

// ContestTimerResponse reports the contest phase and time to the next boundary
type ContestTimerResponse struct {
	Phase       domain.ContestPhase `json:"phase"`
	RemainingMs int64               `json:"remainingMs"`
}
