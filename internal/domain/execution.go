package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus represents the status of a code execution
type ExecutionStatus string

const (
	StatusPending             ExecutionStatus = "PENDING"
	StatusProcessing          ExecutionStatus = "PROCESSING"
	StatusAccepted            ExecutionStatus = "ACCEPTED"
	StatusWrongAnswer         ExecutionStatus = "WRONG_ANSWER"
	StatusTimeLimitExceeded   ExecutionStatus = "TIME_LIMIT_EXCEEDED"
	StatusMemoryLimitExceeded ExecutionStatus = "MEMORY_LIMIT_EXCEEDED"
	StatusRuntimeError        ExecutionStatus = "RUNTIME_ERROR"
	StatusCompilationError    ExecutionStatus = "COMPILATION_ERROR"
	StatusSystemError         ExecutionStatus = "SYSTEM_ERROR"
)

// IsTerminal reports whether the status is a final verdict
func (s ExecutionStatus) IsTerminal() bool {
	return s != StatusPending && s != StatusProcessing
}

// ExecutionRequest represents a request to execute code. It is immutable once created.
type ExecutionRequest struct {
	ID             uuid.UUID
	Code           string
	Language       string
	Input          string
	ExpectedOutput string
	// TimeLimitSec and MemoryLimitMB override the language defaults when non-zero
	TimeLimitSec  int
	MemoryLimitMB int
	UserID        string
	ProblemID     string
	ContestID     string
	CreatedAt     time.Time
}

// NewExecutionRequest creates a new execution request
func NewExecutionRequest(userID, code, language string) *ExecutionRequest {
	return &ExecutionRequest{
		ID:        uuid.New(),
		Code:      code,
		Language:  language,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}

// ExecutionResult represents the terminal outcome of one execution request
type ExecutionResult struct {
	RequestID    uuid.UUID
	Status       ExecutionStatus
	Output       string
	ErrorMessage string
	RuntimeMs    int64
	MemoryKB     int64
	CompletedAt  time.Time
}

// TestCaseResult represents the result of a single test case execution
type TestCaseResult struct {
	Index        int             `json:"index"`
	Passed       bool            `json:"passed"`
	Status       ExecutionStatus `json:"status"`
	ActualOutput string          `json:"actualOutput,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	RuntimeMs    int64           `json:"runtimeMs"`
	MemoryKB     int64           `json:"memoryKb"`
}

// ValidationReport represents the outcome of running code against a set of test cases
type ValidationReport struct {
	Passed  int              `json:"passed"`
	Total   int              `json:"total"`
	Results []TestCaseResult `json:"results"`
}
