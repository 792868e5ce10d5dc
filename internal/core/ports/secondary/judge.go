package secondary

import (
	"context"

	"gitlab.com/codearena-2026.net/internal/domain"
)

// RemoteJudge is the adapter to the remote judging API
type RemoteJudge interface {
	// CreateSubmission posts code and constraints and returns an opaque token
	CreateSubmission(ctx context.Context, req *domain.ExecutionRequest, lang *domain.SupportedLanguage) (string, error)

	// GetSubmission fetches the current verdict for a token. Unknown remote
	// status codes map to SYSTEM_ERROR, never an error return.
	GetSubmission(ctx context.Context, token string) (*domain.ExecutionResult, error)
}

// SandboxRunner executes code in an isolated, resource-capped local environment.
// It always resolves to a terminal ExecutionResult; failures are classified,
// not propagated.
type SandboxRunner interface {
	Execute(ctx context.Context, req *domain.ExecutionRequest, lang *domain.SupportedLanguage) (*domain.ExecutionResult, error)
}
