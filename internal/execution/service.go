package execution

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gitlab.com/codearena-2026.net/internal/core/ports/primary"
	"gitlab.com/codearena-2026.net/internal/core/ports/secondary"
	"gitlab.com/codearena-2026.net/internal/domain"
	"gitlab.com/codearena-2026.net/internal/languages"
)

// Config holds the execution service tunables
type Config struct {
	MaxConcurrent   int
	QueueTimeout    time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
	// FallbackEnabled retries failed remote executions against the sandbox
	FallbackEnabled bool
}

// Service orchestrates executions: it validates language support, admits
// requests through the bounded queue, tries the remote judge first and falls
// back to the local sandbox when the remote path fails.
type Service struct {
	remote  secondary.RemoteJudge
	sandbox secondary.SandboxRunner
	queue   *Queue
	cfg     Config
	logger  primary.Logger
}

// NewService creates a new execution service. The remote judge and sandbox are
// injected so callers and tests control both backends.
func NewService(remote secondary.RemoteJudge, sandbox secondary.SandboxRunner, cfg Config, listener Listener, logger primary.Logger) *Service {
	s := &Service{
		remote:  remote,
		sandbox: sandbox,
		cfg:     cfg,
		logger:  logger,
	}
	s.queue = NewQueue(cfg.MaxConcurrent, cfg.QueueTimeout, s.ExecuteRequest, listener, logger)
	return s
}

// SubmitExecution runs a request through the queue and blocks until its
// terminal result. Unsupported languages are rejected before queuing.
func (s *Service) SubmitExecution(ctx context.Context, req *domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	if !languages.IsSupported(req.Language) {
		return nil, fmt.Errorf("language '%s' is not supported", req.Language)
	}

	s.logger.Info("Submitting execution",
		"requestId", req.ID,
		"language", req.Language,
		"userId", req.UserID)

	return s.queue.Add(ctx, req)
}

// ExecuteRequest is the queue's execution callback: remote judge first, then
// the sandbox when fallback is enabled
func (s *Service) ExecuteRequest(ctx context.Context, req *domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	lang, err := languages.Get(req.Language)
	if err != nil {
		return nil, err
	}

	result, remoteErr := s.executeRemote(ctx, req, lang)
	if remoteErr == nil {
		return result, nil
	}

	if !s.cfg.FallbackEnabled {
		return nil, remoteErr
	}

	s.logger.Warn("Remote judge failed, falling back to sandbox",
		"requestId", req.ID,
		"error", remoteErr)

	return s.sandbox.Execute(ctx, req, lang)
}

// executeRemote submits to the remote judge and polls until a terminal verdict
// or the attempt cap. A verdict still in flight after the cap counts as a
// remote failure.
func (s *Service) executeRemote(ctx context.Context, req *domain.ExecutionRequest, lang *domain.SupportedLanguage) (*domain.ExecutionResult, error) {
	token, err := s.remote.CreateSubmission(ctx, req, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote submission: %w", err)
	}

	for attempt := 0; attempt < s.cfg.MaxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.cfg.PollInterval):
		}

		result, err := s.remote.GetSubmission(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("failed to poll remote submission: %w", err)
		}

		if result.Status.IsTerminal() {
			result.RequestID = req.ID
			return result, nil
		}
	}

	return nil, fmt.Errorf("remote verdict still pending after %d poll attempts", s.cfg.MaxPollAttempts)
}

// ValidateTestCases runs code against each test case as an independent
// execution request and reports per-case outcomes. A single case failing with
// a system error does not abort the remaining cases.
func (s *Service) ValidateTestCases(ctx context.Context, code, language string, testCases []domain.TestCase, timeLimitSec, memoryLimitMB int) (*domain.ValidationReport, error) {
	if !languages.IsSupported(language) {
		return nil, fmt.Errorf("language '%s' is not supported", language)
	}

	report := &domain.ValidationReport{
		Total:   len(testCases),
		Results: make([]domain.TestCaseResult, len(testCases)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)

	for i, tc := range testCases {
		i, tc := i, tc
		g.Go(func() error {
			req := domain.NewExecutionRequest("", code, language)
			req.Input = tc.Input
			req.ExpectedOutput = tc.ExpectedOutput
			req.TimeLimitSec = timeLimitSec
			req.MemoryLimitMB = memoryLimitMB

			result, err := s.queue.Add(ctx, req)
			if err != nil {
				report.Results[i] = domain.TestCaseResult{
					Index:        i,
					Status:       domain.StatusSystemError,
					ErrorMessage: err.Error(),
				}
				return nil
			}

			report.Results[i] = domain.TestCaseResult{
				Index:        i,
				Passed:       result.Status == domain.StatusAccepted,
				Status:       result.Status,
				ActualOutput: result.Output,
				ErrorMessage: result.ErrorMessage,
				RuntimeMs:    result.RuntimeMs,
				MemoryKB:     result.MemoryKB,
			}
			return nil
		})
	}

	// Workers never return errors; Wait only orders the writes above
	_ = g.Wait()

	for _, r := range report.Results {
		if r.Passed {
			report.Passed++
		}
	}

	return report, nil
}

// QueueStats exposes the underlying queue's stats
func (s *Service) QueueStats() QueueStats {
	return s.queue.Stats()
}

// Shutdown rejects all pending work. In-flight executions finish on their own.
func (s *Service) Shutdown() {
	s.queue.Clear()
}
