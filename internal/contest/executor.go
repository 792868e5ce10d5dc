// Package contest contains the long-running worker that drains the submission
// work queue and judges each entry.
package contest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitlab.com/codearena-2026.net/internal/core/ports/primary"
	"gitlab.com/codearena-2026.net/internal/core/ports/secondary"
	"gitlab.com/codearena-2026.net/internal/domain"
	"gitlab.com/codearena-2026.net/internal/execution"
	"gitlab.com/codearena-2026.net/internal/scoring"
)

// ExecutionService is what the executor needs from the execution layer
type ExecutionService interface {
	ValidateTestCases(ctx context.Context, code, language string, testCases []domain.TestCase, timeLimitSec, memoryLimitMB int) (*domain.ValidationReport, error)
	QueueStats() execution.QueueStats
}

// Config holds the contest executor tunables
type Config struct {
	// PopTimeout bounds each blocking pop so the loop re-checks for shutdown
	PopTimeout time.Duration
}

// Executor is a sequential consumer of the submission work queue. Submissions
// within one instance are judged one at a time; scale out by running more
// instances against the same queue.
type Executor struct {
	queue        secondary.SubmissionQueue
	executionSvc ExecutionService
	submissions  secondary.SubmissionRepository
	problems     secondary.ProblemRepository
	contests     secondary.ContestRepository
	participants secondary.ParticipantRepository
	events       secondary.StatusEventPublisher
	checker      *scoring.PlagiarismChecker
	cfg          Config
	logger       primary.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewExecutor creates a new contest executor
func NewExecutor(
	queue secondary.SubmissionQueue,
	executionSvc ExecutionService,
	submissions secondary.SubmissionRepository,
	problems secondary.ProblemRepository,
	contests secondary.ContestRepository,
	participants secondary.ParticipantRepository,
	events secondary.StatusEventPublisher,
	cfg Config,
	logger primary.Logger,
) *Executor {
	if cfg.PopTimeout == 0 {
		cfg.PopTimeout = 2 * time.Second
	}
	return &Executor{
		queue:        queue,
		executionSvc: executionSvc,
		submissions:  submissions,
		problems:     problems,
		contests:     contests,
		participants: participants,
		events:       events,
		checker:      scoring.NewPlagiarismChecker(submissions, logger),
		cfg:          cfg,
		logger:       logger,
	}
}

// Start launches the consume loop in its own goroutine
func (e *Executor) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})

	go func() {
		defer close(e.done)
		e.loop(ctx)
	}()

	e.logger.Info("Contest executor started", "popTimeout", e.cfg.PopTimeout)
}

// Stop cancels the loop and waits for it to drain. The in-flight submission,
// if any, finishes; pending ones stay on the external queue.
func (e *Executor) Stop() {
	e.once.Do(func() {
		if e.cancel != nil {
			e.cancel()
		}
		if e.done != nil {
			<-e.done
		}
		e.logger.Info("Contest executor stopped")
	})
}

// loop pops until the context ends. The pop timeout bounds how long an empty
// queue blocks one iteration, and the context is threaded into the pop so
// shutdown does not wait out a full poll window.
func (e *Executor) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := e.queue.Pop(ctx, e.cfg.PopTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.logger.Error("Failed to pop submission", "error", err)
			continue
		}
		if msg == nil {
			continue
		}

		e.process(ctx, msg)
	}
}

// process judges one submission end to end. Every failure is contained to the
// submission: it is marked SYSTEM_ERROR and the loop moves on.
func (e *Executor) process(ctx context.Context, msg *domain.SubmissionMessage) {
	e.logger.Info("Processing submission",
		"submissionId", msg.SubmissionID,
		"contestId", msg.ContestID,
		"problemId", msg.ProblemID)

	if err := e.submissions.UpdateStatus(ctx, msg.SubmissionID, domain.StatusProcessing); err != nil {
		e.fail(ctx, msg, fmt.Errorf("failed to mark submission processing: %w", err))
		return
	}

	if err := e.judge(ctx, msg); err != nil {
		e.fail(ctx, msg, err)
	}
}

// judge runs the submission against the problem's example set, scores it,
// persists the outcome, refreshes the participant aggregate and broadcasts
// the status event
func (e *Executor) judge(ctx context.Context, msg *domain.SubmissionMessage) error {
	problem, err := e.problems.GetProblem(ctx, msg.ProblemID)
	if err != nil {
		return fmt.Errorf("failed to load problem: %w", err)
	}
	if problem == nil {
		return fmt.Errorf("problem %s not found", msg.ProblemID)
	}
	if len(problem.Examples) == 0 {
		return fmt.Errorf("problem %s has no example test cases", msg.ProblemID)
	}

	report, err := e.executionSvc.ValidateTestCases(ctx, msg.Code, msg.Language, problem.Examples, problem.TimeLimitSec, problem.MemoryLimitMB)
	if err != nil {
		return fmt.Errorf("failed to execute submission: %w", err)
	}

	status, feedback, runtimeMs, memoryKB := summarize(report)

	policy := domain.PolicyACM
	contest, err := e.contests.GetContest(ctx, msg.ContestID)
	if err != nil {
		return fmt.Errorf("failed to load contest: %w", err)
	}
	if contest != nil && contest.ScoringPolicy != "" {
		policy = contest.ScoringPolicy
	}

	score := scoring.CalculateContestScore(scoring.Outcome{
		Status:          status,
		TestCasesPassed: report.Passed,
		TestCasesTotal:  report.Total,
		Difficulty:      problem.Difficulty,
	}, policy)

	now := time.Now()
	submission := &domain.Submission{
		ID:          msg.SubmissionID,
		Status:      status,
		Score:       score,
		RuntimeMs:   &runtimeMs,
		MemoryKB:    &memoryKB,
		Feedback:    &feedback,
		CompletedAt: &now,
	}
	if err := e.submissions.SaveResult(ctx, submission); err != nil {
		return fmt.Errorf("failed to persist submission result: %w", err)
	}

	if err := e.updateAggregate(ctx, msg, policy); err != nil {
		return err
	}

	e.publish(ctx, msg, status, score, runtimeMs, memoryKB, feedback)

	if status == domain.StatusAccepted {
		e.screen(ctx, msg)
	}

	e.logger.Info("Submission judged",
		"submissionId", msg.SubmissionID,
		"status", status,
		"score", score,
		"passed", report.Passed,
		"total", report.Total)

	return nil
}

// updateAggregate recomputes the participant's total from persisted terminal
// submissions rather than incrementing, so the write is idempotent
func (e *Executor) updateAggregate(ctx context.Context, msg *domain.SubmissionMessage, policy domain.ScoringPolicy) error {
	judged, err := e.submissions.ListTerminalByContestUser(ctx, msg.ContestID, msg.UserID)
	if err != nil {
		return fmt.Errorf("failed to load judged submissions: %w", err)
	}

	total := scoring.AggregateScore(policy, judged)
	if err := e.participants.UpsertScore(ctx, msg.ContestID, msg.UserID, total); err != nil {
		return fmt.Errorf("failed to update participant score: %w", err)
	}

	return nil
}

// screen runs the accepted code against prior submissions for the same
// problem. Matches are surfaced for review, the verdict stands.
func (e *Executor) screen(ctx context.Context, msg *domain.SubmissionMessage) {
	if _, err := e.checker.CheckPlagiarism(ctx, msg.ContestID, msg.ProblemID, msg.Code, msg.UserID); err != nil {
		e.logger.Error("Plagiarism check failed", "submissionId", msg.SubmissionID, "error", err)
	}
}

// fail marks the submission SYSTEM_ERROR with the error as feedback. The loop
// itself never stops for a bad submission.
func (e *Executor) fail(ctx context.Context, msg *domain.SubmissionMessage, cause error) {
	e.logger.Error("Submission judging failed",
		"submissionId", msg.SubmissionID,
		"error", cause)

	feedback := cause.Error()
	now := time.Now()
	submission := &domain.Submission{
		ID:          msg.SubmissionID,
		Status:      domain.StatusSystemError,
		Feedback:    &feedback,
		CompletedAt: &now,
	}
	if err := e.submissions.SaveResult(ctx, submission); err != nil {
		e.logger.Error("Failed to record submission failure", "submissionId", msg.SubmissionID, "error", err)
	}

	e.publish(ctx, msg, domain.StatusSystemError, 0, 0, 0, feedback)
}

func (e *Executor) publish(ctx context.Context, msg *domain.SubmissionMessage, status domain.ExecutionStatus, score int, runtimeMs, memoryKB int64, feedback string) {
	event := &domain.StatusEvent{
		ContestID:    msg.ContestID,
		SubmissionID: msg.SubmissionID,
		Status:       status,
		Score:        score,
		RuntimeMs:    runtimeMs,
		MemoryKB:     memoryKB,
		Feedback:     feedback,
	}
	if err := e.events.PublishStatus(ctx, event); err != nil {
		e.logger.Error("Failed to publish status event", "submissionId", msg.SubmissionID, "error", err)
	}
}

// summarize derives the submission verdict from the per-case report: ACCEPTED
// only when every case passed, otherwise the first failing case's status.
// Feedback carries the first failing case's diagnostics; runtime and memory
// are the worst case observed.
func summarize(report *domain.ValidationReport) (domain.ExecutionStatus, string, int64, int64) {
	status := domain.StatusAccepted
	feedback := ""
	var runtimeMs, memoryKB int64

	for _, r := range report.Results {
		if r.RuntimeMs > runtimeMs {
			runtimeMs = r.RuntimeMs
		}
		if r.MemoryKB > memoryKB {
			memoryKB = r.MemoryKB
		}
		if r.Passed || status != domain.StatusAccepted {
			continue
		}
		status = r.Status
		if r.ErrorMessage != "" {
			feedback = r.ErrorMessage
		} else {
			feedback = fmt.Sprintf("failed on test case %d", r.Index+1)
		}
	}

	if status == domain.StatusAccepted {
		feedback = fmt.Sprintf("all %d test cases passed", report.Total)
	}
	return status, feedback, runtimeMs, memoryKB
}
