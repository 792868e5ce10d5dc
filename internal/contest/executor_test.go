package contest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"gitlab.com/codearena-2026.net/internal/domain"
	"gitlab.com/codearena-2026.net/internal/execution"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type memQueue struct {
	ch chan *domain.SubmissionMessage
}

func newMemQueue() *memQueue {
	return &memQueue{ch: make(chan *domain.SubmissionMessage, 16)}
}

func (q *memQueue) Push(ctx context.Context, msg *domain.SubmissionMessage) error {
	q.ch <- msg
	return nil
}

func (q *memQueue) Pop(ctx context.Context, timeout time.Duration) (*domain.SubmissionMessage, error) {
	select {
	case msg := <-q.ch:
		return msg, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type memSubmissions struct {
	mu       sync.Mutex
	statuses map[uuid.UUID][]domain.ExecutionStatus
	saved    map[uuid.UUID]*domain.Submission
	terminal []*domain.Submission

	updateStatusErr error
}

func newMemSubmissions() *memSubmissions {
	return &memSubmissions{
		statuses: make(map[uuid.UUID][]domain.ExecutionStatus),
		saved:    make(map[uuid.UUID]*domain.Submission),
	}
}

func (m *memSubmissions) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[id], nil
}

func (m *memSubmissions) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ExecutionStatus) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[id] = append(m.statuses[id], status)
	return nil
}

func (m *memSubmissions) SaveResult(ctx context.Context, s *domain.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[s.ID] = s
	m.statuses[s.ID] = append(m.statuses[s.ID], s.Status)
	if s.Status.IsTerminal() {
		m.terminal = append(m.terminal, s)
	}
	return nil
}

func (m *memSubmissions) ListByContestProblem(ctx context.Context, contestID, problemID uuid.UUID) ([]*domain.Submission, error) {
	return nil, nil
}

func (m *memSubmissions) ListTerminalByContestUser(ctx context.Context, contestID, userID uuid.UUID) ([]*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Submission, len(m.terminal))
	copy(out, m.terminal)
	return out, nil
}

func (m *memSubmissions) history(id uuid.UUID) []domain.ExecutionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ExecutionStatus(nil), m.statuses[id]...)
}

func (m *memSubmissions) result(id uuid.UUID) *domain.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[id]
}

type memProblems struct {
	problems map[uuid.UUID]*domain.Problem
}

func (m *memProblems) GetProblem(ctx context.Context, id uuid.UUID) (*domain.Problem, error) {
	return m.problems[id], nil
}

type memContests struct {
	contests map[uuid.UUID]*domain.Contest
}

func (m *memContests) GetContest(ctx context.Context, id uuid.UUID) (*domain.Contest, error) {
	return m.contests[id], nil
}

type memParticipants struct {
	mu     sync.Mutex
	scores map[string]int
}

func newMemParticipants() *memParticipants {
	return &memParticipants{scores: make(map[string]int)}
}

func (m *memParticipants) UpsertScore(ctx context.Context, contestID, userID uuid.UUID, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[contestID.String()+"/"+userID.String()] = score
	return nil
}

func (m *memParticipants) score(contestID, userID uuid.UUID) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[contestID.String()+"/"+userID.String()]
	return s, ok
}

type memEvents struct {
	mu     sync.Mutex
	events []*domain.StatusEvent
}

func (m *memEvents) PublishStatus(ctx context.Context, event *domain.StatusEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memEvents) last() *domain.StatusEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return nil
	}
	return m.events[len(m.events)-1]
}

// stubExecution passes every test case whose expected output the submitted
// code contains, so tests steer the verdict through the code string
type stubExecution struct {
	err error
}

func (s *stubExecution) ValidateTestCases(ctx context.Context, code, language string, testCases []domain.TestCase, timeLimitSec, memoryLimitMB int) (*domain.ValidationReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	report := &domain.ValidationReport{Total: len(testCases)}
	for i, tc := range testCases {
		r := domain.TestCaseResult{
			Index:     i,
			RuntimeMs: int64(10 * (i + 1)),
			MemoryKB:  int64(256 * (i + 1)),
		}
		if code == tc.ExpectedOutput || code == "*" {
			r.Passed = true
			r.Status = domain.StatusAccepted
			report.Passed++
		} else {
			r.Status = domain.StatusWrongAnswer
			r.ActualOutput = code
		}
		report.Results = append(report.Results, r)
	}
	return report, nil
}

func (s *stubExecution) QueueStats() execution.QueueStats {
	return execution.QueueStats{}
}

type fixture struct {
	queue        *memQueue
	execSvc      *stubExecution
	submissions  *memSubmissions
	problems     *memProblems
	contests     *memContests
	participants *memParticipants
	events       *memEvents
	executor     *Executor

	contestID uuid.UUID
	problemID uuid.UUID
	userID    uuid.UUID
}

func newFixture(t *testing.T, policy domain.ScoringPolicy) *fixture {
	t.Helper()

	f := &fixture{
		queue:        newMemQueue(),
		execSvc:      &stubExecution{},
		submissions:  newMemSubmissions(),
		participants: newMemParticipants(),
		events:       &memEvents{},
		contestID:    uuid.New(),
		problemID:    uuid.New(),
		userID:       uuid.New(),
	}
	f.problems = &memProblems{problems: map[uuid.UUID]*domain.Problem{
		f.problemID: {
			ID:         f.problemID,
			Title:      "Echo",
			Difficulty: domain.DifficultyEasy,
			Examples: []domain.TestCase{
				{Input: "a", ExpectedOutput: "ok"},
				{Input: "b", ExpectedOutput: "ok"},
			},
		},
	}}
	f.contests = &memContests{contests: map[uuid.UUID]*domain.Contest{
		f.contestID: {ID: f.contestID, Name: "weekly", ScoringPolicy: policy},
	}}

	f.executor = NewExecutor(
		f.queue, f.execSvc, f.submissions, f.problems, f.contests,
		f.participants, f.events,
		Config{PopTimeout: 20 * time.Millisecond},
		nopLogger{},
	)
	return f
}

func (f *fixture) submit(code string) uuid.UUID {
	id := uuid.New()
	f.queue.ch <- &domain.SubmissionMessage{
		SubmissionID: id,
		UserID:       f.userID,
		ProblemID:    f.problemID,
		ContestID:    f.contestID,
		Code:         code,
		Language:     "python",
	}
	return id
}

func (f *fixture) waitTerminal(t *testing.T, id uuid.UUID) *domain.Submission {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if s := f.submissions.result(id); s != nil && s.Status.IsTerminal() {
			return s
		}
		select {
		case <-deadline:
			t.Fatalf("submission %s never reached a terminal status", id)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestExecutorJudgesAcceptedSubmission(t *testing.T) {
	f := newFixture(t, domain.PolicyACM)
	f.executor.Start(context.Background())
	defer f.executor.Stop()

	id := f.submit("ok")
	result := f.waitTerminal(t, id)

	if result.Status != domain.StatusAccepted {
		t.Errorf("status = %s, want ACCEPTED", result.Status)
	}
	if result.Score != 1 {
		t.Errorf("score = %d, want 1 under ACM", result.Score)
	}
	if result.CompletedAt == nil {
		t.Error("completed timestamp not set")
	}
	if result.RuntimeMs == nil || *result.RuntimeMs != 20 {
		t.Errorf("runtime = %v, want the worst case of 20ms", result.RuntimeMs)
	}
	if result.MemoryKB == nil || *result.MemoryKB != 512 {
		t.Errorf("memory = %v, want the worst case of 512KB", result.MemoryKB)
	}

	history := f.submissions.history(id)
	if len(history) < 2 || history[0] != domain.StatusProcessing {
		t.Errorf("status history = %v, want PROCESSING before the verdict", history)
	}

	if score, ok := f.participants.score(f.contestID, f.userID); !ok || score != 1 {
		t.Errorf("participant score = %d (%v), want 1", score, ok)
	}

	event := f.events.last()
	if event == nil {
		t.Fatal("no status event published")
	}
	if event.SubmissionID != id || event.Status != domain.StatusAccepted || event.Score != 1 {
		t.Errorf("event = %+v, want accepted event for %s", event, id)
	}
	if event.RuntimeMs != 20 || event.MemoryKB != 512 {
		t.Errorf("event runtime/memory = %d/%d, want 20/512", event.RuntimeMs, event.MemoryKB)
	}
}

func TestExecutorJudgesWrongAnswerWithPartialFeedback(t *testing.T) {
	f := newFixture(t, domain.PolicyIOI)
	f.executor.Start(context.Background())
	defer f.executor.Stop()

	id := f.submit("nope")
	result := f.waitTerminal(t, id)

	if result.Status != domain.StatusWrongAnswer {
		t.Errorf("status = %s, want WRONG_ANSWER", result.Status)
	}
	if result.Score != 0 {
		t.Errorf("score = %d, want 0 when no cases pass", result.Score)
	}
	if result.Feedback == nil || *result.Feedback == "" {
		t.Error("a failed verdict must carry feedback")
	}
}

func TestExecutorAggregateGrowsAcrossProblems(t *testing.T) {
	f := newFixture(t, domain.PolicyACM)

	secondProblem := uuid.New()
	f.problems.problems[secondProblem] = &domain.Problem{
		ID:         secondProblem,
		Difficulty: domain.DifficultyHard,
		Examples:   []domain.TestCase{{Input: "x", ExpectedOutput: "ok"}},
	}

	f.executor.Start(context.Background())
	defer f.executor.Stop()

	first := f.submit("ok")
	f.waitTerminal(t, first)

	second := uuid.New()
	f.queue.ch <- &domain.SubmissionMessage{
		SubmissionID: second,
		UserID:       f.userID,
		ProblemID:    secondProblem,
		ContestID:    f.contestID,
		Code:         "ok",
		Language:     "python",
	}
	f.waitTerminal(t, second)

	if score, _ := f.participants.score(f.contestID, f.userID); score != 2 {
		t.Errorf("aggregate after two accepted problems = %d, want 2", score)
	}
}

func TestExecutorMissingProblemFailsOnlyThatSubmission(t *testing.T) {
	f := newFixture(t, domain.PolicyACM)
	f.executor.Start(context.Background())
	defer f.executor.Stop()

	orphan := uuid.New()
	f.queue.ch <- &domain.SubmissionMessage{
		SubmissionID: orphan,
		UserID:       f.userID,
		ProblemID:    uuid.New(),
		ContestID:    f.contestID,
		Code:         "ok",
		Language:     "python",
	}
	bad := f.waitTerminal(t, orphan)
	if bad.Status != domain.StatusSystemError {
		t.Errorf("status = %s, want SYSTEM_ERROR for an unknown problem", bad.Status)
	}
	if bad.Feedback == nil || *bad.Feedback == "" {
		t.Error("system error must carry diagnostic feedback")
	}

	// The loop keeps serving subsequent submissions
	good := f.submit("ok")
	if result := f.waitTerminal(t, good); result.Status != domain.StatusAccepted {
		t.Errorf("follow-up status = %s, want ACCEPTED", result.Status)
	}
}

func TestExecutorExecutionFailureIsContained(t *testing.T) {
	f := newFixture(t, domain.PolicyACM)
	f.execSvc.err = errors.New("backend unavailable")
	f.executor.Start(context.Background())
	defer f.executor.Stop()

	id := f.submit("ok")
	result := f.waitTerminal(t, id)

	if result.Status != domain.StatusSystemError {
		t.Errorf("status = %s, want SYSTEM_ERROR when execution fails", result.Status)
	}
	event := f.events.last()
	if event == nil || event.Status != domain.StatusSystemError {
		t.Errorf("event = %+v, want a SYSTEM_ERROR broadcast", event)
	}
}

func TestExecutorUnknownContestDefaultsToACM(t *testing.T) {
	f := newFixture(t, domain.PolicyIOI)
	f.executor.Start(context.Background())
	defer f.executor.Stop()

	id := uuid.New()
	f.queue.ch <- &domain.SubmissionMessage{
		SubmissionID: id,
		UserID:       f.userID,
		ProblemID:    f.problemID,
		ContestID:    uuid.New(),
		Code:         "ok",
		Language:     "python",
	}
	result := f.waitTerminal(t, id)

	if result.Status != domain.StatusAccepted {
		t.Fatalf("status = %s, want ACCEPTED", result.Status)
	}
	if result.Score != 1 {
		t.Errorf("score = %d, want the ACM default when the contest is unknown", result.Score)
	}
}

func TestExecutorStopDrains(t *testing.T) {
	f := newFixture(t, domain.PolicyACM)
	f.executor.Start(context.Background())

	id := f.submit("ok")
	f.waitTerminal(t, id)

	done := make(chan struct{})
	go func() {
		f.executor.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	// Stop is idempotent
	f.executor.Stop()
}
