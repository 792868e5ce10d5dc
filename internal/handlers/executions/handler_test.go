package executions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/codearena-2026.net/internal/domain"
	"gitlab.com/codearena-2026.net/internal/execution"
	"gitlab.com/codearena-2026.net/internal/handlers"
)

const testSecret = "handler-test-secret"

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type fakeExecutionService struct {
	lastRequest *domain.ExecutionRequest
	result      *domain.ExecutionResult
	stats       execution.QueueStats
}

func (f *fakeExecutionService) SubmitExecution(ctx context.Context, req *domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	f.lastRequest = req
	result := *f.result
	result.RequestID = req.ID
	return &result, nil
}

func (f *fakeExecutionService) QueueStats() execution.QueueStats {
	return f.stats
}

type fakeContests struct {
	contest *domain.Contest
}

func (f *fakeContests) GetContest(ctx context.Context, id uuid.UUID) (*domain.Contest, error) {
	if f.contest != nil && f.contest.ID == id {
		return f.contest, nil
	}
	return nil, nil
}

func newRouter(svc *fakeExecutionService, contests *fakeContests) *mux.Router {
	r := mux.NewRouter()
	NewExecutionHandler(svc, contests, nopLogger{}).
		RegisterRoutes(r, handlers.NewMiddlewareProvider(testSecret))
	return r
}

func bearerToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + signed
}

func TestCreateExecutionReturnsTerminalVerdict(t *testing.T) {
	svc := &fakeExecutionService{result: &domain.ExecutionResult{
		Status:    domain.StatusAccepted,
		Output:    "42\n",
		RuntimeMs: 12,
	}}
	router := newRouter(svc, &fakeContests{})

	body, _ := json.Marshal(CreateExecutionRequest{
		Code:     "print(42)",
		Language: "python",
		Input:    "",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/executions", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, "user-7"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}

	var resp CreateExecutionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != domain.StatusAccepted {
		t.Errorf("status = %s, want ACCEPTED", resp.Status)
	}
	if resp.Output != "42\n" {
		t.Errorf("output = %q, want the execution output", resp.Output)
	}

	if svc.lastRequest == nil {
		t.Fatal("service never received the request")
	}
	if svc.lastRequest.UserID != "user-7" {
		t.Errorf("userId = %q, want the token subject", svc.lastRequest.UserID)
	}
}

func TestCreateExecutionRejectsMissingToken(t *testing.T) {
	svc := &fakeExecutionService{result: &domain.ExecutionResult{Status: domain.StatusAccepted}}
	router := newRouter(svc, &fakeContests{})

	body, _ := json.Marshal(CreateExecutionRequest{Code: "x", Language: "python"})
	req := httptest.NewRequest(http.MethodPost, "/api/executions", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
	if svc.lastRequest != nil {
		t.Error("unauthenticated request must never reach the service")
	}
}

func TestCreateExecutionValidatesBody(t *testing.T) {
	svc := &fakeExecutionService{result: &domain.ExecutionResult{Status: domain.StatusAccepted}}
	router := newRouter(svc, &fakeContests{})

	tests := []struct {
		name string
		body CreateExecutionRequest
	}{
		{"missing code", CreateExecutionRequest{Language: "python"}},
		{"missing language", CreateExecutionRequest{Code: "x"}},
		{"unsupported language", CreateExecutionRequest{Code: "x", Language: "cobol"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/executions", bytes.NewReader(body))
			req.Header.Set("Authorization", bearerToken(t, "user-7"))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestGetQueueStats(t *testing.T) {
	svc := &fakeExecutionService{
		result: &domain.ExecutionResult{Status: domain.StatusAccepted},
		stats:  execution.QueueStats{Pending: 3, Active: 2, MaxConcurrent: 5},
	}
	router := newRouter(svc, &fakeContests{})

	req := httptest.NewRequest(http.MethodGet, "/api/executions/queue/stats", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var stats execution.QueueStats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats != svc.stats {
		t.Errorf("stats = %+v, want %+v", stats, svc.stats)
	}
}

func TestGetLanguages(t *testing.T) {
	router := newRouter(&fakeExecutionService{result: &domain.ExecutionResult{}}, &fakeContests{})

	req := httptest.NewRequest(http.MethodGet, "/api/languages", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string][]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode languages: %v", err)
	}
	if len(resp["languages"]) == 0 {
		t.Error("language list is empty")
	}
}

func TestGetContestTimer(t *testing.T) {
	contestID := uuid.New()
	contests := &fakeContests{contest: &domain.Contest{
		ID:        contestID,
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
	}}
	router := newRouter(&fakeExecutionService{result: &domain.ExecutionResult{}}, contests)

	req := httptest.NewRequest(http.MethodGet, "/api/contests/"+contestID.String()+"/timer", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var resp ContestTimerResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode timer: %v", err)
	}
	if resp.Phase != domain.PhaseActive {
		t.Errorf("phase = %s, want ACTIVE", resp.Phase)
	}
	if resp.RemainingMs <= 0 {
		t.Error("remaining must be positive during an active contest")
	}
}

func TestGetContestTimerUnknownContest(t *testing.T) {
	router := newRouter(&fakeExecutionService{result: &domain.ExecutionResult{}}, &fakeContests{})

	req := httptest.NewRequest(http.MethodGet, "/api/contests/"+uuid.NewString()+"/timer", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
