package executions

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/codearena-2026.net/internal/core/ports/primary"
	"gitlab.com/codearena-2026.net/internal/core/ports/secondary"
	"gitlab.com/codearena-2026.net/internal/domain"
	"gitlab.com/codearena-2026.net/internal/execution"
	"gitlab.com/codearena-2026.net/internal/handlers"
	"gitlab.com/codearena-2026.net/internal/handlers/response"
	"gitlab.com/codearena-2026.net/internal/languages"
	"gitlab.com/codearena-2026.net/internal/scoring"
)

// IExecutionService is the execution surface the handler depends on
type IExecutionService interface {
	SubmitExecution(ctx context.Context, req *domain.ExecutionRequest) (*domain.ExecutionResult, error)
	QueueStats() execution.QueueStats
}

// ExecutionHandler handles code execution API requests
type ExecutionHandler struct {
	executionService IExecutionService
	contests         secondary.ContestRepository
	logger           primary.Logger
}

var _ IExecutionService = (*execution.Service)(nil)

// NewExecutionHandler creates a new execution handler
func NewExecutionHandler(executionService IExecutionService, contests secondary.ContestRepository, logger primary.Logger) *ExecutionHandler {
	return &ExecutionHandler{
		executionService: executionService,
		contests:         contests,
		logger:           logger,
	}
}

// RegisterRoutes registers the API routes for ExecutionHandler
func (h *ExecutionHandler) RegisterRoutes(router *mux.Router, mw *handlers.MiddlewareProvider) {
	router.Handle("/api/executions", mw.JWTMiddleware(http.HandlerFunc(h.CreateExecution))).Methods("POST")
	router.HandleFunc("/api/executions/queue/stats", h.GetQueueStats).Methods("GET")
	router.HandleFunc("/api/languages", h.GetLanguages).Methods("GET")
	router.HandleFunc("/api/contests/{contestId}/timer", h.GetContestTimer).Methods("GET")
}

// CreateExecution handles execution requests and answers with the terminal
// verdict once the queue resolves it
func (h *ExecutionHandler) CreateExecution(w http.ResponseWriter, r *http.Request) {
	var req CreateExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	if req.Code == "" || req.Language == "" {
		response.WriteError(w, response.ErrorMessage{Message: "code and language are required", StatusCode: http.StatusBadRequest})
		return
	}
	if !languages.IsSupported(req.Language) {
		response.WriteError(w, response.ErrorMessage{Message: "unsupported language", StatusCode: http.StatusBadRequest})
		return
	}

	userID, _ := handlers.UserIDFromContext(r.Context())

	execReq := domain.NewExecutionRequest(userID, req.Code, req.Language)
	execReq.Input = req.Input
	execReq.ExpectedOutput = req.ExpectedOutput
	execReq.TimeLimitSec = req.TimeLimit
	execReq.MemoryLimitMB = req.MemoryLimit
	execReq.ProblemID = req.ProblemID
	execReq.ContestID = req.ContestID

	result, err := h.executionService.SubmitExecution(r.Context(), execReq)
	if err != nil {
		h.logger.Error("Failed to execute request", "requestId", execReq.ID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to execute request", StatusCode: http.StatusInternalServerError})
		return
	}

	resp := CreateExecutionResponse{
		ExecutionID:  execReq.ID,
		Status:       result.Status,
		Output:       result.Output,
		ErrorMessage: result.ErrorMessage,
		RuntimeMs:    result.RuntimeMs,
		MemoryKB:     result.MemoryKB,
	}
	response.WriteStatus(w, http.StatusAccepted, resp)
}

// GetQueueStats handles queue stats retrieval requests
func (h *ExecutionHandler) GetQueueStats(w http.ResponseWriter, r *http.Request) {
	response.WriteSuccess(w, h.executionService.QueueStats())
}

// GetLanguages handles supported language listing requests
func (h *ExecutionHandler) GetLanguages(w http.ResponseWriter, r *http.Request) {
	response.WriteSuccess(w, map[string][]string{"languages": languages.Names()})
}

// GetContestTimer handles contest timer retrieval requests
func (h *ExecutionHandler) GetContestTimer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	contestIDStr := vars["contestId"]

	contestID, err := uuid.Parse(contestIDStr)
	if err != nil {
		h.logger.Error("Invalid contest ID", "id", contestIDStr)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid contest ID", StatusCode: http.StatusBadRequest})
		return
	}

	contest, err := h.contests.GetContest(r.Context(), contestID)
	if err != nil {
		h.logger.Error("Failed to get contest", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get contest", StatusCode: http.StatusInternalServerError})
		return
	}
	if contest == nil {
		response.WriteError(w, response.ErrorMessage{Message: "Contest not found", StatusCode: http.StatusNotFound})
		return
	}

	timer, err := scoring.ContestTimer(contest, time.Now())
	if err != nil {
		h.logger.Error("Contest timer unavailable", "contestId", contestID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Contest timer unavailable", StatusCode: http.StatusConflict})
		return
	}

	response.WriteSuccess(w, ContestTimerResponse{
		Phase:       timer.Phase,
		RemainingMs: timer.Remaining.Milliseconds(),
	})
}
