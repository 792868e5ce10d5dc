package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"gitlab.com/codearena-2026.net/internal/core/ports/primary"
	"gitlab.com/codearena-2026.net/internal/domain"
)

// Remote status codes, per the judging service's vocabulary
const (
	codeInQueue             = 1
	codeProcessing          = 2
	codeAccepted            = 3
	codeWrongAnswer         = 4
	codeTimeLimitExceeded   = 5
	codeCompilationError    = 6
	codeRuntimeErrorSIGSEGV = 7
	codeRuntimeErrorSIGXFSZ = 8
	codeRuntimeErrorSIGFPE  = 9
	codeRuntimeErrorSIGABRT = 10
	codeRuntimeErrorNZEC    = 11
	codeRuntimeErrorOther   = 12
	codeInternalError       = 13
	codeExecFormatError     = 14
)

// statusMap is the finite map from remote status code to the local vocabulary.
// Anything absent resolves to SYSTEM_ERROR.
var statusMap = map[int]domain.ExecutionStatus{
	codeInQueue:             domain.StatusPending,
	codeProcessing:          domain.StatusProcessing,
	codeAccepted:            domain.StatusAccepted,
	codeWrongAnswer:         domain.StatusWrongAnswer,
	codeTimeLimitExceeded:   domain.StatusTimeLimitExceeded,
	codeCompilationError:    domain.StatusCompilationError,
	codeRuntimeErrorSIGSEGV: domain.StatusRuntimeError,
	codeRuntimeErrorSIGXFSZ: domain.StatusRuntimeError,
	codeRuntimeErrorSIGFPE:  domain.StatusRuntimeError,
	codeRuntimeErrorSIGABRT: domain.StatusRuntimeError,
	codeRuntimeErrorNZEC:    domain.StatusRuntimeError,
	codeRuntimeErrorOther:   domain.StatusRuntimeError,
	codeInternalError:       domain.StatusSystemError,
	codeExecFormatError:     domain.StatusSystemError,
}

func mapStatus(code int) domain.ExecutionStatus {
	if status, ok := statusMap[code]; ok {
		return status
	}
	return domain.StatusSystemError
}

// Config holds the remote judging API settings
type Config struct {
	BaseURL string
	// APIKey is sent as X-Auth-Token when set
	APIKey  string
	Timeout time.Duration
}

// Client is the adapter to the remote judging API
type Client struct {
	cfg    Config
	client *http.Client
	logger primary.Logger
}

// NewClient creates a new remote judge client
func NewClient(cfg Config, logger primary.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// createSubmissionRequest is the remote service's submission wire format
type createSubmissionRequest struct {
	SourceCode     string  `json:"source_code"`
	LanguageID     int     `json:"language_id"`
	Stdin          string  `json:"stdin,omitempty"`
	ExpectedOutput string  `json:"expected_output,omitempty"`
	CPUTimeLimit   float64 `json:"cpu_time_limit,omitempty"`
	MemoryLimit    int     `json:"memory_limit,omitempty"`
	EnableNetwork  bool    `json:"enable_network"`
}

type createSubmissionResponse struct {
	Token string `json:"token"`
}

type submissionStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type getSubmissionResponse struct {
	Status        submissionStatus `json:"status"`
	Stdout        *string          `json:"stdout"`
	Stderr        *string          `json:"stderr"`
	CompileOutput *string          `json:"compile_output"`
	Message       *string          `json:"message"`
	Time          *string          `json:"time"`
	Memory        *int64           `json:"memory"`
}

// CreateSubmission posts code and constraints to the remote service and
// returns the opaque submission token
func (c *Client) CreateSubmission(ctx context.Context, req *domain.ExecutionRequest, lang *domain.SupportedLanguage) (string, error) {
	timeLimit := req.TimeLimitSec
	if timeLimit == 0 {
		timeLimit = lang.TimeLimitSec
	}
	memoryLimit := req.MemoryLimitMB
	if memoryLimit == 0 {
		memoryLimit = lang.MemoryLimitMB
	}

	body := createSubmissionRequest{
		SourceCode:     req.Code,
		LanguageID:     lang.RemoteID,
		Stdin:          req.Input,
		ExpectedOutput: req.ExpectedOutput,
		CPUTimeLimit:   float64(timeLimit),
		// The remote service takes memory in KB
		MemoryLimit:   memoryLimit * 1024,
		EnableNetwork: false,
	}

	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal submission request: %w", err)
	}

	url := fmt.Sprintf("%s/submissions?base64_encoded=false&wait=false", c.cfg.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("failed to build submission request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuth(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send submission request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		c.logger.Error("Remote judge rejected submission", "statusCode", resp.StatusCode, "body", string(payload))
		return "", fmt.Errorf("remote judge returned status %d", resp.StatusCode)
	}

	var created createSubmissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode submission response: %w", err)
	}
	if created.Token == "" {
		return "", fmt.Errorf("remote judge returned an empty token")
	}

	return created.Token, nil
}

// GetSubmission fetches the current verdict for a token and maps the remote
// status vocabulary onto the local one
func (c *Client) GetSubmission(ctx context.Context, token string) (*domain.ExecutionResult, error) {
	url := fmt.Sprintf("%s/submissions/%s?base64_encoded=false", c.cfg.BaseURL, token)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verdict request: %w", err)
	}
	c.setAuth(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch verdict: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote judge returned status %d", resp.StatusCode)
	}

	var verdict getSubmissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("failed to decode verdict response: %w", err)
	}

	result := &domain.ExecutionResult{
		Status:      mapStatus(verdict.Status.ID),
		CompletedAt: time.Now(),
	}

	if verdict.Stdout != nil {
		result.Output = *verdict.Stdout
	}
	switch {
	case verdict.CompileOutput != nil && *verdict.CompileOutput != "":
		result.ErrorMessage = *verdict.CompileOutput
	case verdict.Stderr != nil && *verdict.Stderr != "":
		result.ErrorMessage = *verdict.Stderr
	case verdict.Message != nil:
		result.ErrorMessage = *verdict.Message
	}

	// Time arrives as seconds in a string, e.g. "0.034"
	if verdict.Time != nil {
		if seconds, err := strconv.ParseFloat(*verdict.Time, 64); err == nil {
			result.RuntimeMs = int64(seconds * 1000)
		}
	}
	if verdict.Memory != nil {
		result.MemoryKB = *verdict.Memory
	}

	return result, nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Auth-Token", c.cfg.APIKey)
	}
}
