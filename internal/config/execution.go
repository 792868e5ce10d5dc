package config

import (
	"os"
	"strconv"
	"time"
)

type ExecutionCfg struct {
	MaxConcurrent   int
	QueueTimeout    time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
	FallbackEnabled bool
}

func NewExecutionCfg() *ExecutionCfg {
	return &ExecutionCfg{
		MaxConcurrent:   intEnv("EXECUTION_MAX_CONCURRENT", 5),
		QueueTimeout:    time.Duration(intEnv("EXECUTION_QUEUE_TIMEOUT_SEC", 30)) * time.Second,
		PollInterval:    time.Duration(intEnv("REMOTE_JUDGE_POLL_INTERVAL_MS", 500)) * time.Millisecond,
		MaxPollAttempts: intEnv("REMOTE_JUDGE_MAX_POLL_ATTEMPTS", 20),
		FallbackEnabled: os.Getenv("SANDBOX_FALLBACK_DISABLED") != "true",
	}
}

type RemoteJudgeCfg struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewRemoteJudgeCfg() *RemoteJudgeCfg {
	baseURL := os.Getenv("JUDGE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:2358"
	}
	return &RemoteJudgeCfg{
		BaseURL: baseURL,
		APIKey:  os.Getenv("JUDGE_API_KEY"),
		Timeout: time.Duration(intEnv("JUDGE_API_TIMEOUT_SEC", 10)) * time.Second,
	}
}

type SandboxCfg struct {
	UseContainer bool
	Runtime      string
	WorkDir      string
}

func NewSandboxCfg() *SandboxCfg {
	return &SandboxCfg{
		UseContainer: os.Getenv("SANDBOX_DIRECT_MODE") != "true",
		Runtime:      os.Getenv("SANDBOX_RUNTIME"),
		WorkDir:      os.Getenv("SANDBOX_WORK_DIR"),
	}
}

type ExecutorCfg struct {
	PopTimeout time.Duration
}

func NewExecutorCfg() *ExecutorCfg {
	return &ExecutorCfg{
		PopTimeout: time.Duration(intEnv("EXECUTOR_POP_TIMEOUT_SEC", 2)) * time.Second,
	}
}

type ServerConfig struct {
	Port        int
	ServiceName string
}

func NewServerConfig() *ServerConfig {
	name := os.Getenv("SERVICE_NAME")
	if name == "" {
		name = "judge-core"
	}
	return &ServerConfig{
		Port:        intEnv("HTTP_PORT", 8080),
		ServiceName: name,
	}
}

func intEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
