package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/codearena-2026.net/internal/core/ports/primary"
	"gitlab.com/codearena-2026.net/internal/domain"
)

const (
	binaryName     = "prog"
	compileTimeout = 30 * time.Second
	// oomExitCode is what the container runtime reports when the memory cap
	// kills the process
	oomExitCode = 137
)

// Config holds the local sandbox settings
type Config struct {
	// UseContainer wraps each step in a resource-capped container. When false
	// the pipeline execs directly on the host; only safe for trusted
	// environments and tests.
	UseContainer bool
	// Runtime is the container runtime binary, "docker" by default
	Runtime string
	// WorkDir is the parent for per-run ephemeral directories; os.TempDir()
	// when empty
	WorkDir string
	// TimeoutBuffer is added to the effective time limit before the hard kill
	TimeoutBuffer time.Duration
}

// Executor runs submitted code locally in an isolated, resource-capped
// process. It is the fallback path when the remote judge is unavailable.
type Executor struct {
	cfg    Config
	logger primary.Logger
}

// NewExecutor creates a new sandbox executor
func NewExecutor(cfg Config, logger primary.Logger) *Executor {
	if cfg.Runtime == "" {
		cfg.Runtime = "docker"
	}
	if cfg.TimeoutBuffer == 0 {
		cfg.TimeoutBuffer = 2 * time.Second
	}
	return &Executor{cfg: cfg, logger: logger}
}

// Execute writes the source into an ephemeral working directory, compiles it
// when the language has a compile step, runs it under the effective limits and
// classifies the outcome. The result is always terminal; failures surface as
// SYSTEM_ERROR results, not errors. The working directory is removed on every
// path.
func (e *Executor) Execute(ctx context.Context, req *domain.ExecutionRequest, lang *domain.SupportedLanguage) (*domain.ExecutionResult, error) {
	result := &domain.ExecutionResult{RequestID: req.ID}
	defer func() { result.CompletedAt = time.Now() }()

	if lang.RunCmd == "" {
		result.Status = domain.StatusSystemError
		result.ErrorMessage = fmt.Sprintf("no sandbox invocation for language '%s'", lang.Name)
		return result, nil
	}

	dir, err := os.MkdirTemp(e.cfg.WorkDir, "judge-run-")
	if err != nil {
		result.Status = domain.StatusSystemError
		result.ErrorMessage = fmt.Sprintf("failed to create working directory: %v", err)
		return result, nil
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, lang.SourceFile), []byte(req.Code), 0o644); err != nil {
		result.Status = domain.StatusSystemError
		result.ErrorMessage = fmt.Sprintf("failed to write source file: %v", err)
		return result, nil
	}

	timeLimit := req.TimeLimitSec
	if timeLimit == 0 {
		timeLimit = lang.TimeLimitSec
	}
	memoryLimit := req.MemoryLimitMB
	if memoryLimit == 0 {
		memoryLimit = lang.MemoryLimitMB
	}

	if lang.CompileCmd != "" {
		if ok := e.compile(ctx, dir, lang, memoryLimit, result); !ok {
			return result, nil
		}
	}

	e.run(ctx, req, dir, lang, timeLimit, memoryLimit, result)
	return result, nil
}

// compile runs the language's compile step. Reports false when the result is
// already terminal.
func (e *Executor) compile(ctx context.Context, dir string, lang *domain.SupportedLanguage, memoryLimitMB int, result *domain.ExecutionResult) bool {
	cctx, cancel := context.WithTimeout(ctx, compileTimeout)
	defer cancel()

	cmd := e.command(cctx, dir, lang.Image, memoryLimitMB, resolve(lang.CompileCmd, lang))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) || cctx.Err() != nil {
			result.Status = domain.StatusCompilationError
			result.ErrorMessage = strings.TrimSpace(stderr.String())
			if result.ErrorMessage == "" {
				result.ErrorMessage = err.Error()
			}
		} else {
			result.Status = domain.StatusSystemError
			result.ErrorMessage = err.Error()
		}
		return false
	}
	return true
}

// run executes the run step under the hard wall-clock budget and classifies
// the outcome
func (e *Executor) run(ctx context.Context, req *domain.ExecutionRequest, dir string, lang *domain.SupportedLanguage, timeLimitSec, memoryLimitMB int, result *domain.ExecutionResult) {
	budget := time.Duration(timeLimitSec)*time.Second + e.cfg.TimeoutBuffer
	rctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	cmd := e.command(rctx, dir, lang.Image, memoryLimitMB, resolve(lang.RunCmd, lang))
	cmd.Stdin = strings.NewReader(req.Input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	result.RuntimeMs = time.Since(start).Milliseconds()
	result.Output = stdout.String()

	if rctx.Err() == context.DeadlineExceeded {
		result.Status = domain.StatusTimeLimitExceeded
		result.ErrorMessage = fmt.Sprintf("killed after %v", budget)
		return
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(runErr, &exitErr) && exitErr.ExitCode() == oomExitCode:
			result.Status = domain.StatusMemoryLimitExceeded
			result.ErrorMessage = strings.TrimSpace(stderr.String())
		case errors.As(runErr, &exitErr) && stderr.Len() > 0:
			result.Status = domain.StatusRuntimeError
			result.ErrorMessage = strings.TrimSpace(stderr.String())
		default:
			result.Status = domain.StatusSystemError
			result.ErrorMessage = runErr.Error()
		}
		return
	}

	if req.ExpectedOutput == "" {
		result.Status = domain.StatusAccepted
		return
	}

	if outputMatches(stdout.String(), req.ExpectedOutput) {
		result.Status = domain.StatusAccepted
	} else {
		result.Status = domain.StatusWrongAnswer
	}
}

// command builds the invocation for one step, containerised or direct
func (e *Executor) command(ctx context.Context, dir, image string, memoryLimitMB int, script string) *exec.Cmd {
	if e.cfg.UseContainer {
		args := containerArgs(dir, image, memoryLimitMB, script)
		return exec.CommandContext(ctx, e.cfg.Runtime, args...)
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", script)
	cmd.Dir = dir
	return cmd
}

// containerArgs builds the restricted container invocation: memory capped,
// single CPU, no network, dropped capabilities and privileges, bounded
// process and file counts, unprivileged user.
func containerArgs(dir, image string, memoryLimitMB int, script string) []string {
	return []string{
		"run", "--rm", "-i",
		"--network", "none",
		"--memory", fmt.Sprintf("%dm", memoryLimitMB),
		"--memory-swap", fmt.Sprintf("%dm", memoryLimitMB),
		"--cpus", "1",
		"--pids-limit", "64",
		"--ulimit", "nofile=64:64",
		"--cap-drop", "ALL",
		"--security-opt", "no-new-privileges",
		"--user", "65534:65534",
		"-v", fmt.Sprintf("%s:/box", dir),
		"-w", "/box",
		image,
		"sh", "-c", script,
	}
}

// resolve substitutes the {src}/{bin} placeholders of a command template
func resolve(tmpl string, lang *domain.SupportedLanguage) string {
	out := strings.ReplaceAll(tmpl, "{src}", lang.SourceFile)
	return strings.ReplaceAll(out, "{bin}", binaryName)
}

// outputMatches compares actual and expected output ignoring trailing
// whitespace on each line and trailing blank lines
func outputMatches(actual, expected string) bool {
	return normalize(actual) == normalize(expected)
}

func normalize(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	joined := strings.Join(lines, "\n")
	return strings.TrimRight(joined, "\n")
}
