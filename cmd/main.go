package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/codearena-2026.net/internal/adapter/judge0"
	"gitlab.com/codearena-2026.net/internal/adapter/logging"
	"gitlab.com/codearena-2026.net/internal/adapter/postgres/contestrepo"
	"gitlab.com/codearena-2026.net/internal/adapter/postgres/participantrepo"
	"gitlab.com/codearena-2026.net/internal/adapter/postgres/problemrepo"
	"gitlab.com/codearena-2026.net/internal/adapter/postgres/submissionrepo"
	"gitlab.com/codearena-2026.net/internal/adapter/redis/submissionqueue"
	"gitlab.com/codearena-2026.net/internal/adapter/sandbox"
	"gitlab.com/codearena-2026.net/internal/config"
	"gitlab.com/codearena-2026.net/internal/contest"
	"gitlab.com/codearena-2026.net/internal/execution"
	"gitlab.com/codearena-2026.net/internal/handlers"
	http2 "gitlab.com/codearena-2026.net/internal/http"
)

func main() {
	InitReader()
	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sysCfg := config.NewSystemConfig()

	logger := logging.NewZapLogger(sysCfg.DebugMode)
	logger.Info("Starting judge core service")

	db, err := setupDatabase(sysCfg.PostgresConfig)
	if err != nil {
		logger.Error("Failed to set up database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     sysCfg.RedisConfig.Url,
		Password: sysCfg.RedisConfig.Password,
		DB:       sysCfg.RedisConfig.DB,
	})
	defer redisClient.Close()

	// SECONDARY PORTS
	submissionRepo := submissionrepo.NewSubmissionRepository(db, logger)
	problemRepo := problemrepo.NewProblemRepository(db, logger)
	contestRepo := contestrepo.NewContestRepository(db, logger)
	participantRepo := participantrepo.NewParticipantRepository(db, logger)
	workQueue := submissionqueue.NewQueue(redisClient, logger)

	remoteJudge := judge0.NewClient(judge0.Config{
		BaseURL: sysCfg.RemoteJudgeCfg.BaseURL,
		APIKey:  sysCfg.RemoteJudgeCfg.APIKey,
		Timeout: sysCfg.RemoteJudgeCfg.Timeout,
	}, logger)
	sandboxRunner := sandbox.NewExecutor(sandbox.Config{
		UseContainer: sysCfg.SandboxCfg.UseContainer,
		Runtime:      sysCfg.SandboxCfg.Runtime,
		WorkDir:      sysCfg.SandboxCfg.WorkDir,
	}, logger)

	// services
	executionSvc := execution.NewService(remoteJudge, sandboxRunner, execution.Config{
		MaxConcurrent:   sysCfg.ExecutionCfg.MaxConcurrent,
		QueueTimeout:    sysCfg.ExecutionCfg.QueueTimeout,
		PollInterval:    sysCfg.ExecutionCfg.PollInterval,
		MaxPollAttempts: sysCfg.ExecutionCfg.MaxPollAttempts,
		FallbackEnabled: sysCfg.ExecutionCfg.FallbackEnabled,
	}, nil, logger)

	contestExecutor := contest.NewExecutor(
		workQueue,
		executionSvc,
		submissionRepo,
		problemRepo,
		contestRepo,
		participantRepo,
		workQueue,
		contest.Config{PopTimeout: sysCfg.ExecutorCfg.PopTimeout},
		logger,
	)

	// server
	middleware := handlers.NewMiddlewareProvider(sysCfg.JwtConfig.Secret)
	serviceProvider := http2.NewServiceProvider(executionSvc, contestRepo, middleware)
	httpServer := http2.NewServer(sysCfg.ServerConfig.Port, sysCfg.ServerConfig.ServiceName, *serviceProvider, logger)
	if err := httpServer.Init(); err != nil {
		logger.Error("Failed to init http server", "error", err)
		os.Exit(1)
	}

	ctxBg := context.Background()
	httpServer.Start(ctxBg)
	contestExecutor.Start(ctxBg)

	<-quit
	logger.Info("Shutting down server...")

	contestExecutor.Stop()
	executionSvc.Shutdown()
	httpServer.Stop()

	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func InitReader() {
	environment := ""
	if len(os.Args) < 2 {
		log.Fatalf("Env not supplied in argument")
	} else {
		environment = os.Args[1]
	}

	err := godotenv.Load(environment + ".env")
	if err != nil {
		log.Fatalf("Error loading %s.env file", environment)
	}
}
