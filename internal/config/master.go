package config

import "os"

type AppConfig struct {
	DebugMode      bool
	ServerConfig   *ServerConfig
	ExecutionCfg   *ExecutionCfg
	RemoteJudgeCfg *RemoteJudgeCfg
	SandboxCfg     *SandboxCfg
	ExecutorCfg    *ExecutorCfg
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	JwtConfig      *JwtConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		ServerConfig:   NewServerConfig(),
		ExecutionCfg:   NewExecutionCfg(),
		RemoteJudgeCfg: NewRemoteJudgeCfg(),
		SandboxCfg:     NewSandboxCfg(),
		ExecutorCfg:    NewExecutorCfg(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		JwtConfig:      NewJwtConfig(),
	}
}
