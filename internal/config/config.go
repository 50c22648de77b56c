package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

const (
	EnvDatabaseURL   = "DATABASE_URL"
	EnvDBPassword    = "VOYAGENT_DB_PASSWORD"
	EnvLLMAPIKey     = "LLM_API_KEY"
	EnvEmbedAPIKey   = "EMBEDDING_API_KEY"
	EnvJWTSecret     = "VOYAGENT_JWT_SECRET"
	EnvS3SecretKey   = "VOYAGENT_S3_SECRET_KEY"
	defaultEmbedDims = 1536
)

type Config struct {
	Port        int              `json:"port"`
	JWTSecret   string           `json:"jwt_secret"`
	JWTTTLHours int              `json:"jwt_ttl_hours"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Database    DatabaseConfig   `json:"database"`
	AI          AIConfig         `json:"ai"`
	Chat        ChatConfig       `json:"chat"`
	FileStore   FileStoreConfig  `json:"file_store"`
	CORS        CORSConfig       `json:"cors"`
	Schedule    ScheduleConfig   `json:"schedule"`
	RateLimitMS int              `json:"rate_limit_ms"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider       string      `json:"provider"`
	Model          string      `json:"model"`
	EmbedProvider  string      `json:"embed_provider"`
	EmbedModel     string      `json:"embed_model"`
	EmbedDims      int         `json:"embed_dims"`
	APIKey         string      `json:"api_key"`
	EmbedAPIKey    string      `json:"embed_api_key"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	MaxTokens      int         `json:"max_tokens"`
	Temperature    float64     `json:"temperature"`
	Data           interface{} `json:"data"`
}

type ChatConfig struct {
	RetrieveLimit          int     `json:"retrieve_limit"`
	FollowUpRetrieveLimit  int     `json:"follow_up_retrieve_limit"`
	SimilarityThreshold    float64 `json:"similarity_threshold"`
	HistoryLimit           int     `json:"history_limit"`
	ContextBudgetBytes     int     `json:"context_budget_bytes"`
	FollowUpWindowMinutes  int     `json:"follow_up_window_minutes"`
	BatchEmbedPauseMillis  int     `json:"batch_embed_pause_millis"`
	EmbedCacheSize         int     `json:"embed_cache_size"`
	EmbedCacheTTLMinutes   int     `json:"embed_cache_ttl_minutes"`
	SessionHistoryMaxTurns int     `json:"session_history_max_turns"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type CORSConfig struct {
	AllowOrigins []string `json:"allow_origins"`
}

type ScheduleConfig struct {
	EmbeddingBackfillSpec string `json:"embedding_backfill_spec"`
	BackfillBatchSize     int    `json:"backfill_batch_size"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvLLMAPIKey); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv(EnvEmbedAPIKey); v != "" {
		c.AI.EmbedAPIKey = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.JWTSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.JWTTTLHours == 0 {
		c.JWTTTLHours = 72
	}
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	if c.AI.EmbedDims == 0 {
		c.AI.EmbedDims = defaultEmbedDims
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 20
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = 1024
	}
	if c.AI.EmbedProvider == "" {
		c.AI.EmbedProvider = "openai"
	}
	if c.AI.EmbedAPIKey == "" {
		c.AI.EmbedAPIKey = c.AI.APIKey
	}
	if c.Chat.RetrieveLimit == 0 {
		c.Chat.RetrieveLimit = 5
	}
	if c.Chat.FollowUpRetrieveLimit == 0 {
		c.Chat.FollowUpRetrieveLimit = 3
	}
	if c.Chat.SimilarityThreshold == 0 {
		c.Chat.SimilarityThreshold = 0.5
	}
	if c.Chat.HistoryLimit == 0 {
		c.Chat.HistoryLimit = 50
	}
	if c.Chat.ContextBudgetBytes == 0 {
		c.Chat.ContextBudgetBytes = 24 * 1024
	}
	if c.Chat.FollowUpWindowMinutes == 0 {
		c.Chat.FollowUpWindowMinutes = 30
	}
	if c.Chat.BatchEmbedPauseMillis == 0 {
		c.Chat.BatchEmbedPauseMillis = 200
	}
	if c.Chat.EmbedCacheSize == 0 {
		c.Chat.EmbedCacheSize = 4096
	}
	if c.Chat.EmbedCacheTTLMinutes == 0 {
		c.Chat.EmbedCacheTTLMinutes = 120
	}
	if c.FileStore.Type == "" {
		c.FileStore.Type = "local"
	}
	if c.Schedule.EmbeddingBackfillSpec == "" {
		c.Schedule.EmbeddingBackfillSpec = "30 3 * * *"
	}
	if c.Schedule.BackfillBatchSize == 0 {
		c.Schedule.BackfillBatchSize = 100
	}
}

// MissingSecrets reports which of the required credentials are absent. The
// assistant endpoint refuses to do any work until this list is empty.
func (c *Config) MissingSecrets() []string {
	var missing []string
	if c.Database.DSN == "" && c.Database.Host == "" {
		missing = append(missing, EnvDatabaseURL)
	}
	if c.Database.DSN == "" && c.Database.Password == "" {
		missing = append(missing, EnvDBPassword)
	}
	if c.AI.APIKey == "" {
		missing = append(missing, EnvLLMAPIKey)
	}
	return missing
}
