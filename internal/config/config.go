package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port           int              `json:"port"`
	Database       DatabaseConfig   `json:"database"`
	LogConfig      logger.LogConfig `json:"log_config"`
	FileStore      FileStoreConfig  `json:"file_store"`
	AI             AIConfig         `json:"ai"`
	CORSOrigins    []string         `json:"cors_origins"`
	MaxUploadBytes int64            `json:"max_upload_bytes"`
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

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	// Timeout bounds one outbound provider call, in seconds.
	Timeout int `json:"timeout"`
	// Providers maps a provider name (openai/anthropic/gemini) to its
	// adapter config (api_key, optional base_url).
	Providers map[string]interface{} `json:"providers"`
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
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		return nil, fmt.Errorf("file_store.type is required")
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 120
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 * 1024 * 1024
	}
	return &cfg, nil
}
