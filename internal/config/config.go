// Package config provides configuration loading for docchat.
//
// Configuration starts from hardcoded defaults, is overlaid by an optional
// YAML file, and is finally overridden by environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the complete docchat configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Storage       StorageConfig       `koanf:"storage"`
	Models        ModelsConfig        `koanf:"models"`
	Index         IndexConfig         `koanf:"index"`
	Logging       LoggingConfig       `koanf:"logging"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"http_host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageConfig holds uploaded-file storage configuration.
type StorageConfig struct {
	// UploadDir is the shared directory uploaded PDFs are written to.
	// It is created at startup if absent.
	UploadDir string `koanf:"upload_dir"`
}

// ModelsConfig addresses the generative and embedding models.
type ModelsConfig struct {
	BaseURL   string `koanf:"base_url"`
	LLM       string `koanf:"llm"`
	Embedding string `koanf:"embedding"`

	// RequestTimeout is applied to every generative model call.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// IndexConfig holds retrieval settings for the per-session index.
type IndexConfig struct {
	// TopK is the number of propositions retrieved per query.
	TopK int `koanf:"top_k"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`

	// File, when set, also writes logs to a size-rotated file.
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"file_max_size_mb"`
	MaxBackups int    `koanf:"file_max_backups"`
}

// ObservabilityConfig holds OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	ServiceName     string `koanf:"service_name"`
	Endpoint        string `koanf:"otlp_endpoint"`
	Protocol        string `koanf:"otlp_protocol"`
	Insecure        bool   `koanf:"otlp_insecure"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			UploadDir: "./backend/uploads",
		},
		Models: ModelsConfig{
			BaseURL:        "http://localhost:11434",
			LLM:            "mistral",
			Embedding:      "mistral",
			RequestTimeout: 5 * time.Minute,
		},
		Index: IndexConfig{
			TopK: 2,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
		Observability: ObservabilityConfig{
			EnableTelemetry: false,
			ServiceName:     "docchat",
			Endpoint:        "localhost:4317",
			Protocol:        "grpc",
			Insecure:        true,
		},
	}
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is not between 1 and 65535
//   - Shutdown or model request timeout is not positive
//   - Upload directory, model base URL or model names are empty
//   - TopK is not positive
//   - Service name is empty (when telemetry is enabled)
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if strings.TrimSpace(c.Storage.UploadDir) == "" {
		return errors.New("upload directory is required")
	}

	if c.Models.BaseURL == "" {
		return errors.New("model base URL is required")
	}
	if c.Models.LLM == "" || c.Models.Embedding == "" {
		return errors.New("llm and embedding model names are required")
	}
	if c.Models.RequestTimeout <= 0 {
		return errors.New("model request timeout must be positive")
	}

	if c.Index.TopK <= 0 {
		return fmt.Errorf("index top_k must be positive, got %d", c.Index.TopK)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	if c.Logging.File != "" && c.Logging.MaxSizeMB <= 0 {
		return fmt.Errorf("logging file_max_size_mb must be positive, got %d", c.Logging.MaxSizeMB)
	}

	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
