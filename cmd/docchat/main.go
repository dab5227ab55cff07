// Docchat answers questions about uploaded PDF documents.
//
// Each caller-chosen session owns its uploaded files, a proposition index
// built from them on the first chat, and the chat history. Models are served
// by Ollama.
//
// Usage:
//
//	# Start server with defaults (port 8000, model mistral)
//	docchat
//
//	# Use a config file and override through the environment
//	SERVER_HTTP_PORT=9000 MODELS_LLM=llama3.2 docchat -config ~/.config/docchat/config.yaml
//
//	# Variables may also come from a dotenv file
//	docchat -env-file ./docchat.env
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docchat/internal/config"
	"github.com/fyrsmithlabs/docchat/internal/docqa"
	httpserver "github.com/fyrsmithlabs/docchat/internal/http"
	"github.com/fyrsmithlabs/docchat/internal/indexing"
	"github.com/fyrsmithlabs/docchat/internal/logging"
	"github.com/fyrsmithlabs/docchat/internal/models"
	"github.com/fyrsmithlabs/docchat/internal/pdf"
	"github.com/fyrsmithlabs/docchat/internal/session"
	"github.com/fyrsmithlabs/docchat/internal/telemetry"
	"github.com/fyrsmithlabs/docchat/internal/uploads"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var (
	configPath = flag.String("config", "", "path to YAML config file (default ~/.config/docchat/config.yaml)")
	envFile    = flag.String("env-file", ".env", "dotenv file loaded into the environment if present")
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  docchat           Start the docchat server\n")
			fmt.Fprintf(os.Stderr, "  docchat version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := loadEnvFile(*envFile); err != nil {
		log.Fatalf("Env file error: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if err := run(ctx, cfg); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("docchat\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires every component from cfg and serves HTTP until ctx is
// cancelled.
//
//  1. Telemetry and logger
//  2. Upload directory (created if absent)
//  3. Model provider, PDF reader and indexing pipeline
//  4. Session store and docqa service
//  5. HTTP server
//
// Returns http.ErrServerClosed on graceful shutdown.
func run(ctx context.Context, cfg *config.Config) error {
	logCfg, err := logging.NewConfig(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	logCfg.File.Path = cfg.Logging.File
	logCfg.File.MaxSizeMB = cfg.Logging.MaxSizeMB
	logCfg.File.MaxBackups = cfg.Logging.MaxBackups

	tel, err := telemetry.New(ctx, telemetryConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	// Logs go to stdout (and the log file) and, with telemetry on, to OTLP.
	logger, err := logging.NewLoggerWithProvider(logCfg, tel.LoggerProvider())
	if err != nil {
		_ = tel.Shutdown(context.Background())
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
		}
		_ = logger.Close()
	}()
	if h := tel.Health(); h.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.Strings("reasons", h.Reasons))
	}

	files, err := uploads.New(cfg.Storage.UploadDir)
	if err != nil {
		return err
	}

	provider, err := models.NewOllamaProvider(models.Config{
		BaseURL:        cfg.Models.BaseURL,
		LLM:            cfg.Models.LLM,
		Embedding:      cfg.Models.Embedding,
		RequestTimeout: cfg.Models.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to configure models: %w", err)
	}

	pipeline := indexing.NewPipeline(pdf.NewPageReader(), logger)

	svc, err := docqa.NewService(
		docqa.Config{TopK: cfg.Index.TopK},
		session.NewMemoryStore(),
		files,
		provider,
		pipeline,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	srv, err := httpserver.NewServer(svc, logger, &httpserver.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		ServiceName:     cfg.Observability.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	logger.Info(ctx, "starting docchat",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr()),
		zap.String("upload_dir", files.Path()),
		zap.String("model_base_url", cfg.Models.BaseURL),
		zap.String("llm", cfg.Models.LLM),
		zap.String("embedding", cfg.Models.Embedding),
		zap.Bool("telemetry", tel.IsEnabled()))

	return srv.Start(ctx)
}

// loadEnvFile exports the variables in path. A missing file is not an
// error, and variables already set in the environment are kept.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// telemetryConfig maps the observability section onto telemetry settings.
func telemetryConfig(cfg *config.Config) *telemetry.Config {
	tc := telemetry.NewDefaultConfig()
	tc.Enabled = cfg.Observability.EnableTelemetry
	tc.ServiceName = cfg.Observability.ServiceName
	tc.ServiceVersion = version
	tc.Endpoint = cfg.Observability.Endpoint
	tc.Protocol = cfg.Observability.Protocol
	tc.Insecure = cfg.Observability.Insecure
	return tc
}
