package docqa

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docchat/internal/logging"
	"github.com/fyrsmithlabs/docchat/internal/models"
	"github.com/fyrsmithlabs/docchat/internal/session"
	"github.com/fyrsmithlabs/docchat/internal/vectorstore"
)

const instrumentationName = "github.com/fyrsmithlabs/docchat/internal/docqa"

// NoDocumentsAnswer answers chats on sessions without uploaded files.
const NoDocumentsAnswer = "No PDFs uploaded for this session. Please upload PDFs first."

var (
	// ErrNoFiles is returned when an upload carries no files.
	ErrNoFiles = errors.New("no files provided")

	// ErrSessionNotFound is returned when inspecting an unknown session.
	ErrSessionNotFound = session.ErrSessionNotFound
)

// File is one uploaded file.
type File struct {
	// Name is the filename as submitted by the client.
	Name string

	// Open returns the file content.
	Open func() (io.ReadCloser, error)
}

// ChatResult is the answer to a query and the session history including it.
type ChatResult struct {
	Answer  string         `json:"answer"`
	History []session.Turn `json:"history"`
}

// Service answers questions about uploaded documents.
type Service interface {
	// Upload stores files on the session and returns their submitted names
	// in order.
	Upload(ctx context.Context, sessionID string, files []File) ([]string, error)

	// Chat answers query from the session's documents and records the turn.
	Chat(ctx context.Context, sessionID, query string) (*ChatResult, error)

	// Session returns a snapshot of an existing session.
	Session(ctx context.Context, sessionID string) (*session.Snapshot, error)
}

// FileStore persists uploaded files.
type FileStore interface {
	Save(filename string, r io.Reader) (string, error)
}

// Indexer builds a retrieval index from stored files.
type Indexer interface {
	Build(ctx context.Context, clients *models.Clients, paths []string) (*vectorstore.Index, error)
}

// Config configures the service.
type Config struct {
	// TopK is the number of units retrieved as context per query.
	TopK int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{TopK: 2}
}

type service struct {
	config   Config
	sessions session.Store
	files    FileStore
	provider models.Provider
	indexer  Indexer
	logger   *logging.Logger

	tracer        trace.Tracer
	uploadCounter metric.Int64Counter
	chatCounter   metric.Int64Counter
	buildCounter  metric.Int64Counter
}

// NewService creates a Service.
func NewService(cfg Config, sessions session.Store, files FileStore, provider models.Provider, indexer Indexer, logger *logging.Logger) (Service, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if files == nil {
		return nil, errors.New("file store is required")
	}
	if provider == nil {
		return nil, errors.New("model provider is required")
	}
	if indexer == nil {
		return nil, errors.New("indexer is required")
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", cfg.TopK)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &service{
		config:   cfg,
		sessions: sessions,
		files:    files,
		provider: provider,
		indexer:  indexer,
		logger:   logger.Named("docqa"),
		tracer:   otel.Tracer(instrumentationName),
	}
	s.initMetrics()

	return s, nil
}

func (s *service) initMetrics() {
	meter := otel.Meter(instrumentationName)
	var err error

	s.uploadCounter, err = meter.Int64Counter(
		"docchat.docqa.files_uploaded",
		metric.WithDescription("Total number of files uploaded"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		s.logger.Warn(context.Background(), "failed to create upload counter", zap.Error(err))
	}

	s.chatCounter, err = meter.Int64Counter(
		"docchat.docqa.chats",
		metric.WithDescription("Total number of chat requests by outcome"),
		metric.WithUnit("{chat}"),
	)
	if err != nil {
		s.logger.Warn(context.Background(), "failed to create chat counter", zap.Error(err))
	}

	s.buildCounter, err = meter.Int64Counter(
		"docchat.docqa.index_builds",
		metric.WithDescription("Total number of index builds by outcome"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		s.logger.Warn(context.Background(), "failed to create build counter", zap.Error(err))
	}
}

func (s *service) count(ctx context.Context, c metric.Int64Counter, n int64, outcome string) {
	if c == nil {
		return
	}
	if outcome == "" {
		c.Add(ctx, n)
		return
	}
	c.Add(ctx, n, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Upload implements Service.
func (s *service) Upload(ctx context.Context, sessionID string, files []File) ([]string, error) {
	ctx = logging.WithSessionID(ctx, sessionID)
	ctx, span := s.tracer.Start(ctx, "docqa.upload")
	defer span.End()

	span.SetAttributes(attribute.Int("file_count", len(files)))

	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	sess := s.sessions.GetOrCreate(sessionID)

	names := make([]string, 0, len(files))
	for _, f := range files {
		path, err := s.store(f)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Error(ctx, "storing upload failed", zap.String("filename", f.Name), zap.Error(err))
			return nil, err
		}
		sess.AddFiles(path)
		names = append(names, f.Name)
		s.logger.Debug(ctx, "stored upload", zap.String("filename", f.Name), zap.String("path", path))
	}

	s.count(ctx, s.uploadCounter, int64(len(names)), "")
	s.logger.Info(ctx, "files uploaded", zap.Strings("files", names), zap.Int("session_files", len(sess.Files())))
	span.SetStatus(codes.Ok, "success")
	return names, nil
}

func (s *service) store(f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload %q: %w", f.Name, err)
	}
	defer rc.Close()

	path, err := s.files.Save(f.Name, rc)
	if err != nil {
		return "", fmt.Errorf("storing upload %q: %w", f.Name, err)
	}
	return path, nil
}

// Chat implements Service.
func (s *service) Chat(ctx context.Context, sessionID, query string) (*ChatResult, error) {
	ctx = logging.WithSessionID(ctx, sessionID)
	ctx, span := s.tracer.Start(ctx, "docqa.chat")
	defer span.End()

	sess := s.sessions.GetOrCreate(sessionID)

	if len(sess.Files()) == 0 {
		history := sess.AppendTurn(query, NoDocumentsAnswer)
		s.count(ctx, s.chatCounter, 1, "no_documents")
		s.logger.Info(ctx, "chat without documents", zap.Int("history", len(history)))
		span.SetAttributes(attribute.Bool("no_documents", true))
		return &ChatResult{Answer: NoDocumentsAnswer, History: history}, nil
	}

	answer, err := s.answer(ctx, sess, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.count(ctx, s.chatCounter, 1, "error")
		s.logger.Error(ctx, "chat failed", zap.Error(err))
		return nil, err
	}

	history := sess.AppendTurn(query, answer)
	s.count(ctx, s.chatCounter, 1, "answered")
	s.logger.Info(ctx, "chat answered", zap.Int("history", len(history)))
	span.SetStatus(codes.Ok, "success")
	return &ChatResult{Answer: answer, History: history}, nil
}

// answer runs query against the session index, building it first if needed.
func (s *service) answer(ctx context.Context, sess *session.Session, query string) (string, error) {
	clients, err := s.provider.NewClients()
	if err != nil {
		return "", fmt.Errorf("creating model clients: %w", err)
	}

	idx, built, err := sess.IndexOrBuild(func(files []string) (*vectorstore.Index, error) {
		s.logger.Info(ctx, "indexing session files", zap.Int("files", len(files)))
		return s.indexer.Build(ctx, clients, files)
	})
	if err != nil {
		s.count(ctx, s.buildCounter, 1, "error")
		return "", fmt.Errorf("building session index: %w", err)
	}
	if built {
		s.count(ctx, s.buildCounter, 1, "success")
		s.logger.Info(ctx, "session index cached", zap.Int("units", idx.Len()))
	}

	answer, err := idx.QueryEngine(clients.LLM, s.config.TopK).Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("answering query: %w", err)
	}
	return answer, nil
}

// Session implements Service.
func (s *service) Session(_ context.Context, sessionID string) (*session.Snapshot, error) {
	sess, ok := s.sessions.Lookup(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	snap := sess.Snapshot()
	return &snap, nil
}
