package indexing

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tmc/langchaingo/llms"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docchat/internal/logging"
	"github.com/fyrsmithlabs/docchat/internal/models"
	"github.com/fyrsmithlabs/docchat/internal/pdf"
	"github.com/fyrsmithlabs/docchat/internal/vectorstore"
)

var tracer = otel.Tracer("docchat.indexing")

// Pipeline builds retrieval indexes from stored PDF files.
type Pipeline struct {
	reader pdf.Reader
	logger *logging.Logger
}

// NewPipeline creates a pipeline that extracts text with reader.
func NewPipeline(reader pdf.Reader, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{reader: reader, logger: logger.Named("indexing")}
}

// Build extracts propositions from every file in paths, in order, and
// embeds them into one index with clients.Embedder.
func (p *Pipeline) Build(ctx context.Context, clients *models.Clients, paths []string) (*vectorstore.Index, error) {
	ctx, span := tracer.Start(ctx, "indexing.Build")
	defer span.End()

	span.SetAttributes(attribute.Int("file_count", len(paths)))

	var units []vectorstore.Unit
	for _, path := range paths {
		fileUnits, err := p.FileUnits(ctx, clients.LLM, path)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		units = append(units, fileUnits...)
	}

	idx, err := vectorstore.Build(ctx, units, clients.Embedder)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("building index: %w", err)
	}

	span.SetAttributes(attribute.Int("unit_count", len(units)))
	span.SetStatus(codes.Ok, "success")
	return idx, nil
}

// FileUnits returns the proposition units of one file.
func (p *Pipeline) FileUnits(ctx context.Context, llm llms.Model, path string) ([]vectorstore.Unit, error) {
	filename := filepath.Base(path)
	start := time.Now()

	p.logger.Info(ctx, "building vector index", zap.String("pdf", filename))

	segments, err := p.reader.Segments(ctx, path)
	if err != nil {
		FilesProcessed.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	var units []vectorstore.Unit
	paragraphs := 0
	for _, segment := range segments {
		for _, para := range SplitParagraphs(segment) {
			if err := ctx.Err(); err != nil {
				FilesProcessed.WithLabelValues("error").Inc()
				return nil, err
			}
			paragraphs++

			props, err := ExtractPropositions(ctx, llm, para)
			if err != nil {
				FilesProcessed.WithLabelValues("error").Inc()
				return nil, fmt.Errorf("indexing %s: %w", filename, err)
			}
			for _, prop := range props {
				units = append(units, vectorstore.Unit{
					Text: prop,
					Metadata: map[string]string{
						"source": SourceAgentic,
						"pdf":    filename,
					},
				})
			}
		}
	}

	ParagraphsProcessed.Add(float64(paragraphs))
	PropositionsExtracted.Add(float64(len(units)))
	FilesProcessed.WithLabelValues("success").Inc()
	FileDuration.Observe(time.Since(start).Seconds())

	p.logger.Info(ctx, "vector index built",
		zap.String("pdf", filename),
		zap.Int("pages", len(segments)),
		zap.Int("paragraphs", paragraphs),
		zap.Int("propositions", len(units)),
		zap.Duration("duration", time.Since(start)),
	)

	return units, nil
}
