// Package pdf extracts text from stored PDF files.
package pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/documentloaders"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("docchat.pdf")

// Reader extracts text segments from a document on disk.
type Reader interface {
	// Segments returns the text of the document at path, one segment per
	// page, in page order.
	Segments(ctx context.Context, path string) ([]string, error)
}

// PageReader reads PDFs page by page with langchaingo's PDF loader.
type PageReader struct {
	// Password unlocks encrypted documents when set.
	Password string
}

var _ Reader = (*PageReader)(nil)

// NewPageReader returns a PageReader for unencrypted documents.
func NewPageReader() *PageReader {
	return &PageReader{}
}

// Segments implements Reader.
func (r *PageReader) Segments(ctx context.Context, path string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "pdf.Segments")
	defer span.End()

	span.SetAttributes(attribute.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var opts []documentloaders.PDFOptions
	if r.Password != "" {
		opts = append(opts, documentloaders.WithPassword(r.Password))
	}

	docs, err := documentloaders.NewPDF(f, info.Size(), opts...).Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("extracting text from %s: %w", path, err)
	}

	segments := make([]string, len(docs))
	for i, d := range docs {
		segments[i] = d.PageContent
	}

	span.SetAttributes(attribute.Int("segment_count", len(segments)))
	span.SetStatus(codes.Ok, "success")
	return segments, nil
}
