package vectorstore

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("docchat.vectorstore")

const collectionName = "propositions"

// Unit is one retrievable statement and the metadata it is indexed with.
type Unit struct {
	Text     string
	Metadata map[string]string
}

// Index is an in-memory similarity index over Units.
//
// Index is safe for concurrent use.
type Index struct {
	collection *chromem.Collection
	embedder   embeddings.Embedder
}

var _ vectorstores.VectorStore = (*Index)(nil)

// Build embeds units with embedder and returns an index over them.
// Zero units yield an empty index; the embedder is not called.
func Build(ctx context.Context, units []Unit, embedder embeddings.Embedder) (*Index, error) {
	ctx, span := tracer.Start(ctx, "vectorstore.Build")
	defer span.End()

	span.SetAttributes(attribute.Int("unit_count", len(units)))

	if embedder == nil {
		return nil, ErrNilEmbedder
	}

	start := time.Now()

	db := chromem.NewDB()
	collection, err := db.CreateCollection(collectionName, nil, embeddingFunc(embedder))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	idx := &Index{collection: collection, embedder: embedder}
	if _, err := idx.add(ctx, units); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	BuildDuration.Observe(time.Since(start).Seconds())
	span.SetStatus(codes.Ok, "success")
	return idx, nil
}

// embeddingFunc adapts a langchaingo embedder to chromem's query embedding hook.
func embeddingFunc(embedder embeddings.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
}

// add embeds units in one batch, stores them and returns their ids.
func (idx *Index) add(ctx context.Context, units []Unit) ([]string, error) {
	if len(units) == 0 {
		return nil, nil
	}

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}

	vectors, err := idx.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d units: %w", len(units), err)
	}
	if len(vectors) != len(units) {
		return nil, fmt.Errorf("%w: got %d for %d units", ErrEmbeddingMismatch, len(vectors), len(units))
	}

	ids := make([]string, len(units))
	docs := make([]chromem.Document, len(units))
	for i, u := range units {
		ids[i] = uuid.NewString()
		docs[i] = chromem.Document{
			ID:        ids[i],
			Metadata:  copyMetadata(u.Metadata),
			Embedding: vectors[i],
			Content:   u.Text,
		}
	}

	if err := idx.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("adding documents: %w", err)
	}

	UnitsIndexed.Add(float64(len(units)))
	return ids, nil
}

// Len returns the number of units in the index.
func (idx *Index) Len() int {
	return idx.collection.Count()
}

// AddDocuments implements vectorstores.VectorStore.
func (idx *Index) AddDocuments(ctx context.Context, docs []schema.Document, _ ...vectorstores.Option) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Index.AddDocuments")
	defer span.End()

	units := make([]Unit, len(docs))
	for i, d := range docs {
		units[i] = Unit{Text: d.PageContent, Metadata: metadataToString(d.Metadata)}
	}
	ids, err := idx.add(ctx, units)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("documents_added", len(ids)))
	span.SetStatus(codes.Ok, "success")
	return ids, nil
}

// SimilaritySearch implements vectorstores.VectorStore. k is capped at the
// index size; an empty index returns no documents.
func (idx *Index) SimilaritySearch(ctx context.Context, query string, k int, options ...vectorstores.Option) ([]schema.Document, error) {
	ctx, span := tracer.Start(ctx, "Index.SimilaritySearch")
	defer span.End()

	span.SetAttributes(attribute.Int("k", k))

	if query == "" {
		SearchesTotal.WithLabelValues("error").Inc()
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w, got %d", ErrInvalidK, k)
	}

	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}

	// chromem requires nResults <= document count.
	count := idx.collection.Count()
	if count == 0 {
		SearchesTotal.WithLabelValues("empty").Inc()
		return []schema.Document{}, nil
	}
	if k > count {
		k = count
	}

	results, err := idx.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("querying index: %w", err)
	}

	docs := make([]schema.Document, 0, len(results))
	for _, r := range results {
		if opts.ScoreThreshold > 0 && r.Similarity < opts.ScoreThreshold {
			continue
		}
		docs = append(docs, schema.Document{
			PageContent: r.Content,
			Metadata:    metadataFromString(r.Metadata),
			Score:       r.Similarity,
		})
	}

	span.SetAttributes(attribute.Int("results_count", len(docs)))
	span.SetStatus(codes.Ok, "success")
	SearchesTotal.WithLabelValues("success").Inc()
	return docs, nil
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// metadataToString converts langchaingo metadata to chromem's string map.
func metadataToString(metadata map[string]any) map[string]string {
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}

func metadataFromString(metadata map[string]string) map[string]any {
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
