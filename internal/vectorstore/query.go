package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/vectorstores"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// QueryEngine answers a query with a generative model using context
// retrieved from an Index.
type QueryEngine struct {
	chain chains.Chain
	topK  int
}

// QueryEngine pairs the index with llm. Each query retrieves up to topK
// units as context.
func (idx *Index) QueryEngine(llm llms.Model, topK int) *QueryEngine {
	retriever := vectorstores.ToRetriever(idx, topK)
	return &QueryEngine{
		chain: chains.NewRetrievalQAFromLLM(llm, retriever),
		topK:  topK,
	}
}

// Query runs query through the retrieval chain and returns the answer text.
func (q *QueryEngine) Query(ctx context.Context, query string) (string, error) {
	ctx, span := tracer.Start(ctx, "QueryEngine.Query")
	defer span.End()

	span.SetAttributes(attribute.Int("top_k", q.topK))

	start := time.Now()
	answer, err := chains.Run(ctx, q.chain, query)
	QueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("running query: %w", err)
	}

	span.SetStatus(codes.Ok, "success")
	return answer, nil
}
