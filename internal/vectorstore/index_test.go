package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/fyrsmithlabs/docchat/internal/models/modelstest"
)

func testUnits() []Unit {
	meta := map[string]string{"source": "agentic", "pdf": "abc_manual.pdf"}
	return []Unit{
		{Text: "The warranty lasts two years from purchase.", Metadata: meta},
		{Text: "The battery charges fully in ninety minutes.", Metadata: meta},
		{Text: "Customer support is available on weekdays.", Metadata: meta},
	}
}

func TestBuild_Empty(t *testing.T) {
	embedder := &modelstest.Embedder{}

	idx, err := Build(context.Background(), nil, embedder)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, embedder.Calls())

	docs, err := idx.SimilaritySearch(context.Background(), "anything", 2)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestBuild_NilEmbedder(t *testing.T) {
	_, err := Build(context.Background(), testUnits(), nil)
	assert.ErrorIs(t, err, ErrNilEmbedder)
}

func TestBuild_EmbedderError(t *testing.T) {
	boom := errors.New("model server down")
	_, err := Build(context.Background(), testUnits(), &modelstest.Embedder{Err: boom})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSimilaritySearch(t *testing.T) {
	ctx := context.Background()
	idx, err := Build(ctx, testUnits(), &modelstest.Embedder{})
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	docs, err := idx.SimilaritySearch(ctx, "how long is the warranty", 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "The warranty lasts two years from purchase.", docs[0].PageContent)
	assert.Equal(t, "agentic", docs[0].Metadata["source"])
	assert.Equal(t, "abc_manual.pdf", docs[0].Metadata["pdf"])
	assert.Greater(t, docs[0].Score, float32(0))
}

func TestSimilaritySearch_CapsK(t *testing.T) {
	ctx := context.Background()
	idx, err := Build(ctx, testUnits(), &modelstest.Embedder{})
	require.NoError(t, err)

	docs, err := idx.SimilaritySearch(ctx, "battery", 10)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestSimilaritySearch_InvalidInput(t *testing.T) {
	ctx := context.Background()
	idx, err := Build(ctx, testUnits(), &modelstest.Embedder{})
	require.NoError(t, err)

	_, err = idx.SimilaritySearch(ctx, "", 2)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = idx.SimilaritySearch(ctx, "battery", 0)
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestSimilaritySearch_ScoreThreshold(t *testing.T) {
	ctx := context.Background()
	idx, err := Build(ctx, testUnits(), &modelstest.Embedder{})
	require.NoError(t, err)

	docs, err := idx.SimilaritySearch(ctx, "warranty", 3, vectorstores.WithScoreThreshold(0.99))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestAddDocuments(t *testing.T) {
	ctx := context.Background()
	idx, err := Build(ctx, nil, &modelstest.Embedder{})
	require.NoError(t, err)

	ids, err := idx.AddDocuments(ctx, []schema.Document{
		{PageContent: "Refunds take five business days.", Metadata: map[string]any{"pdf": "faq.pdf", "page": 3}},
	})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Equal(t, 1, idx.Len())

	docs, err := idx.SimilaritySearch(ctx, "refunds", 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "3", docs[0].Metadata["page"])
}
