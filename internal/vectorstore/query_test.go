package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docchat/internal/models/modelstest"
)

func TestQueryEngine_UsesRetrievedContext(t *testing.T) {
	ctx := context.Background()
	idx, err := Build(ctx, testUnits(), &modelstest.Embedder{})
	require.NoError(t, err)

	llm := &modelstest.LLM{}
	answer, err := idx.QueryEngine(llm, 1).Query(ctx, "how long is the warranty")
	require.NoError(t, err)

	// The fake model echoes its prompt.
	assert.Contains(t, answer, "The warranty lasts two years from purchase.")
	assert.Contains(t, answer, "how long is the warranty")
	assert.NotContains(t, answer, "Customer support")
	assert.Len(t, llm.Prompts(), 1)
}

func TestQueryEngine_EmptyIndex(t *testing.T) {
	ctx := context.Background()
	idx, err := Build(ctx, nil, &modelstest.Embedder{})
	require.NoError(t, err)

	llm := &modelstest.LLM{Respond: func(string) (string, error) { return "I don't know.", nil }}
	answer, err := idx.QueryEngine(llm, 2).Query(ctx, "anything there?")
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", answer)
}

func TestQueryEngine_ModelError(t *testing.T) {
	ctx := context.Background()
	idx, err := Build(ctx, testUnits(), &modelstest.Embedder{})
	require.NoError(t, err)

	boom := errors.New("timeout")
	llm := &modelstest.LLM{Respond: func(string) (string, error) { return "", boom }}
	_, err = idx.QueryEngine(llm, 2).Query(ctx, "warranty")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
