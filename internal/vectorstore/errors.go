package vectorstore

import "errors"

var (
	// ErrNilEmbedder is returned when an index is built without an embedder.
	ErrNilEmbedder = errors.New("embedder is required")

	// ErrEmptyQuery is returned when a search is issued with an empty query.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidK is returned when a search asks for zero or fewer results.
	ErrInvalidK = errors.New("number of results must be positive")

	// ErrEmbeddingMismatch is returned when the embedder returns a different
	// number of vectors than texts it was given.
	ErrEmbeddingMismatch = errors.New("embedder returned wrong number of vectors")
)
