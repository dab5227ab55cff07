// Package vectorstore provides the per-session retrieval index.
//
// An Index is an in-memory chromem-go collection that satisfies langchaingo's
// vectorstores.VectorStore interface, so it can be handed to langchaingo
// retrievers and chains directly. Indexes are built once from a slice of
// Units and never persisted.
//
// # Usage
//
//	idx, err := vectorstore.Build(ctx, units, embedder)
//	if err != nil {
//	    return err
//	}
//	answer, err := idx.QueryEngine(llm, 2).Query(ctx, "what is the warranty period?")
package vectorstore
