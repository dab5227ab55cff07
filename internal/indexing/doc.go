// Package indexing turns stored PDF files into a retrieval index.
//
// Every page of every file is split into blank-line separated paragraphs.
// Each paragraph is sent to the generative model, which restates it as one
// proposition per line. Each non-empty proposition becomes a retrievable
// unit tagged with the file it came from, and all units of a session are
// embedded into a single index.
//
// Files, pages and paragraphs are processed sequentially. Any model or
// extraction failure aborts the whole build.
package indexing
