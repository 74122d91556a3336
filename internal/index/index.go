package index

import "context"

// Document is one embedded segment ready for indexing.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Result is one retrieved segment, ordered by descending similarity.
type Result struct {
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// Index is a vector store over segment embeddings. Rebuild replaces all
// prior state; there is no merge or incremental update.
type Index interface {
	Rebuild(ctx context.Context, docs []Document) error
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]Result, error)
}
