package models

// PageText is the raw text of one physical PDF page.
type PageText struct {
	SourceFilename string
	PageNumber     int
	Content        string
}

// Chunk represents a bounded-length segment of page text with metadata
type Chunk struct {
	Content        string
	SourceFilename string
	PageNumber     int
	ChunkID        int
}

// ChunkEmbedding pairs a chunk with its embedding vector.
type ChunkEmbedding struct {
	Content        string
	Embedding      []float32
	SourceFilename string
	PageNumber     int
	ChunkID        int
}

type PromptResponse struct {
	Query   string
	Source  string
	Content string
}

// ExtractionResult is the raw hosted-model output for one page.
type ExtractionResult struct {
	SourceFilename string `json:"source"`
	PageNumber     int    `json:"page"`
	Content        string `json:"content"`
}
