package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"pdfquery/internal/config"
	"pdfquery/internal/index"
	"pdfquery/internal/llmservice"
	"pdfquery/internal/models"
)

// RAG answers free-text questions grounded in the current vector index.
// The embedder must be the same instance that built the index.
type RAG struct {
	idx      index.Index
	embedder embeddings.Embedder
	model    llms.Model
	cfg      *config.Config
}

func NewRAG(idx index.Index, embedder embeddings.Embedder, model llms.Model, cfg *config.Config) *RAG {
	return &RAG{idx: idx, embedder: embedder, model: model, cfg: cfg}
}

func (r *RAG) Query(ctx context.Context, query string) (*models.PromptResponse, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.idx.Search(ctx, queryEmbedding, r.cfg.RAG.TopK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	var contextText strings.Builder
	var sources []string
	seen := map[string]bool{}
	for _, res := range results {
		contextText.WriteString(res.Content + "\n\n")
		src := res.Metadata["source"]
		if page := res.Metadata["page"]; page != "" {
			src = src + " p." + page
		}
		if src != "" && !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}

	prompt := fmt.Sprintf(models.RAGPromptTemplate, query, contextText.String())
	log.Debug().Int("retrieved", len(results)).Msg("Assembled grounded prompt")

	raw, err := llmservice.Complete(ctx, r.model, prompt, llms.WithMaxTokens(r.cfg.ChatLLM.MaxTokens))
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &models.PromptResponse{
		Query:   query,
		Source:  strings.Join(sources, ", "),
		Content: ExtractAnswer(raw),
	}, nil
}

// ExtractAnswer isolates the model's answer from its completion. Anything
// before the last response marker is an echo of the prompt and is
// discarded. A missing marker or an empty answer yields the fallback.
func ExtractAnswer(raw string) string {
	pos := strings.LastIndex(raw, models.ModelTurnMarker)
	if pos < 0 {
		return models.FallbackAnswer
	}
	answer := strings.TrimSpace(raw[pos+len(models.ModelTurnMarker):])
	if answer == "" {
		return models.FallbackAnswer
	}
	return answer
}
