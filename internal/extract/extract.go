package extract

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"pdfquery/internal/config"
	"pdfquery/internal/llmservice"
	"pdfquery/internal/models"
)

// Extractor converts page texts into best-effort JSON-shaped records, one
// hosted chat-completion call per page, strictly in page order. Decoding
// is deterministic: temperature 0 and a fixed seed.
type Extractor struct {
	model     llms.Model
	variant   SchemaVariant
	maxTokens int
	seed      int
}

func NewExtractor(model llms.Model, variant SchemaVariant, llmConfig *config.LLMConfig) *Extractor {
	return &Extractor{
		model:     model,
		variant:   variant,
		maxTokens: llmConfig.MaxTokens,
		seed:      llmConfig.Seed,
	}
}

// ExtractAll processes every page sequentially. A failed call aborts the
// loop and discards records collected so far; results surface only as a
// whole batch. No cross-page aggregation or deduplication happens.
func (e *Extractor) ExtractAll(ctx context.Context, pages []models.PageText) ([]models.ExtractionResult, error) {
	results := make([]models.ExtractionResult, 0, len(pages))
	for i, page := range pages {
		log.Debug().Int("page", i+1).Int("total", len(pages)).Str("file", page.SourceFilename).Msg("Extracting JSON")

		content, err := e.extractPage(ctx, page.Content)
		if err != nil {
			return nil, fmt.Errorf("extracting %s page %d: %w", page.SourceFilename, page.PageNumber, err)
		}
		results = append(results, models.ExtractionResult{
			SourceFilename: page.SourceFilename,
			PageNumber:     page.PageNumber,
			Content:        content,
		})
	}
	return results, nil
}

func (e *Extractor) extractPage(ctx context.Context, paragraph string) (string, error) {
	system := fmt.Sprintf("%s%s\n\nEmpty JSON Schema: %s\n\nAnswer:",
		e.variant.Instruction(), paragraph, e.variant.Schema())

	// the raw response is collected verbatim, malformed JSON included
	return llmservice.Chat(ctx, e.model, system, models.ExtractUserPrompt,
		llms.WithTemperature(0),
		llms.WithSeed(e.seed),
		llms.WithMaxTokens(e.maxTokens),
	)
}
