package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"pdfquery/internal/config"
	"pdfquery/internal/models"
)

type chatCall struct {
	system string
	user   string
	opts   llms.CallOptions
}

type fakeChatModel struct {
	calls  []chatCall
	failAt int // 1-based call number that errors, 0 for never
}

func (f *fakeChatModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	call := chatCall{}
	for _, opt := range options {
		opt(&call.opts)
	}
	for _, msg := range messages {
		for _, part := range msg.Parts {
			text, ok := part.(llms.TextContent)
			if !ok {
				continue
			}
			switch msg.Role {
			case schema.ChatMessageTypeSystem:
				call.system = text.Text
			case schema.ChatMessageTypeHuman:
				call.user = text.Text
			}
		}
	}
	f.calls = append(f.calls, call)
	if f.failAt == len(f.calls) {
		return nil, fmt.Errorf("hosted api unavailable")
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: fmt.Sprintf(`{"call": %d}`, len(f.calls))}},
	}, nil
}

func (f *fakeChatModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", fmt.Errorf("not used")
}

func extractConfig() *config.LLMConfig {
	return &config.LLMConfig{Model: "gpt-3.5-turbo-0125", MaxTokens: 4096, Seed: 42}
}

func threePages() []models.PageText {
	return []models.PageText{
		{SourceFilename: "hea.pdf", PageNumber: 1, Content: "CoCrFeNi reached 520 HV."},
		{SourceFilename: "hea.pdf", PageNumber: 2, Content: "Annealing at 800 C."},
		{SourceFilename: "hea.pdf", PageNumber: 3, Content: "FCC phase observed."},
	}
}

func TestSchemaVariant_DefaultFields(t *testing.T) {
	schema := SchemaDefault.Schema()
	for _, field := range []string{"composition", "property", "value", "unit", "measurement_condition"} {
		if !strings.Contains(schema, `"`+field+`"`) {
			t.Errorf("default schema missing field %q", field)
		}
	}
}

func TestSchemaVariant_PerovskiteReusesAlloyShape(t *testing.T) {
	if SchemaPerovskite.Schema() != SchemaHighEntropyAlloy.Schema() {
		t.Error("perovskite schema should reuse the alloy shape")
	}
	if SchemaPerovskite.Instruction() == SchemaHighEntropyAlloy.Instruction() {
		t.Error("perovskite instruction should differ from the alloy instruction")
	}
}

func TestParseSchemaVariant(t *testing.T) {
	for _, v := range Variants() {
		parsed, err := ParseSchemaVariant(v.String())
		if err != nil {
			t.Errorf("ParseSchemaVariant(%q) failed: %v", v.String(), err)
		}
		if parsed != v {
			t.Errorf("ParseSchemaVariant(%q) = %v, want %v", v.String(), parsed, v)
		}
	}
	if _, err := ParseSchemaVariant("superconductor"); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestExtractAll_OneResultPerPage(t *testing.T) {
	model := &fakeChatModel{}
	e := NewExtractor(model, SchemaHighEntropyAlloy, extractConfig())

	results, err := e.ExtractAll(context.Background(), threePages())
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results for 3 pages, got %d", len(results))
	}
	for i, res := range results {
		if res.PageNumber != i+1 {
			t.Errorf("result %d has page %d, results must keep page order", i, res.PageNumber)
		}
		if res.Content != fmt.Sprintf(`{"call": %d}`, i+1) {
			t.Errorf("result %d carries the wrong response: %q", i, res.Content)
		}
	}

	first := model.calls[0]
	if !strings.Contains(first.system, "CoCrFeNi reached 520 HV.") {
		t.Error("system message missing the page text")
	}
	if !strings.Contains(first.system, "High-Entropy Alloys") {
		t.Error("system message missing the variant instruction")
	}
	if !strings.Contains(first.system, `"phase_structure"`) {
		t.Error("system message missing the empty schema")
	}
	if first.user != models.ExtractUserPrompt {
		t.Errorf("user message %q, want the fixed reinforcement instruction", first.user)
	}
}

func TestExtractAll_DeterministicDecoding(t *testing.T) {
	model := &fakeChatModel{}
	e := NewExtractor(model, SchemaDefault, extractConfig())

	if _, err := e.ExtractAll(context.Background(), threePages()[:1]); err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}

	opts := model.calls[0].opts
	if opts.Temperature != 0 {
		t.Errorf("temperature %v, want 0", opts.Temperature)
	}
	if opts.Seed != 42 {
		t.Errorf("seed %d, want 42", opts.Seed)
	}
	if opts.MaxTokens != 4096 {
		t.Errorf("max tokens %d, want 4096", opts.MaxTokens)
	}
}

func TestExtractAll_AbortsOnFailure(t *testing.T) {
	model := &fakeChatModel{failAt: 2}
	e := NewExtractor(model, SchemaDefault, extractConfig())

	results, err := e.ExtractAll(context.Background(), threePages())
	if err == nil {
		t.Fatal("expected error when a hosted call fails")
	}
	if results != nil {
		t.Errorf("expected no partial results, got %d", len(results))
	}
	if len(model.calls) != 2 {
		t.Errorf("expected the loop to stop after the failed call, made %d calls", len(model.calls))
	}
}
