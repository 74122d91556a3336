package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"pdfquery/internal/chromemdb"
	"pdfquery/internal/config"
	"pdfquery/internal/db"
	"pdfquery/internal/embedding"
	"pdfquery/internal/extract"
	"pdfquery/internal/helper"
	"pdfquery/internal/index"
	"pdfquery/internal/llmservice"
	"pdfquery/internal/models"
	"pdfquery/internal/parser"
	"pdfquery/internal/rag"
)

// State tracks the workflow position of the single active session.
type State int

const (
	StateEmpty State = iota
	StateUploaded
	StateProcessed
	StateAnswerable
)

func (s State) String() string {
	switch s {
	case StateUploaded:
		return "uploaded"
	case StateProcessed:
		return "processed"
	case StateAnswerable:
		return "answerable"
	default:
		return "empty"
	}
}

// Pipeline selects which document-to-answer pipeline a processing run feeds.
type Pipeline string

const (
	PipelineRAG     Pipeline = "rag"
	PipelineExtract Pipeline = "extract"
)

// StagedFile is an uploaded file held in memory until processing saves it.
type StagedFile struct {
	Name string
	Data []byte
}

// Session owns the process-wide singletons (embedder, generative models,
// index handle) and all per-upload derived state. The mutex serializes
// user actions: each runs to completion before the next is accepted.
type Session struct {
	mu sync.Mutex

	cfg          *config.Config
	embedder     embeddings.Embedder
	chatModel    llms.Model
	extractModel llms.Model
	idx          index.Index

	staged   []StagedFile
	pages    []models.PageText
	pipeline Pipeline
	variant  extract.SchemaVariant
	runID    string
	state    State
}

// New constructs the session with its expensive collaborators built once
// for the process lifetime.
func New(cfg *config.Config) (*Session, error) {
	embedder, err := embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}
	chatModel, err := llmservice.NewOllamaModel(&cfg.ChatLLM)
	if err != nil {
		return nil, fmt.Errorf("initializing chat model: %w", err)
	}

	// the hosted extraction client needs an API key; without one the
	// extract pipeline stays unavailable but RAG still works
	var extractModel llms.Model
	if cfg.ExtractLLM.Key != "" {
		extractModel, err = llmservice.NewOpenAIModel(&cfg.ExtractLLM)
		if err != nil {
			return nil, fmt.Errorf("initializing extraction model: %w", err)
		}
	} else {
		log.Warn().Str("env", cfg.ExtractLLM.KeyEnv).Msg("No hosted API key set, extraction pipeline disabled")
	}

	var idx index.Index
	if cfg.Database.Enabled {
		sqldb, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		idx = db.NewPGIndex(db.NewDB(sqldb, cfg.Database.Debug))
	} else {
		manager, err := chromemdb.NewVectorDBManager(cfg.RAG.IndexPath, cfg.RAG.Collection, false)
		if err != nil {
			return nil, fmt.Errorf("creating vector database manager: %w", err)
		}
		idx = manager
	}

	return NewWithDeps(cfg, embedder, chatModel, extractModel, idx), nil
}

// NewWithDeps wires a session from pre-built collaborators.
func NewWithDeps(cfg *config.Config, embedder embeddings.Embedder, chatModel, extractModel llms.Model, idx index.Index) *Session {
	return &Session{
		cfg:          cfg,
		embedder:     embedder,
		chatModel:    chatModel,
		extractModel: extractModel,
		idx:          idx,
		pipeline:     PipelineRAG,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

func (s *Session) Variant() extract.SchemaVariant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variant
}

// SetVariant fixes the extraction schema for the session.
func (s *Session) SetVariant(v extract.SchemaVariant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variant = v
}

// Upload replaces the staged file set. Any prior derived state (pages,
// run id, processed flag) is destroyed; the index itself is replaced on
// the next processing run. Only files with the .pdf extension are
// accepted, the match is case-sensitive.
func (s *Session) Upload(files []StagedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accepted []StagedFile
	for _, f := range files {
		if filepath.Ext(f.Name) != ".pdf" {
			return fmt.Errorf("only PDF files are accepted, got %q", f.Name)
		}
		accepted = append(accepted, f)
	}
	if len(accepted) == 0 {
		return fmt.Errorf("no files uploaded")
	}

	s.staged = accepted
	s.pages = nil
	s.runID = ""
	s.state = StateUploaded
	log.Info().Int("files", len(accepted)).Msg("Staged uploaded files")
	return nil
}

// Process wipes and recreates the working directory, saves the staged
// files, loads and chunks the documents, and for the RAG pipeline builds
// a fresh vector index. A save failure skips that file only; a parse
// failure aborts the whole run.
func (s *Session) Process(ctx context.Context, pipeline Pipeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEmpty || len(s.staged) == 0 {
		return fmt.Errorf("no uploaded files to process")
	}
	if pipeline != PipelineRAG && pipeline != PipelineExtract {
		return fmt.Errorf("unknown pipeline: %q", pipeline)
	}

	dataDir := s.cfg.RAG.DataDir
	if err := os.RemoveAll(dataDir); err != nil {
		return fmt.Errorf("clearing working directory: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating working directory: %w", err)
	}

	saved := 0
	for _, f := range s.staged {
		if err := os.WriteFile(filepath.Join(dataDir, f.Name), f.Data, 0o644); err != nil {
			log.Error().Err(err).Str("file", f.Name).Msg("Error saving file, skipping")
			continue
		}
		saved++
	}
	if saved == 0 {
		return fmt.Errorf("no files could be saved to %s", dataDir)
	}

	pages, err := parser.LoadPages(dataDir)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no text extracted from uploaded files")
	}

	if pipeline == PipelineRAG {
		chunks := parser.ChunkPages(pages, &s.cfg.RAG)
		chunkEmbeddings, err := embedding.GenerateEmbeddings(ctx, s.embedder, chunks)
		if err != nil {
			return fmt.Errorf("generating embeddings: %w", err)
		}
		docs := make([]index.Document, len(chunkEmbeddings))
		for i, ce := range chunkEmbeddings {
			docs[i] = index.Document{
				ID:        fmt.Sprintf("%s-p%d-c%d", ce.SourceFilename, ce.PageNumber, ce.ChunkID),
				Content:   ce.Content,
				Embedding: ce.Embedding,
				Metadata: map[string]string{
					"source": ce.SourceFilename,
					"page":   fmt.Sprintf("%d", ce.PageNumber),
				},
			}
		}
		if err := s.idx.Rebuild(ctx, docs); err != nil {
			return fmt.Errorf("rebuilding index: %w", err)
		}
	}

	runID, err := helper.GenerateUUID()
	if err != nil {
		log.Warn().Err(err).Msg("Could not tag processing run")
	}

	s.pages = pages
	s.pipeline = pipeline
	s.runID = runID
	s.state = StateProcessed
	// a retriever or extraction context now exists, questions are allowed
	s.state = StateAnswerable

	log.Info().Str("run_id", runID).Str("pipeline", string(pipeline)).
		Int("pages", len(pages)).Msg("Processed uploaded documents")
	return nil
}

// Ask answers a question through the retrieval-augmented pipeline.
func (s *Session) Ask(ctx context.Context, question string) (*models.PromptResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnswerable {
		return nil, fmt.Errorf("no processed documents, state is %s", s.state)
	}
	if s.pipeline != PipelineRAG {
		return nil, fmt.Errorf("session was processed for the %s pipeline", s.pipeline)
	}
	r := rag.NewRAG(s.idx, s.embedder, s.chatModel, s.cfg)
	return r.Query(ctx, question)
}

// Extract runs the structured extraction batch over all loaded pages.
func (s *Session) Extract(ctx context.Context) ([]models.ExtractionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnswerable {
		return nil, fmt.Errorf("no processed documents, state is %s", s.state)
	}
	if s.extractModel == nil {
		return nil, fmt.Errorf("extraction pipeline is not configured, set %s", s.cfg.ExtractLLM.KeyEnv)
	}
	e := extract.NewExtractor(s.extractModel, s.variant, &s.cfg.ExtractLLM)
	return e.ExtractAll(ctx, s.pages)
}
