package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdfquery/internal/chromemdb"
	"pdfquery/internal/config"
	"pdfquery/internal/embedding"
	"pdfquery/internal/helper"
	"pdfquery/internal/llmservice"
	"pdfquery/internal/rag"
	"pdfquery/internal/server"
	"pdfquery/internal/session"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	// API keys may live in a local .env
	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	addr := flag.String("addr", "", "Listen address, overrides config")
	ingestDir := flag.String("ingest", "", "Directory of PDF files to index, then exit")
	query := flag.String("query", "", "Query to be answered against the persisted index, then exit")
	flag.Parse()

	cfg := loadConfig(*configPath)

	if *ingestDir != "" {
		ingest(context.Background(), cfg, *ingestDir)
		return
	}

	if *query != "" {
		runQuery(context.Background(), cfg, *query)
		return
	}

	serve(cfg, *addr)
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("Config file not found, using defaults")
			return config.Default()
		}
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")
	return cfg
}

func serve(cfg *config.Config, addr string) {
	sess, err := session.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing session")
	}

	if addr == "" {
		addr = cfg.Server.Addr
	}
	e := server.New(sess)
	log.Info().Str("addr", addr).Msg("Starting server")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// ingest stages every PDF in dir and runs a full RAG processing pass.
func ingest(ctx context.Context, cfg *config.Config, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading ingest directory")
	}

	var staged []session.StagedFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pdf" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Error().Err(err).Str("file", entry.Name()).Msg("Error reading file, skipping")
			continue
		}
		staged = append(staged, session.StagedFile{Name: entry.Name(), Data: data})
	}

	sess, err := session.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing session")
	}
	if err := sess.Upload(staged); err != nil {
		log.Fatal().Err(err).Msg("Error staging files")
	}
	if err := sess.Process(ctx, session.PipelineRAG); err != nil {
		log.Fatal().Err(err).Msg("Error processing documents")
	}
	log.Info().Str("run_id", sess.RunID()).Msg("Ingest complete")
}

// runQuery answers one question against the index persisted by a prior
// ingest or processing run.
func runQuery(ctx context.Context, cfg *config.Config, query string) {
	manager, err := chromemdb.NewVectorDBManager(cfg.RAG.IndexPath, cfg.RAG.Collection, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector database manager")
	}

	embedder, err := embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	model, err := llmservice.NewOllamaModel(&cfg.ChatLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat model")
	}

	r := rag.NewRAG(manager, embedder, model, cfg)
	response, err := r.Query(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Source: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Source)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	helper.PrettyPrint(response)
}
