package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdfquery/internal/config"
	"pdfquery/internal/index"
)

type Document struct {
	bun.BaseModel  `bun:"table:documents,alias:d"`
	ID             int64     `bun:"id,pk,autoincrement"`
	Content        string    `bun:"content,notnull"`
	Embedding      []float32 `bun:"embedding,notnull,type:vector(768)"`
	SourceFilename string    `bun:"source_filename"`
	PageNumber     int       `bun:"page_number"`
	ChunkID        int       `bun:"chunk_id"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

func DropDocuments(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx)
	return err
}

func StoreDocuments(ctx context.Context, db *bun.DB, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&docs).Exec(ctx)
	return err
}

func SearchDocuments(ctx context.Context, db *bun.DB, queryEmbedding []float32, limit int) ([]Document, error) {
	var docs []Document
	err := db.NewSelect().
		Model(&docs).
		Column("id", "content", "source_filename", "page_number", "chunk_id").
		OrderExpr("embedding <-> ?", queryEmbedding).
		Limit(limit).
		Scan(ctx)
	return docs, err
}

// PGIndex is the pgvector-backed variant of the vector index. Rebuilding
// drops and recreates the documents table.
type PGIndex struct {
	db *bun.DB
}

func NewPGIndex(db *bun.DB) *PGIndex {
	return &PGIndex{db: db}
}

func (p *PGIndex) Rebuild(ctx context.Context, docs []index.Document) error {
	if err := DropDocuments(ctx, p.db); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	if err := InitDB(ctx, p.db); err != nil {
		return fmt.Errorf("initializing documents table: %w", err)
	}

	rows := make([]Document, len(docs))
	for i, doc := range docs {
		rows[i] = Document{
			Content:   doc.Content,
			Embedding: doc.Embedding,
		}
		if doc.Metadata != nil {
			rows[i].SourceFilename = doc.Metadata["source"]
		}
	}
	return StoreDocuments(ctx, p.db, rows)
}

func (p *PGIndex) Search(ctx context.Context, queryEmbedding []float32, k int) ([]index.Result, error) {
	docs, err := SearchDocuments(ctx, p.db, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	results := make([]index.Result, len(docs))
	for i, doc := range docs {
		// pgvector orders by distance; per-result scores are not surfaced
		results[i] = index.Result{
			Content:  doc.Content,
			Metadata: map[string]string{"source": doc.SourceFilename},
		}
	}
	return results, nil
}
