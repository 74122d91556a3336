package chromemdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"pdfquery/internal/index"
)

// VectorDBManager encapsulates the chromem-go database operations. The
// database persists under dbPath; every rebuild drops and recreates the
// collection, replacing prior on-disk state wholesale.
type VectorDBManager struct {
	db             *chromem.DB
	collection     *chromem.Collection
	dbPath         string
	collectionName string
}

const compress = false

// NewVectorDBManager initializes a new vector database manager
func NewVectorDBManager(dbPath, collectionName string, inMemory bool) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	m := &VectorDBManager{
		db:             db,
		dbPath:         dbPath,
		collectionName: collectionName,
	}
	// attach to an existing collection if one was persisted earlier
	if c := db.GetCollection(collectionName, nil); c != nil {
		m.collection = c
	}
	return m, nil
}

// Rebuild drops the collection and re-adds all documents.
func (m *VectorDBManager) Rebuild(ctx context.Context, docs []index.Document) error {
	if err := m.db.DeleteCollection(m.collectionName); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	c, err := m.db.GetOrCreateCollection(m.collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create collection: %v", err)
	}
	m.collection = c

	if len(docs) == 0 {
		return nil
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromemDocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Metadata:  doc.Metadata,
			Embedding: doc.Embedding,
		}
	}

	log.Info().Msgf("Adding %d documents to vector database", len(chromemDocs))
	if err := c.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// Search performs a similarity query against the current collection.
func (m *VectorDBManager) Search(ctx context.Context, queryEmbedding []float32, k int) ([]index.Result, error) {
	if m.collection == nil {
		return nil, fmt.Errorf("collection %s does not exist, rebuild the index first", m.collectionName)
	}
	if queryEmbedding == nil {
		return nil, fmt.Errorf("query embedding must be provided")
	}
	if count := m.collection.Count(); k > count {
		k = count
	}
	if k == 0 {
		return nil, nil
	}

	results, err := m.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	out := make([]index.Result, len(results))
	for i, res := range results {
		out[i] = index.Result{
			Content:    res.Content,
			Metadata:   res.Metadata,
			Similarity: res.Similarity,
		}
	}
	return out, nil
}
