// Package retrieval provides best-effort knowledge-base lookup over an
// embedded chromem-go vector database. Retrieval failures are reported
// to the caller as errors but are expected to be absorbed: an empty
// knowledge section degrades answer quality, it never fails a turn.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"os"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// ErrInvalidConfig indicates invalid configuration.
var ErrInvalidConfig = errors.New("invalid retrieval configuration")

// Config holds knowledge-base settings.
type Config struct {
	// Path is the directory for persistent storage.
	Path string
	// Collection is the knowledge-base collection name.
	Collection string
	// TopK is the default number of hits per query.
	TopK int
	// EmbeddingBaseURL and EmbeddingAPIKey point the embedder at an
	// OpenAI-compatible endpoint; empty values fall back to chromem's
	// default (OPENAI_API_KEY environment).
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
	// Embedding overrides the embedding function entirely when set;
	// used by tests and callers with a custom embedder.
	Embedding chromem.EmbeddingFunc
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = "renovation_kb"
	}
	if c.TopK == 0 {
		c.TopK = 5
	}
}

// Document is one knowledge-base entry.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Result is one retrieval hit.
type Result struct {
	ID         string
	Content    string
	Similarity float32
	Metadata   map[string]string
}

// Store is the chromem-backed knowledge base.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	config     Config
	log        *zap.Logger
}

// NewStore opens (or creates) the knowledge base at config.Path.
func NewStore(config Config, log *zap.Logger) (*Store, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("%w: path required", ErrInvalidConfig)
	}
	if log == nil {
		log = zap.NewNop()
	}
	config.ApplyDefaults()

	if err := os.MkdirAll(config.Path, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", config.Path, err)
	}
	db, err := chromem.NewPersistentDB(config.Path, false)
	if err != nil {
		return nil, fmt.Errorf("creating chromem DB: %w", err)
	}

	embed := config.Embedding
	if embed == nil && config.EmbeddingBaseURL != "" {
		embed = chromem.NewEmbeddingFuncOpenAICompat(
			config.EmbeddingBaseURL,
			config.EmbeddingAPIKey,
			config.EmbeddingModel,
			nil,
		)
	}
	collection, err := db.GetOrCreateCollection(config.Collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", config.Collection, err)
	}

	log.Info("knowledge base opened",
		zap.String("path", config.Path),
		zap.String("collection", config.Collection),
		zap.Int("documents", collection.Count()))

	return &Store{db: db, collection: collection, config: config, log: log}, nil
}

// Add indexes documents into the knowledge base.
func (s *Store) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	chromemDocs := make([]chromem.Document, len(docs))
	for i, d := range docs {
		chromemDocs[i] = chromem.Document{
			ID:       d.ID,
			Content:  d.Content,
			Metadata: d.Metadata,
		}
	}
	if err := s.collection.AddDocuments(ctx, chromemDocs, 1); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}
	return nil
}

// Search returns up to k hits for the query, most similar first. k <= 0
// uses the configured default; k is clamped to the collection size
// because chromem rejects over-long queries.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if query == "" {
		return nil, nil
	}
	if k <= 0 {
		k = s.config.TopK
	}
	if count := s.collection.Count(); k > count {
		k = count
	}
	if k == 0 {
		return nil, nil
	}

	hits, err := s.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			ID:         h.ID,
			Content:    h.Content,
			Similarity: h.Similarity,
			Metadata:   h.Metadata,
		}
	}
	return results, nil
}

// Count reports how many documents are indexed.
func (s *Store) Count() int {
	return s.collection.Count()
}
