// Package ragadapter is the default implementation of the context
// assembler's RAG block: an embedded chromem-go document store plus a BM25
// ranker over the stored text, returning the top-K chunks for a goal trimmed
// to a token budget.
//
// chromem-go gives the store persistence and a real vector-similarity path,
// but nothing in this repo computes semantic embeddings (there is no
// embedder component), so ranking is done lexically: BM25 over the stored
// chunk text, the same algorithm a from-scratch RAG block would use.
package ragadapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/utils"
)

// Chunk is one retrieved passage, scored against a goal.
type Chunk struct {
	ID       string
	Text     string
	Score    float64
	Metadata map[string]string
}

// Config configures the adapter.
type Config struct {
	// PersistPath enables file persistence of the chromem-go store. Empty
	// means in-memory only.
	PersistPath string
	// Model selects the tiktoken encoding used to trim results to budget.
	Model string
}

// Adapter stores chunks in chromem-go for durability and ranks them with
// BM25 for retrieval.
type Adapter struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	persistPath string
	bm25       *bm25Index
	counter    *utils.TokenCounter
}

const collectionName = "context"

// New builds an Adapter, loading a persisted store from cfg.PersistPath if
// one already exists there.
func New(cfg Config) (*Adapter, error) {
	db, err := openStore(cfg.PersistPath)
	if err != nil {
		return nil, err
	}

	// embeddingFunc is never actually invoked for ranking (BM25 handles
	// that); chromem-go requires one to create a collection regardless.
	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return hashEmbedding(text), nil
	}
	col, err := db.GetOrCreateCollection(collectionName, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create context collection: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	counter, err := utils.NewTokenCounter(model)
	if err != nil {
		return nil, fmt.Errorf("failed to build token counter: %w", err)
	}

	return &Adapter{
		db:          db,
		collection:  col,
		persistPath: cfg.PersistPath,
		bm25:        newBM25Index(),
		counter:     counter,
	}, nil
}

func openStore(persistPath string) (*chromem.DB, error) {
	if persistPath == "" {
		return chromem.NewDB(), nil
	}
	if err := os.MkdirAll(persistPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create persist directory: %w", err)
	}
	dbPath := persistPath + "/rag.gob"
	if _, err := os.Stat(dbPath); err == nil {
		db, err := chromem.NewPersistentDB(dbPath, false)
		if err != nil {
			slog.Warn("failed to load existing rag store, starting fresh", "path", dbPath, "error", err)
			return chromem.NewDB(), nil
		}
		return db, nil
	}
	return chromem.NewDB(), nil
}

// AddDocument indexes text under id, both in the durable chromem-go store
// and in the in-memory BM25 corpus used for ranking.
func (a *Adapter) AddDocument(ctx context.Context, id, text string, metadata map[string]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc := chromem.Document{
		ID:        id,
		Content:   text,
		Metadata:  metadata,
		Embedding: hashEmbedding(text),
	}
	if err := a.collection.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to store document %q: %w", id, err)
	}

	a.bm25.add(id, text, metadata)

	if a.persistPath != "" {
		if err := a.db.Export(a.persistPath+"/rag.gob", false, ""); err != nil {
			slog.Warn("failed to persist rag store", "error", err)
		}
	}
	return nil
}

// TopK returns the k highest-BM25-scoring chunks for goal.
func (a *Adapter) TopK(goal string, k int) []Chunk {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bm25.topK(goal, k)
}

// DefaultTokenBudget is the approximate size of the RAG block appended to a
// specialist's system prompt.
const DefaultTokenBudget = 3000

// Context renders the top-K chunks for goal into a single text block,
// trimmed to maxTokens (DefaultTokenBudget if zero). Chunks are taken in
// ranked order until the next one would exceed the budget.
func (a *Adapter) Context(goal string, k int, maxTokens int) string {
	if maxTokens <= 0 {
		maxTokens = DefaultTokenBudget
	}
	chunks := a.TopK(goal, k)
	if len(chunks) == 0 {
		return ""
	}

	var out string
	budget := maxTokens
	for _, c := range chunks {
		block := fmt.Sprintf("### %s\n%s\n\n", c.ID, c.Text)
		tokens := a.counter.Count(block)
		if tokens > budget {
			break
		}
		out += block
		budget -= tokens
	}
	return out
}
