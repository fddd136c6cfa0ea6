package vectorstore

import (
	"context"
	"fmt"
)

// Embedder produces vectors for queries and documents.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer chunks and embeds transcripts before handing them to a Store.
type Indexer struct {
	store    Store
	embedder Embedder
}

func NewIndexer(store Store, embedder Embedder) *Indexer {
	return &Indexer{store: store, embedder: embedder}
}

func (ix *Indexer) Store() Store {
	return ix.store
}

// InsertText splits text, embeds every piece and stores it tagged with fileID.
// It returns the number of chunks written.
func (ix *Indexer) InsertText(ctx context.Context, c Container, fileID, text string, opts ChunkOptions) (int, error) {
	if !c.Valid() {
		return 0, ErrInvalidContainer
	}
	pieces, err := SplitText(text, opts)
	if err != nil {
		return 0, err
	}
	if len(pieces) == 0 {
		return 0, nil
	}

	vectors, err := ix.embedder.EmbedDocuments(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("embed chunks failed: %w", err)
	}
	if len(vectors) != len(pieces) {
		return 0, ErrDimensionMismatch
	}

	chunks := make([]Chunk, len(pieces))
	for i := range pieces {
		chunks[i] = Chunk{FileID: fileID, Index: i, Text: pieces[i], Embedding: vectors[i]}
	}
	if err := ix.store.Insert(ctx, c, chunks); err != nil {
		return 0, fmt.Errorf("insert chunks failed: %w", err)
	}
	return len(chunks), nil
}

// UpdateText removes every chunk tagged with fileID, then inserts the new text.
func (ix *Indexer) UpdateText(ctx context.Context, c Container, fileID, text string, opts ChunkOptions) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if _, err := ix.DeleteFile(ctx, c, fileID); err != nil {
		return 0, err
	}
	return ix.InsertText(ctx, c, fileID, text, opts)
}

func (ix *Indexer) DeleteFile(ctx context.Context, c Container, fileID string) (int64, error) {
	if !c.Valid() {
		return 0, ErrInvalidContainer
	}
	n, err := ix.store.DeleteByFileID(ctx, c, fileID)
	if err != nil {
		return 0, fmt.Errorf("delete chunks failed: %w", err)
	}
	return n, nil
}

func (ix *Indexer) Search(ctx context.Context, c Container, query string, topK int) ([]SearchResult, error) {
	if !c.Valid() {
		return nil, ErrInvalidContainer
	}
	vector, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}
	return ix.store.Search(ctx, c, vector, topK)
}
