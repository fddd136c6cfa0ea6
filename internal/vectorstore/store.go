package vectorstore

import (
	"context"
	"errors"
)

var (
	ErrInvalidContainer  = errors.New("database and collection names are required")
	ErrDimensionMismatch = errors.New("chunks and vectors length mismatch")
)

// Container addresses one collection inside one database of the vector store.
// Names mirror the relational Database and Collection names.
type Container struct {
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

func (c Container) Valid() bool {
	return c.Database != "" && c.Collection != ""
}

// Chunk is a piece of a file's transcript plus its embedding.
type Chunk struct {
	FileID    string    `json:"file_id"`
	Index     int       `json:"chunk_index"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
}

type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Store persists embedded chunks grouped by container.
type Store interface {
	ListContainers(ctx context.Context) ([]Container, error)
	EnsureCollection(ctx context.Context, c Container) error
	DropCollection(ctx context.Context, c Container) error
	GetByFileID(ctx context.Context, c Container, fileID string) ([]Chunk, error)
	Insert(ctx context.Context, c Container, chunks []Chunk) error
	DeleteByFileID(ctx context.Context, c Container, fileID string) (int64, error)
	Search(ctx context.Context, c Container, vector []float32, topK int) ([]SearchResult, error)
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GroupByDatabase folds containers into database name -> collection names.
func GroupByDatabase(containers []Container) map[string][]string {
	grouped := make(map[string][]string)
	for _, c := range containers {
		grouped[c.Database] = append(grouped[c.Database], c.Collection)
	}
	return grouped
}
