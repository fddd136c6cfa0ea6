package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"audio-vectorize/internal/vectorstore"
)

// Store is an in-process vector store using brute-force cosine similarity.
type Store struct {
	mu         sync.RWMutex
	containers map[vectorstore.Container][]vectorstore.Chunk
}

func NewStore() *Store {
	return &Store{containers: make(map[vectorstore.Container][]vectorstore.Chunk)}
}

func (s *Store) ListContainers(ctx context.Context) ([]vectorstore.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vectorstore.Container, 0, len(s.containers))
	for c := range s.containers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Database != out[j].Database {
			return out[i].Database < out[j].Database
		}
		return out[i].Collection < out[j].Collection
	})
	return out, nil
}

func (s *Store) EnsureCollection(ctx context.Context, c vectorstore.Container) error {
	if !c.Valid() {
		return vectorstore.ErrInvalidContainer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.containers[c]; !ok {
		s.containers[c] = nil
	}
	return nil
}

func (s *Store) DropCollection(ctx context.Context, c vectorstore.Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.containers, c)
	return nil
}

func (s *Store) GetByFileID(ctx context.Context, c vectorstore.Container, fileID string) ([]vectorstore.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []vectorstore.Chunk
	for _, chunk := range s.containers[c] {
		if chunk.FileID == fileID {
			out = append(out, chunk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (s *Store) Insert(ctx context.Context, c vectorstore.Container, chunks []vectorstore.Chunk) error {
	if !c.Valid() {
		return vectorstore.ErrInvalidContainer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers[c] = append(s.containers[c], chunks...)
	return nil
}

func (s *Store) DeleteByFileID(ctx context.Context, c vectorstore.Container, fileID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.containers[c]
	if !ok {
		return 0, nil
	}
	kept := existing[:0]
	var removed int64
	for _, chunk := range existing {
		if chunk.FileID == fileID {
			removed++
			continue
		}
		kept = append(kept, chunk)
	}
	s.containers[c] = kept
	return removed, nil
}

func (s *Store) Search(ctx context.Context, c vectorstore.Container, vector []float32, topK int) ([]vectorstore.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := s.containers[c]
	results := make([]vectorstore.SearchResult, 0, len(chunks))
	for _, chunk := range chunks {
		results = append(results, vectorstore.SearchResult{Chunk: chunk, Score: cosine(vector, chunk.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
