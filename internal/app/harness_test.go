package app_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"audio-vectorize/internal/app"
	"audio-vectorize/internal/model"
	"audio-vectorize/internal/repository"
	"audio-vectorize/internal/testutil"
	"audio-vectorize/internal/vectorstore"
	"audio-vectorize/internal/vectorstore/memory"
)

// scriptTranscriber "transcribes" an upload by returning its body, or fails
// for file bodies starting with "fail".
type scriptTranscriber struct {
	calls []string
}

func (s *scriptTranscriber) Transcribe(_ context.Context, r io.Reader, _ string) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	text := string(body)
	s.calls = append(s.calls, text)
	if strings.HasPrefix(text, "fail") {
		return "", errors.New("recognizer rejected " + text)
	}
	return text, nil
}

type wordEmbedder struct{}

func (wordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return wordVector(text), nil
}

func (wordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = wordVector(t)
	}
	return out, nil
}

func wordVector(text string) []float32 {
	return []float32{
		float32(strings.Count(text, "cat")),
		float32(strings.Count(text, "dog")),
		0.1,
	}
}

// flakyStore fails inserts or deletes on demand.
type flakyStore struct {
	*memory.Store
	failInsert bool
	failDelete bool
}

func (f *flakyStore) Insert(ctx context.Context, c vectorstore.Container, chunks []vectorstore.Chunk) error {
	if f.failInsert {
		return errors.New("vector store unavailable")
	}
	return f.Store.Insert(ctx, c, chunks)
}

func (f *flakyStore) DeleteByFileID(ctx context.Context, c vectorstore.Container, fileID string) (int64, error) {
	if f.failDelete {
		return 0, errors.New("vector store unavailable")
	}
	return f.Store.DeleteByFileID(ctx, c, fileID)
}

type jobRecorder struct {
	jobs []model.CleanupJob
}

func (j *jobRecorder) Schedule(_ context.Context, job model.CleanupJob) error {
	j.jobs = append(j.jobs, job)
	return nil
}

type harness struct {
	files       *repository.FileRepository
	store       *flakyStore
	transcriber *scriptTranscriber
	jobs        *jobRecorder
	audio       *app.AudioService
	catalog     *app.CatalogService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	databases := repository.NewDatabaseRepository(db)
	collections := repository.NewCollectionRepository(db)
	files := repository.NewFileRepository(db)

	h := &harness{
		files:       files,
		store:       &flakyStore{Store: memory.NewStore()},
		transcriber: &scriptTranscriber{},
		jobs:        &jobRecorder{},
	}
	indexer := vectorstore.NewIndexer(h.store, wordEmbedder{})
	h.audio = app.NewAudioService(databases, collections, files, h.transcriber, indexer, h.jobs)
	h.catalog = app.NewCatalogService(databases, collections, h.store, nil)
	return h
}

// seed creates a database with one collection and returns their ids.
func (h *harness) seed(t *testing.T) (databaseID, collectionID string) {
	t.Helper()
	ctx := context.Background()
	database, err := h.catalog.CreateDatabase(ctx, "ada@example.com", "lectures")
	require.NoError(t, err)
	collection, err := h.catalog.CreateCollection(ctx, "week-1", database.ID.String())
	require.NoError(t, err)
	return database.ID.String(), collection.ID.String()
}

func upload(name, body string) app.AudioFile {
	return app.AudioFile{
		Name:        name,
		Size:        int64(len(body)),
		ContentType: "audio/mpeg",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

var chunking = vectorstore.ChunkOptions{Size: 40, Overlap: 5}
