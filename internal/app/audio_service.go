package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"audio-vectorize/internal/model"
	"audio-vectorize/internal/repository"
	"audio-vectorize/internal/transcribe"
	"audio-vectorize/internal/vectorstore"
)

const defaultTopK = 5

type Transcriber interface {
	Transcribe(ctx context.Context, r io.Reader, format string) (string, error)
}

// CleanupScheduler hands orphaned rows and chunks to the compensation worker.
type CleanupScheduler interface {
	Schedule(ctx context.Context, job model.CleanupJob) error
}

// AudioFile is one uploaded file; Open may be called once.
type AudioFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

func (f AudioFile) info() model.FileInfo {
	return model.FileInfo{Name: f.Name, Size: f.Size, ContentType: f.ContentType}
}

type UploadInput struct {
	DatabaseID   string
	CollectionID string
	Files        []AudioFile
	Chunk        vectorstore.ChunkOptions
}

type UploadResult struct {
	Successful   []string
	Unsuccessful int
}

type UpdateInput struct {
	DatabaseID   string
	CollectionID string
	FileID       string
	File         AudioFile
	Chunk        vectorstore.ChunkOptions
}

type SearchInput struct {
	DatabaseID   string
	CollectionID string
	Query        string
	TopK         int
}

type AudioService struct {
	databases   *repository.DatabaseRepository
	collections *repository.CollectionRepository
	files       *repository.FileRepository
	transcriber Transcriber
	indexer     *vectorstore.Indexer
	cleanup     CleanupScheduler
}

func NewAudioService(
	databases *repository.DatabaseRepository,
	collections *repository.CollectionRepository,
	files *repository.FileRepository,
	transcriber Transcriber,
	indexer *vectorstore.Indexer,
	cleanup CleanupScheduler,
) *AudioService {
	return &AudioService{
		databases:   databases,
		collections: collections,
		files:       files,
		transcriber: transcriber,
		indexer:     indexer,
		cleanup:     cleanup,
	}
}

// target resolves the database and collection an operation writes into.
func (s *AudioService) target(rawDatabaseID, rawCollectionID string) (*model.Database, *model.Collection, error) {
	databaseID, err := parseID(rawDatabaseID, ErrDatabaseNotFound)
	if err != nil {
		return nil, nil, err
	}
	database, err := s.databases.GetByID(databaseID)
	if err != nil {
		return nil, nil, err
	}
	if database == nil {
		return nil, nil, ErrDatabaseNotFound
	}

	collectionID, err := parseID(rawCollectionID, ErrCollectionNotFound)
	if err != nil {
		return nil, nil, err
	}
	collection, err := s.collections.GetByID(collectionID)
	if err != nil {
		return nil, nil, err
	}
	if collection == nil || collection.DatabaseID != database.ID {
		return nil, nil, ErrCollectionNotFound
	}
	return database, collection, nil
}

func checkFormats(files ...AudioFile) error {
	for _, f := range files {
		if !transcribe.Supported(model.FormatOf(f.Name)) {
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Name)
		}
	}
	return nil
}

func (s *AudioService) transcribe(ctx context.Context, f AudioFile) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s failed: %w", f.Name, err)
	}
	defer rc.Close()

	text, err := s.transcriber.Transcribe(ctx, rc, model.FormatOf(f.Name))
	if err != nil {
		return "", fmt.Errorf("transcribe %s failed: %w", f.Name, err)
	}
	return text, nil
}

// Upload transcribes, persists and indexes each file in order. The first
// failing file stops the batch; the result still lists what succeeded.
func (s *AudioService) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	result := UploadResult{Successful: []string{}, Unsuccessful: len(in.Files)}

	database, collection, err := s.target(in.DatabaseID, in.CollectionID)
	if err != nil {
		return result, err
	}
	if len(in.Files) == 0 {
		return result, fmt.Errorf("%w: no files", ErrInvalidInput)
	}
	if err := in.Chunk.Validate(); err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := checkFormats(in.Files...); err != nil {
		return result, err
	}

	container := vectorstore.Container{Database: database.Name, Collection: collection.Name}
	for _, f := range in.Files {
		if err := s.ingest(ctx, container, collection, f, in.Chunk); err != nil {
			return result, err
		}
		result.Successful = append(result.Successful, f.Name)
		result.Unsuccessful = len(in.Files) - len(result.Successful)
	}
	return result, nil
}

func (s *AudioService) ingest(ctx context.Context, container vectorstore.Container, collection *model.Collection, f AudioFile, opts vectorstore.ChunkOptions) error {
	text, err := s.transcribe(ctx, f)
	if err != nil {
		return err
	}

	file, err := s.files.Create(f.info(), collection.ID)
	if err != nil {
		return fmt.Errorf("save %s failed: %w", f.Name, err)
	}

	n, err := s.indexer.InsertText(ctx, container, file.ID.String(), text, opts)
	if err != nil {
		s.scheduleCleanup(ctx, model.CleanupJob{
			FileID:      file.ID.String(),
			Database:    container.Database,
			Collection:  container.Collection,
			DropFileRow: true,
			Reason:      "index failed after upload",
		})
		return fmt.Errorf("index %s failed: %w", f.Name, err)
	}
	log.Printf("uploaded %s as %s: %d chunks in %s/%s", f.Name, file.ID, n, container.Database, container.Collection)
	return nil
}

// Update re-transcribes a stored file from a new upload and replaces its chunks and metadata.
func (s *AudioService) Update(ctx context.Context, in UpdateInput) error {
	database, collection, err := s.target(in.DatabaseID, in.CollectionID)
	if err != nil {
		return err
	}
	fileID, err := parseID(in.FileID, ErrFileNotFound)
	if err != nil {
		return err
	}
	file, err := s.files.GetByID(fileID)
	if err != nil {
		return err
	}
	if file == nil || file.CollectionID != collection.ID {
		return ErrFileNotFound
	}
	if in.File.Open == nil {
		return fmt.Errorf("%w: no files", ErrInvalidInput)
	}
	if err := in.Chunk.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := checkFormats(in.File); err != nil {
		return err
	}

	text, err := s.transcribe(ctx, in.File)
	if err != nil {
		return err
	}
	container := vectorstore.Container{Database: database.Name, Collection: collection.Name}
	if _, err := s.indexer.UpdateText(ctx, container, file.ID.String(), text, in.Chunk); err != nil {
		return fmt.Errorf("reindex %s failed: %w", file.ID, err)
	}
	if _, err := s.files.Update(file.ID, in.File.info()); err != nil {
		return fmt.Errorf("update file %s failed: %w", file.ID, err)
	}
	return nil
}

func (s *AudioService) GetFile(ctx context.Context, rawID string) (*model.File, error) {
	id, err := parseID(rawID, ErrFileNotFound)
	if err != nil {
		return nil, err
	}
	file, err := s.files.GetByID(id)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrFileNotFound
	}
	return file, nil
}

// container finds the vector container a stored file was indexed into.
func (s *AudioService) container(file *model.File) (vectorstore.Container, error) {
	collection, err := s.collections.GetByID(file.CollectionID)
	if err != nil {
		return vectorstore.Container{}, err
	}
	if collection == nil {
		return vectorstore.Container{}, ErrCollectionNotFound
	}
	database, err := s.databases.GetByID(collection.DatabaseID)
	if err != nil {
		return vectorstore.Container{}, err
	}
	if database == nil {
		return vectorstore.Container{}, ErrDatabaseNotFound
	}
	return vectorstore.Container{Database: database.Name, Collection: collection.Name}, nil
}

// DeleteFile removes the file row and then its chunks. A failed chunk delete
// is handed to the cleanup worker when one is configured.
func (s *AudioService) DeleteFile(ctx context.Context, rawID string) error {
	file, err := s.GetFile(ctx, rawID)
	if err != nil {
		return err
	}
	container, err := s.container(file)
	if err != nil {
		return err
	}

	deleted, err := s.files.DeleteByID(file.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrFileNotFound
	}

	if _, err := s.indexer.DeleteFile(ctx, container, file.ID.String()); err != nil {
		if s.cleanup == nil {
			return err
		}
		if schedErr := s.cleanup.Schedule(ctx, model.CleanupJob{
			FileID:     file.ID.String(),
			Database:   container.Database,
			Collection: container.Collection,
			Reason:     "chunk delete failed",
		}); schedErr != nil {
			return errors.Join(err, schedErr)
		}
		log.Printf("chunk delete for %s deferred to cleanup worker: %v", file.ID, err)
	}
	return nil
}

// GetFileChunks returns the stored transcript chunks of a file in the given container.
func (s *AudioService) GetFileChunks(ctx context.Context, rawFileID, rawDatabaseID, rawCollectionID string) ([]vectorstore.Chunk, error) {
	database, collection, err := s.target(rawDatabaseID, rawCollectionID)
	if err != nil {
		return nil, err
	}
	file, err := s.GetFile(ctx, rawFileID)
	if err != nil {
		return nil, err
	}
	container := vectorstore.Container{Database: database.Name, Collection: collection.Name}
	chunks, err := s.indexer.Store().GetByFileID(ctx, container, file.ID.String())
	if err != nil {
		return nil, fmt.Errorf("load chunks failed: %w", err)
	}
	if chunks == nil {
		chunks = []vectorstore.Chunk{}
	}
	return chunks, nil
}

func (s *AudioService) Search(ctx context.Context, in SearchInput) ([]vectorstore.SearchResult, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidInput)
	}
	database, collection, err := s.target(in.DatabaseID, in.CollectionID)
	if err != nil {
		return nil, err
	}
	topK := in.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	container := vectorstore.Container{Database: database.Name, Collection: collection.Name}
	results, err := s.indexer.Search(ctx, container, query, topK)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []vectorstore.SearchResult{}
	}
	return results, nil
}

func (s *AudioService) scheduleCleanup(ctx context.Context, job model.CleanupJob) {
	if s.cleanup == nil {
		log.Printf("no cleanup queue, leaving file %s for manual repair (%s)", job.FileID, job.Reason)
		return
	}
	if err := s.cleanup.Schedule(ctx, job); err != nil {
		log.Printf("schedule cleanup for %s failed: %v", job.FileID, err)
	}
}
