package pgvector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgv "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"audio-vectorize/internal/vectorstore"
)

// containerRow records a collection even before it holds any chunk.
type containerRow struct {
	DatabaseName   string `gorm:"primaryKey;size:128"`
	CollectionName string `gorm:"primaryKey;size:128"`
	CreatedAt      time.Time
}

func (containerRow) TableName() string { return "vector_containers" }

type chunkRow struct {
	ID             uuid.UUID  `gorm:"primaryKey;type:uuid"`
	DatabaseName   string     `gorm:"size:128;not null;index:idx_vector_chunks_container"`
	CollectionName string     `gorm:"size:128;not null;index:idx_vector_chunks_container"`
	FileID         string     `gorm:"size:36;not null;index"`
	ChunkIndex     int        `gorm:"not null"`
	Text           string     `gorm:"type:text;not null"`
	Embedding      pgv.Vector `gorm:"type:vector"`
	CreatedAt      time.Time
}

func (chunkRow) TableName() string { return "vector_chunks" }

type scoredRow struct {
	chunkRow
	Score float64
}

// Store keeps chunks in a Postgres table with a pgvector column.
type Store struct {
	db *gorm.DB
}

// New migrates the vector tables on db; the pgvector extension must be installable.
func New(db *gorm.DB) (*Store, error) {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enable pgvector extension failed: %w", err)
	}
	if err := db.AutoMigrate(&containerRow{}, &chunkRow{}); err != nil {
		return nil, fmt.Errorf("migrate vector tables failed: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) ListContainers(ctx context.Context) ([]vectorstore.Container, error) {
	var rows []containerRow
	if err := s.db.WithContext(ctx).Order("database_name, collection_name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list vector containers failed: %w", err)
	}
	out := make([]vectorstore.Container, len(rows))
	for i, r := range rows {
		out[i] = vectorstore.Container{Database: r.DatabaseName, Collection: r.CollectionName}
	}
	return out, nil
}

func (s *Store) EnsureCollection(ctx context.Context, c vectorstore.Container) error {
	if !c.Valid() {
		return vectorstore.ErrInvalidContainer
	}
	row := containerRow{DatabaseName: c.Database, CollectionName: c.Collection, CreatedAt: time.Now()}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("create vector container failed: %w", err)
	}
	return nil
}

func (s *Store) DropCollection(ctx context.Context, c vectorstore.Container) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("database_name = ? AND collection_name = ?", c.Database, c.Collection).
			Delete(&chunkRow{}).Error; err != nil {
			return fmt.Errorf("delete vector chunks failed: %w", err)
		}
		if err := tx.Where("database_name = ? AND collection_name = ?", c.Database, c.Collection).
			Delete(&containerRow{}).Error; err != nil {
			return fmt.Errorf("delete vector container failed: %w", err)
		}
		return nil
	})
}

func (s *Store) GetByFileID(ctx context.Context, c vectorstore.Container, fileID string) ([]vectorstore.Chunk, error) {
	var rows []chunkRow
	if err := s.db.WithContext(ctx).
		Where("database_name = ? AND collection_name = ? AND file_id = ?", c.Database, c.Collection, fileID).
		Order("chunk_index").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get vector chunks failed: %w", err)
	}
	out := make([]vectorstore.Chunk, len(rows))
	for i, r := range rows {
		out[i] = r.toChunk()
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, c vectorstore.Container, chunks []vectorstore.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.EnsureCollection(ctx, c); err != nil {
		return err
	}
	rows := make([]chunkRow, len(chunks))
	for i, chunk := range chunks {
		rows[i] = chunkRow{
			ID:             uuid.New(),
			DatabaseName:   c.Database,
			CollectionName: c.Collection,
			FileID:         chunk.FileID,
			ChunkIndex:     chunk.Index,
			Text:           chunk.Text,
			Embedding:      pgv.NewVector(chunk.Embedding),
		}
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert vector chunks failed: %w", err)
	}
	return nil
}

func (s *Store) DeleteByFileID(ctx context.Context, c vectorstore.Container, fileID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("database_name = ? AND collection_name = ? AND file_id = ?", c.Database, c.Collection, fileID).
		Delete(&chunkRow{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete vector chunks failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Search orders by cosine distance; score is 1 - distance.
func (s *Store) Search(ctx context.Context, c vectorstore.Container, vector []float32, topK int) ([]vectorstore.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	query := pgv.NewVector(vector)
	var rows []scoredRow
	err := s.db.WithContext(ctx).Model(&chunkRow{}).
		Select("*, 1 - (embedding <=> ?) AS score", query).
		Where("database_name = ? AND collection_name = ?", c.Database, c.Collection).
		Order(clause.OrderBy{Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{query}}}).
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("pgvector search failed: %w", err)
	}
	out := make([]vectorstore.SearchResult, len(rows))
	for i, r := range rows {
		out[i] = vectorstore.SearchResult{Chunk: r.toChunk(), Score: r.Score}
	}
	return out, nil
}

func (r chunkRow) toChunk() vectorstore.Chunk {
	return vectorstore.Chunk{FileID: r.FileID, Index: r.ChunkIndex, Text: r.Text, Embedding: r.Embedding.Slice()}
}
