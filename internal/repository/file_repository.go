package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"audio-vectorize/internal/model"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(info model.FileInfo, collectionID uuid.UUID) (*model.File, error) {
	now := time.Now()
	file := &model.File{
		Name:         info.Name,
		Size:         info.Size,
		Type:         info.ContentType,
		Format:       info.Format(),
		CollectionID: collectionID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.db.Create(file).Error; err != nil {
		return nil, fmt.Errorf("create file failed: %w", err)
	}
	return file, nil
}

func (r *FileRepository) GetByID(id uuid.UUID) (*model.File, error) {
	var file model.File
	if err := r.db.Where("id = ?", id).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file failed: %w", err)
	}
	return &file, nil
}

// Update replaces the stored metadata of file id. It reports whether a row matched.
func (r *FileRepository) Update(id uuid.UUID, info model.FileInfo) (bool, error) {
	result := r.db.Model(&model.File{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":       info.Name,
		"size":       info.Size,
		"type":       info.ContentType,
		"format":     info.Format(),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return false, fmt.Errorf("update file failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *FileRepository) DeleteByID(id uuid.UUID) (bool, error) {
	result := r.db.Where("id = ?", id).Delete(&model.File{})
	if result.Error != nil {
		return false, fmt.Errorf("delete file failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
