package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"audio-vectorize/internal/model"
)

type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) Create(name string, databaseID uuid.UUID) (*model.Collection, error) {
	collection := &model.Collection{Name: name, DatabaseID: databaseID}
	if err := r.db.Create(collection).Error; err != nil {
		return nil, fmt.Errorf("create collection failed: %w", translate(err))
	}
	return collection, nil
}

func (r *CollectionRepository) GetByID(id uuid.UUID) (*model.Collection, error) {
	var collection model.Collection
	if err := r.db.Where("id = ?", id).First(&collection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get collection failed: %w", err)
	}
	return &collection, nil
}

// DeleteByID removes the collection and its files in one transaction.
func (r *CollectionRepository) DeleteByID(id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&model.File{}).Error; err != nil {
			return fmt.Errorf("delete files by collection failed: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&model.Collection{})
		if result.Error != nil {
			return fmt.Errorf("delete collection failed: %w", result.Error)
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
