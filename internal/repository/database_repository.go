package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"audio-vectorize/internal/model"
)

type DatabaseRepository struct {
	db *gorm.DB
}

func NewDatabaseRepository(db *gorm.DB) *DatabaseRepository {
	return &DatabaseRepository{db: db}
}

// CreateForEmail creates the owning user on first use of email, then the database.
func (r *DatabaseRepository) CreateForEmail(email, name string) (*model.Database, error) {
	database := &model.Database{Email: email, Name: name}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where(model.User{Email: email}).
			Attrs(model.User{CreatedAt: time.Now()}).
			FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("ensure user failed: %w", err)
		}
		if err := tx.Create(database).Error; err != nil {
			return fmt.Errorf("create database failed: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return database, nil
}

func (r *DatabaseRepository) GetByID(id uuid.UUID) (*model.Database, error) {
	var database model.Database
	if err := r.db.Where("id = ?", id).First(&database).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get database failed: %w", err)
	}
	return &database, nil
}

// GetWithCollections loads the database together with its collections.
func (r *DatabaseRepository) GetWithCollections(id uuid.UUID) (*model.Database, error) {
	var database model.Database
	if err := r.db.Preload("Collections").Where("id = ?", id).First(&database).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get database with collections failed: %w", err)
	}
	return &database, nil
}

// DeleteByID removes the database, its collections and their files in one transaction.
// It reports whether a row was removed.
func (r *DatabaseRepository) DeleteByID(id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var collectionIDs []uuid.UUID
		if err := tx.Model(&model.Collection{}).Where("database_id = ?", id).Pluck("id", &collectionIDs).Error; err != nil {
			return fmt.Errorf("list collection ids failed: %w", err)
		}
		if len(collectionIDs) > 0 {
			if err := tx.Where("collection_id IN ?", collectionIDs).Delete(&model.File{}).Error; err != nil {
				return fmt.Errorf("delete files by database failed: %w", err)
			}
			if err := tx.Where("database_id = ?", id).Delete(&model.Collection{}).Error; err != nil {
				return fmt.Errorf("delete collections by database failed: %w", err)
			}
		}
		result := tx.Where("id = ?", id).Delete(&model.Database{})
		if result.Error != nil {
			return fmt.Errorf("delete database failed: %w", result.Error)
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// ListWithCollectionsByEmail returns every (database, collection) pair owned by
// email. Databases without collections are not listed.
func (r *DatabaseRepository) ListWithCollectionsByEmail(email string) ([]model.DatabaseCollection, error) {
	var databases []model.Database
	if err := r.db.Preload("Collections", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("email = ?", email).Order("created_at ASC").Find(&databases).Error; err != nil {
		return nil, fmt.Errorf("list databases and collections failed: %w", err)
	}

	pairs := make([]model.DatabaseCollection, 0)
	for _, database := range databases {
		collections := database.Collections
		database.Collections = nil
		for _, collection := range collections {
			pairs = append(pairs, model.DatabaseCollection{Database: database, Collection: collection})
		}
	}
	return pairs, nil
}
