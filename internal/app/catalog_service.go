package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"audio-vectorize/internal/model"
	"audio-vectorize/internal/repository"
	"audio-vectorize/internal/vectorstore"
)

// ListingCache caches the databases-and-collections listing per email.
type ListingCache interface {
	GetListing(ctx context.Context, email string) ([]model.DatabaseCollection, bool, error)
	SetListing(ctx context.Context, email string, pairs []model.DatabaseCollection) error
	Invalidate(ctx context.Context, email string) error
}

// CatalogService manages databases and collections in both stores.
type CatalogService struct {
	databases   *repository.DatabaseRepository
	collections *repository.CollectionRepository
	store       vectorstore.Store
	cache       ListingCache
}

func NewCatalogService(
	databases *repository.DatabaseRepository,
	collections *repository.CollectionRepository,
	store vectorstore.Store,
	cache ListingCache,
) *CatalogService {
	return &CatalogService{
		databases:   databases,
		collections: collections,
		store:       store,
		cache:       cache,
	}
}

func (s *CatalogService) CreateDatabase(ctx context.Context, email, name string) (*model.Database, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil, ErrInvalidInput
	}

	database, err := s.databases.CreateForEmail(email, name)
	if errors.Is(err, repository.ErrDuplicateName) {
		return nil, ErrNameTaken
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, email)
	return database, nil
}

// DeleteDatabase removes the database with its collections and files, then
// drops the matching vector containers.
func (s *CatalogService) DeleteDatabase(ctx context.Context, rawID string) error {
	id, err := parseID(rawID, ErrDatabaseNotFound)
	if err != nil {
		return err
	}
	database, err := s.databases.GetWithCollections(id)
	if err != nil {
		return err
	}
	if database == nil {
		return ErrDatabaseNotFound
	}

	deleted, err := s.databases.DeleteByID(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrDatabaseNotFound
	}

	for _, c := range database.Collections {
		s.dropContainer(ctx, vectorstore.Container{Database: database.Name, Collection: c.Name})
	}
	s.invalidate(ctx, database.Email)
	return nil
}

func (s *CatalogService) CreateCollection(ctx context.Context, name, rawDatabaseID string) (*model.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	databaseID, err := parseID(rawDatabaseID, ErrDatabaseNotFound)
	if err != nil {
		return nil, err
	}
	database, err := s.databases.GetByID(databaseID)
	if err != nil {
		return nil, err
	}
	if database == nil {
		return nil, ErrDatabaseNotFound
	}

	collection, err := s.collections.Create(name, databaseID)
	if errors.Is(err, repository.ErrDuplicateName) {
		return nil, ErrNameTaken
	}
	if err != nil {
		return nil, err
	}

	container := vectorstore.Container{Database: database.Name, Collection: collection.Name}
	if err := s.store.EnsureCollection(ctx, container); err != nil {
		log.Printf("ensure vector collection %s/%s failed: %v", container.Database, container.Collection, err)
	}
	s.invalidate(ctx, database.Email)
	return collection, nil
}

func (s *CatalogService) DeleteCollection(ctx context.Context, rawID string) error {
	id, err := parseID(rawID, ErrCollectionNotFound)
	if err != nil {
		return err
	}
	collection, err := s.collections.GetByID(id)
	if err != nil {
		return err
	}
	if collection == nil {
		return ErrCollectionNotFound
	}
	database, err := s.databases.GetByID(collection.DatabaseID)
	if err != nil {
		return err
	}

	deleted, err := s.collections.DeleteByID(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCollectionNotFound
	}

	if database != nil {
		s.dropContainer(ctx, vectorstore.Container{Database: database.Name, Collection: collection.Name})
		s.invalidate(ctx, database.Email)
	}
	return nil
}

// ListDatabasesAndCollections returns every (database, collection) pair owned by email.
func (s *CatalogService) ListDatabasesAndCollections(ctx context.Context, email string) ([]model.DatabaseCollection, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		pairs, hit, err := s.cache.GetListing(ctx, email)
		if err != nil {
			log.Printf("listing cache read failed: %v", err)
		} else if hit {
			return pairs, nil
		}
	}

	pairs, err := s.databases.ListWithCollectionsByEmail(email)
	if err != nil {
		return nil, err
	}
	if pairs == nil {
		pairs = []model.DatabaseCollection{}
	}
	if s.cache != nil {
		if err := s.cache.SetListing(ctx, email, pairs); err != nil {
			log.Printf("listing cache write failed: %v", err)
		}
	}
	return pairs, nil
}

// ListVectorCollections reports what actually exists in the vector store.
func (s *CatalogService) ListVectorCollections(ctx context.Context) (map[string][]string, error) {
	containers, err := s.store.ListContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vector containers failed: %w", err)
	}
	return vectorstore.GroupByDatabase(containers), nil
}

func (s *CatalogService) dropContainer(ctx context.Context, c vectorstore.Container) {
	if err := s.store.DropCollection(ctx, c); err != nil {
		log.Printf("drop vector collection %s/%s failed: %v", c.Database, c.Collection, err)
	}
}

func (s *CatalogService) invalidate(ctx context.Context, email string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, email); err != nil {
		log.Printf("listing cache invalidate failed: %v", err)
	}
}
