package app_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audio-vectorize/internal/app"
	"audio-vectorize/internal/model"
	"audio-vectorize/internal/repository"
	"audio-vectorize/internal/testutil"
	"audio-vectorize/internal/vectorstore/memory"
)

type mapCache struct {
	entries     map[string][]model.DatabaseCollection
	invalidated []string
}

func (m *mapCache) GetListing(_ context.Context, email string) ([]model.DatabaseCollection, bool, error) {
	pairs, ok := m.entries[email]
	return pairs, ok, nil
}

func (m *mapCache) SetListing(_ context.Context, email string, pairs []model.DatabaseCollection) error {
	m.entries[email] = pairs
	return nil
}

func (m *mapCache) Invalidate(_ context.Context, email string) error {
	delete(m.entries, email)
	m.invalidated = append(m.invalidated, email)
	return nil
}

func TestCreateCollectionEnsuresVectorContainer(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	grouped, err := h.catalog.ListVectorCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"lectures": {"week-1"}}, grouped)
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.catalog.CreateDatabase(ctx, "", "x")
	assert.ErrorIs(t, err, app.ErrInvalidInput)

	_, err = h.catalog.CreateCollection(ctx, "week-1", uuid.NewString())
	assert.ErrorIs(t, err, app.ErrDatabaseNotFound)

	dbID, _ := h.seed(t)
	_, err = h.catalog.CreateDatabase(ctx, "bob@example.com", "lectures")
	assert.ErrorIs(t, err, app.ErrNameTaken)
	_, err = h.catalog.CreateCollection(ctx, "week-1", dbID)
	assert.ErrorIs(t, err, app.ErrNameTaken)
}

func TestDeleteDatabaseDropsEverything(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	dbID, colID := h.seed(t)

	_, err := h.audio.Upload(ctx, app.UploadInput{
		DatabaseID: dbID, CollectionID: colID,
		Files: []app.AudioFile{upload("a.mp3", "the cat")},
		Chunk: chunking,
	})
	require.NoError(t, err)

	require.NoError(t, h.catalog.DeleteDatabase(ctx, dbID))

	grouped, err := h.catalog.ListVectorCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, grouped)

	pairs, err := h.catalog.ListDatabasesAndCollections(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Empty(t, pairs)

	assert.ErrorIs(t, h.catalog.DeleteDatabase(ctx, dbID), app.ErrDatabaseNotFound)
	assert.ErrorIs(t, h.catalog.DeleteDatabase(ctx, "bogus"), app.ErrDatabaseNotFound)
}

func TestDeleteCollection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, colID := h.seed(t)

	require.NoError(t, h.catalog.DeleteCollection(ctx, colID))
	assert.ErrorIs(t, h.catalog.DeleteCollection(ctx, colID), app.ErrCollectionNotFound)

	grouped, err := h.catalog.ListVectorCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, grouped)
}

func TestListingUsesAndInvalidatesCache(t *testing.T) {
	db := testutil.NewDB(t)
	cache := &mapCache{entries: map[string][]model.DatabaseCollection{}}
	catalog := app.NewCatalogService(
		repository.NewDatabaseRepository(db),
		repository.NewCollectionRepository(db),
		memory.NewStore(),
		cache,
	)
	ctx := context.Background()

	database, err := catalog.CreateDatabase(ctx, "Ada@Example.com", "lectures")
	require.NoError(t, err)
	_, err = catalog.CreateCollection(ctx, "week-1", database.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com", "ada@example.com"}, cache.invalidated)

	pairs, err := catalog.ListDatabasesAndCollections(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "week-1", pairs[0].Collection.Name)
	require.Contains(t, cache.entries, "ada@example.com")

	// served from cache: the stale entry is returned until invalidated
	cache.entries["ada@example.com"] = nil
	pairs, err = catalog.ListDatabasesAndCollections(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}
