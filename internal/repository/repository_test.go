package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audio-vectorize/internal/model"
	"audio-vectorize/internal/repository"
	"audio-vectorize/internal/testutil"
)

func TestCreateForEmailCreatesUserOnce(t *testing.T) {
	db := testutil.NewDB(t)
	databases := repository.NewDatabaseRepository(db)
	users := repository.NewUserRepository(db)

	first, err := databases.CreateForEmail("ada@example.com", "lectures")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)

	_, err = databases.CreateForEmail("ada@example.com", "podcasts")
	require.NoError(t, err)

	count, err := users.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	user, err := users.GetByEmail("ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestCreateForEmailRejectsDuplicateName(t *testing.T) {
	db := testutil.NewDB(t)
	databases := repository.NewDatabaseRepository(db)

	_, err := databases.CreateForEmail("ada@example.com", "lectures")
	require.NoError(t, err)
	_, err = databases.CreateForEmail("bob@example.com", "lectures")
	require.Error(t, err)
}

func TestGetMissReturnsNil(t *testing.T) {
	db := testutil.NewDB(t)

	database, err := repository.NewDatabaseRepository(db).GetByID(uuid.New())
	require.NoError(t, err)
	assert.Nil(t, database)

	collection, err := repository.NewCollectionRepository(db).GetByID(uuid.New())
	require.NoError(t, err)
	assert.Nil(t, collection)

	file, err := repository.NewFileRepository(db).GetByID(uuid.New())
	require.NoError(t, err)
	assert.Nil(t, file)
}

func TestFileCreateThenGet(t *testing.T) {
	db := testutil.NewDB(t)
	database, err := repository.NewDatabaseRepository(db).CreateForEmail("ada@example.com", "lectures")
	require.NoError(t, err)
	collection, err := repository.NewCollectionRepository(db).Create("week-1", database.ID)
	require.NoError(t, err)

	files := repository.NewFileRepository(db)
	created, err := files.Create(model.FileInfo{Name: "intro.MP3", Size: 2048, ContentType: "audio/mpeg"}, collection.ID)
	require.NoError(t, err)

	got, err := files.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "intro.MP3", got.Name)
	assert.Equal(t, int64(2048), got.Size)
	assert.Equal(t, "audio/mpeg", got.Type)
	assert.Equal(t, "mp3", got.Format)
	assert.Equal(t, collection.ID, got.CollectionID)
}

func TestFileUpdateReplacesMetadata(t *testing.T) {
	db := testutil.NewDB(t)
	database, err := repository.NewDatabaseRepository(db).CreateForEmail("ada@example.com", "lectures")
	require.NoError(t, err)
	collection, err := repository.NewCollectionRepository(db).Create("week-1", database.ID)
	require.NoError(t, err)

	files := repository.NewFileRepository(db)
	created, err := files.Create(model.FileInfo{Name: "intro.mp3", Size: 10, ContentType: "audio/mpeg"}, collection.ID)
	require.NoError(t, err)

	ok, err := files.Update(created.ID, model.FileInfo{Name: "intro-v2.wav", Size: 99, ContentType: "audio/wav"})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := files.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "intro-v2.wav", got.Name)
	assert.Equal(t, int64(99), got.Size)
	assert.Equal(t, "wav", got.Format)
	assert.False(t, got.UpdatedAt.Before(created.UpdatedAt))

	ok, err = files.Update(uuid.New(), model.FileInfo{Name: "x.wav"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteDatabaseCascades(t *testing.T) {
	db := testutil.NewDB(t)
	databases := repository.NewDatabaseRepository(db)
	collections := repository.NewCollectionRepository(db)
	files := repository.NewFileRepository(db)

	database, err := databases.CreateForEmail("ada@example.com", "lectures")
	require.NoError(t, err)
	c1, err := collections.Create("week-1", database.ID)
	require.NoError(t, err)
	c2, err := collections.Create("week-2", database.ID)
	require.NoError(t, err)
	f1, err := files.Create(model.FileInfo{Name: "a.wav"}, c1.ID)
	require.NoError(t, err)
	f2, err := files.Create(model.FileInfo{Name: "b.wav"}, c2.ID)
	require.NoError(t, err)

	deleted, err := databases.DeleteByID(database.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	for _, id := range []uuid.UUID{c1.ID, c2.ID} {
		got, err := collections.GetByID(id)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	for _, id := range []uuid.UUID{f1.ID, f2.ID} {
		got, err := files.GetByID(id)
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	deleted, err = databases.DeleteByID(database.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteCollectionCascadesToFilesOnly(t *testing.T) {
	db := testutil.NewDB(t)
	databases := repository.NewDatabaseRepository(db)
	collections := repository.NewCollectionRepository(db)
	files := repository.NewFileRepository(db)

	database, err := databases.CreateForEmail("ada@example.com", "lectures")
	require.NoError(t, err)
	keep, err := collections.Create("keep", database.ID)
	require.NoError(t, err)
	drop, err := collections.Create("drop", database.ID)
	require.NoError(t, err)
	kept, err := files.Create(model.FileInfo{Name: "a.wav"}, keep.ID)
	require.NoError(t, err)
	gone, err := files.Create(model.FileInfo{Name: "b.wav"}, drop.ID)
	require.NoError(t, err)

	deleted, err := collections.DeleteByID(drop.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := files.GetByID(gone.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = files.GetByID(kept.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	stillThere, err := databases.GetByID(database.ID)
	require.NoError(t, err)
	assert.NotNil(t, stillThere)
}

func TestListWithCollectionsByEmail(t *testing.T) {
	db := testutil.NewDB(t)
	databases := repository.NewDatabaseRepository(db)
	collections := repository.NewCollectionRepository(db)

	lectures, err := databases.CreateForEmail("ada@example.com", "lectures")
	require.NoError(t, err)
	_, err = databases.CreateForEmail("ada@example.com", "empty")
	require.NoError(t, err)
	other, err := databases.CreateForEmail("bob@example.com", "bobs")
	require.NoError(t, err)
	_, err = collections.Create("week-1", lectures.ID)
	require.NoError(t, err)
	_, err = collections.Create("week-2", lectures.ID)
	require.NoError(t, err)
	_, err = collections.Create("bob-1", other.ID)
	require.NoError(t, err)

	pairs, err := databases.ListWithCollectionsByEmail("ada@example.com")
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	names := []string{pairs[0].Collection.Name, pairs[1].Collection.Name}
	assert.ElementsMatch(t, []string{"week-1", "week-2"}, names)
	for _, p := range pairs {
		assert.Equal(t, "lectures", p.Database.Name)
		assert.Empty(t, p.Database.Collections)
	}

	none, err := databases.ListWithCollectionsByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}
