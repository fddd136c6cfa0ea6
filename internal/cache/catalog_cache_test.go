package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audio-vectorize/internal/model"
)

func newCache(t *testing.T) (*CatalogCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCatalogCache(client, time.Minute), mr
}

func TestListingRoundTripAndInvalidate(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	_, hit, err := c.GetListing(ctx, "a@b.c")
	require.NoError(t, err)
	assert.False(t, hit)

	pairs := []model.DatabaseCollection{{
		Database:   model.Database{ID: uuid.New(), Name: "podcasts", Email: "a@b.c"},
		Collection: model.Collection{ID: uuid.New(), Name: "episodes"},
	}}
	require.NoError(t, c.SetListing(ctx, "A@b.c ", pairs))

	got, hit, err := c.GetListing(ctx, "a@b.c")
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got, 1)
	assert.Equal(t, "podcasts", got[0].Database.Name)
	assert.Equal(t, pairs[0].Collection.ID, got[0].Collection.ID)

	require.NoError(t, c.Invalidate(ctx, "a@b.c"))
	_, hit, err = c.GetListing(ctx, "a@b.c")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestListingExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetListing(ctx, "x@y.z", []model.DatabaseCollection{}))
	mr.FastForward(2 * time.Minute)

	_, hit, err := c.GetListing(ctx, "x@y.z")
	require.NoError(t, err)
	assert.False(t, hit)
}
