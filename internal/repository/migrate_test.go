package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audio-vectorize/internal/repository"
	"audio-vectorize/internal/testutil"
)

func TestUUIDColumnType(t *testing.T) {
	assert.Equal(t, "uuid", string(repository.UUIDColumnType("postgres")))
	assert.Equal(t, "char(36)", string(repository.UUIDColumnType("mysql")))
	assert.Equal(t, "char(36)", string(repository.UUIDColumnType("sqlite")))
}

func TestMigrateStoresIDsAsText(t *testing.T) {
	db := testutil.NewDB(t)

	for _, table := range []string{"databases", "collections", "files"} {
		var ddl string
		require.NoError(t, db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&ddl).Error)
		assert.Contains(t, ddl, "char(36)", table)
		assert.NotContains(t, ddl, "blob", table)
	}
}
