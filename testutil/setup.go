// Package testutil builds throwaway storage for tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/kasuganosora/tilecombat/cache"
	"github.com/kasuganosora/tilecombat/config"
	dbadapter "github.com/kasuganosora/tilecombat/db"
	"github.com/kasuganosora/tilecombat/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB opens a private in-memory SQLite database and migrates it.
// Each call gets its own database, shared by all of that DB's connections.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeSQLite,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SetupTestCache creates the in-process cache and pub/sub.
func SetupTestCache(t *testing.T) (cache.Cache, cache.PubSub) {
	t.Helper()
	c, ps, closeFn, err := cache.New(cache.CacheConfig{})
	require.NoError(t, err, "SetupTestCache: New")
	t.Cleanup(func() { _ = closeFn() })
	return c, ps
}
