// Package repotest builds throwaway in-memory stores for tests.
package repotest

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/water_backoffice/internal/repo"
	"github.com/Skotchmaster/water_backoffice/pkg/db"
)

// New opens a private in-memory sqlite database, migrates and seeds it.
func New(t testing.TB) *repo.GormRepo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg := db.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	gdb, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := repo.New(gdb)
	require.NoError(t, r.Migrate(context.Background()))
	require.NoError(t, r.Seed(context.Background(), repo.AdminSeed{}))
	return r
}
