package service

import (
	"context"
	"path/filepath"
	"testing"

	"simplelink/internal/repository"
	"simplelink/internal/shortcode"
	"simplelink/pkg/database"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return repository.NewStore(db)
}

func newTestLinkService(t *testing.T, store *repository.Store) *LinkService {
	t.Helper()
	logger := zap.NewNop().Sugar()
	return NewLinkService(store, repository.NewLinkCache(nil, 0, 0), shortcode.NewGenerator(logger), logger)
}

func mustCreate(t *testing.T, s *LinkService, owner uint, in CreateLinkInput) uint {
	t.Helper()
	link, err := s.Create(context.Background(), owner, in)
	require.NoError(t, err)
	return link.ID
}
