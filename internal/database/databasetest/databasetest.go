// Package databasetest opens throwaway bolt databases for tests.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bloops-games/wordlebot/internal/database"
)

// NewDB opens a bolt file in a per-test temp dir, closed on cleanup.
func NewDB(tb testing.TB) *database.DB {
	tb.Helper()

	ctx := context.Background()
	db, err := database.NewFromEnv(ctx, &database.Config{FilePath: filepath.Join(tb.TempDir(), "test.db")})
	if err != nil {
		tb.Fatalf("open: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close(ctx) })

	return db
}
