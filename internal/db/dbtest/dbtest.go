// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"

	"github.com/yatube/yatube/internal/db"
)

var seq atomic.Int64

// New returns a migrated in-memory SQLite database that is closed when the
// test finishes.
func New(tb testing.TB) *db.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, seq.Add(1))

	database, err := db.Open(sqlite.Open(dsn), "ERROR")
	if err != nil {
		tb.Fatalf("failed to open test database: %v", err)
	}
	tb.Cleanup(func() { _ = database.Close() })

	if err := database.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate test database: %v", err)
	}
	return database
}
