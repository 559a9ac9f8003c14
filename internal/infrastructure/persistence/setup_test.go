package persistence

import (
	"testing"

	"github.com/stockroom/backend/internal/infrastructure/persistence/testdb"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testdb.New(t)
}
