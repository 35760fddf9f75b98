// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"testing"

	"go-inventory-po/internal/model"
	"go-inventory-po/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh migrated database that is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(database.SQLiteMemoryDSN("t"+uuid.NewString()), logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Product inserts a product with the given sku, name and stock.
func Product(t testing.TB, db *gorm.DB, sku, name string, qty int) *model.Product {
	t.Helper()

	p := &model.Product{SKU: sku, Name: name, Quantity: qty}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Quantity reads the current stock of a product straight from the table.
func Quantity(t testing.TB, db *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var p model.Product
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.Quantity
}

// ForceDeleteProduct removes a product while bypassing foreign keys, to
// simulate a row that disappears underneath a running operation.
func ForceDeleteProduct(t testing.TB, db *gorm.DB, id uuid.UUID) {
	t.Helper()

	require.NoError(t, db.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, db.Exec("DELETE FROM products WHERE id = ?", id).Error)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
}
