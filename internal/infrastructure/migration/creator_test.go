package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/keyvault/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"Add Orders Table":      "add_orders_table",
		"add--payment  columns": "add_payment_columns",
		"trailing_":             "trailing",
		"__lead":                "lead",
		"!!!":                   "",
		"v2 search-index":       "v2_search_index",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeName(in), in)
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	first, err := CreateMigration(dir, "create products")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.FileExists(t, first.UpPath)
	assert.FileExists(t, first.DownPath)
	assert.Equal(t, "000001_create_products.up.sql", filepath.Base(first.UpPath))

	second, err := CreateMigration(dir, "Add Orders")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	content, err := os.ReadFile(second.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "add_orders (down)")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "???")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_orders.up.sql":     {},
		"000002_orders.down.sql":   {},
		"000001_products.up.sql":   {},
		"000003_orphan.down.sql":   {},
		"README.md":                {},
		"notes/000009_x.up.sql":    {},
		"000004_Bad-Name.up.sql":   {},
		"000010_triggers.up.sql":   {},
		"000010_triggers.down.sql": {},
	}

	got, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint(1), got[0].Version)
	assert.Equal(t, "products", got[0].Name)
	assert.Empty(t, got[0].DownPath)
	assert.Equal(t, uint(2), got[1].Version)
	assert.Equal(t, "000002_orders.down.sql", got[1].DownPath)
	assert.Equal(t, uint(10), got[2].Version)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	got, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	got, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for i, mf := range got {
		assert.Equal(t, uint(i+1), mf.Version, "versions are contiguous")
		assert.NotEmpty(t, mf.DownPath, "%s has a down file", mf.UpPath)
	}
}
