package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoice index", "add_invoice_index"},
		{"Add-Invoice-Index", "add_invoice_index"},
		{"ADD_INVOICE_INDEX", "add_invoice_index"},
		{"add__invoice__index", "add_invoice_index"},
		{"Add Notes 123", "add_notes_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add payment index", "Index payments by method")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_add_payment_index.up.sql", filepath.Base(first.UpPath))
	assert.Equal(t, "000001_add_payment_index.down.sql", filepath.Base(first.DownPath))

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add_payment_index")
	assert.Contains(t, string(up), "Index payments by method")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")

	second, err := CreateMigration(dir, "drop legacy column", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(dir, "init", "")
	require.NoError(t, err)

	_, err = os.Stat(mf.UpPath)
	assert.NoError(t, err)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000010_add_index.up.sql":      {Data: []byte("")},
		"000010_add_index.down.sql":    {Data: []byte("")},
		"000002_create_docs.up.sql":    {Data: []byte("")},
		"000002_create_docs.down.sql":  {Data: []byte("")},
		"README.md":                    {Data: []byte("")},
		"notes_without_version.up.sql": {Data: []byte("")},
		"archive/000001_old.up.sql":    {Data: []byte("")},
	}

	migrations, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, uint(2), migrations[0].Version)
	assert.Equal(t, "create_docs", migrations[0].Name)
	assert.Equal(t, "000010_add_index", migrations[1].BaseName())
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := ListMigrations(Embedded())
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i, mf := range migrations {
		assert.Equal(t, uint(i+1), mf.Version, "versions are contiguous")

		up, err := os.ReadFile(filepath.Join("sql", mf.UpPath))
		require.NoError(t, err)
		assert.NotEmpty(t, up)

		_, err = os.Stat(filepath.Join("sql", mf.DownPath))
		assert.NoError(t, err, "every migration has a rollback")
	}
}
