package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../migrations"

var migrationNames = []string{
	"000001_create_users",
	"000002_create_categories",
	"000003_create_contacts",
}

func TestMigrationFilesExist(t *testing.T) {
	for _, name := range migrationNames {
		for _, suffix := range []string{".up.sql", ".down.sql"} {
			path := filepath.Join(migrationsDir, name+suffix)
			_, err := os.Stat(path)
			assert.NoError(t, err, "migration file does not exist: %s", path)
		}
	}
}

func TestMigrationFilesParseable(t *testing.T) {
	for _, name := range migrationNames {
		up, err := os.ReadFile(filepath.Join(migrationsDir, name+".up.sql"))
		require.NoError(t, err)
		assert.Contains(t, string(up), "CREATE TABLE", "%s up migration", name)

		down, err := os.ReadFile(filepath.Join(migrationsDir, name+".down.sql"))
		require.NoError(t, err)
		assert.Contains(t, string(down), "DROP TABLE", "%s down migration", name)
	}
}

func TestCategoriesAreSeeded(t *testing.T) {
	up, err := os.ReadFile(filepath.Join(migrationsDir, "000002_create_categories.up.sql"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(up), "INSERT INTO categories"))
}
