package source

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpcc-systems/Medley/ids"
)

func createTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE people (id INTEGER, fname TEXT, lname TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO people (id, fname, lname) VALUES (1, 'Alice', 'Smith'), (2, 'Bob', 'Jones')`)
	require.NoError(t, err)
	return path
}

func TestReadRecordsReturnsAllRows(t *testing.T) {
	path := createTestDB(t)
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	rows, err := src.ReadRecords("people", "id")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := make(map[ids.ID]Row)
	for _, r := range rows {
		byID[r.ID] = r
	}
	fname, ok := byID[1].Value("fname")
	assert.True(t, ok)
	assert.Equal(t, "Alice", fname)
}

func TestReadRecordsIDColumnExcludedFromFields(t *testing.T) {
	path := createTestDB(t)
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	rows, err := src.ReadRecords("people", "id")
	require.NoError(t, err)
	_, ok := rows[0].Value("id")
	assert.False(t, ok)
}

func TestReadRecordsUnknownTableErrors(t *testing.T) {
	path := createTestDB(t)
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.ReadRecords("nope", "id")
	assert.Error(t, err)
}
