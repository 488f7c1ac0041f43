package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func exerciseDatabase(t *testing.T, db Database) {
	t.Helper()

	_, err := db.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)

	ok, err := db.Has([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	value, err := db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), value)

	batch := NewBatch()
	batch.Put([]byte("a"), []byte("2"))
	batch.Put([]byte("b"), []byte("3"))
	require.Equal(t, 2, batch.Len())
	require.NoError(t, db.Write(batch))

	value, err = db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), value)
	value, err = db.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("3"), value)

	require.NoError(t, db.Write(NewBatch()))
}

func TestMemDB(t *testing.T) {
	db := NewMemDB()
	defer db.Close()
	exerciseDatabase(t, db)
}

func TestMemDBCopiesValues(t *testing.T) {
	db := NewMemDB()
	value := []byte("abc")
	require.NoError(t, db.Put([]byte("k"), value))
	value[0] = 'x'
	stored, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), stored)
}

func TestLevelDB(t *testing.T) {
	db, err := NewLevelDB(filepath.Join(t.TempDir(), "ledger"))
	require.NoError(t, err)
	defer db.Close()
	exerciseDatabase(t, db)
}

func TestLevelDBPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger")
	db, err := NewLevelDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	db.Close()

	reopened, err := NewLevelDB(path)
	require.NoError(t, err)
	defer reopened.Close()
	value, err := reopened.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), value)
}
