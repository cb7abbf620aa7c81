package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "defecthunt.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpen_Migrates(t *testing.T) {
	s, _ := openTestStore(t)

	v, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	var journal string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journal))
	assert.Equal(t, "wal", journal)
}

func TestStore_GetPut(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	_, ok, err := s.Get(ctx, "completions/alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "completions/alice", []byte(`[1]`)))
	require.NoError(t, s.Put(ctx, "completions/alice", []byte(`[1,2]`)))

	v, ok, err := s.Get(ctx, "completions/alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(v))
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)
	require.NoError(t, s.Put(ctx, "badges/bob", []byte(`["x"]`)))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "badges/bob")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["x"]`, string(v))

	version, err := reopened.Version()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestStore_ClosedFails(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.Close())

	_, _, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.Put(context.Background(), "k", []byte("v")))
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("007_more.sql")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = parseVersion("nounderscore.sql")
	assert.Error(t, err)
	_, err = parseVersion("abc_x.sql")
	assert.Error(t, err)
}
