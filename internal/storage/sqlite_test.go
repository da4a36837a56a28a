package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSQLite(t *testing.T, path string) *SQLiteStore {
	st, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.RunMigrations())
	return st
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	st := setupTestSQLite(t, filepath.Join(t.TempDir(), "storefront.db"))
	ctx := context.Background()

	_, err := st.Get(ctx, "kasikotaCart")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Set(ctx, "kasikotaCart", []byte(`[{"id":"kota-1"}]`)))
	require.NoError(t, st.Set(ctx, "kasikotaCart", []byte(`[]`)))

	got, err := st.Get(ctx, "kasikotaCart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, st.Delete(ctx, "kasikotaCart"))
	_, err = st.Get(ctx, "kasikotaCart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.RunMigrations())
	require.NoError(t, first.Set(ctx, "kasikotaCart", []byte(`[{"id":"kota-2","quantity":3}]`)))
	require.NoError(t, first.Close())

	// a restarted process opens the same file and migrates again
	second := setupTestSQLite(t, path)

	got, err := second.Get(ctx, "kasikotaCart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"kota-2","quantity":3}]`, string(got))
}
