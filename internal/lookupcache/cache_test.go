package lookupcache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "lookups.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetMiss(t *testing.T) {
	c := openTestCache(t)

	e, err := c.Get(context.Background(), "Acme in 1 Elm Troy NY 12180")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	want := Entry{Address: "1 Elm St, Troy, NY 12180", LookupType: "direct"}
	require.NoError(t, c.Put(ctx, "run-1", "Acme in 1 Elm Troy NY 12180", want))

	got, err := c.Get(ctx, "Acme in 1 Elm Troy NY 12180")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestGetIsCaseInsensitive(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "run-1", "Acme in 1 Elm Troy NY 12180", Entry{Address: "a", LookupType: "direct"}))

	got, err := c.Get(ctx, "  ACME in 1 elm troy ny 12180 ")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestPutReplacesExisting(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "run-1", "q", Entry{Address: "old", LookupType: "direct"}))
	require.NoError(t, c.Put(ctx, "run-2", "q", Entry{Address: "new", LookupType: "indirect"}))

	got, err := c.Get(ctx, "q")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.Address)
	assert.Equal(t, "indirect", got.LookupType)
}
