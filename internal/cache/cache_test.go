package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

func TestCacheContract(t *testing.T) {
	backends := map[string]func(t *testing.T) store{
		"memory": func(t *testing.T) store {
			return NewMemoryCache()
		},
		"sqlite": func(t *testing.T) store {
			c, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "stats.db"))
			require.NoError(t, err)
			t.Cleanup(func() { c.Close() })
			return c
		},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := open(t)

			v, err := c.Get(ctx, "stats:short_term")
			require.NoError(t, err)
			assert.Nil(t, v, "absent key")

			require.NoError(t, c.Put(ctx, "stats:short_term", []byte(`{"minutesListened":1}`)))
			require.NoError(t, c.Put(ctx, "stats:short_term", []byte(`{"minutesListened":2}`)))

			v, err = c.Get(ctx, "stats:short_term")
			require.NoError(t, err)
			assert.Equal(t, `{"minutesListened":2}`, string(v))

			require.NoError(t, c.Delete(ctx, "stats:short_term"))
			require.NoError(t, c.Delete(ctx, "stats:short_term"), "second delete")

			v, err = c.Get(ctx, "stats:short_term")
			require.NoError(t, err)
			assert.Nil(t, v)
		})
	}
}

func TestSQLiteCachePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stats.db")

	c, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "k", []byte("v")))
	require.NoError(t, c.Close())

	c, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer c.Close()

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	buf := []byte("abc")
	require.NoError(t, c.Put(ctx, "k", buf))
	buf[0] = 'x'

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}
