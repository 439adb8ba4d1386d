package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	t.Run("identical params produce identical keys", func(t *testing.T) {
		a := Fingerprint("ns:", map[string]string{"q": "dune", "page": "2"})
		b := Fingerprint("ns:", map[string]string{"page": "2", "q": "dune"})
		assert.Equal(t, a, b)
	})

	t.Run("empty values are dropped", func(t *testing.T) {
		a := Fingerprint("ns:", map[string]string{"q": "dune", "genre": ""})
		b := Fingerprint("ns:", map[string]string{"q": "dune"})
		assert.Equal(t, a, b)
	})

	t.Run("different params produce different keys", func(t *testing.T) {
		a := Fingerprint("ns:", map[string]string{"q": "dune"})
		b := Fingerprint("ns:", map[string]string{"q": "hyperion"})
		assert.NotEqual(t, a, b)
	})

	t.Run("namespace prefixes the key", func(t *testing.T) {
		key := Fingerprint("books:listing:", map[string]string{"q": "dune"})
		assert.Contains(t, key, "books:listing:")
	})
}

func TestMemoryStore(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		store := NewMemoryStore()
		store.Set("a", []byte("value"), time.Minute)

		value, ok := store.Get("a")
		require.True(t, ok)
		assert.Equal(t, []byte("value"), value)
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		store := NewMemoryStore()
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return now }

		store.Set("a", []byte("value"), time.Minute)

		now = now.Add(2 * time.Minute)
		_, ok := store.Get("a")
		assert.False(t, ok)
	})

	t.Run("delete prefix only removes matching keys", func(t *testing.T) {
		store := NewMemoryStore()
		store.Set("books:listing:1", []byte("x"), time.Minute)
		store.Set("books:listing:2", []byte("y"), time.Minute)
		store.Set("other:1", []byte("z"), time.Minute)

		store.DeletePrefix("books:listing:")

		_, ok := store.Get("books:listing:1")
		assert.False(t, ok)
		_, ok = store.Get("other:1")
		assert.True(t, ok)
	})

	t.Run("flush removes everything", func(t *testing.T) {
		store := NewMemoryStore()
		store.Set("a", []byte("x"), time.Minute)
		store.Set("b", []byte("y"), time.Minute)

		store.Flush()
		assert.Equal(t, 0, store.Len())
	})

	t.Run("sweep reaps only expired entries", func(t *testing.T) {
		store := NewMemoryStore()
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return now }

		store.Set("short", []byte("x"), time.Minute)
		store.Set("long", []byte("y"), time.Hour)

		now = now.Add(10 * time.Minute)
		removed := store.Sweep()

		assert.Equal(t, 1, removed)
		assert.Equal(t, 1, store.Len())
		_, ok := store.Get("long")
		assert.True(t, ok)
	})
}

func TestQueryCache(t *testing.T) {
	params := map[string]string{"q": "dune", "page": "1"}

	t.Run("computes on miss and serves from cache after", func(t *testing.T) {
		cache := NewQueryCache(NewMemoryStore(), time.Minute)

		calls := 0
		compute := func() ([]byte, error) {
			calls++
			return []byte("result"), nil
		}

		value, err := cache.GetOrCompute(params, compute)
		require.NoError(t, err)
		assert.Equal(t, []byte("result"), value)

		value, err = cache.GetOrCompute(params, compute)
		require.NoError(t, err)
		assert.Equal(t, []byte("result"), value)
		assert.Equal(t, 1, calls)
	})

	t.Run("compute failure stores nothing", func(t *testing.T) {
		cache := NewQueryCache(NewMemoryStore(), time.Minute)

		_, err := cache.GetOrCompute(params, func() ([]byte, error) {
			return nil, fmt.Errorf("db closed")
		})
		require.Error(t, err)

		calls := 0
		value, err := cache.GetOrCompute(params, func() ([]byte, error) {
			calls++
			return []byte("recovered"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, []byte("recovered"), value)
		assert.Equal(t, 1, calls)
	})

	t.Run("invalidate all forces recompute", func(t *testing.T) {
		cache := NewQueryCache(NewMemoryStore(), time.Minute)

		calls := 0
		compute := func() ([]byte, error) {
			calls++
			return []byte(fmt.Sprintf("result %d", calls)), nil
		}

		first, err := cache.GetOrCompute(params, compute)
		require.NoError(t, err)

		cache.InvalidateAll()

		second, err := cache.GetOrCompute(params, compute)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
		assert.Equal(t, 2, calls)
	})

	t.Run("different params cache independently", func(t *testing.T) {
		cache := NewQueryCache(NewMemoryStore(), time.Minute)

		a, err := cache.GetOrCompute(map[string]string{"q": "dune"}, func() ([]byte, error) {
			return []byte("a"), nil
		})
		require.NoError(t, err)
		b, err := cache.GetOrCompute(map[string]string{"q": "hyperion"}, func() ([]byte, error) {
			return []byte("b"), nil
		})
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})
}
