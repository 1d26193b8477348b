package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Items []string `json:"items"`
}

// runStoreSuite checks the behaviour every backend must share.
func runStoreSuite(t *testing.T, s Store, writers int) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "absent")
		assert.ErrorIs(t, err, ErrNotFound)

		v, found, err := GetJSON[doc](ctx, s, "absent")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, v.Items)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, SetJSON(ctx, s, "k1", doc{Items: []string{"a"}}))

		v, found, err := GetJSON[doc](ctx, s, "k1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"a"}, v.Items)

		require.NoError(t, s.Delete(ctx, "k1"))
		require.NoError(t, s.Delete(ctx, "k1"))
		_, err = s.Get(ctx, "k1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update sees nil for absent key", func(t *testing.T) {
		var seen []byte
		called := false
		err := s.Update(ctx, "fresh", func(current []byte) ([]byte, error) {
			called = true
			seen = current
			return []byte(`{"items":["x"]}`), nil
		})
		require.NoError(t, err)
		assert.True(t, called)
		assert.Nil(t, seen)

		raw, err := s.Get(ctx, "fresh")
		require.NoError(t, err)
		assert.JSONEq(t, `{"items":["x"]}`, string(raw))
	})

	t.Run("update error aborts write", func(t *testing.T) {
		require.NoError(t, SetJSON(ctx, s, "guarded", doc{Items: []string{"keep"}}))
		boom := errors.New("boom")

		_, err := UpdateJSON(ctx, s, "guarded", func(d *doc) error {
			d.Items = nil
			return boom
		})
		assert.ErrorIs(t, err, boom)

		v, _, err := GetJSON[doc](ctx, s, "guarded")
		require.NoError(t, err)
		assert.Equal(t, []string{"keep"}, v.Items)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := UpdateJSON(ctx, s, "counter", func(d *doc) error {
					d.Items = append(d.Items, "x")
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		v, _, err := GetJSON[doc](ctx, s, "counter")
		require.NoError(t, err)
		assert.Len(t, v.Items, writers)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore(), 50)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "k", []byte("abc")))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	v[0] = 'z'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStore(client, "test:")
	// Each failed WATCH implies another writer committed, so 8 writers never
	// exhaust the retry budget.
	runStoreSuite(t, s, 8)

	assert.True(t, mr.Exists("test:fresh"), "keys carry the configured prefix")
}

func TestNewRedisStoreFromURLRejectsBadURL(t *testing.T) {
	_, err := NewRedisStoreFromURL("not-a-url", "p:")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:u1:medications", MedicationsKey("u1"))
	assert.Equal(t, "user:u1:taken:2024-01-31", TakenKey("u1", "2024-01-31"))
	assert.Equal(t, "user:u1:conditions", ConditionsKey("u1"))
}
