package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelos/internal/db"
	"channelos/internal/migrate"
	"channelos/internal/store"
)

func newSQLite(t *testing.T) *store.SQLite {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	_, err = migrate.Migrate(context.Background(), conn)
	require.NoError(t, err)
	s := store.NewSQLite(conn)
	s.Now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { s.Close() })
	return s
}

func newRedis(t *testing.T) (*store.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := store.NewRedis(&redis.Options{Addr: mr.Addr()}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestBackends(t *testing.T) {
	redisStore, _ := newRedis(t)
	backends := map[string]store.KV{
		"sqlite": newSQLite(t),
		"redis":  redisStore,
	}
	for name, kv := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := kv.Get(ctx, "missing")
			assert.ErrorIs(t, err, store.ErrNotFound)

			require.NoError(t, kv.Put(ctx, "channel-os:ideas", []byte(`[{"title":"A"}]`)))
			got, err := kv.Get(ctx, "channel-os:ideas")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"title":"A"}]`, string(got))

			require.NoError(t, kv.Put(ctx, "channel-os:ideas", []byte(`[]`)))
			got, err = kv.Get(ctx, "channel-os:ideas")
			require.NoError(t, err)
			assert.Equal(t, "[]", string(got))
		})
	}
}

func TestRedisNamespacing(t *testing.T) {
	s, mr := newRedis(t)
	require.NoError(t, s.Put(context.Background(), "k", []byte("v")))
	got, err := mr.Get("channelos:test:k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	require.NoError(t, s.Ping(context.Background()))
}

func TestRedisRequiresNamespace(t *testing.T) {
	_, err := store.NewRedis(&redis.Options{Addr: "127.0.0.1:0"}, "")
	assert.Error(t, err)
}
