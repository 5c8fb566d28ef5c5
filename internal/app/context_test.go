package app_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelos/internal/app"
	"channelos/internal/config"
	"channelos/internal/db"
)

func TestOpenSQLiteCreatesWorkspace(t *testing.T) {
	dir := t.TempDir()
	rt, err := app.Open(context.Background(), dir, nil)
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, config.BackendSQLite, rt.Backend)
	assert.FileExists(t, db.Path(dir))

	res := rt.Engine.LockIdeas(context.Background())
	assert.NotEmpty(t, res.Workflow)
	assert.NoError(t, rt.Close())
	assert.NoError(t, rt.Close())
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendRedis
	cfg.Storage.Redis.Addr = mr.Addr()
	cfg.Storage.Redis.Namespace = "studio"
	require.NoError(t, cfg.Validate())

	ctx := context.Background()
	rt, err := app.Open(ctx, t.TempDir(), cfg)
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, config.BackendRedis, rt.Backend)
	rt.Engine.LockIdeas(ctx)
	assert.True(t, mr.Exists("channelos:studio:channel-os:workflow"))
	evts, err := rt.Engine.RecentEvents(ctx, 10, "")
	require.NoError(t, err)
	assert.NotEmpty(t, evts)
}

func TestOpenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Storage.Backend = config.BackendRedis
	cfg.Storage.Redis.Addr = addr
	_, err := app.Open(context.Background(), t.TempDir(), cfg)
	assert.Error(t, err)
}
