package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelos/internal/config"
	"channelos/internal/domain"
)

func TestChecklistProgress(t *testing.T) {
	item := domain.WorkflowItem{Checklist: []domain.ChecklistItem{{Label: "a", Done: true}, {Label: "b"}}}
	assert.Equal(t, "1/2", checklistProgress(item))
}

func TestSetupLoggerLevel(t *testing.T) {
	logger := setupLogger("debug", false)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger = setupLogger("bogus", true)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestResolveConfigOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("workspace", t.TempDir())
	viper.Set("storage.backend", "redis")
	viper.Set("storage.redis.addr", "cache:6379")
	viper.Set("storage.redis.namespace", "studio")

	cfg, err := resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, config.BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, "studio", cfg.Storage.Redis.Namespace)

	viper.Set("storage.backend", "postgres")
	_, err = resolveConfig()
	assert.Error(t, err)
}
