package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelos/internal/domain"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, domain.NicheTechnology, cfg.Defaults.Input.Niche)
	assert.Equal(t, domain.CadenceWeekly, cfg.Defaults.Input.Cadence)
	assert.Equal(t, "Unassigned", cfg.Workflow.Owner)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/v0", cfg.Server.BasePath)
	assert.Equal(t, 40, cfg.Server.RateLimit.Burst)
}

func TestFromYAMLKeepsDefaultsForMissingSections(t *testing.T) {
	cfg, err := FromYAML([]byte("workflow:\n  owner: Sam\n"))
	require.NoError(t, err)
	assert.Equal(t, "Sam", cfg.Workflow.Owner)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"backend":    "storage:\n  backend: postgres\n",
		"owner":      "workflow:\n  owner: \"\"\n",
		"base path":  "server:\n  base_path: v0\n",
		"niche":      "defaults:\n  input:\n    niche: Cooking\n",
		"cadence":    "defaults:\n  input:\n    cadence: Hourly\n",
		"burst":      "server:\n  rate_limit:\n    rps: 5\n    burst: 0\n",
		"redis addr": "storage:\n  backend: redis\n  redis:\n    addr: \"\"\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromYAML([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestValidateErrorNamesField(t *testing.T) {
	_, err := FromYAML([]byte("storage:\n  backend: postgres\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestRedisBackend(t *testing.T) {
	cfg, err := FromYAML([]byte("storage:\n  backend: Redis\n  redis:\n    addr: cache:6379\n    namespace: studio\n"))
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "studio", cfg.Storage.Redis.Namespace)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "config init"))

	cfg, err := LoadOptional(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "channelos.yml"), []byte(GenerateDefault(domain.NicheGaming)), 0o644))
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.NicheGaming, cfg.Defaults.Input.Niche)
}

func TestWebhooks(t *testing.T) {
	cfg, err := FromYAML([]byte("webhooks:\n  - url: https://hooks.example.com/x\n    events: [recipe.triggered]\n  - url: https://hooks.example.com/y\n    enabled: false\n"))
	require.NoError(t, err)
	require.Len(t, cfg.Webhooks, 2)
	assert.True(t, cfg.Webhooks[0].Active())
	assert.False(t, cfg.Webhooks[1].Active())

	_, err = FromYAML([]byte("webhooks:\n  - url: not a url\n"))
	assert.Error(t, err)
}
