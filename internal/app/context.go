package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"channelos/internal/config"
	"channelos/internal/db"
	"channelos/internal/engine"
	"channelos/internal/events"
	"channelos/internal/migrate"
	"channelos/internal/store"
)

// Runtime bundles the engine with the backend it was opened on.
type Runtime struct {
	Engine  engine.Engine
	Config  *config.Config
	Backend string

	close func() error
}

// Close releases the storage backend.
func (r *Runtime) Close() error {
	if r == nil || r.close == nil {
		return nil
	}
	return r.close()
}

// ResolveConfig loads channelos.yml from the workspace, falling back to the
// defaults when the file is absent.
func ResolveConfig(workspace string) (*config.Config, error) {
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Open wires the engine onto the configured backend. SQLite databases are
// migrated before use; Redis connections are pinged.
func Open(ctx context.Context, workspace string, cfg *config.Config) (*Runtime, error) {
	if cfg == nil {
		var err error
		if cfg, err = ResolveConfig(workspace); err != nil {
			return nil, err
		}
	}
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		return openRedis(ctx, cfg)
	case config.BackendSQLite, "":
		return openSQLite(ctx, workspace, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func openSQLite(ctx context.Context, workspace string, cfg *config.Config) (*Runtime, error) {
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	version, err := migrate.Migrate(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	slog.DebugContext(ctx, "sqlite backend ready", "path", db.Path(workspace), "schema", version)
	return &Runtime{
		Engine:  engine.New(store.NewSQLite(conn), events.SQLJournal{DB: conn}, cfg),
		Config:  cfg,
		Backend: config.BackendSQLite,
		close:   closeOnce(conn),
	}, nil
}

func openRedis(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rc := cfg.Storage.Redis
	kv, err := store.NewRedis(&redis.Options{Addr: rc.Addr, DB: rc.DB}, rc.Namespace)
	if err != nil {
		return nil, err
	}
	if err := kv.Ping(ctx); err != nil {
		kv.Close()
		return nil, fmt.Errorf("connect redis %s: %w", rc.Addr, err)
	}
	slog.DebugContext(ctx, "redis backend ready", "addr", rc.Addr, "namespace", rc.Namespace)
	journal := events.RedisJournal{RDB: kv.Client(), Namespace: kv.Namespace()}
	return &Runtime{
		Engine:  engine.New(kv, journal, cfg),
		Config:  cfg,
		Backend: config.BackendRedis,
		close:   kv.Close,
	}, nil
}

func closeOnce(conn *sql.DB) func() error {
	closed := false
	return func() error {
		if closed {
			return nil
		}
		closed = true
		if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			return err
		}
		return nil
	}
}
