// Package state loads and saves dashboard snapshots through a store.KV. Load
// never fails and Save never reports errors; both log problems instead.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"channelos/internal/store"
)

const (
	KeyIdeaInput    = "channel-os:idea-input"
	KeyIdeas        = "channel-os:ideas"
	KeyWorkflow     = "channel-os:workflow"
	KeyTitleHistory = "channel-os:title-history"
)

// Load decodes the value stored under key, returning fallback when the key is
// absent, the payload is corrupt or the store cannot be read.
func Load[T any](ctx context.Context, kv store.KV, key string, fallback T) T {
	if kv == nil {
		return fallback
	}
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "state load failed, using default", "key", key, "error", err)
		}
		return fallback
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.WarnContext(ctx, "state payload corrupt, using default", "key", key, "error", err)
		return fallback
	}
	return v
}

// Save writes value under key. Failures are logged and swallowed.
func Save[T any](ctx context.Context, kv store.KV, key string, value T) {
	if kv == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		slog.WarnContext(ctx, "state encode failed", "key", key, "error", err)
		return
	}
	if err := kv.Put(ctx, key, raw); err != nil {
		slog.WarnContext(ctx, "state save failed", "key", key, "error", err)
	}
}
