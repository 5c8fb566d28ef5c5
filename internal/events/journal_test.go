package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelos/internal/db"
	"channelos/internal/events"
	"channelos/internal/migrate"
)

func journals(t *testing.T) map[string]events.Journal {
	t.Helper()
	now := func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) }

	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	_, err = migrate.Migrate(context.Background(), conn)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return map[string]events.Journal{
		"sqlite": events.SQLJournal{DB: conn, Now: now},
		"redis":  events.RedisJournal{RDB: rdb, Namespace: "test", Now: now},
	}
}

func TestJournalAppendAndLatest(t *testing.T) {
	for name, j := range journals(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, j.Append(ctx, events.TypeIdeasLocked, "", events.EventPayload{"count": 4}))
			require.NoError(t, j.Append(ctx, events.TypePhaseMoved, "card-1", events.EventPayload{"from": "Ideas", "to": "Pre-Production"}))
			require.NoError(t, j.Append(ctx, events.TypeDeadlineUpdated, "card-1", nil))

			latest, err := j.Latest(ctx, 10, "")
			require.NoError(t, err)
			require.Len(t, latest, 3)
			assert.Equal(t, events.TypeDeadlineUpdated, latest[0].Type)
			assert.Equal(t, "{}", latest[0].Payload)
			assert.Equal(t, "2025-01-01T12:00:00Z", latest[0].TS)

			moved, err := j.Latest(ctx, 10, events.TypePhaseMoved)
			require.NoError(t, err)
			require.Len(t, moved, 1)
			assert.Equal(t, "card-1", moved[0].EntityID)
			var payload map[string]string
			require.NoError(t, json.Unmarshal([]byte(moved[0].Payload), &payload))
			assert.Equal(t, "Pre-Production", payload["to"])

			limited, err := j.Latest(ctx, 1, "")
			require.NoError(t, err)
			assert.Len(t, limited, 1)
		})
	}
}

func TestJournalAfter(t *testing.T) {
	for name, j := range journals(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				require.NoError(t, j.Append(ctx, events.TypeTitleLogged, "", events.EventPayload{"n": i}))
			}
			all, err := j.After(ctx, 0, 10)
			require.NoError(t, err)
			require.Len(t, all, 5)
			for i := 1; i < len(all); i++ {
				assert.Greater(t, all[i].ID, all[i-1].ID)
			}

			page, err := j.After(ctx, all[1].ID, 2)
			require.NoError(t, err)
			require.Len(t, page, 2)
			assert.Equal(t, all[2].ID, page[0].ID)
			assert.Equal(t, all[3].ID, page[1].ID)

			none, err := j.After(ctx, all[4].ID, 10)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}
