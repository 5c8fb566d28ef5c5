package channelossdk_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelos/internal/config"
	"channelos/internal/db"
	"channelos/internal/engine"
	"channelos/internal/events"
	"channelos/internal/migrate"
	"channelos/internal/server"
	"channelos/internal/store"
	channelossdk "channelos/sdk/go"
)

func newClient(t *testing.T) *channelossdk.Client {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	_, err = migrate.Migrate(context.Background(), conn)
	require.NoError(t, err)

	e := engine.New(store.NewSQLite(conn), events.SQLJournal{DB: conn}, config.Default())
	handler, err := server.New(server.Config{Engine: e, BasePath: "/v0"})
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return channelossdk.New(srv.URL)
}

func TestClientBoardFlow(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	in, err := c.SetInput(ctx, channelossdk.IdeaInput{Niche: "Gaming", Persona: "speedrunners", Goal: "grow", Cadence: "Twice Weekly"})
	require.NoError(t, err)
	assert.Equal(t, "Gaming", in.Niche)

	locked, err := c.LockIdeas(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, locked.Workflow)
	card := locked.Workflow[0]

	moved, err := c.MovePhase(ctx, card.ID, 1)
	require.NoError(t, err)
	assert.True(t, moved.Moved)
	assert.Equal(t, "Pre-Production", moved.Item.Phase)

	item, err := c.UpdateDeadline(ctx, card.ID, "2030-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2030-01-15", item.Deadline)

	item, err = c.ToggleChecklist(ctx, card.ID, card.Checklist[0].Label)
	require.NoError(t, err)
	assert.True(t, item.Checklist[0].Done)

	outline, err := c.Script(ctx, card.Title)
	require.NoError(t, err)
	assert.NotEmpty(t, outline.BodySections)

	schedule, err := c.Schedule(ctx)
	require.NoError(t, err)
	assert.Len(t, schedule, len(locked.Ideas))

	evts, err := c.Events(ctx, 10, "workflow.phase.moved")
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, card.ID, evts[0].EntityID)
}

func TestClientTitles(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	eval, err := c.ScoreTitle(ctx, "5 Proven Ways to Automate Your Editing Workflow")
	require.NoError(t, err)
	assert.Greater(t, eval.Score, 50)

	_, err = c.LogTitle(ctx, "Draft one")
	require.NoError(t, err)
	history, err := c.TitleHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Draft one"}, history)

	recipes, err := c.Recipes(ctx)
	require.NoError(t, err)
	assert.Len(t, recipes, 3)
}

func TestClientAPIError(t *testing.T) {
	c := newClient(t)
	_, err := c.MovePhase(context.Background(), "missing", 1)
	var apiErr *channelossdk.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not_found", apiErr.Code)
}
