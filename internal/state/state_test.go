package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"channelos/internal/domain"
	"channelos/internal/store"
)

type memKV struct {
	data    map[string][]byte
	failGet bool
	failPut bool
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.failGet {
		return nil, errors.New("disk on fire")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) error {
	if m.failPut {
		return errors.New("quota exceeded")
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Close() error { return nil }

func TestLoadFallbacks(t *testing.T) {
	ctx := context.Background()
	fallback := domain.IdeaInput{Niche: domain.NicheTechnology, Cadence: domain.CadenceWeekly}

	kv := newMemKV()
	assert.Equal(t, fallback, Load(ctx, kv, KeyIdeaInput, fallback), "absent")

	kv.data[KeyIdeaInput] = []byte("{not json")
	assert.Equal(t, fallback, Load(ctx, kv, KeyIdeaInput, fallback), "corrupt")

	kv.failGet = true
	assert.Equal(t, fallback, Load(ctx, kv, KeyIdeaInput, fallback), "unreadable")

	assert.Equal(t, fallback, Load[domain.IdeaInput](ctx, nil, KeyIdeaInput, fallback), "no store")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	items := []domain.WorkflowItem{{
		ID: "1", Title: "A", Owner: "Sam", Phase: domain.PhaseProduction, Deadline: "2025-01-01",
		Checklist: []domain.ChecklistItem{{Label: "Record A-roll", Done: true}},
	}}
	Save(ctx, kv, KeyWorkflow, items)
	assert.Equal(t, items, Load[[]domain.WorkflowItem](ctx, kv, KeyWorkflow, nil))
}

func TestSaveSwallowsErrors(t *testing.T) {
	kv := newMemKV()
	kv.failPut = true
	assert.NotPanics(t, func() {
		Save(context.Background(), kv, KeyIdeas, []domain.IdeaBlueprint{{Title: "A"}})
	})
	assert.Empty(t, kv.data)
}
