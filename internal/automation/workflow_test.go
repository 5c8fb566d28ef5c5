package automation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelos/internal/domain"
)

var fixedNow = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

func board(t *testing.T, titles ...string) []domain.WorkflowItem {
	t.Helper()
	ideas := make([]domain.IdeaBlueprint, 0, len(titles))
	for _, title := range titles {
		ideas = append(ideas, domain.IdeaBlueprint{Title: title})
	}
	return BootstrapWorkflow(ideas, fixedNow)
}

func TestBootstrapWorkflow(t *testing.T) {
	items := board(t, "A", "B")
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Title)
	assert.Equal(t, "B", items[1].Title)
	for _, item := range items {
		assert.Equal(t, domain.PhaseIdeas, item.Phase)
		assert.Equal(t, DefaultOwner, item.Owner)
		assert.NotEmpty(t, item.ID)
		assert.True(t, ValidDeadline(item.Deadline))
		assert.Equal(t, DefaultChecklist(), item.Checklist)
	}
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.Equal(t, "2025-03-10", items[0].Deadline)
	assert.Equal(t, "2025-03-17", items[1].Deadline)
}

func TestBootstrapWorkflowEmpty(t *testing.T) {
	assert.Empty(t, BootstrapWorkflow(nil, fixedNow))
}

func TestMovePhaseRoundTrip(t *testing.T) {
	items := board(t, "A")
	id := items[0].ID

	forward := MovePhase(items, id, 1)
	assert.Equal(t, domain.PhasePreProduction, forward[0].Phase)
	back := MovePhase(forward, id, -1)
	assert.Equal(t, items, back)

	// Retreating from the first phase is a no-op.
	retreated := MovePhase(items, id, -1)
	assert.Equal(t, items, retreated)
}

func TestMovePhaseClampsAtEnd(t *testing.T) {
	items := board(t, "A")
	id := items[0].ID
	for i := 0; i < 10; i++ {
		items = MovePhase(items, id, 1)
	}
	assert.Equal(t, domain.PhaseReadyToPublish, items[0].Phase)

	advanced := MovePhase(items, id, 1)
	assert.Equal(t, items, advanced)
	assert.Equal(t, domain.PhaseProduction, MovePhase(items, id, -1)[0].Phase)
}

func TestMovePhaseOutOfContract(t *testing.T) {
	items := board(t, "A", "B")
	assert.Equal(t, items, MovePhase(items, items[0].ID, 2))
	assert.Equal(t, items, MovePhase(items, items[0].ID, 0))
	assert.Equal(t, items, MovePhase(items, "missing", 1))
}

func TestToggleChecklistInvolution(t *testing.T) {
	items := board(t, "A", "B")
	label := items[1].Checklist[2].Label

	once := ToggleChecklist(items, items[1].ID, label)
	assert.True(t, once[1].Checklist[2].Done)
	assert.False(t, items[1].Checklist[2].Done, "input must not be mutated")
	assert.Equal(t, items, ToggleChecklist(once, items[1].ID, label))

	assert.Equal(t, items, ToggleChecklist(items, items[1].ID, "no such label"))
	assert.Equal(t, items, ToggleChecklist(items, "missing", label))
}

func TestUpdateDeadline(t *testing.T) {
	items := board(t, "A")
	updated := UpdateDeadline(items, items[0].ID, "2025-12-24")
	assert.Equal(t, "2025-12-24", updated[0].Deadline)
	assert.Equal(t, "2025-03-10", items[0].Deadline)

	assert.Equal(t, items, UpdateDeadline(items, "nonexistent-id", "2025-01-01"))
	assert.Equal(t, items, UpdateDeadline(items, items[0].ID, "next tuesday"))
	assert.Equal(t, items, UpdateDeadline(items, items[0].ID, "2025-02-30"))
	assert.Equal(t, items, UpdateDeadline(items, items[0].ID, ""))
}

func TestMergeWorkflowPreservesProgress(t *testing.T) {
	existing := board(t, "A", "Old")
	existing = MovePhase(existing, existing[0].ID, 1)
	existing = MovePhase(existing, existing[0].ID, 1)
	require.Equal(t, domain.PhaseProduction, existing[0].Phase)

	fresh := BootstrapWorkflow([]domain.IdeaBlueprint{{Title: "A"}, {Title: "C"}}, fixedNow.Add(time.Hour))
	merged := MergeWorkflow(existing, fresh)

	require.Len(t, merged, 3)
	assert.Equal(t, existing[0], merged[0])
	assert.Equal(t, domain.PhaseProduction, merged[0].Phase)
	assert.Equal(t, fresh[1], merged[1])
	assert.Equal(t, existing[1], merged[2])
}

func TestMergeWorkflowEmptyBoard(t *testing.T) {
	fresh := board(t, "A", "B")
	assert.Equal(t, fresh, MergeWorkflow(nil, fresh))
}

func TestBoardColumns(t *testing.T) {
	items := board(t, "A", "B", "C")
	items = MovePhase(items, items[1].ID, 1)
	cols := Board(items)
	require.Len(t, cols, len(domain.Phases))
	assert.Len(t, cols[0].Items, 2)
	assert.Len(t, cols[1].Items, 1)
	assert.Empty(t, cols[3].Items)
	assert.Equal(t, "B", cols[1].Items[0].Title)
}

func TestFindItem(t *testing.T) {
	items := board(t, "A")
	item, ok := FindItem(items, items[0].ID)
	assert.True(t, ok)
	assert.Equal(t, "A", item.Title)
	_, ok = FindItem(items, "missing")
	assert.False(t, ok)
}

func TestNormalizePhases(t *testing.T) {
	items := board(t, "A", "B")
	items[0].Phase = "Archived"
	items[1].Phase = domain.PhaseProduction
	got := NormalizePhases(items)
	assert.Equal(t, domain.PhaseIdeas, got[0].Phase)
	assert.Equal(t, domain.PhaseProduction, got[1].Phase)
	assert.Equal(t, domain.Phase("Archived"), items[0].Phase, "input not mutated")
	require.Len(t, Board(got)[0].Items, 1)
}
