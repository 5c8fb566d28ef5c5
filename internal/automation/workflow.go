package automation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"channelos/internal/domain"
)

const (
	// DefaultOwner is assigned to freshly bootstrapped cards.
	DefaultOwner = "Unassigned"
	// DeadlineLayout is the accepted deadline format.
	DeadlineLayout = "2006-01-02"

	deadlineSpacingDays = 7
)

// workflowNamespace scopes card ids generated by BootstrapWorkflow.
var workflowNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("channelos.workflow"))

// phaseChecklists is the checklist each phase contributes to a new card.
var phaseChecklists = map[domain.Phase][]string{
	domain.PhaseIdeas:          {"Validate title and thumbnail concept"},
	domain.PhasePreProduction:  {"Draft script outline", "Collect b-roll references"},
	domain.PhaseProduction:     {"Record A-roll", "Edit and color pass"},
	domain.PhaseReadyToPublish: {"Upload with captions and end screen"},
}

// DefaultChecklist is the checklist for a new card, phase templates in pipeline order.
func DefaultChecklist() []domain.ChecklistItem {
	var out []domain.ChecklistItem
	for _, phase := range domain.Phases {
		for _, label := range phaseChecklists[phase] {
			out = append(out, domain.ChecklistItem{Label: label})
		}
	}
	return out
}

// BootstrapWorkflow turns a locked idea batch into Ideas-phase cards, keeping
// the batch order. Deadlines are spaced a week apart starting a week after now.
func BootstrapWorkflow(ideas []domain.IdeaBlueprint, now time.Time) []domain.WorkflowItem {
	items := make([]domain.WorkflowItem, 0, len(ideas))
	stamp := now.UTC().Format(time.RFC3339Nano)
	for i, idea := range ideas {
		id := uuid.NewSHA1(workflowNamespace, []byte(fmt.Sprintf("%s|%d|%s", idea.Title, i, stamp))).String()
		items = append(items, domain.WorkflowItem{
			ID:        id,
			Title:     idea.Title,
			Owner:     DefaultOwner,
			Phase:     domain.PhaseIdeas,
			Deadline:  now.AddDate(0, 0, deadlineSpacingDays*(i+1)).Format(DeadlineLayout),
			Checklist: DefaultChecklist(),
		})
	}
	return items
}

// MovePhase shifts the card one step along the pipeline. Steps past either end,
// deltas other than -1/+1 and unknown ids leave the list unchanged.
func MovePhase(items []domain.WorkflowItem, id string, delta int) []domain.WorkflowItem {
	if delta != -1 && delta != 1 {
		return cloneItems(items)
	}
	return updateItem(items, id, func(item *domain.WorkflowItem) {
		idx := item.Phase.Index()
		if idx < 0 {
			return
		}
		next := idx + delta
		if next < 0 || next >= len(domain.Phases) {
			return
		}
		item.Phase = domain.Phases[next]
	})
}

// ToggleChecklist flips the entry with the label on the card with the id.
func ToggleChecklist(items []domain.WorkflowItem, id, label string) []domain.WorkflowItem {
	return updateItem(items, id, func(item *domain.WorkflowItem) {
		for i := range item.Checklist {
			if item.Checklist[i].Label == label {
				item.Checklist[i].Done = !item.Checklist[i].Done
				return
			}
		}
	})
}

// UpdateDeadline sets the deadline when it parses as YYYY-MM-DD.
func UpdateDeadline(items []domain.WorkflowItem, id, deadline string) []domain.WorkflowItem {
	if !ValidDeadline(deadline) {
		return cloneItems(items)
	}
	return updateItem(items, id, func(item *domain.WorkflowItem) {
		item.Deadline = deadline
	})
}

// ValidDeadline reports whether s is a calendar date in DeadlineLayout.
func ValidDeadline(s string) bool {
	_, err := time.Parse(DeadlineLayout, s)
	return err == nil
}

// MergeWorkflow combines a fresh bootstrap batch with the current board. The
// result follows the batch order; any card whose title already exists on the
// board is kept as-is instead of the fresh card. Existing cards with titles
// outside the batch follow, in their original order.
func MergeWorkflow(existing, fresh []domain.WorkflowItem) []domain.WorkflowItem {
	if len(existing) == 0 {
		return cloneItems(fresh)
	}
	byTitle := make(map[string]domain.WorkflowItem, len(existing))
	for _, item := range existing {
		if _, ok := byTitle[item.Title]; !ok {
			byTitle[item.Title] = item
		}
	}
	out := make([]domain.WorkflowItem, 0, len(existing)+len(fresh))
	used := make(map[string]bool, len(fresh))
	for _, item := range fresh {
		if prev, ok := byTitle[item.Title]; ok {
			if !used[item.Title] {
				out = append(out, prev.Clone())
				used[item.Title] = true
			}
			continue
		}
		out = append(out, item.Clone())
	}
	for _, item := range existing {
		if used[item.Title] {
			if byTitle[item.Title].ID == item.ID {
				continue
			}
		}
		out = append(out, item.Clone())
	}
	return out
}

// NormalizePhases moves cards whose phase is not part of the pipeline back to
// Ideas so they stay visible on the board.
func NormalizePhases(items []domain.WorkflowItem) []domain.WorkflowItem {
	out := cloneItems(items)
	for i := range out {
		if out[i].Phase.Index() < 0 {
			out[i].Phase = domain.PhaseIdeas
		}
	}
	return out
}

// Board groups cards into one column per phase, in pipeline order.
func Board(items []domain.WorkflowItem) []domain.BoardColumn {
	cols := make([]domain.BoardColumn, 0, len(domain.Phases))
	for _, phase := range domain.Phases {
		col := domain.BoardColumn{Phase: phase, Items: []domain.WorkflowItem{}}
		for _, item := range items {
			if item.Phase == phase {
				col.Items = append(col.Items, item.Clone())
			}
		}
		cols = append(cols, col)
	}
	return cols
}

// FindItem returns the card with the id.
func FindItem(items []domain.WorkflowItem, id string) (domain.WorkflowItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return domain.WorkflowItem{}, false
}

func updateItem(items []domain.WorkflowItem, id string, fn func(*domain.WorkflowItem)) []domain.WorkflowItem {
	out := cloneItems(items)
	for i := range out {
		if out[i].ID == id {
			fn(&out[i])
			break
		}
	}
	return out
}

func cloneItems(items []domain.WorkflowItem) []domain.WorkflowItem {
	if items == nil {
		return nil
	}
	out := make([]domain.WorkflowItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
