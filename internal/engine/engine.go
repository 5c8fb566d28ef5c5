package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"channelos/internal/automation"
	"channelos/internal/config"
	"channelos/internal/domain"
	"channelos/internal/events"
	"channelos/internal/state"
	"channelos/internal/store"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid argument")
	ErrNoIdeas  = errors.New("no locked ideas; run ideas lock first")
)

type Engine struct {
	KV     store.KV
	Events events.Journal
	Config *config.Config
	Now    func() time.Time

	mu *sync.Mutex
}

func New(kv store.KV, journal events.Journal, cfg *config.Config) Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return Engine{
		KV:     kv,
		Events: journal,
		Config: cfg,
		Now:    time.Now,
		mu:     &sync.Mutex{},
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// lock serializes read-modify-write cycles on the stored snapshots.
func (e Engine) lock() func() {
	if e.mu == nil {
		return func() {}
	}
	e.mu.Lock()
	return e.mu.Unlock
}

func (e Engine) defaultInput() domain.IdeaInput {
	if e.Config == nil {
		return config.Default().Defaults.Input.Normalize()
	}
	return e.Config.Defaults.Input.Normalize()
}

func (e Engine) record(ctx context.Context, evtType, entityID string, payload events.EventPayload) {
	if e.Events == nil {
		return
	}
	if err := e.Events.Append(ctx, evtType, entityID, payload); err != nil {
		slog.WarnContext(ctx, "event append failed", "type", evtType, "entity", entityID, "error", err)
	}
}

// Input returns the saved idea input, or the configured defaults.
func (e Engine) Input(ctx context.Context) domain.IdeaInput {
	return state.Load(ctx, e.KV, state.KeyIdeaInput, e.defaultInput()).Normalize()
}

// SetInput normalizes and saves the idea input.
func (e Engine) SetInput(ctx context.Context, in domain.IdeaInput) domain.IdeaInput {
	defer e.lock()()
	in = in.Normalize()
	state.Save(ctx, e.KV, state.KeyIdeaInput, in)
	e.record(ctx, events.TypeInputUpdated, "", events.EventPayload{"niche": in.Niche, "cadence": in.Cadence})
	return in
}

// SuggestIdeas previews a batch for the current input without saving it.
func (e Engine) SuggestIdeas(ctx context.Context) []domain.IdeaBlueprint {
	return automation.GenerateIdeas(e.Input(ctx))
}

// LockResult is the outcome of locking an idea batch.
type LockResult struct {
	Ideas    []domain.IdeaBlueprint `json:"ideas"`
	Workflow []domain.WorkflowItem  `json:"workflow"`
	Added    int                    `json:"added"`
}

// LockIdeas generates a batch for the current input, saves it as the locked
// ideas and merges it onto the board. Cards already on the board keep their
// progress.
func (e Engine) LockIdeas(ctx context.Context) LockResult {
	defer e.lock()()
	ideas := automation.GenerateIdeas(e.Input(ctx))
	fresh := automation.BootstrapWorkflow(ideas, e.now())
	owner := ""
	if e.Config != nil {
		owner = strings.TrimSpace(e.Config.Workflow.Owner)
	}
	if owner != "" {
		for i := range fresh {
			fresh[i].Owner = owner
		}
	}
	existing := e.workflow(ctx)
	merged := automation.MergeWorkflow(existing, fresh)

	state.Save(ctx, e.KV, state.KeyIdeas, ideas)
	state.Save(ctx, e.KV, state.KeyWorkflow, merged)

	added := len(merged) - len(existing)
	e.record(ctx, events.TypeIdeasLocked, "", events.EventPayload{"count": len(ideas), "added": added})
	return LockResult{Ideas: ideas, Workflow: merged, Added: added}
}

// Ideas returns the locked idea batch.
func (e Engine) Ideas(ctx context.Context) []domain.IdeaBlueprint {
	return state.Load(ctx, e.KV, state.KeyIdeas, []domain.IdeaBlueprint{})
}

// ScoreTitle rates the title against the current niche.
func (e Engine) ScoreTitle(ctx context.Context, title string) domain.TitleEvaluation {
	return automation.ScoreTitle(title, e.Input(ctx).Niche)
}

// LogTitle records a title iteration and returns the updated history.
func (e Engine) LogTitle(ctx context.Context, title string) []string {
	defer e.lock()()
	history := automation.LogTitle(e.TitleHistory(ctx), title)
	state.Save(ctx, e.KV, state.KeyTitleHistory, history)
	if t := strings.TrimSpace(title); t != "" {
		e.record(ctx, events.TypeTitleLogged, "", events.EventPayload{"title": t})
	}
	return history
}

func (e Engine) TitleHistory(ctx context.Context) []string {
	return state.Load(ctx, e.KV, state.KeyTitleHistory, []string{})
}

// Outline builds the script outline for a locked idea. An empty title picks
// the first locked idea; a title outside the batch is outlined on its own.
func (e Engine) Outline(ctx context.Context, title string) (domain.ScriptOutline, error) {
	ideas := e.Ideas(ctx)
	title = strings.TrimSpace(title)
	var idea domain.IdeaBlueprint
	switch {
	case title == "" && len(ideas) == 0:
		return domain.ScriptOutline{}, ErrNoIdeas
	case title == "":
		idea = ideas[0]
	default:
		idea = domain.IdeaBlueprint{Title: title}
		for _, candidate := range ideas {
			if strings.EqualFold(candidate.Title, title) {
				idea = candidate
				break
			}
		}
	}
	return automation.BuildScriptOutline(idea, e.Input(ctx)), nil
}

// Schedule plans releases for the locked ideas at the current cadence.
func (e Engine) Schedule(ctx context.Context) []domain.ScheduleEntry {
	return automation.BuildSchedule(e.Ideas(ctx), e.Input(ctx), e.now())
}

func (e Engine) workflow(ctx context.Context) []domain.WorkflowItem {
	items := state.Load(ctx, e.KV, state.KeyWorkflow, []domain.WorkflowItem{})
	return automation.NormalizePhases(items)
}

// Workflow returns the board cards in stored order.
func (e Engine) Workflow(ctx context.Context) []domain.WorkflowItem {
	return e.workflow(ctx)
}

// Board returns the cards grouped by phase.
func (e Engine) Board(ctx context.Context) []domain.BoardColumn {
	return automation.Board(e.workflow(ctx))
}

// Item returns a single card.
func (e Engine) Item(ctx context.Context, id string) (domain.WorkflowItem, error) {
	item, ok := automation.FindItem(e.workflow(ctx), id)
	if !ok {
		return domain.WorkflowItem{}, fmt.Errorf("workflow item %s: %w", id, ErrNotFound)
	}
	return item, nil
}

// MoveResult is a card after a phase move plus the recipes the move fired.
type MoveResult struct {
	Item    domain.WorkflowItem `json:"item"`
	Moved   bool                `json:"moved"`
	Recipes []domain.Recipe     `json:"recipes"`
}

// MovePhase steps a card one phase forward (+1) or back (-1). Steps past the
// ends of the pipeline leave the card where it is.
func (e Engine) MovePhase(ctx context.Context, id string, delta int) (MoveResult, error) {
	if delta != 1 && delta != -1 {
		return MoveResult{}, fmt.Errorf("%w: delta must be 1 or -1, got %d", ErrInvalid, delta)
	}
	defer e.lock()()
	items := e.workflow(ctx)
	before, ok := automation.FindItem(items, id)
	if !ok {
		return MoveResult{}, fmt.Errorf("workflow item %s: %w", id, ErrNotFound)
	}
	items = automation.MovePhase(items, id, delta)
	after, _ := automation.FindItem(items, id)
	res := MoveResult{Item: after, Recipes: []domain.Recipe{}}
	if after.Phase == before.Phase {
		return res, nil
	}
	res.Moved = true
	state.Save(ctx, e.KV, state.KeyWorkflow, items)
	e.record(ctx, events.TypePhaseMoved, id, events.EventPayload{"from": before.Phase, "to": after.Phase})
	if fired := automation.TriggeredRecipes(before.Phase, after.Phase); len(fired) > 0 {
		res.Recipes = fired
		for _, r := range fired {
			e.record(ctx, events.TypeRecipeTriggered, id, events.EventPayload{"recipe": r.Name, "phase": after.Phase})
		}
	}
	return res, nil
}

// ToggleChecklist flips a checklist entry on a card.
func (e Engine) ToggleChecklist(ctx context.Context, id, label string) (domain.WorkflowItem, error) {
	defer e.lock()()
	items := e.workflow(ctx)
	item, ok := automation.FindItem(items, id)
	if !ok {
		return domain.WorkflowItem{}, fmt.Errorf("workflow item %s: %w", id, ErrNotFound)
	}
	if !hasLabel(item, label) {
		return domain.WorkflowItem{}, fmt.Errorf("checklist entry %q on %s: %w", label, id, ErrNotFound)
	}
	items = automation.ToggleChecklist(items, id, label)
	item, _ = automation.FindItem(items, id)
	state.Save(ctx, e.KV, state.KeyWorkflow, items)
	e.record(ctx, events.TypeChecklistToggled, id, events.EventPayload{"label": label, "done": checked(item, label)})
	return item, nil
}

// UpdateDeadline sets a card deadline. The deadline must be YYYY-MM-DD.
func (e Engine) UpdateDeadline(ctx context.Context, id, deadline string) (domain.WorkflowItem, error) {
	deadline = strings.TrimSpace(deadline)
	if !automation.ValidDeadline(deadline) {
		return domain.WorkflowItem{}, fmt.Errorf("%w: deadline %q must be YYYY-MM-DD", ErrInvalid, deadline)
	}
	defer e.lock()()
	items := e.workflow(ctx)
	before, ok := automation.FindItem(items, id)
	if !ok {
		return domain.WorkflowItem{}, fmt.Errorf("workflow item %s: %w", id, ErrNotFound)
	}
	items = automation.UpdateDeadline(items, id, deadline)
	item, _ := automation.FindItem(items, id)
	state.Save(ctx, e.KV, state.KeyWorkflow, items)
	e.record(ctx, events.TypeDeadlineUpdated, id, events.EventPayload{"from": before.Deadline, "to": deadline})
	return item, nil
}

// Recipes lists the automation playbooks.
func (e Engine) Recipes() []domain.Recipe {
	return automation.Recipes()
}

// RecentEvents returns the newest journal entries, optionally filtered by type.
func (e Engine) RecentEvents(ctx context.Context, limit int, evtType string) ([]domain.Event, error) {
	if e.Events == nil {
		return []domain.Event{}, nil
	}
	evts, err := e.Events.Latest(ctx, limit, evtType)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	if evts == nil {
		evts = []domain.Event{}
	}
	return evts, nil
}

// EventsAfter returns up to limit journal entries newer than cursor, oldest first.
func (e Engine) EventsAfter(ctx context.Context, cursor int64, limit int) ([]domain.Event, error) {
	if e.Events == nil {
		return []domain.Event{}, nil
	}
	evts, err := e.Events.After(ctx, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("read events after %d: %w", cursor, err)
	}
	if evts == nil {
		evts = []domain.Event{}
	}
	return evts, nil
}

func hasLabel(item domain.WorkflowItem, label string) bool {
	for _, c := range item.Checklist {
		if c.Label == label {
			return true
		}
	}
	return false
}

func checked(item domain.WorkflowItem, label string) bool {
	for _, c := range item.Checklist {
		if c.Label == label {
			return c.Done
		}
	}
	return false
}
