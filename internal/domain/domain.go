package domain

import "strings"

// Niche is the channel category an idea batch is tuned for.
type Niche string

const (
	NicheTechnology Niche = "Technology"
	NicheEducation  Niche = "Education"
	NicheLifestyle  Niche = "Lifestyle"
	NicheGaming     Niche = "Gaming"
	NicheFinance    Niche = "Finance"
	NicheHealth     Niche = "Health"
	// NicheGeneral is the fallback for values outside the known set.
	NicheGeneral Niche = "General"
)

// Niches lists the selectable niches in display order.
var Niches = []Niche{NicheTechnology, NicheEducation, NicheLifestyle, NicheGaming, NicheFinance, NicheHealth}

// ParseNiche resolves a niche case-insensitively. Unknown values map to NicheGeneral.
func ParseNiche(s string) (Niche, bool) {
	for _, n := range Niches {
		if strings.EqualFold(strings.TrimSpace(s), string(n)) {
			return n, true
		}
	}
	return NicheGeneral, false
}

// Cadence is the publishing frequency.
type Cadence string

const (
	CadenceWeekly      Cadence = "Weekly"
	CadenceTwiceWeekly Cadence = "Twice Weekly"
	CadenceDaily       Cadence = "Daily"
)

var Cadences = []Cadence{CadenceWeekly, CadenceTwiceWeekly, CadenceDaily}

// ParseCadence resolves a cadence case-insensitively. Unknown values map to CadenceWeekly.
func ParseCadence(s string) (Cadence, bool) {
	for _, c := range Cadences {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return CadenceWeekly, false
}

// GapDays is the number of days between releases at this cadence.
func (c Cadence) GapDays() int {
	switch c {
	case CadenceDaily:
		return 1
	case CadenceTwiceWeekly:
		return 3
	default:
		return 7
	}
}

type IdeaInput struct {
	Niche   Niche   `json:"niche" yaml:"niche" enum:"Technology,Education,Lifestyle,Gaming,Finance,Health"`
	Persona string  `json:"persona" yaml:"persona"`
	Goal    string  `json:"goal" yaml:"goal"`
	Cadence Cadence `json:"cadence" yaml:"cadence" enum:"Weekly,Twice Weekly,Daily"`
}

// Normalize maps enumerated fields outside the known sets to their fallbacks
// and trims free-text fields.
func (in IdeaInput) Normalize() IdeaInput {
	in.Niche, _ = ParseNiche(string(in.Niche))
	in.Cadence, _ = ParseCadence(string(in.Cadence))
	in.Persona = strings.TrimSpace(in.Persona)
	in.Goal = strings.TrimSpace(in.Goal)
	return in
}

type IdeaBlueprint struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Hook            string   `json:"hook"`
	ProductionNotes []string `json:"production_notes"`
}

type ScriptSection struct {
	Heading string `json:"heading"`
	Beat    string `json:"beat"`
}

type ScriptOutline struct {
	ColdOpen     string          `json:"cold_open"`
	Hook         string          `json:"hook"`
	BodySections []ScriptSection `json:"body_sections"`
	Outro        string          `json:"outro"`
	BrollPrompts []string        `json:"broll_prompts"`
}

type TitleEvaluation struct {
	Score       int      `json:"score" minimum:"0" maximum:"100"`
	Feedback    []string `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// Phase is a column on the production board.
type Phase string

const (
	PhaseIdeas          Phase = "Ideas"
	PhasePreProduction  Phase = "Pre-Production"
	PhaseProduction     Phase = "Production"
	PhaseReadyToPublish Phase = "Ready to Publish"
)

// Phases is the fixed pipeline order.
var Phases = []Phase{PhaseIdeas, PhasePreProduction, PhaseProduction, PhaseReadyToPublish}

// Index returns the position of p in Phases, or -1.
func (p Phase) Index() int {
	for i, candidate := range Phases {
		if candidate == p {
			return i
		}
	}
	return -1
}

type ChecklistItem struct {
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

type WorkflowItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Owner     string          `json:"owner"`
	Phase     Phase           `json:"phase" enum:"Ideas,Pre-Production,Production,Ready to Publish"`
	Deadline  string          `json:"deadline" format:"date"`
	Checklist []ChecklistItem `json:"checklist"`
}

// Clone returns a copy that shares no slices with w.
func (w WorkflowItem) Clone() WorkflowItem {
	if w.Checklist != nil {
		w.Checklist = append([]ChecklistItem(nil), w.Checklist...)
	}
	return w
}

// BoardColumn is one phase of the board with its cards.
type BoardColumn struct {
	Phase Phase          `json:"phase"`
	Items []WorkflowItem `json:"items"`
}

type ScheduleEntry struct {
	Title            string `json:"title"`
	Release          string `json:"release" format:"date-time"`
	Teaser           string `json:"teaser" format:"date-time"`
	RetentionMission string `json:"retention_mission"`
}

// Recipe is an automation playbook fired by a board transition.
type Recipe struct {
	Name    string   `json:"name"`
	Trigger string   `json:"trigger"`
	Phase   Phase    `json:"phase,omitempty"`
	Stack   []string `json:"stack"`
	Result  string   `json:"result"`
}

type Event struct {
	ID       int64  `json:"id"`
	TS       string `json:"ts" format:"date-time"`
	Type     string `json:"type"`
	EntityID string `json:"entity_id,omitempty"`
	Payload  string `json:"payload_json"`
}
