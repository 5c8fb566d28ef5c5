package automation

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"channelos/internal/domain"
)

// IdeaBatchSize is the number of blueprints returned per generation.
const IdeaBatchSize = 4

type ideaTemplate struct {
	title   string
	summary string
	hook    string
	notes   []string
}

type cadenceFormat struct {
	label  string
	length string
	note   string
}

var cadenceFormats = map[domain.Cadence]cadenceFormat{
	domain.CadenceWeekly: {
		label:  "Deep Dive",
		length: "12-15 minute",
		note:   "Batch-record on Monday, lock the edit by Thursday for a Friday upload.",
	},
	domain.CadenceTwiceWeekly: {
		label:  "Series",
		length: "8-10 minute",
		note:   "Film both episodes in one session and split b-roll across the pair.",
	},
	domain.CadenceDaily: {
		label:  "Shorts",
		length: "60-second vertical",
		note:   "Script five at once and reuse one lighting setup for the whole week.",
	},
}

var ideaFamilies = map[domain.Niche][]ideaTemplate{
	domain.NicheTechnology: {
		{
			title:   "I Automated My Entire Workflow in 7 Days ({format})",
			summary: "A build log showing {persona} exactly which tools replaced which chores.",
			hook:    "Seven days ago this took me four hours. Today it takes nine minutes.",
			notes:   []string{"Screen-record every automation run", "Show the before/after time tracker"},
		},
		{
			title:   "5 Apps That Quietly Replaced My Laptop",
			summary: "A practical teardown of the stack that helps {persona} {goal}.",
			hook:    "My laptop has been closed for a month and nothing broke.",
			notes:   []string{"Top-down shots of each device", "Overlay cost per month on screen"},
		},
		{
			title:   "Why Nobody Talks About This Setting",
			summary: "One overlooked configuration change that saves {persona} hours every week.",
			hook:    "This toggle is buried three menus deep and it changes everything.",
			notes:   []string{"Zoomed UI captures with cursor highlights", "Pin the exact menu path in the description"},
		},
		{
			title:   "Building a Home Lab for Under $300",
			summary: "A budget build that lets {persona} experiment without cloud bills.",
			hook:    "Everything on this shelf cost less than one month of my old hosting.",
			notes:   []string{"Parts list graphic", "Timelapse of the assembly"},
		},
		{
			title:   "The AI Tools I Actually Pay For in 2025",
			summary: "An honest ranking of the paid tools that help {persona} {goal}.",
			hook:    "I cancelled eleven subscriptions. These three survived.",
			notes:   []string{"Receipts on screen for credibility", "Rank tier list as the visual anchor"},
		},
	},
	domain.NicheEducation: {
		{
			title:   "Learn Any Skill in 20 Hours ({format})",
			summary: "A structured practice plan that helps {persona} {goal}.",
			hook:    "The first 20 hours decide whether you quit. Here is how to survive them.",
			notes:   []string{"Animated practice calendar", "Progress checkpoints every 5 hours"},
		},
		{
			title:   "The Study Method Top Students Never Share",
			summary: "Evidence-backed techniques explained for {persona}.",
			hook:    "Re-reading your notes is the slowest way to learn. Do this instead.",
			notes:   []string{"Cite two studies on screen", "Whiteboard walkthrough"},
		},
		{
			title:   "Why Most Tutorials Fail You",
			summary: "What passive learning costs {persona} and the fix that sticks.",
			hook:    "You finished the course and still can't build anything. That's not your fault.",
			notes:   []string{"Split-screen passive vs active learning", "End with a 3-step challenge"},
		},
		{
			title:   "3 Mental Models That Make Hard Topics Easy",
			summary: "Frameworks that help {persona} break down complex subjects.",
			hook:    "Every expert uses these three shortcuts without realising it.",
			notes:   []string{"One diagram per model", "Real example applied live"},
		},
		{
			title:   "How I'd Relearn Math From Scratch",
			summary: "A roadmap for {persona} who want to {goal}.",
			hook:    "If I had to start over today, I'd skip half of what school taught me.",
			notes:   []string{"Roadmap graphic with milestones", "Link free resources on screen"},
		},
	},
	domain.NicheLifestyle: {
		{
			title:   "My 5AM Routine After 30 Days ({format})",
			summary: "An honest diary of what changed for {persona}.",
			hook:    "Day one was miserable. Day thirty surprised me.",
			notes:   []string{"Daily timestamp overlays", "Natural light morning b-roll"},
		},
		{
			title:   "Minimalist Apartment Tour: 10 Things I Kept",
			summary: "The few objects that help {persona} {goal}.",
			hook:    "I got rid of 80% of what I owned. These ten stayed.",
			notes:   []string{"Slow gimbal walkthrough", "Close-ups of each kept item"},
		},
		{
			title:   "Why I Stopped Planning My Weekends",
			summary: "How unstructured time changed the week for {persona}.",
			hook:    "My calendar used to be full on Saturday. Now it's blank on purpose.",
			notes:   []string{"Calendar before/after graphic", "Candid vlog footage"},
		},
		{
			title:   "The $50 Home Reset That Changed My Mood",
			summary: "Cheap upgrades {persona} can do in an afternoon.",
			hook:    "Fifty dollars and one afternoon. The room feels twice as big.",
			notes:   []string{"Receipt breakdown", "Timelapse of the reset"},
		},
		{
			title:   "A Week of Slow Living in the City",
			summary: "Small rituals that help {persona} slow down without moving away.",
			hook:    "You don't need a cabin in the woods to slow down.",
			notes:   []string{"Ambient city sound design", "Journal page inserts"},
		},
	},
	domain.NicheGaming: {
		{
			title:   "I Played 100 Days of Hardcore ({format})",
			summary: "A survival story built for {persona}.",
			hook:    "One mistake ends everything. I made it on day 87.",
			notes:   []string{"Day counter overlay", "Death recap montage"},
		},
		{
			title:   "Ranking Every Boss From Worst to Best",
			summary: "A tier list with clips that keeps {persona} arguing in the comments.",
			hook:    "Number one is going to make people angry.",
			notes:   []string{"Tier list graphic updates live", "Clip each fight's best moment"},
		},
		{
			title:   "Why This Speedrun Trick Shouldn't Work",
			summary: "The physics glitch explained frame by frame for {persona}.",
			hook:    "This jump breaks the game in a way the developers never tested.",
			notes:   []string{"Frame-by-frame slow motion", "Hitbox overlays"},
		},
		{
			title:   "Beating the Game With Only Starter Gear",
			summary: "A challenge run that helps {persona} rethink builds.",
			hook:    "No upgrades. No shops. Just the sword you start with.",
			notes:   []string{"Inventory counter on screen", "Face-cam reactions on close calls"},
		},
		{
			title:   "10 Hidden Details You Missed",
			summary: "Easter eggs and design choices curated for {persona}.",
			hook:    "You walked past number seven a hundred times.",
			notes:   []string{"Circle highlights on each detail", "Developer quote cards"},
		},
	},
	domain.NicheFinance: {
		{
			title:   "How I Saved $10,000 in 12 Months ({format})",
			summary: "A transparent budget breakdown for {persona} who want to {goal}.",
			hook:    "I didn't get a raise. I changed three habits.",
			notes:   []string{"Spreadsheet screen captures", "Monthly savings bar chart"},
		},
		{
			title:   "The Budget Rule Banks Don't Teach",
			summary: "A simple allocation rule explained for {persona}.",
			hook:    "Your bank makes money when you ignore this rule.",
			notes:   []string{"Animated pie chart", "Worked example with real numbers"},
		},
		{
			title:   "Why Your Emergency Fund Is Too Small",
			summary: "How {persona} can size a safety net that actually works.",
			hook:    "Three months of expenses is outdated advice.",
			notes:   []string{"Scenario calculator on screen", "Disclaimer lower-third"},
		},
		{
			title:   "Index Funds Explained in 8 Minutes",
			summary: "The beginner's guide that helps {persona} start investing.",
			hook:    "The most boring investment is the one that wins.",
			notes:   []string{"Compound growth animation", "Glossary callouts"},
		},
		{
			title:   "I Tracked Every Dollar for 90 Days",
			summary: "What the data revealed about spending for {persona}.",
			hook:    "Coffee wasn't the problem. Subscriptions were.",
			notes:   []string{"Category breakdown charts", "Receipt collage b-roll"},
		},
	},
	domain.NicheHealth: {
		{
			title:   "I Walked 10,000 Steps Every Day for a Month ({format})",
			summary: "The measurable changes {persona} can expect.",
			hook:    "The scale barely moved. Everything else did.",
			notes:   []string{"Step counter overlays", "Weekly check-in clips"},
		},
		{
			title:   "The 15 Minute Workout for Busy People",
			summary: "A no-equipment routine that helps {persona} {goal}.",
			hook:    "No gym, no equipment, no excuses left.",
			notes:   []string{"Follow-along timer on screen", "Form cues as lower-thirds"},
		},
		{
			title:   "Why You're Always Tired (It's Not Sleep)",
			summary: "Overlooked energy drains explained for {persona}.",
			hook:    "Eight hours of sleep and still exhausted? Check these first.",
			notes:   []string{"Cite sources on screen", "Simple energy audit checklist"},
		},
		{
			title:   "What I Eat in a Day to Stay Focused",
			summary: "Simple meals that help {persona} keep energy steady.",
			hook:    "My afternoon crash disappeared when I moved one meal.",
			notes:   []string{"Overhead cooking shots", "Macros card per meal"},
		},
		{
			title:   "3 Stretches That Fixed My Back Pain",
			summary: "A desk-friendly mobility routine for {persona}.",
			hook:    "I sit for ten hours a day. These three moves saved my back.",
			notes:   []string{"Side-angle demo shots", "Common mistakes callouts"},
		},
	},
	domain.NicheGeneral: {
		{
			title:   "What I Learned After 100 Videos ({format})",
			summary: "Lessons that help {persona} {goal}.",
			hook:    "Video one had 12 views. Here's what changed by video one hundred.",
			notes:   []string{"Old vs new clip comparisons", "Metrics graph overlay"},
		},
		{
			title:   "The Beginner Mistakes I Still Make",
			summary: "Honest pitfalls and fixes for {persona}.",
			hook:    "I've done this for years and I still fall for number three.",
			notes:   []string{"Numbered chapter cards", "Blooper inserts"},
		},
		{
			title:   "Why Consistency Beats Talent",
			summary: "How showing up helps {persona} {goal}.",
			hook:    "The most talented person I know quit after six weeks.",
			notes:   []string{"Calendar streak visual", "Story-driven talking head"},
		},
		{
			title:   "A Day in My Creative Process",
			summary: "A behind-the-scenes walkthrough for {persona}.",
			hook:    "Most of the work happens before the camera turns on.",
			notes:   []string{"Desk setup b-roll", "Time-of-day overlays"},
		},
		{
			title:   "5 Tools I Use Every Single Day",
			summary: "The simple kit that helps {persona} work faster.",
			hook:    "None of these are expensive. All of them are essential.",
			notes:   []string{"Product close-ups", "Links pinned in comments"},
		},
	},
}

// GenerateIdeas returns IdeaBatchSize blueprints for the input. The result is a
// function of the input fields only.
func GenerateIdeas(input domain.IdeaInput) []domain.IdeaBlueprint {
	input = input.Normalize()
	family, ok := ideaFamilies[input.Niche]
	if !ok {
		family = ideaFamilies[domain.NicheGeneral]
	}
	format := cadenceFormats[input.Cadence]
	r := ideaReplacer(input, format)

	// The first template of every family carries the cadence format; the
	// rest of the batch rotates through the remaining templates.
	rest := family[1:]
	offset := int(seed(input) % uint64(len(rest)))
	picks := []ideaTemplate{family[0]}
	for i := 0; len(picks) < IdeaBatchSize; i++ {
		picks = append(picks, rest[(offset+i)%len(rest)])
	}

	seen := make(map[string]int, IdeaBatchSize)
	ideas := make([]domain.IdeaBlueprint, 0, IdeaBatchSize)
	for _, tpl := range picks {
		title := r.Replace(tpl.title)
		if n := seen[title]; n > 0 {
			title = fmt.Sprintf("%s (Part %d)", title, n+1)
		}
		seen[title]++
		notes := make([]string, 0, len(tpl.notes)+2)
		for _, note := range tpl.notes {
			notes = append(notes, r.Replace(note))
		}
		notes = append(notes,
			fmt.Sprintf("Target a %s cut for the %s cadence.", format.length, strings.ToLower(string(input.Cadence))),
			format.note,
		)
		ideas = append(ideas, domain.IdeaBlueprint{
			Title:           title,
			Summary:         r.Replace(tpl.summary),
			Hook:            r.Replace(tpl.hook),
			ProductionNotes: notes,
		})
	}
	return ideas
}

func seed(input domain.IdeaInput) uint64 {
	key := strings.Join([]string{
		string(input.Niche),
		strings.ToLower(input.Persona),
		strings.ToLower(input.Goal),
		string(input.Cadence),
	}, "|")
	return xxhash.Sum64String(key)
}

func ideaReplacer(input domain.IdeaInput, format cadenceFormat) *strings.Replacer {
	persona := input.Persona
	if persona == "" {
		persona = "creators like you"
	}
	goal := strings.TrimSuffix(input.Goal, ".")
	if goal == "" {
		goal = "grow the channel"
	}
	return strings.NewReplacer(
		"{persona}", persona,
		"{goal}", goal,
		"{format}", format.label,
		"{length}", format.length,
	)
}
