package automation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"channelos/internal/domain"
)

type scriptTemplate struct {
	coldOpen string
	sections [4]domain.ScriptSection
	outro    string
	broll    [3]string
}

var scriptFamilies = map[domain.Niche]scriptTemplate{
	domain.NicheTechnology: {
		coldOpen: "Open on the finished setup running, then cut to the messy desk it replaced. Tease: {title}.",
		sections: [4]domain.ScriptSection{
			{Heading: "The Problem", Beat: "Show the manual workflow {persona} still suffers through and what it costs each week."},
			{Heading: "The Build", Beat: "Walk through the stack step by step; {summary}"},
			{Heading: "Stress Test", Beat: "Run it live on a real task and narrate what breaks and how you fixed it."},
			{Heading: "Results", Beat: "Compare time saved and tie it back to the goal: {goal}."},
		},
		outro: "Recap the three biggest wins, pin the tool list, and point to the next build video.",
		broll: [3]string{"Macro shots of keyboard and screens", "Screen capture of the automation firing", "Before/after desk timelapse"},
	},
	domain.NicheEducation: {
		coldOpen: "Start with the most common wrong answer, then promise the fix behind {title}.",
		sections: [4]domain.ScriptSection{
			{Heading: "Why It's Hard", Beat: "Name the misconception that trips up {persona}."},
			{Heading: "The Core Idea", Beat: "Explain the concept plainly; {summary}"},
			{Heading: "Worked Example", Beat: "Solve one example on the whiteboard, pausing at each decision point."},
			{Heading: "Practice Plan", Beat: "Give a short drill that moves viewers toward: {goal}."},
		},
		outro: "Summarise in one sentence, set a homework challenge, and link the follow-up lesson.",
		broll: [3]string{"Whiteboard close-ups", "Animated diagram of the concept", "Notebook page turns"},
	},
	domain.NicheLifestyle: {
		coldOpen: "Quiet morning montage with no narration, then a single line introducing {title}.",
		sections: [4]domain.ScriptSection{
			{Heading: "Where I Started", Beat: "Describe the routine that wasn't working for someone like {persona}."},
			{Heading: "The Shift", Beat: "Introduce the change; {summary}"},
			{Heading: "Real Days", Beat: "Cut between two ordinary days showing the change in practice."},
			{Heading: "What Stuck", Beat: "Reflect honestly on what helped with: {goal}."},
		},
		outro: "Invite viewers to try one piece for a week and share it in the comments.",
		broll: [3]string{"Golden hour window light", "Hands-on detail shots of daily rituals", "Slow gimbal room walkthrough"},
	},
	domain.NicheGaming: {
		coldOpen: "Drop straight into the most intense clip, freeze frame, and title card: {title}.",
		sections: [4]domain.ScriptSection{
			{Heading: "The Rules", Beat: "Lay out the challenge constraints so {persona} can follow along."},
			{Heading: "Early Game", Beat: "Cover the opening stretch; {summary}"},
			{Heading: "The Turning Point", Beat: "Slow down for the moment everything nearly went wrong."},
			{Heading: "Final Run", Beat: "Play out the ending and connect it to: {goal}."},
		},
		outro: "Ask viewers to vote on the next challenge and end on a blooper.",
		broll: [3]string{"Face-cam reactions at key moments", "Slow-motion replay of the clutch play", "Map overview with route drawn on"},
	},
	domain.NicheFinance: {
		coldOpen: "Flash the headline number on screen, then rewind to where the story starts: {title}.",
		sections: [4]domain.ScriptSection{
			{Heading: "The Starting Point", Beat: "Share the honest numbers {persona} will recognise."},
			{Heading: "The Strategy", Beat: "Explain the system; {summary}"},
			{Heading: "The Math", Beat: "Walk through one worked example with real figures on screen."},
			{Heading: "Your Next Step", Beat: "Give one action that moves viewers toward: {goal}."},
		},
		outro: "Add the not-financial-advice disclaimer, recap the rule, and link the budgeting template.",
		broll: [3]string{"Spreadsheet screen captures", "Animated savings chart", "Receipts and card close-ups"},
	},
	domain.NicheHealth: {
		coldOpen: "Show the end result first, then cut to day one footage: {title}.",
		sections: [4]domain.ScriptSection{
			{Heading: "Why It Matters", Beat: "Connect the problem to the daily life of {persona}."},
			{Heading: "The Method", Beat: "Demonstrate the routine; {summary}"},
			{Heading: "Common Mistakes", Beat: "Show two form or habit errors and how to correct them."},
			{Heading: "Making It Last", Beat: "Turn it into a habit that supports: {goal}."},
		},
		outro: "Remind viewers to check with a professional, recap the routine, and suggest the follow-along video.",
		broll: [3]string{"Side-angle demonstration shots", "Tracker or watch close-ups", "Outdoor walking footage"},
	},
	domain.NicheGeneral: {
		coldOpen: "Start mid-story with the most surprising moment, then introduce {title}.",
		sections: [4]domain.ScriptSection{
			{Heading: "Context", Beat: "Set up why this matters to {persona}."},
			{Heading: "The Core", Beat: "Deliver the main idea; {summary}"},
			{Heading: "Proof", Beat: "Show one concrete example or result on screen."},
			{Heading: "Takeaway", Beat: "Leave viewers one step toward: {goal}."},
		},
		outro: "Recap, ask one specific question for the comments, and end-screen the next video.",
		broll: [3]string{"Talking-head cutaways", "Process close-ups", "Text overlays for key points"},
	},
}

// BuildScriptOutline fills the niche's script template with the idea and input.
func BuildScriptOutline(idea domain.IdeaBlueprint, input domain.IdeaInput) domain.ScriptOutline {
	input = input.Normalize()
	tpl, ok := scriptFamilies[input.Niche]
	if !ok {
		tpl = scriptFamilies[domain.NicheGeneral]
	}
	r := outlineReplacer(idea, input)

	sections := make([]domain.ScriptSection, 0, len(tpl.sections))
	for _, s := range tpl.sections {
		sections = append(sections, domain.ScriptSection{
			Heading: s.Heading,
			Beat:    r.Replace(s.Beat),
		})
	}
	broll := make([]string, 0, len(tpl.broll))
	for _, b := range tpl.broll {
		broll = append(broll, r.Replace(b))
	}

	hook := strings.TrimSpace(idea.Hook)
	if hook == "" {
		hook = r.Replace("Promise the payoff of {title} in the first ten seconds.")
	}
	return domain.ScriptOutline{
		ColdOpen:     r.Replace(tpl.coldOpen),
		Hook:         hook,
		BodySections: sections,
		Outro:        r.Replace(tpl.outro),
		BrollPrompts: broll,
	}
}

func outlineReplacer(idea domain.IdeaBlueprint, input domain.IdeaInput) *strings.Replacer {
	title := strings.TrimSpace(idea.Title)
	if title == "" {
		title = "this video"
	}
	summary := strings.TrimSpace(idea.Summary)
	if summary == "" {
		summary = "keep it tight and concrete."
	}
	persona := input.Persona
	if persona == "" {
		persona = "your viewers"
	}
	goal := strings.TrimSuffix(input.Goal, ".")
	if goal == "" {
		goal = "grow the channel"
	}
	return strings.NewReplacer(
		"{title}", title,
		"{summary}", lowerFirst(summary),
		"{persona}", persona,
		"{goal}", goal,
	)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
