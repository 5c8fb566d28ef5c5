package automation

import "channelos/internal/domain"

var recipes = []domain.Recipe{
	{
		Name:    "Auto Research Digests",
		Trigger: "42 hours before record day",
		Stack:   []string{"Morning brew API scrape", "Notion database sync", "Slack digest"},
		Result:  "Delivers a prioritized swipe file with stats, quotes, and competitor angles directly to the producer workspace.",
	},
	{
		Name:    "Editor Intake Robot",
		Trigger: "Ideas → Pre-Production",
		Phase:   domain.PhasePreProduction,
		Stack:   []string{"Zapier", "Frame.io project clone", "Google Drive template"},
		Result:  "Clones the master project, drops b-roll references, and pings the editor with a task brief in ClickUp.",
	},
	{
		Name:    "End Screen Refresh",
		Trigger: "Ready to Publish",
		Phase:   domain.PhaseReadyToPublish,
		Stack:   []string{"Envato template", "After Effects render queue", "Descript caption export"},
		Result:  "Autogenerates an outro with updated CTAs and publishes captions to the asset drive before upload.",
	},
}

// Recipes returns the automation playbook catalog.
func Recipes() []domain.Recipe {
	out := make([]domain.Recipe, len(recipes))
	for i, r := range recipes {
		r.Stack = append([]string(nil), r.Stack...)
		out[i] = r
	}
	return out
}

// TriggeredRecipes returns the playbooks fired when a card advances from one
// phase into the next. Moving backwards fires nothing.
func TriggeredRecipes(from, to domain.Phase) []domain.Recipe {
	if from == to || to.Index() <= from.Index() {
		return nil
	}
	var out []domain.Recipe
	for _, r := range Recipes() {
		if r.Phase != "" && r.Phase == to {
			out = append(out, r)
		}
	}
	return out
}
