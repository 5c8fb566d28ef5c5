package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"channelos/internal/domain"
)

func TestBuildScriptOutlineShape(t *testing.T) {
	niches := append([]domain.Niche{domain.NicheGeneral, "Knitting"}, domain.Niches...)
	for _, niche := range niches {
		in := sampleInput()
		in.Niche = niche
		idea := GenerateIdeas(in)[0]
		outline := BuildScriptOutline(idea, in)

		assert.Len(t, outline.BodySections, 4, "niche=%s", niche)
		assert.Len(t, outline.BrollPrompts, 3, "niche=%s", niche)
		assert.NotEmpty(t, outline.ColdOpen)
		assert.NotEmpty(t, outline.Outro)
		assert.Equal(t, idea.Hook, outline.Hook)
		assert.Contains(t, outline.ColdOpen, idea.Title)
		for _, s := range outline.BodySections {
			assert.NotEmpty(t, s.Heading)
			assert.NotContains(t, s.Beat, "{")
		}
	}
}

func TestBuildScriptOutlineUnknownNicheUsesDefault(t *testing.T) {
	idea := domain.IdeaBlueprint{Title: "A", Summary: "Summary here.", Hook: "Hook"}
	in := sampleInput()
	in.Niche = "Knitting"
	general := in
	general.Niche = domain.NicheGeneral
	assert.Equal(t, BuildScriptOutline(idea, general), BuildScriptOutline(idea, in))
}

func TestBuildScriptOutlineInterpolates(t *testing.T) {
	idea := domain.IdeaBlueprint{Title: "Budget Rules", Summary: "A rule that works.", Hook: ""}
	in := domain.IdeaInput{Niche: domain.NicheFinance, Persona: "new grads", Goal: "save a deposit", Cadence: domain.CadenceWeekly}
	outline := BuildScriptOutline(idea, in)

	assert.Contains(t, outline.Hook, "Budget Rules")
	assert.Contains(t, outline.BodySections[0].Beat, "new grads")
	assert.Contains(t, outline.BodySections[1].Beat, "a rule that works.")
	assert.Contains(t, outline.BodySections[3].Beat, "save a deposit")
}
