package automation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelos/internal/domain"
)

func TestScoreTitleEmpty(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		eval := ScoreTitle(title, domain.NicheTechnology)
		assert.Equal(t, 0, eval.Score)
		require.Len(t, eval.Feedback, 1)
		assert.Empty(t, eval.Suggestions)
	}
}

func TestScoreTitleStrongTitle(t *testing.T) {
	eval := ScoreTitle("5 Proven Ways to Automate Your Editing Workflow", domain.NicheTechnology)
	assert.Equal(t, 95, eval.Score)
	assert.Len(t, eval.Feedback, 5)
	require.Len(t, eval.Suggestions, 1)
	assert.Contains(t, eval.Suggestions[0], "curiosity")
}

func TestScoreTitleWeakTitle(t *testing.T) {
	eval := ScoreTitle("why nobody edits like this?", domain.NicheTechnology)
	assert.Equal(t, 50, eval.Score)
	assert.Len(t, eval.Feedback, 1)
	assert.Len(t, eval.Suggestions, 5)
}

func TestScoreTitlePenalties(t *testing.T) {
	eval := ScoreTitle("BEST TECH SETUP EVER!!", domain.NicheTechnology)
	assert.Equal(t, 45, eval.Score)
	assert.Contains(t, strings.Join(eval.Suggestions, " "), "all caps")
	assert.Contains(t, strings.Join(eval.Suggestions, " "), "punctuation")
}

func TestScoreTitleNicheMatters(t *testing.T) {
	title := "How I Saved Money on My Budget Setup"
	finance := ScoreTitle(title, domain.NicheFinance)
	gaming := ScoreTitle(title, domain.NicheGaming)
	assert.Greater(t, finance.Score, gaming.Score)
}

func TestScoreTitleBoundedAndTotal(t *testing.T) {
	inputs := []string{
		"?!?!",
		"...",
		"日本語のタイトル 123",
		"🔥🔥🔥",
		strings.Repeat("a", 100000),
		strings.Repeat("WHY ", 5000),
		"\x00\xff invalid utf8",
	}
	for _, in := range inputs {
		eval := ScoreTitle(in, domain.NicheGeneral)
		assert.GreaterOrEqual(t, eval.Score, 0)
		assert.LessOrEqual(t, eval.Score, 100)
		assert.Equal(t, eval, ScoreTitle(in, domain.NicheGeneral))
	}
}

func TestLogTitle(t *testing.T) {
	var history []string
	history = LogTitle(history, "  First  ")
	history = LogTitle(history, "Second")
	history = LogTitle(history, "First")
	assert.Equal(t, []string{"First", "Second"}, history)

	assert.Equal(t, history, LogTitle(history, "   "))

	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		history = LogTitle(history, title)
	}
	assert.Len(t, history, TitleHistoryLimit)
	assert.Equal(t, "g", history[0])
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo", 10))
	assert.Equal(t, "hé", truncateRunes("héllo", 2))
	assert.Equal(t, "", truncateRunes("héllo", 0))
	long := strings.Repeat("é", 100000)
	cut := truncateRunes(long, maxTitleRunes)
	assert.Equal(t, maxTitleRunes, utf8.RuneCountInString(cut))
	assert.True(t, utf8.ValidString(cut))
}

func TestScoreTitleLongInput(t *testing.T) {
	eval := ScoreTitle(strings.Repeat("How to build a homelab 2025 ", 50000), domain.NicheTechnology)
	assert.GreaterOrEqual(t, eval.Score, 0)
	assert.LessOrEqual(t, eval.Score, 100)
	assert.NotEmpty(t, eval.Feedback)
}
