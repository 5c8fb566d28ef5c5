package automation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"channelos/internal/domain"
)

const (
	// maxTitleRunes caps how much of a title the signal checks look at.
	maxTitleRunes = 200

	idealTitleMin = 40
	idealTitleMax = 70

	baseTitleScore = 40
)

var powerWords = []string{
	"best", "secret", "secrets", "ultimate", "proven", "mistake", "mistakes", "easy",
	"fast", "free", "honest", "instantly", "simple", "shocking", "never", "stop",
	"hidden", "essential", "actually", "truth",
}

var curiosityPhrases = []string{
	"why", "how", "what happens", "nobody", "no one", "the truth", "you missed", "i tried",
	"before you", "don't",
}

var nicheKeywords = map[domain.Niche][]string{
	domain.NicheTechnology: {"ai", "app", "apps", "tech", "code", "setup", "laptop", "automation", "automate", "tool", "tools"},
	domain.NicheEducation:  {"learn", "study", "skill", "lesson", "explained", "guide", "course", "math"},
	domain.NicheLifestyle:  {"routine", "morning", "home", "day", "minimalist", "habit", "habits", "life"},
	domain.NicheGaming:     {"game", "games", "gaming", "boss", "speedrun", "build", "challenge", "hardcore"},
	domain.NicheFinance:    {"money", "budget", "invest", "investing", "save", "saved", "income", "$"},
	domain.NicheHealth:     {"workout", "health", "sleep", "diet", "stretch", "stretches", "fitness", "energy"},
	domain.NicheGeneral:    {"creator", "video", "videos", "channel", "youtube"},
}

// ScoreTitle rates a working title for the niche. A blank title scores zero
// with a single prompt to enter one.
func ScoreTitle(title string, niche domain.Niche) domain.TitleEvaluation {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.TitleEvaluation{
			Score:       0,
			Feedback:    []string{"Enter a working title to get feedback."},
			Suggestions: []string{},
		}
	}
	niche, _ = domain.ParseNiche(string(niche))
	title = truncateRunes(title, maxTitleRunes)
	lower := strings.ToLower(title)
	words := tokenize(lower)

	score := baseTitleScore
	feedback := []string{}
	suggestions := []string{}

	length := utf8.RuneCountInString(title)
	switch {
	case length < idealTitleMin:
		suggestions = append(suggestions, fmt.Sprintf("Expand toward %d-%d characters so the promise is clear (currently %d).", idealTitleMin, idealTitleMax, length))
	case length > idealTitleMax:
		suggestions = append(suggestions, fmt.Sprintf("Trim below %d characters so it isn't truncated in search (currently %d).", idealTitleMax, length))
	default:
		score += 20
		feedback = append(feedback, fmt.Sprintf("Length sits in the %d-%d character sweet spot.", idealTitleMin, idealTitleMax))
	}

	if strings.IndexFunc(title, unicode.IsDigit) >= 0 {
		score += 10
		feedback = append(feedback, "Numbers set a concrete expectation.")
	} else {
		suggestions = append(suggestions, "Add a number (steps, days, results) to anchor the payoff.")
	}

	if w, ok := firstMatch(words, powerWords); ok {
		score += 10
		feedback = append(feedback, fmt.Sprintf("Power word %q adds urgency.", w))
	} else {
		suggestions = append(suggestions, "Use a power word like \"proven\", \"secret\" or \"mistake\" to raise the stakes.")
	}

	if strings.Contains(title, "?") || containsPhrase(lower, words, curiosityPhrases) {
		score += 10
		feedback = append(feedback, "Opens a curiosity gap viewers want closed.")
	} else {
		suggestions = append(suggestions, "Pose a question or tease a result to open a curiosity gap.")
	}

	keywords := nicheKeywords[niche]
	if containsPhrase(lower, words, keywords) {
		score += 10
		feedback = append(feedback, fmt.Sprintf("Includes a %s keyword search can match.", niche))
	} else {
		suggestions = append(suggestions, fmt.Sprintf("Work in a %s keyword such as %q.", niche, keywords[0]))
	}

	switch {
	case isShouting(title):
		score -= 10
		suggestions = append(suggestions, "Avoid all caps; it reads as clickbait.")
	case isTitleCase(title):
		score += 5
		feedback = append(feedback, "Title case reads cleanly in the feed.")
	default:
		suggestions = append(suggestions, "Capitalize the key words so the title scans at a glance.")
	}

	if strings.Contains(title, "!!") || strings.Contains(title, "??") {
		score -= 5
		suggestions = append(suggestions, "Drop the repeated punctuation.")
	}

	return domain.TitleEvaluation{
		Score:       clamp(score, 0, 100),
		Feedback:    feedback,
		Suggestions: suggestions,
	}
}

// LogTitle records a title at the front of the history, dropping earlier
// copies and keeping at most TitleHistoryLimit entries.
func LogTitle(history []string, title string) []string {
	title = strings.TrimSpace(title)
	if title == "" {
		return append([]string(nil), history...)
	}
	out := make([]string, 0, TitleHistoryLimit)
	out = append(out, title)
	for _, h := range history {
		if len(out) == TitleHistoryLimit {
			break
		}
		if h != title {
			out = append(out, h)
		}
	}
	return out
}

// TitleHistoryLimit bounds the saved title iterations.
const TitleHistoryLimit = 6

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '$'
	})
}

func firstMatch(words, candidates []string) (string, bool) {
	for _, w := range words {
		for _, c := range candidates {
			if w == c {
				return c, true
			}
		}
	}
	return "", false
}

// containsPhrase matches single-word candidates against whole words and
// multi-word or symbol candidates against the lowered text.
func containsPhrase(lower string, words, candidates []string) bool {
	for _, c := range candidates {
		if strings.ContainsAny(c, " $") {
			if strings.Contains(lower, c) {
				return true
			}
			continue
		}
		if _, ok := firstMatch(words, []string{c}); ok {
			return true
		}
	}
	return false
}

func isShouting(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsLower(r) {
			return false
		}
		letters++
	}
	return letters >= 4
}

func isTitleCase(s string) bool {
	fields := strings.Fields(s)
	capitalized, counted := 0, 0
	for _, f := range fields {
		r, _ := utf8.DecodeRuneInString(f)
		if !unicode.IsLetter(r) {
			continue
		}
		counted++
		if unicode.IsUpper(r) {
			capitalized++
		}
	}
	return counted > 0 && capitalized*2 >= counted
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
