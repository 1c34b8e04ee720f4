package heuristics

import (
	"math"
	"strings"

	"hirelens/internal/types"
)

// Keyword lists for technical proficiency. Matching is a plain
// case-insensitive substring test, so short names such as "Go" and "R"
// also hit ordinary words.
var (
	LanguageKeywords = []string{
		"JavaScript", "TypeScript", "Python", "Java", "C++", "C#", "Go", "Rust",
		"Ruby", "PHP", "Swift", "Kotlin", "Scala", "R", "SQL",
	}
	FrameworkKeywords = []string{
		"React", "Angular", "Vue", "Next.js", "Node.js", "Express", "Django",
		"Flask", "FastAPI", "Spring", "Rails", "Laravel", ".NET", "TensorFlow", "PyTorch",
	}
	ToolKeywords = []string{
		"Git", "Docker", "Kubernetes", "AWS", "Azure", "GCP", "Jenkins", "Terraform",
		"Jira", "PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka", "Linux",
	}
)

// TechnicalProficiency reports which keywords appear anywhere in texts
func TechnicalProficiency(texts ...string) types.TechnicalProficiency {
	lower := strings.ToLower(strings.Join(texts, "\n"))
	return types.TechnicalProficiency{
		Languages:  keywordsIn(lower, LanguageKeywords),
		Frameworks: keywordsIn(lower, FrameworkKeywords),
		Tools:      keywordsIn(lower, ToolKeywords),
	}
}

func keywordsIn(lowerText string, keywords []string) []string {
	found := []string{}
	for _, kw := range keywords {
		if strings.Contains(lowerText, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

// Score bounds and weights
const (
	MinMatchScore     = 60
	MaxMatchScore     = 99
	baseMatchScore    = 70
	confidenceWeight  = 5
	substantiveBonus  = 5
	substantiveLength = 100
)

// MatchScore is 70 plus five times each agent's confidence plus five for
// every reply longer than 100 characters, rounded and clamped to [60,99].
// It is a rough signal, not a calibrated probability.
func MatchScore(results map[string]types.AgentResult) int {
	score := float64(baseMatchScore)
	for _, r := range results {
		score += r.Confidence * confidenceWeight
		if len(r.RawText) > substantiveLength {
			score += substantiveBonus
		}
	}
	return min(max(int(math.Round(score)), MinMatchScore), MaxMatchScore)
}
