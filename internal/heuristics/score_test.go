package heuristics

import (
	"reflect"
	"strings"
	"testing"

	"hirelens/internal/types"
)

func TestTechnicalProficiency(t *testing.T) {
	tests := []struct {
		name     string
		texts    []string
		expected types.TechnicalProficiency
	}{
		{
			name:  "mixed keywords",
			texts: []string{"Built services in Go and Python on AWS with Docker"},
			expected: types.TechnicalProficiency{
				// "R" is a substring of "services"
				Languages:  []string{"Python", "Go", "R"},
				Frameworks: []string{},
				Tools:      []string{"Docker", "AWS"},
			},
		},
		{
			name:  "plain english false positive",
			texts: []string{"Let's go to the meeting"},
			expected: types.TechnicalProficiency{
				Languages:  []string{"Go"},
				Frameworks: []string{},
				Tools:      []string{},
			},
		},
		{
			name:  "keywords spread across texts",
			texts: []string{"Uses FLASK", "ships on aws"},
			expected: types.TechnicalProficiency{
				Languages:  []string{},
				Frameworks: []string{"Flask"},
				Tools:      []string{"AWS"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TechnicalProficiency(tt.texts...)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("TechnicalProficiency() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestMatchScore(t *testing.T) {
	long := strings.Repeat("x", 101)
	short := strings.Repeat("x", 100)

	tests := []struct {
		name     string
		results  []types.AgentResult
		expected int
	}{
		{
			name:     "no results",
			expected: 70,
		},
		{
			name: "short replies",
			results: []types.AgentResult{
				{AgentID: "a", Confidence: 0.9, RawText: short},
				{AgentID: "b", Confidence: 0.9, RawText: "ok"},
			},
			expected: 79,
		},
		{
			name: "detail bonus rounds up",
			results: []types.AgentResult{
				{AgentID: "a", Confidence: 0.92, RawText: long},
			},
			expected: 80,
		},
		{
			name: "failed agent adds nothing",
			results: []types.AgentResult{
				{AgentID: "a", Confidence: 0, RawText: "Error analyzing a: boom"},
			},
			expected: 70,
		},
		{
			name:     "clamped to maximum",
			results:  sevenResults(0.95, long),
			expected: MaxMatchScore,
		},
		{
			name: "clamped to minimum",
			results: []types.AgentResult{
				{AgentID: "a", Confidence: -5},
			},
			expected: MinMatchScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(map[string]types.AgentResult, len(tt.results))
			for _, r := range tt.results {
				results[r.AgentID] = r
			}
			if got := MatchScore(results); got != tt.expected {
				t.Errorf("MatchScore() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestMatchScoreBounds(t *testing.T) {
	texts := []string{"", "short", strings.Repeat("y", 500)}
	for _, conf := range []float64{0, 0.25, 0.5, 0.85, 0.95, 1} {
		for _, text := range texts {
			score := MatchScore(toMap(sevenResults(conf, text)))
			if score < MinMatchScore || score > MaxMatchScore {
				t.Errorf("MatchScore(conf=%v, len=%d) = %d, outside [%d,%d]",
					conf, len(text), score, MinMatchScore, MaxMatchScore)
			}
		}
	}
}

func sevenResults(conf float64, text string) []types.AgentResult {
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	out := make([]types.AgentResult, len(ids))
	for i, id := range ids {
		out[i] = types.AgentResult{AgentID: id, Confidence: conf, RawText: text}
	}
	return out
}

func toMap(results []types.AgentResult) map[string]types.AgentResult {
	m := make(map[string]types.AgentResult, len(results))
	for _, r := range results {
		m[r.AgentID] = r
	}
	return m
}
