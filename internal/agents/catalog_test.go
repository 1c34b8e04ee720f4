package agents

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogOrder(t *testing.T) {
	want := []string{
		"document_processor",
		"role_matching",
		"skills_analysis",
		"experience_review",
		"growth_analysis",
		"strengths_assessment",
		"final_synthesis",
	}
	assert.Equal(t, want, IDs())

	catalog := Catalog()
	require.Len(t, catalog, 7)
	for i, p := range catalog {
		assert.Equal(t, want[i], p.ID)
		assert.NotEmpty(t, p.Name)
		assert.Contains(t, p.Instruction, "\n", "instruction for %s should be multi-line", p.ID)
		assert.GreaterOrEqual(t, p.Confidence, 0.85)
		assert.LessOrEqual(t, p.Confidence, 0.95)
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	c := Catalog()
	c[0].Instruction = "mutated"

	p, ok := Lookup(DocumentProcessor)
	require.True(t, ok)
	assert.NotEqual(t, "mutated", p.Instruction)
}

func TestLookup(t *testing.T) {
	p, ok := Lookup(SkillsAnalysis)
	require.True(t, ok)
	assert.Equal(t, "Skills Analyst", p.Name)

	_, ok = Lookup("salary_negotiator")
	assert.False(t, ok)
}

func TestForRole(t *testing.T) {
	roleMatcher, _ := Lookup(RoleMatching)
	withRole := roleMatcher.ForRole("  Staff Platform Engineer ")
	assert.True(t, strings.HasSuffix(withRole.Instruction, "\n\nTarget role: Staff Platform Engineer"))

	assert.Equal(t, roleMatcher, roleMatcher.ForRole(""))

	skills, _ := Lookup(SkillsAnalysis)
	assert.Equal(t, skills, skills.ForRole("Staff Platform Engineer"))
}

func TestWithOverrides(t *testing.T) {
	personas := WithOverrides(map[string]string{
		GrowthAnalysis: "Custom growth persona",
		FinalSynthesis: "   ",
		"unknown":      "ignored",
	})

	require.Len(t, personas, 7)
	for _, p := range personas {
		builtin, _ := Lookup(p.ID)
		switch p.ID {
		case GrowthAnalysis:
			assert.Equal(t, "Custom growth persona", p.Instruction)
			assert.Equal(t, builtin.Confidence, p.Confidence)
		default:
			assert.Equal(t, builtin.Instruction, p.Instruction)
		}
	}
}
