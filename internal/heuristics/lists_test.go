package heuristics

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"hirelens/internal/ai/mock"
)

func TestSkills(t *testing.T) {
	many := make([]string, 20)
	for i := range many {
		many[i] = fmt.Sprintf("skill%d", i)
	}

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "labelled comma list",
			text:     "Skills: Python, Django, AWS.",
			expected: []string{"Python", "Django", "AWS"},
		},
		{
			name:     "bullets under heading",
			text:     "Technical Skills:\n- Go\n- PostgreSQL, Kubernetes\n- Infra: Terraform",
			expected: []string{"Go", "PostgreSQL", "Kubernetes", "Terraform"},
		},
		{
			name:     "proficient in phrase",
			text:     "She is proficient in Rust, Go and gRPC.",
			expected: []string{"Rust", "Go", "gRPC"},
		},
		{
			name:     "repeated skills deduplicated",
			text:     "Skills: Go, Docker\nShe is proficient in Go and Kubernetes.",
			expected: []string{"Go", "Docker", "Kubernetes"},
		},
		{
			name:     "capped",
			text:     "Skills: " + strings.Join(many, ", "),
			expected: many[:MaxSkills],
		},
		{
			name:     "nothing found",
			text:     "",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Skills(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Skills() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAchievements(t *testing.T) {
	experience := "Achievements: Led migration of billing to Kubernetes\nReduced p99 latency by 40% across checkout."
	strengths := "Key achievements:\n- Led migration of billing to Kubernetes\n- Won the 2022 internal hackathon"

	got := Achievements(experience, strengths)
	want := []string{
		"Led migration of billing to Kubernetes",
		"Reduced p99 latency by 40% across checkout",
		"Won the 2022 internal hackathon",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Achievements() = %q, want %q", got, want)
	}

	if got := Achievements("", ""); got == nil || len(got) != 0 {
		t.Errorf("Achievements() on empty input = %#v, want empty non-nil slice", got)
	}
}

func TestRoleMatches(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "bullets with reasons stripped",
			text:     "Role matches:\n- Senior Backend Engineer (strong Go background)\n- Platform Engineer - infra focus\n- SRE: on-call experience",
			expected: []string{"Senior Backend Engineer", "Platform Engineer", "SRE"},
		},
		{
			name:     "match for phrases",
			text:     "Strong match for Backend Engineer roles. Good fit for the Staff Engineer position, given depth.",
			expected: []string{"Backend Engineer roles", "Staff Engineer position"},
		},
		{
			name:     "nothing found",
			text:     "The reply was cut short",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoleMatches(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("RoleMatches() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestImprovementAreas(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "bullets under heading",
			text:     "Areas for improvement:\n- Public speaking\n- System design depth",
			expected: []string{"Public speaking", "System design depth"},
		},
		{
			name:     "cue sentence",
			text:     "The candidate could improve stakeholder communication. Otherwise solid.",
			expected: []string{"The candidate could improve stakeholder communication"},
		},
		{
			name:     "default when nothing matched",
			text:     "",
			expected: DefaultImprovementAreas,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ImprovementAreas(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ImprovementAreas() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPros(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "bullets under heading",
			text:     "Strengths:\n- Deep Go expertise\n- Mentoring",
			expected: []string{"Deep Go expertise", "Mentoring"},
		},
		{
			name:     "cue sentence",
			text:     "Excellent communicator. Ships quickly.",
			expected: []string{"Excellent communicator"},
		},
		{
			name:     "default when nothing matched",
			text:     "",
			expected: DefaultPros,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pros(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Pros() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCons(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		failed   bool
		expected []string
	}{
		{
			name:     "growth analysis failed",
			text:     "Concerns:\n- Short tenures",
			failed:   true,
			expected: DefaultCons,
		},
		{
			name:     "bullets and cue sentences deduplicated",
			text:     "Concerns:\n- Short tenures at two startups\n- No evidence of team leadership",
			expected: []string{"Short tenures at two startups", "No evidence of team leadership"},
		},
		{
			name:     "cue sentence",
			text:     "Lacks production Kubernetes experience.",
			expected: []string{"Lacks production Kubernetes experience"},
		},
		{
			name:     "default when nothing matched",
			text:     "Great engineer.",
			expected: DefaultCons,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cons(tt.text, tt.failed)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Cons() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDefaultsAreCopies(t *testing.T) {
	got := Cons("", true)
	got[0] = "mutated"
	if DefaultCons[0] == "mutated" {
		t.Fatal("Cons returned the shared default slice")
	}
}

// Repetitive replies must never produce duplicate or over-long lists.
func TestListFieldsDedupedAndCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		item := fmt.Sprintf("item %d", i%12)
		fmt.Fprintf(&b, "Skills: %s, %s\n", item, item)
		fmt.Fprintf(&b, "Achievements: Led project %d to 99%% uptime\n", i%14)
		fmt.Fprintf(&b, "Strong match for Role %d\n", i%9)
		fmt.Fprintf(&b, "Could improve area %d.\n", i%8)
		fmt.Fprintf(&b, "Excellent trait %d.\n", i%11)
		fmt.Fprintf(&b, "Lacks exposure %d.\n", i%8)
	}
	text := b.String()

	lists := map[string]struct {
		items []string
		limit int
	}{
		"skills":           {Skills(text), MaxSkills},
		"achievements":     {Achievements(text, text), MaxAchievements},
		"roleMatches":      {RoleMatches(text), MaxRoleMatches},
		"improvementAreas": {ImprovementAreas(text), MaxImprovementAreas},
		"pros":             {Pros(text), MaxPros},
		"cons":             {Cons(text, false), MaxCons},
	}

	for field, l := range lists {
		if len(l.items) == 0 || len(l.items) > l.limit {
			t.Errorf("%s has %d items, want 1..%d", field, len(l.items), l.limit)
		}
		seen := map[string]bool{}
		for _, it := range l.items {
			if seen[it] {
				t.Errorf("%s contains duplicate %q", field, it)
			}
			seen[it] = true
		}
	}
}

func TestExtract(t *testing.T) {
	reply := mock.CannedReply
	f := Extract(Sources{
		ResumeText:          "Alex Morgan\nGo developer",
		Filename:            "alex.pdf",
		DocumentProcessor:   reply,
		RoleMatching:        reply,
		SkillsAnalysis:      reply,
		ExperienceReview:    reply,
		GrowthAnalysis:      reply,
		StrengthsAssessment: reply,
		FinalSynthesis:      reply,
	})

	checks := []struct {
		field string
		got   any
		want  any
	}{
		{"CandidateName", f.CandidateName, "Alex Morgan"},
		{"Skills", f.Skills, []string{"Go", "Python", "Docker", "Kubernetes", "PostgreSQL"}},
		{"ExperienceSummary", f.ExperienceSummary, "6 years building backend services"},
		{"EducationSummary", f.EducationSummary, "BSc Computer Science"},
		{"Achievements", f.Achievements, []string{"Led migration of the billing platform to Kubernetes"}},
		{"RoleMatches", f.RoleMatches, []string{"Backend Engineer roles"}},
		{"ImprovementAreas", f.ImprovementAreas, []string{"Could improve frontend exposure"}},
		{"Pros", f.Pros, []string{"Strong match for Backend Engineer roles", "Excellent ownership of production systems"}},
		{"Cons", f.Cons, DefaultCons},
		{"Summary", f.Summary, "solid senior backend profile with room to grow in product work"},
	}
	for _, c := range checks {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}

func TestExtractSkillsKeepOnlyNamedSkills(t *testing.T) {
	f := Extract(Sources{SkillsAnalysis: "Skills: Python, Django, AWS."})

	want := map[string]bool{"Python": true, "Django": true, "AWS": true}
	if len(f.Skills) != len(want) {
		t.Fatalf("Skills = %q, want exactly Python, Django, AWS", f.Skills)
	}
	for _, s := range f.Skills {
		if !want[s] {
			t.Errorf("Skills contains %q, want only Python, Django, AWS", s)
		}
	}

	// "Go" inside "Django" still counts as a keyword hit
	if !contains(f.TechnicalProficiency.Languages, "Go") {
		t.Errorf("TechnicalProficiency.Languages = %q, want the substring hit Go", f.TechnicalProficiency.Languages)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestExtractGrowthFailed(t *testing.T) {
	f := Extract(Sources{
		Filename:       "jane_doe.pdf",
		GrowthAnalysis: "",
		GrowthFailed:   true,
	})
	if !reflect.DeepEqual(f.Cons, DefaultCons) {
		t.Errorf("Cons = %q, want defaults", f.Cons)
	}
	if f.CandidateName != "Jane Doe" {
		t.Errorf("CandidateName = %q, want name from filename", f.CandidateName)
	}
	if f.EducationSummary != DefaultEducation {
		t.Errorf("EducationSummary = %q, want default", f.EducationSummary)
	}
}
