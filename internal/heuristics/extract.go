package heuristics

import "hirelens/internal/types"

// Sources holds the texts the extractors read. A persona that failed
// contributes an empty string.
type Sources struct {
	ResumeText string
	Filename   string

	DocumentProcessor   string
	RoleMatching        string
	SkillsAnalysis      string
	ExperienceReview    string
	GrowthAnalysis      string
	StrengthsAssessment string
	FinalSynthesis      string

	GrowthFailed bool
}

// Fields are the structured values derived from one run
type Fields struct {
	CandidateName        string
	Skills               []string
	ExperienceSummary    string
	EducationSummary     string
	Achievements         []string
	TechnicalProficiency types.TechnicalProficiency
	RoleMatches          []string
	ImprovementAreas     []string
	Pros                 []string
	Cons                 []string
	Summary              string
}

// Extract runs every field extractor over its source text
func Extract(s Sources) Fields {
	return Fields{
		CandidateName:        CandidateName(s.DocumentProcessor, s.Filename),
		Skills:               Skills(s.SkillsAnalysis),
		ExperienceSummary:    ExperienceSummary(s.ExperienceReview),
		EducationSummary:     EducationSummary(s.DocumentProcessor),
		Achievements:         Achievements(s.ExperienceReview, s.StrengthsAssessment),
		TechnicalProficiency: TechnicalProficiency(s.ResumeText, s.SkillsAnalysis),
		RoleMatches:          RoleMatches(s.RoleMatching),
		ImprovementAreas:     ImprovementAreas(s.GrowthAnalysis),
		Pros:                 Pros(s.StrengthsAssessment),
		Cons:                 Cons(s.GrowthAnalysis, s.GrowthFailed),
		Summary:              Summary(s.FinalSynthesis),
	}
}
