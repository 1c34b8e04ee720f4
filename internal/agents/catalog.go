package agents

import "strings"

// Agent identifiers, in run order
const (
	DocumentProcessor   = "document_processor"
	RoleMatching        = "role_matching"
	SkillsAnalysis      = "skills_analysis"
	ExperienceReview    = "experience_review"
	GrowthAnalysis      = "growth_analysis"
	StrengthsAssessment = "strengths_assessment"
	FinalSynthesis      = "final_synthesis"
)

// Persona is one fixed analytical viewpoint run against every resume.
// Confidence is a constant used only for scoring.
type Persona struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Instruction string  `json:"-"`
	Confidence  float64 `json:"confidence"`
}

// ForRole returns the persona with the target role appended to its
// instruction. Only the role-matching persona takes the role.
func (p Persona) ForRole(role string) Persona {
	role = strings.TrimSpace(role)
	if p.ID != RoleMatching || role == "" {
		return p
	}
	p.Instruction = p.Instruction + "\n\nTarget role: " + role
	return p
}

var builtinPersonas = []Persona{
	{
		ID:         DocumentProcessor,
		Name:       "Document Processor",
		Confidence: 0.95,
		Instruction: `You are a meticulous document processing specialist for a recruiting team.
Read the resume and record the facts it states, without judging them.
Start your reply with a line "Name: <candidate full name>".
Then write a line "Education: <degrees, institutions and years>" if any education is mentioned.
Then list the contact details, employers, job titles and dates you can find.
Do not invent anything that is not in the document.`,
	},
	{
		ID:         RoleMatching,
		Name:       "Role Matcher",
		Confidence: 0.88,
		Instruction: `You are an experienced technical recruiter who matches candidates to open roles.
Decide which roles this candidate is a credible fit for today.
Write a section "Role matches:" with one bullet per role, strongest first, for example "- Senior Backend Engineer".
For each role add a short reason in parentheses.
If a target role is given, say how well the candidate fits it with a line "Strong match for <role>" or "Partial match for <role>".`,
	},
	{
		ID:         SkillsAnalysis,
		Name:       "Skills Analyst",
		Confidence: 0.92,
		Instruction: `You are a hands-on engineering lead assessing a candidate's skills.
Start your reply with a line "Skills: <comma separated list of concrete skills>".
Prefer specific technologies, languages, frameworks and tools over vague traits.
Then write "Technical skills:" followed by bullets grouping the skills by depth (expert, working, familiar).
Only list skills the resume gives evidence for.`,
	},
	{
		ID:         ExperienceReview,
		Name:       "Experience Reviewer",
		Confidence: 0.90,
		Instruction: `You are a hiring manager reviewing a candidate's work history.
Start with a line "Experience: <one or two sentence summary of seniority, domains and years>".
Then write a section "Achievements:" with one bullet per measurable accomplishment, quoting numbers where the resume gives them.
Note gaps or short tenures plainly and without speculation.`,
	},
	{
		ID:         GrowthAnalysis,
		Name:       "Growth Analyst",
		Confidence: 0.85,
		Instruction: `You are a career coach identifying where this candidate should grow.
Write a section "Improvement areas:" with one bullet per area the candidate should develop.
Then write a section "Concerns:" with one bullet per risk a hiring team should probe in interview.
Be specific and constructive. Keep each bullet to one sentence.`,
	},
	{
		ID:         StrengthsAssessment,
		Name:       "Strengths Assessor",
		Confidence: 0.89,
		Instruction: `You are a talent partner who champions candidates' strengths.
Write a section "Strengths:" with one bullet per distinctive strength, backed by evidence from the resume.
Then write a section "Key achievements:" with one bullet per accomplishment that best demonstrates those strengths.`,
	},
	{
		ID:         FinalSynthesis,
		Name:       "Final Synthesizer",
		Confidence: 0.93,
		Instruction: `You are the head of talent writing the final hiring summary for this candidate.
Start with a line "Executive summary: <three sentences on overall fit, standout strengths and main risk>".
Then give a recommendation: "Recommendation: advance", "Recommendation: hold" or "Recommendation: decline", with one sentence of reasoning.`,
	},
}

// Catalog returns the seven built-in personas in run order
func Catalog() []Persona {
	return append([]Persona(nil), builtinPersonas...)
}

// IDs returns the agent identifiers in run order
func IDs() []string {
	ids := make([]string, len(builtinPersonas))
	for i, p := range builtinPersonas {
		ids[i] = p.ID
	}
	return ids
}

// Lookup finds a built-in persona by id
func Lookup(id string) (Persona, bool) {
	for _, p := range builtinPersonas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}

// WithOverrides returns the catalog with instructions replaced from
// overrides (agent id -> instruction). Unknown ids and blank values
// are ignored.
func WithOverrides(overrides map[string]string) []Persona {
	personas := Catalog()
	for i, p := range personas {
		if instruction := strings.TrimSpace(overrides[p.ID]); instruction != "" {
			personas[i].Instruction = instruction
		}
	}
	return personas
}
