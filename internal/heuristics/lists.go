package heuristics

import (
	"regexp"
	"strings"
)

// Caps applied after deduplication
const (
	MaxSkills           = 15
	MaxAchievements     = 10
	MaxRoleMatches      = 5
	MaxImprovementAreas = 5
	MaxPros             = 7
	MaxCons             = 5
)

// Default lists used when nothing matched
var (
	DefaultPros = []string{
		"Relevant professional experience",
		"Demonstrated technical skills",
		"Clear career progression",
	}
	DefaultImprovementAreas = []string{
		"Quantify achievements with measurable outcomes",
		"Broaden exposure to adjacent technologies",
	}
	DefaultCons = []string{
		"Growth analysis unavailable; probe development areas in interview",
		"Limited evidence of measurable impact",
	}
)

var (
	skillsLabel = `(?:key\s+|technical\s+|core\s+|primary\s+)?skills(?:\s+summary)?|tech(?:nology)?\s+stack`

	skillsLabelled = labelledValues(skillsLabel)
	skillsSection  = sectionBullets(skillsLabel)
	proficientIn   = regexp.MustCompile(`(?i)\b(?:proficient|skilled|experienced|expertise|fluent)\s+(?:in|with)\s+([^.\n]+)`)

	skillRules = []listRule{
		func(text string) []string {
			var out []string
			for _, v := range skillsLabelled(text) {
				out = append(out, splitList(v)...)
			}
			return out
		},
		func(text string) []string {
			var out []string
			for _, item := range skillsSection(text) {
				// "Expert: Go, Python" lists sit after a depth label
				if i := strings.Index(item, ":"); i >= 0 {
					item = item[i+1:]
				}
				out = append(out, splitList(item)...)
			}
			return out
		},
		func(text string) []string {
			var out []string
			for _, m := range proficientIn.FindAllStringSubmatch(text, -1) {
				out = append(out, splitList(m[1])...)
			}
			return out
		},
	}
)

// Skills returns the skills named in text, deduplicated and capped. Keyword
// hits stay in TechnicalProficiency; a substring hit is not a skill.
func Skills(text string) []string {
	return nonNil(accumulate(text, skillRules, MaxSkills))
}

var (
	achievementsLabel = `(?:key\s+|notable\s+|major\s+)?(?:achievements?|accomplishments?)`
	achievementVerb   = regexp.MustCompile(`(?i)\b(?:led|built|launched|reduced|increased|improved|delivered|designed|grew|saved|won|shipped|migrated|scaled|founded|awarded)\b`)
	hasFigure         = regexp.MustCompile(`\d`)

	achievementRules = []listRule{
		labelledValues(achievementsLabel),
		sectionBullets(achievementsLabel),
		func(text string) []string {
			var out []string
			for _, s := range sentences(text) {
				if achievementVerb.MatchString(s) && hasFigure.MatchString(s) {
					out = append(out, clean(s))
				}
			}
			return out
		},
	}
)

// Achievements gathers accomplishments from each text in order
func Achievements(texts ...string) []string {
	var all []string
	for _, t := range texts {
		all = append(all, accumulate(t, achievementRules, MaxAchievements)...)
	}
	return nonNil(capped(dedupe(all), MaxAchievements))
}

var (
	rolesLabel    = `role\s+matches|matching\s+roles|suitable\s+roles|recommended\s+roles|potential\s+roles|best[\s-]+fit\s+roles`
	rolesSection  = sectionBullets(rolesLabel)
	rolesLabelled = labelledValues(rolesLabel)
	matchFor      = regexp.MustCompile(`(?i)\b(?:strong|good|great|excellent|solid|partial|potential)\s+(?:match|fit|candidate)\s+for\s+(?:an?\s+|the\s+)?([^.,;(\n]+)`)
	roleReason    = regexp.MustCompile(`\s*(?:\(|\s[-–—]\s|:).*$`)

	roleRules = []listRule{
		func(text string) []string {
			var out []string
			for _, item := range rolesSection(text) {
				out = append(out, clean(roleReason.ReplaceAllString(item, "")))
			}
			return out
		},
		func(text string) []string {
			var out []string
			for _, v := range rolesLabelled(text) {
				out = append(out, splitList(v)...)
			}
			return out
		},
		func(text string) []string {
			var out []string
			for _, m := range matchFor.FindAllStringSubmatch(text, -1) {
				out = append(out, clean(m[1]))
			}
			return out
		},
	}
)

// RoleMatches returns the roles the role matcher proposed
func RoleMatches(text string) []string {
	return nonNil(accumulate(text, roleRules, MaxRoleMatches))
}

var (
	improvementLabel = `(?:areas?\s+(?:for|of)\s+(?:improvement|development|growth))|(?:improvement|development|growth)\s+areas?|recommendations?`
	improvementCue   = regexp.MustCompile(`(?i)\b(?:could improve|should (?:develop|improve|strengthen|gain)|would benefit from|needs? to (?:improve|strengthen|develop|gain)|consider (?:gaining|learning|developing))\b`)

	improvementRules = []listRule{
		labelledValues(improvementLabel),
		sectionBullets(improvementLabel),
		matchingSentences(improvementCue),
	}
)

// ImprovementAreas returns development suggestions, or
// DefaultImprovementAreas when none are found.
func ImprovementAreas(text string) []string {
	if areas := accumulate(text, improvementRules, MaxImprovementAreas); len(areas) > 0 {
		return areas
	}
	return append([]string(nil), DefaultImprovementAreas...)
}

var (
	prosLabel = `(?:key\s+|core\s+)?strengths|pros|advantages|highlights`
	prosCue   = regexp.MustCompile(`(?i)\b(?:strong|excellent|exceptional|proven|outstanding|impressive|deep expertise|solid track record)\b`)

	prosRules = []listRule{
		sectionBullets(prosLabel),
		labelledValues(prosLabel),
		matchingSentences(prosCue),
	}
)

// Pros returns the candidate's strengths, or DefaultPros when none are found
func Pros(text string) []string {
	if pros := accumulate(text, prosRules, MaxPros); len(pros) > 0 {
		return pros
	}
	return append([]string(nil), DefaultPros...)
}

var (
	consLabel = `concerns?|weaknesses|cons|risks|red\s+flags|gaps|potential\s+concerns`
	consCue   = regexp.MustCompile(`(?i)\b(?:concern(?:ing)?|weakness|lacks?|lacking|limited|no (?:evidence|experience)|gap in|short tenures?|risk)\b`)

	consRules = []listRule{
		sectionBullets(consLabel),
		labelledValues(consLabel),
		matchingSentences(consCue),
	}
)

// Cons returns concerns raised by the growth analyst. When that agent
// failed, or nothing matched, DefaultCons is returned.
func Cons(text string, failed bool) []string {
	if !failed {
		if cons := accumulate(text, consRules, MaxCons); len(cons) > 0 {
			return cons
		}
	}
	return append([]string(nil), DefaultCons...)
}
