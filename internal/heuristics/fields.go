package heuristics

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Fallback values for singular fields
const (
	DefaultExperience    = "Experience details extracted from resume"
	DefaultEducation     = "Education details extracted from resume"
	DefaultSummary       = "Comprehensive analysis completed"
	UnknownCandidateName = "Unknown Candidate"
)

var (
	nameIntroduced = regexp.MustCompile(`(?:[Cc]andidate(?:'s)? name is|[Tt]he candidate,|[Cc]andidate:)\s+([A-Z][A-Za-z'.-]+(?:\s+[A-Z][A-Za-z'.-]+){1,3})`)
	nameWord       = regexp.MustCompile(`^[A-Z][A-Za-z'.-]*$`)
	notNameWords   = map[string]bool{
		"resume": true, "curriculum": true, "vitae": true, "cv": true, "profile": true,
		"summary": true, "experience": true, "education": true, "skills": true,
		"contact": true, "objective": true, "analysis": true, "candidate": true,
		"engineer": true, "developer": true, "manager": true, "senior": true,
	}
	filenameNoise = map[string]bool{
		"resume": true, "cv": true, "curriculum": true, "vitae": true,
		"final": true, "latest": true, "updated": true, "copy": true,
	}
)

var nameRules = []rule{
	labelled(`(?:candidate(?:'s)?\s+|full\s+)?name`),
	func(text string) (string, bool) {
		m := nameIntroduced.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return clean(m[1]), true
	},
	firstNameLikeLine,
}

// CandidateName finds the candidate's name in text, then derives one
// from filename, then gives up with UnknownCandidateName.
func CandidateName(text, filename string) string {
	for _, r := range nameRules {
		if v, ok := r(text); ok && looksLikeName(v) {
			return v
		}
	}
	if name := NameFromFilename(filename); name != "" {
		return name
	}
	return UnknownCandidateName
}

// firstNameLikeLine returns the first of the opening lines that reads
// like a person's name
func firstNameLikeLine(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	for _, line := range capped(lines, 10) {
		if v := clean(line); looksLikeName(v) {
			return v, true
		}
	}
	return "", false
}

// looksLikeName accepts two to four capitalised words with no digits
func looksLikeName(s string) bool {
	if s == "" || len(s) > 50 || strings.ContainsAny(s, "@:/|,0123456789") {
		return false
	}
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		if !nameWord.MatchString(w) || notNameWords[strings.ToLower(strings.Trim(w, ".'-"))] {
			return false
		}
	}
	return true
}

// NameFromFilename turns "jane_doe-resume.pdf" into "Jane Doe"
func NameFromFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)

	var words []string
	for _, w := range strings.Fields(base) {
		lw := strings.ToLower(w)
		if filenameNoise[lw] || strings.IndexFunc(w, unicode.IsLetter) < 0 {
			continue
		}
		words = append(words, lw)
	}
	return titleCase(strings.Join(words, " "))
}

var (
	yearsOfExperience = regexp.MustCompile(`(?i)\b\d+\+?\s*(?:years?|yrs?)\b[^.\n]*\bexperience\b|\bexperience\b[^.\n]*\b\d+\+?\s*(?:years?|yrs?)\b`)

	experienceRules = []rule{
		labelled(`(?:professional\s+|work\s+)?experience(?:\s+summary)?`),
		func(text string) (string, bool) {
			for _, s := range sentences(text) {
				if yearsOfExperience.MatchString(s) {
					return clean(s), true
				}
			}
			return "", false
		},
		func(text string) (string, bool) {
			return firstSentences(text, 2)
		},
	}
)

// ExperienceSummary returns the experience reviewer's summary line, a
// years-of-experience sentence, or the opening two sentences.
func ExperienceSummary(text string) string {
	return firstMatch(text, experienceRules, DefaultExperience)
}

var (
	degreeKeyword = regexp.MustCompile(`(?i)\b(?:bachelor(?:'s)?|master(?:'s)?|ph\.?\s?d|doctorate|mba|b\.?\s?sc|m\.?\s?sc|b\.?\s?tech|m\.?\s?tech|b\.?eng|m\.?eng|associate(?:'s)? degree|degree in|diploma|university|college|institute of technology)\b`)

	educationRules = []rule{
		labelled(`education(?:al)?(?:\s+background)?|academic\s+background`),
		func(text string) (string, bool) {
			lines := sectionLines(text, `education(?:al)?(?:\s+background)?|academic\s+background`)
			if len(lines) == 0 {
				return "", false
			}
			parts := make([]string, 0, 2)
			for _, l := range capped(lines, 2) {
				if v := clean(l); v != "" {
					parts = append(parts, v)
				}
			}
			if len(parts) == 0 {
				return "", false
			}
			return strings.Join(parts, "; "), true
		},
		func(text string) (string, bool) {
			for _, line := range strings.Split(text, "\n") {
				if degreeKeyword.MatchString(line) {
					if v := clean(line); v != "" {
						return v, true
					}
				}
			}
			return "", false
		},
	}
)

// EducationSummary returns an education line or section, or the first
// line naming a degree or institution.
func EducationSummary(text string) string {
	return firstMatch(text, educationRules, DefaultEducation)
}

var summaryRules = []rule{
	labelled(`executive\s+summary|overall\s+summary|overall\s+assessment|overall|summary`),
	func(text string) (string, bool) {
		lines := sectionLines(text, `executive\s+summary|overall\s+summary|summary|overall\s+assessment`)
		if len(lines) == 0 {
			return "", false
		}
		parts := make([]string, 0, len(lines))
		for _, l := range lines {
			if v := clean(l); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, ". "), true
	},
	func(text string) (string, bool) {
		return firstSentences(text, 3)
	},
}

// Summary returns the final synthesis' executive summary, or its opening
// three sentences.
func Summary(text string) string {
	return firstMatch(text, summaryRules, DefaultSummary)
}
