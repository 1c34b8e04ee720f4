// Package heuristics turns persona free text into structured resume
// fields. Every function is pure and total: a miss yields an empty or
// default value, never an error.
package heuristics

import (
	"regexp"
	"strings"
	"unicode"
)

// rule extracts one value from text, reporting whether it matched
type rule func(text string) (string, bool)

// listRule extracts any number of values from text
type listRule func(text string) []string

// firstMatch applies rules in priority order and returns the first hit
func firstMatch(text string, rules []rule, fallback string) string {
	for _, r := range rules {
		if v, ok := r(text); ok {
			return v
		}
	}
	return fallback
}

// accumulate concatenates every rule's matches, dedupes, then caps
func accumulate(text string, rules []listRule, limit int) []string {
	var all []string
	for _, r := range rules {
		all = append(all, r(text)...)
	}
	return capped(dedupe(all), limit)
}

// dedupe keeps the first occurrence of each exact string
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func capped(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

var (
	bulletPrefix  = regexp.MustCompile(`^\s*(?:[-*•‣▪◦]|\d{1,2}[.)])\s+`)
	sentenceBreak = regexp.MustCompile(`([.!?])\s+`)
)

// clean strips list markers, markdown emphasis and edge punctuation
func clean(s string) string {
	s = bulletPrefix.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "#>` ")
	s = strings.TrimRight(s, " .;,")
	return strings.TrimSpace(s)
}

// isBullet reports whether line is a list item
func isBullet(line string) bool {
	return bulletPrefix.MatchString(line)
}

// isHeading reports whether line looks like a section label rather than content
func isHeading(line string) bool {
	t := strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*#_ "))
	return t != "" && strings.HasSuffix(t, ":")
}

// sentences splits text into trimmed sentences. Every line break is a
// boundary so bullet lists and labelled lines split cleanly.
func sentences(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = sentenceBreak.ReplaceAllString(line, "$1\n")
		for _, s := range strings.Split(line, "\n") {
			s = strings.TrimSpace(bulletPrefix.ReplaceAllString(s, ""))
			s = strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
			if len(s) < 3 || isHeading(s) {
				continue
			}
			out = append(out, s)
		}
	}
	return out
}

// firstSentences joins the first n sentences with a single space
func firstSentences(text string, n int) (string, bool) {
	ss := sentences(text)
	if len(ss) == 0 {
		return "", false
	}
	return strings.Join(capped(ss, n), " "), true
}

// labelled returns a rule matching "<label>: value" on a single line.
// label is a regexp fragment matched case-insensitively.
func labelled(label string) rule {
	re := regexp.MustCompile(`(?im)^[ \t*#_>-]*(?:` + label + `)[*_]*[ \t]*[:\-–][ \t]*(.+)$`)
	return func(text string) (string, bool) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v := clean(m[1]); v != "" {
				return v, true
			}
		}
		return "", false
	}
}

// labelledValues is like labelled but returns every matching line's value
func labelledValues(label string) func(text string) []string {
	re := regexp.MustCompile(`(?im)^[ \t*#_>-]*(?:` + label + `)[*_]*[ \t]*[:\-–][ \t]*(.+)$`)
	return func(text string) []string {
		var out []string
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v := clean(m[1]); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
}

// sectionLines collects the non-blank lines following a heading that
// matches label, up to the next blank line or heading.
func sectionLines(text, label string) []string {
	heading := regexp.MustCompile(`(?i)^[ \t*#_>-]*(?:` + label + `)[*_]*[ \t]*:?[*_ \t]*$`)
	lines := strings.Split(text, "\n")

	var out []string
	for i := 0; i < len(lines); i++ {
		if !heading.MatchString(lines[i]) {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			line := strings.TrimSpace(lines[j])
			if line == "" {
				if len(out) > 0 {
					break
				}
				continue
			}
			if isHeading(line) && !isBullet(line) {
				break
			}
			out = append(out, line)
		}
		if len(out) > 0 {
			return out
		}
	}
	return out
}

// sectionBullets returns the list items under every heading matching
// label. Text after an inline "label:" on the heading line is ignored.
func sectionBullets(label string) listRule {
	heading := regexp.MustCompile(`(?i)^[ \t*#_>-]*(?:` + label + `)[*_]*[ \t]*:?[*_ \t]*$`)
	return func(text string) []string {
		lines := strings.Split(text, "\n")
		var out []string
		for i := 0; i < len(lines); i++ {
			if !heading.MatchString(lines[i]) {
				continue
			}
			for j := i + 1; j < len(lines); j++ {
				line := lines[j]
				if strings.TrimSpace(line) == "" {
					continue
				}
				if !isBullet(line) {
					i = j - 1
					break
				}
				if v := clean(line); v != "" {
					out = append(out, v)
				}
			}
		}
		return out
	}
}

// matchingSentences returns sentences containing a match for re
func matchingSentences(re *regexp.Regexp) listRule {
	return func(text string) []string {
		var out []string
		for _, s := range sentences(text) {
			if re.MatchString(s) {
				if v := clean(s); v != "" {
					out = append(out, v)
				}
			}
		}
		return out
	}
}

var listSeparator = regexp.MustCompile(`\s*(?:[,;|•]|\band\b)\s*`)

// splitList breaks "a, b and c" into trimmed tokens, dropping anything
// that reads like a sentence instead of a list item.
func splitList(s string) []string {
	var out []string
	for _, tok := range listSeparator.Split(s, -1) {
		tok = clean(tok)
		if tok == "" || len(tok) > 40 || len(strings.Fields(tok)) > 4 {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// titleCase upper-cases the first letter of each word and lowers the rest
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// nonNil returns an empty slice for nil so JSON renders [] not null
func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
