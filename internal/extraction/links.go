package extraction

import (
	"regexp"
	"strings"

	"hirelens/internal/types"
)

// LinkKind classifies a discovered link
type LinkKind string

const (
	LinkLinkedIn LinkKind = "linkedin"
	LinkGitHub   LinkKind = "github"
	LinkEmail    LinkKind = "email"
)

// Link is a profile or contact reference found in resume text
type Link struct {
	URL  string   `json:"url"`
	Text string   `json:"text"`
	Kind LinkKind `json:"kind"`
}

type linkPattern struct {
	re     *regexp.Regexp
	render func(match string) Link
}

// Applied in this order; discovery order follows it.
var linkPatterns = []linkPattern{
	{
		re: regexp.MustCompile(`(?i)https?://(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_%-]+`),
		render: func(m string) Link {
			return Link{URL: m, Text: "LinkedIn", Kind: LinkLinkedIn}
		},
	},
	{
		re: regexp.MustCompile(`(?i)https?://(?:www\.)?github\.com/[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?`),
		render: func(m string) Link {
			return Link{URL: m, Text: "GitHub", Kind: LinkGitHub}
		},
	},
	{
		re: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
		render: func(m string) Link {
			return Link{URL: "mailto:" + m, Text: m, Kind: LinkEmail}
		},
	},
}

// DiscoverLinks scans text for LinkedIn, GitHub and email references.
// Links are unique by URL and ordered by pattern, then by position.
func DiscoverLinks(text string) []Link {
	var links []Link
	seen := make(map[string]struct{})

	for _, p := range linkPatterns {
		for _, m := range p.re.FindAllString(text, -1) {
			link := p.render(m)
			if _, dup := seen[link.URL]; dup {
				continue
			}
			seen[link.URL] = struct{}{}
			links = append(links, link)
		}
	}
	return links
}

// ContactFromLinks takes the first link of each kind
func ContactFromLinks(links []Link) types.Contact {
	var c types.Contact
	for _, l := range links {
		switch l.Kind {
		case LinkLinkedIn:
			if c.LinkedIn == "" {
				c.LinkedIn = l.URL
			}
		case LinkGitHub:
			if c.GitHub == "" {
				c.GitHub = l.URL
			}
		case LinkEmail:
			if c.Email == "" {
				c.Email = l.Text
			}
		}
	}
	return c
}

// AugmentText appends a "Discovered links" listing to text so the
// personas can see references the PDF layer flattened away.
func AugmentText(text string, links []Link) string {
	if len(links) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\nDiscovered links:")
	for _, l := range links {
		b.WriteString("\n- ")
		b.WriteString(l.Text)
		b.WriteString(": ")
		b.WriteString(l.URL)
	}
	return b.String()
}
