package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverLinks_ProfileURLs(t *testing.T) {
	text := "Jane Doe\nhttps://linkedin.com/in/janedoe\nCode: https://github.com/janedoe"

	links := DiscoverLinks(text)

	require.Len(t, links, 2)
	assert.Equal(t, Link{URL: "https://linkedin.com/in/janedoe", Text: "LinkedIn", Kind: LinkLinkedIn}, links[0])
	assert.Equal(t, Link{URL: "https://github.com/janedoe", Text: "GitHub", Kind: LinkGitHub}, links[1])

	contact := ContactFromLinks(links)
	assert.Equal(t, "https://linkedin.com/in/janedoe", contact.LinkedIn)
	assert.Equal(t, "https://github.com/janedoe", contact.GitHub)
	assert.Empty(t, contact.Email)
}

func TestDiscoverLinks_PatternOrderNotDocumentOrder(t *testing.T) {
	text := "jane@example.com | https://github.com/jd | https://www.linkedin.com/in/jd-42"

	links := DiscoverLinks(text)

	require.Len(t, links, 3)
	assert.Equal(t, LinkLinkedIn, links[0].Kind)
	assert.Equal(t, LinkGitHub, links[1].Kind)
	assert.Equal(t, LinkEmail, links[2].Kind)
}

func TestDiscoverLinks_EmailRenderedAsMailto(t *testing.T) {
	links := DiscoverLinks("Contact: jane.doe+jobs@mail.example.org.")

	require.Len(t, links, 1)
	assert.Equal(t, "mailto:jane.doe+jobs@mail.example.org", links[0].URL)
	assert.Equal(t, "jane.doe+jobs@mail.example.org", links[0].Text)
	assert.Equal(t, "jane.doe+jobs@mail.example.org", ContactFromLinks(links).Email)
}

func TestDiscoverLinks_DeduplicatesByURL(t *testing.T) {
	text := `https://github.com/jd
see https://github.com/jd again
https://github.com/other
jd@example.com jd@example.com`

	links := DiscoverLinks(text)

	require.Len(t, links, 3)
	assert.Equal(t, "https://github.com/jd", links[0].URL)
	assert.Equal(t, "https://github.com/other", links[1].URL)
	assert.Equal(t, "mailto:jd@example.com", links[2].URL)
}

func TestDiscoverLinks_PlainMentionsNotMatched(t *testing.T) {
	assert.Empty(t, DiscoverLinks("LinkedIn: john-doe, GitHub: johnd"))
	assert.Empty(t, DiscoverLinks(""))
}

func TestContactFromLinks_FirstOfEachKindWins(t *testing.T) {
	links := []Link{
		{URL: "https://github.com/first", Text: "GitHub", Kind: LinkGitHub},
		{URL: "https://github.com/second", Text: "GitHub", Kind: LinkGitHub},
		{URL: "mailto:a@b.io", Text: "a@b.io", Kind: LinkEmail},
	}

	contact := ContactFromLinks(links)
	assert.Equal(t, "https://github.com/first", contact.GitHub)
	assert.Equal(t, "a@b.io", contact.Email)
	assert.Empty(t, contact.LinkedIn)
}

func TestAugmentText(t *testing.T) {
	text := "Jane Doe"
	links := []Link{
		{URL: "https://linkedin.com/in/janedoe", Text: "LinkedIn", Kind: LinkLinkedIn},
		{URL: "mailto:jane@example.com", Text: "jane@example.com", Kind: LinkEmail},
	}

	want := "Jane Doe\n\nDiscovered links:\n" +
		"- LinkedIn: https://linkedin.com/in/janedoe\n" +
		"- jane@example.com: mailto:jane@example.com"
	assert.Equal(t, want, AugmentText(text, links))
	assert.Equal(t, text, AugmentText(text, nil))
}
