package email

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"hirelens/internal/ai"
	"hirelens/internal/errors"
	"hirelens/internal/types"
)

var subjectLine = regexp.MustCompile(`(?im)^[ \t*#]*subject[ \t*]*:[ \t*]*(.+?)[ \t*]*$`)

const outreachInstruction = `You are a friendly technical recruiter writing a first outreach email to a candidate.
Write a short, personal email (under 200 words) inviting the candidate to talk about the role.
Mention one or two concrete strengths from the analysis below. Do not mention scores.
Start your reply with a line "Subject: <subject line>", then a blank line, then the email body.
Sign the email as the recruiting team of the company.`

// Composer writes outreach emails with the completion provider
type Composer struct {
	provider ai.Provider
	logger   *errors.Logger
}

func NewComposer(provider ai.Provider, logger *errors.Logger) *Composer {
	return &Composer{provider: provider, logger: logger}
}

// Compose generates an outreach email for the analysed candidate. The
// recipient defaults to the email address found in the resume.
func (c *Composer) Compose(ctx context.Context, analysis *types.ResumeAnalysis, role, company string) (*types.OutreachEmail, error) {
	if analysis == nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "Analysis is required", nil)
	}
	if strings.TrimSpace(role) == "" {
		role = analysis.TargetRole
	}

	completion, err := c.provider.Complete(ctx, OutreachPrompt(analysis, role, company))
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to generate outreach email", err)
	}
	if completion == nil || strings.TrimSpace(completion.Text) == "" {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Empty outreach email from model", nil)
	}

	subject, body := ParseReply(completion.Text)
	if subject == "" {
		subject = FallbackSubject(role, company)
	}

	c.logger.Debug("Outreach email composed",
		"candidate", analysis.CandidateName,
		"subject", subject,
		"body_length", len(body))

	return &types.OutreachEmail{
		To:            analysis.Contact.Email,
		CandidateName: analysis.CandidateName,
		Subject:       subject,
		Body:          body,
	}, nil
}

// OutreachPrompt builds the prompt for one candidate
func OutreachPrompt(a *types.ResumeAnalysis, role, company string) string {
	var b strings.Builder
	b.WriteString(outreachInstruction)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Candidate: %s\n", a.CandidateName)
	if role != "" {
		fmt.Fprintf(&b, "Role: %s\n", role)
	}
	if company != "" {
		fmt.Fprintf(&b, "Company: %s\n", company)
	}
	if len(a.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(a.Skills, ", "))
	}
	if a.ExperienceSummary != "" {
		fmt.Fprintf(&b, "Experience: %s\n", a.ExperienceSummary)
	}
	for _, p := range a.Pros {
		fmt.Fprintf(&b, "Strength: %s\n", p)
	}
	if a.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", a.Summary)
	}
	return b.String()
}

// ParseReply splits a model reply into subject and body. The first
// "Subject:" line is taken as the subject and removed from the body.
func ParseReply(text string) (subject, body string) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	loc := subjectLine.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", text
	}
	end := loc[1]
	if end < len(text) && text[end] == '\n' {
		end++
	}
	subject = strings.TrimSpace(text[loc[2]:loc[3]])
	body = strings.TrimSpace(text[:loc[0]] + text[end:])
	return subject, body
}

// FallbackSubject is used when the reply carries no subject line
func FallbackSubject(role, company string) string {
	switch {
	case role != "" && company != "":
		return fmt.Sprintf("%s opportunity at %s", role, company)
	case role != "":
		return fmt.Sprintf("%s opportunity", role)
	case company != "":
		return fmt.Sprintf("An opportunity at %s", company)
	default:
		return "An opportunity we think you'll like"
	}
}
