package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"hirelens/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ResumeAnalysis", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "ResumeAnalysis", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "BatchResult", &BatchTextFormatter{})
	registry.RegisterFormatter("markdown", "BatchResult", &BatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "OutreachEmail", &EmailTextFormatter{})
	registry.RegisterFormatter("markdown", "OutreachEmail", &EmailMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// deref lets callers pass either values or pointers of the known types
func deref(data any) any {
	switch v := data.(type) {
	case *types.ResumeAnalysis:
		if v != nil {
			return *v
		}
	case *types.BatchResult:
		if v != nil {
			return *v
		}
	case *types.OutreachEmail:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ResumeAnalysis:
		return "ResumeAnalysis"
	case types.BatchResult:
		return "BatchResult"
	case types.OutreachEmail:
		return "OutreachEmail"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// sortedAgentIDs orders status keys for stable output
func sortedAgentIDs(statuses map[string]types.AgentStatus) []string {
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func writeTextList(output *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(title + ":\n")
	for _, item := range items {
		output.WriteString("  - " + item + "\n")
	}
	output.WriteString("\n")
}

func writeMarkdownList(output *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString("## " + title + "\n\n")
	for _, item := range items {
		output.WriteString("- " + item + "\n")
	}
	output.WriteString("\n")
}

func proficiencyLines(tp types.TechnicalProficiency) []string {
	var lines []string
	if len(tp.Languages) > 0 {
		lines = append(lines, "Languages: "+strings.Join(tp.Languages, ", "))
	}
	if len(tp.Frameworks) > 0 {
		lines = append(lines, "Frameworks: "+strings.Join(tp.Frameworks, ", "))
	}
	if len(tp.Tools) > 0 {
		lines = append(lines, "Tools: "+strings.Join(tp.Tools, ", "))
	}
	return lines
}

func contactLines(c types.Contact) []string {
	var lines []string
	if c.Email != "" {
		lines = append(lines, "Email: "+c.Email)
	}
	if c.LinkedIn != "" {
		lines = append(lines, "LinkedIn: "+c.LinkedIn)
	}
	if c.GitHub != "" {
		lines = append(lines, "GitHub: "+c.GitHub)
	}
	return lines
}

// AnalysisTextFormatter handles text formatting for a single analysis
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ResumeAnalysis)
	if !ok {
		return "", fmt.Errorf("expected ResumeAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RESUME ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Candidate: %s\n", result.CandidateName))
	output.WriteString(fmt.Sprintf("File: %s\n", result.Filename))
	if result.TargetRole != "" {
		output.WriteString(fmt.Sprintf("Target role: %s\n", result.TargetRole))
	}
	output.WriteString(fmt.Sprintf("Match score: %d/100\n", result.MatchScore))
	output.WriteString(fmt.Sprintf("Agents: %d/%d completed in %dms\n\n",
		result.Metadata.CompletedAgentCount, result.Metadata.TotalAgentCount, result.Metadata.TotalProcessingTimeMillis))

	writeTextList(&output, "Contact", contactLines(result.Contact))

	output.WriteString("Summary:\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")
	output.WriteString("Experience:\n")
	output.WriteString(result.ExperienceSummary)
	output.WriteString("\n\n")
	output.WriteString("Education:\n")
	output.WriteString(result.EducationSummary)
	output.WriteString("\n\n")

	writeTextList(&output, "Skills", result.Skills)
	writeTextList(&output, "Technical proficiency", proficiencyLines(result.TechnicalProficiency))
	writeTextList(&output, "Achievements", result.Achievements)
	writeTextList(&output, "Role matches", result.RoleMatches)
	writeTextList(&output, "Pros", result.Pros)
	writeTextList(&output, "Cons", result.Cons)
	writeTextList(&output, "Improvement areas", result.ImprovementAreas)

	if len(result.AgentStatuses) > 0 {
		output.WriteString("=== AGENTS ===\n")
		for _, id := range sortedAgentIDs(result.AgentStatuses) {
			st := result.AgentStatuses[id]
			line := fmt.Sprintf("%-22s %-9s %6dms", id, st.State, st.ElapsedMillis)
			if st.State == types.AgentError {
				line += "  " + st.Message
			}
			output.WriteString(line + "\n")
		}
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "ResumeAnalysis"
}

// AnalysisMarkdownFormatter handles markdown formatting for a single analysis
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ResumeAnalysis)
	if !ok {
		return "", fmt.Errorf("expected ResumeAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# %s\n\n", result.CandidateName))
	output.WriteString(fmt.Sprintf("**Match score:** %d/100  \n", result.MatchScore))
	if result.TargetRole != "" {
		output.WriteString(fmt.Sprintf("**Target role:** %s  \n", result.TargetRole))
	}
	output.WriteString(fmt.Sprintf("**File:** %s\n\n", result.Filename))

	writeMarkdownList(&output, "Contact", contactLines(result.Contact))

	output.WriteString("## Summary\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")
	output.WriteString("## Experience\n\n")
	output.WriteString(result.ExperienceSummary)
	output.WriteString("\n\n")
	output.WriteString("## Education\n\n")
	output.WriteString(result.EducationSummary)
	output.WriteString("\n\n")

	writeMarkdownList(&output, "Skills", result.Skills)
	writeMarkdownList(&output, "Technical Proficiency", proficiencyLines(result.TechnicalProficiency))
	writeMarkdownList(&output, "Achievements", result.Achievements)
	writeMarkdownList(&output, "Role Matches", result.RoleMatches)
	writeMarkdownList(&output, "Pros", result.Pros)
	writeMarkdownList(&output, "Cons", result.Cons)
	writeMarkdownList(&output, "Improvement Areas", result.ImprovementAreas)

	if len(result.AgentStatuses) > 0 {
		output.WriteString("## Agents\n\n")
		output.WriteString("| Agent | State | Time (ms) |\n")
		output.WriteString("|---|---|---|\n")
		for _, id := range sortedAgentIDs(result.AgentStatuses) {
			st := result.AgentStatuses[id]
			output.WriteString(fmt.Sprintf("| %s | %s | %d |\n", id, st.State, st.ElapsedMillis))
		}
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "ResumeAnalysis"
}

// BatchTextFormatter handles text formatting for batch results
type BatchTextFormatter struct{}

func (btf *BatchTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BatchResult)
	if !ok {
		return "", fmt.Errorf("expected BatchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== BATCH ANALYSIS ===\n\n")
	if result.TargetRole != "" {
		output.WriteString(fmt.Sprintf("Target role: %s\n", result.TargetRole))
	}
	output.WriteString(fmt.Sprintf("Files: %d (%d succeeded, %d failed)\n\n", len(result.Entries), result.Succeeded, result.Failed))

	for i, entry := range result.Entries {
		if entry.Succeeded() {
			a := entry.Analysis
			output.WriteString(fmt.Sprintf("%d. %s: %s, score %d/100\n", i+1, entry.Filename, a.CandidateName, a.MatchScore))
			if a.Summary != "" {
				output.WriteString("   " + a.Summary + "\n")
			}
		} else {
			output.WriteString(fmt.Sprintf("%d. %s: FAILED (%s)\n", i+1, entry.Filename, entry.Error.Message))
		}
	}

	return output.String(), nil
}

func (btf *BatchTextFormatter) SupportedType() string {
	return "BatchResult"
}

// BatchMarkdownFormatter handles markdown formatting for batch results
type BatchMarkdownFormatter struct{}

func (bmf *BatchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BatchResult)
	if !ok {
		return "", fmt.Errorf("expected BatchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Batch Analysis\n\n")
	if result.TargetRole != "" {
		output.WriteString(fmt.Sprintf("**Target role:** %s  \n", result.TargetRole))
	}
	output.WriteString(fmt.Sprintf("**Succeeded:** %d  \n**Failed:** %d\n\n", result.Succeeded, result.Failed))

	output.WriteString("| # | File | Candidate | Score | Status |\n")
	output.WriteString("|---|---|---|---|---|\n")
	for i, entry := range result.Entries {
		if entry.Succeeded() {
			output.WriteString(fmt.Sprintf("| %d | %s | %s | %d | ok |\n",
				i+1, entry.Filename, entry.Analysis.CandidateName, entry.Analysis.MatchScore))
		} else {
			output.WriteString(fmt.Sprintf("| %d | %s | | | failed: %s |\n", i+1, entry.Filename, entry.Error.Message))
		}
	}

	return output.String(), nil
}

func (bmf *BatchMarkdownFormatter) SupportedType() string {
	return "BatchResult"
}

// EmailTextFormatter handles text formatting for outreach emails
type EmailTextFormatter struct{}

func (etf *EmailTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OutreachEmail)
	if !ok {
		return "", fmt.Errorf("expected OutreachEmail, got %T", data)
	}

	var output strings.Builder
	if result.To != "" {
		output.WriteString(fmt.Sprintf("To: %s\n", result.To))
	}
	output.WriteString(fmt.Sprintf("Subject: %s\n\n", result.Subject))
	output.WriteString(result.Body)
	output.WriteString("\n")
	if result.Sent {
		output.WriteString("\n[sent]\n")
	}

	return output.String(), nil
}

func (etf *EmailTextFormatter) SupportedType() string {
	return "OutreachEmail"
}

// EmailMarkdownFormatter handles markdown formatting for outreach emails
type EmailMarkdownFormatter struct{}

func (emf *EmailMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OutreachEmail)
	if !ok {
		return "", fmt.Errorf("expected OutreachEmail, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("# %s\n\n", result.Subject))
	if result.To != "" {
		output.WriteString(fmt.Sprintf("**To:** %s\n\n", result.To))
	}
	output.WriteString(result.Body)
	output.WriteString("\n")

	return output.String(), nil
}

func (emf *EmailMarkdownFormatter) SupportedType() string {
	return "OutreachEmail"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
