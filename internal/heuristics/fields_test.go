package heuristics

import "testing"

func TestCandidateName(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		filename string
		expected string
	}{
		{
			name:     "labelled name",
			text:     "Name: Jane Doe\nEmail: jane@example.com",
			filename: "resume.pdf",
			expected: "Jane Doe",
		},
		{
			name:     "markdown emphasis around label",
			text:     "**Name:** Jane Doe",
			filename: "resume.pdf",
			expected: "Jane Doe",
		},
		{
			name:     "introduced in prose",
			text:     "The candidate, Maria Garcia Lopez, has ten years in logistics.",
			filename: "resume.pdf",
			expected: "Maria Garcia Lopez",
		},
		{
			name:     "first name-like line",
			text:     "Priya Natarajan\nSenior Software Engineer\npriya@example.com",
			filename: "resume.pdf",
			expected: "Priya Natarajan",
		},
		{
			name:     "falls back to filename",
			text:     "no name anywhere in this reply",
			filename: "jane_doe-resume.pdf",
			expected: "Jane Doe",
		},
		{
			name:     "job title is not a name",
			text:     "Name: Software Engineer",
			filename: "cv_2024.pdf",
			expected: UnknownCandidateName,
		},
		{
			name:     "nothing usable",
			text:     "",
			filename: "resume.pdf",
			expected: UnknownCandidateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CandidateName(tt.text, tt.filename)
			if got != tt.expected {
				t.Errorf("CandidateName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNameFromFilename(t *testing.T) {
	tests := map[string]string{
		"jane_doe-resume.pdf":          "Jane Doe",
		"/tmp/uploads/JOHN.SMITH.docx": "John Smith",
		"CV_Final_2024.pdf":            "",
		"resume.txt":                   "",
	}
	for in, want := range tests {
		if got := NameFromFilename(in); got != want {
			t.Errorf("NameFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExperienceSummary(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "labelled line",
			text:     "Experience: 6 years building backend services\nOther notes.",
			expected: "6 years building backend services",
		},
		{
			name:     "years of experience sentence",
			text:     "Strong profile overall. The candidate has 8+ years of professional experience in fintech. Leads teams.",
			expected: "The candidate has 8+ years of professional experience in fintech",
		},
		{
			name:     "opening sentences",
			text:     "Solid backend engineer. Works mostly on APIs! Mentors juniors.",
			expected: "Solid backend engineer. Works mostly on APIs!",
		},
		{
			name:     "empty text",
			text:     "",
			expected: DefaultExperience,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExperienceSummary(tt.text); got != tt.expected {
				t.Errorf("ExperienceSummary() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestEducationSummary(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "labelled line",
			text:     "Education: BSc Computer Science, MIT 2015",
			expected: "BSc Computer Science, MIT 2015",
		},
		{
			name:     "section under heading",
			text:     "Summary here\n\nEDUCATION\nMSc Data Science - University of Leeds\nBSc Mathematics\nCertifications:\n- AWS",
			expected: "MSc Data Science - University of Leeds; BSc Mathematics",
		},
		{
			name:     "degree keyword line",
			text:     "Worked at Acme.\nHolds a Bachelor's degree in Physics from Leeds.",
			expected: "Holds a Bachelor's degree in Physics from Leeds",
		},
		{
			name:     "no education anywhere",
			text:     "Seasoned engineer with a focus on distributed systems.\nEnjoys mentoring.",
			expected: DefaultEducation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EducationSummary(tt.text); got != tt.expected {
				t.Errorf("EducationSummary() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "labelled executive summary",
			text:     "Recommendation: hire\nExecutive summary: Strong backend candidate.",
			expected: "Strong backend candidate",
		},
		{
			name:     "summary section",
			text:     "## Executive Summary\nSeasoned engineer\nReady for staff roles\n\nMore detail follows",
			expected: "Seasoned engineer. Ready for staff roles",
		},
		{
			name:     "opening three sentences",
			text:     "First point. Second point. Third point. Fourth point.",
			expected: "First point. Second point. Third point.",
		},
		{
			name:     "empty text",
			text:     "",
			expected: DefaultSummary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.text); got != tt.expected {
				t.Errorf("Summary() = %q, want %q", got, tt.expected)
			}
		})
	}
}
