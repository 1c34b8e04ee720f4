package types

import "time"

// AgentState is the lifecycle state of one agent during one run.
type AgentState string

const (
	AgentIdle      AgentState = "idle"
	AgentWorking   AgentState = "working"
	AgentCompleted AgentState = "completed"
	AgentError     AgentState = "error"
)

// Terminal reports whether no further transitions are allowed.
func (s AgentState) Terminal() bool {
	return s == AgentCompleted || s == AgentError
}

// AgentStatus is the transient run-state of one persona for one resume
type AgentStatus struct {
	State         AgentState `json:"state"`
	Progress      int        `json:"progress"`
	Message       string     `json:"message"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
	ElapsedMillis int64      `json:"elapsedMillis,omitempty"`
}

// AgentResult is the durable output of one persona for one resume
type AgentResult struct {
	AgentID              string  `json:"agentId"`
	RawText              string  `json:"rawText"`
	Confidence           float64 `json:"confidence"`
	ProcessingTimeMillis int64   `json:"processingTimeMillis"`
}

// TechnicalProficiency groups recognised technology keywords
type TechnicalProficiency struct {
	Languages  []string `json:"languages"`
	Frameworks []string `json:"frameworks"`
	Tools      []string `json:"tools"`
}

// Contact holds profile links discovered in the resume text
type Contact struct {
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Email    string `json:"email,omitempty"`
}

// AnalysisMetadata aggregates run-level provenance
type AnalysisMetadata struct {
	TotalProcessingTimeMillis int64 `json:"totalProcessingTimeMillis"`
	CompletedAgentCount       int   `json:"completedAgentCount"`
	TotalAgentCount           int   `json:"totalAgentCount"`
}

// ResumeAnalysis is the structured record produced for one resume file
type ResumeAnalysis struct {
	ID                   string                 `json:"id"`
	Filename             string                 `json:"filename"`
	CandidateName        string                 `json:"candidateName"`
	TargetRole           string                 `json:"targetRole"`
	Skills               []string               `json:"skills"`
	ExperienceSummary    string                 `json:"experienceSummary"`
	EducationSummary     string                 `json:"educationSummary"`
	Achievements         []string               `json:"achievements"`
	TechnicalProficiency TechnicalProficiency   `json:"technicalProficiency"`
	RoleMatches          []string               `json:"roleMatches"`
	ImprovementAreas     []string               `json:"improvementAreas"`
	Pros                 []string               `json:"pros"`
	Cons                 []string               `json:"cons"`
	Summary              string                 `json:"summary"`
	MatchScore           int                    `json:"matchScore"`
	Contact              Contact                `json:"contact"`
	AgentResults         map[string]AgentResult `json:"agentResults"`
	AgentStatuses        map[string]AgentStatus `json:"agentStatuses"`
	Metadata             AnalysisMetadata       `json:"metadata"`
	CreatedAt            time.Time              `json:"createdAt"`
}

// FileError reports a file that could not be analysed
type FileError struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

func (e FileError) Error() string {
	return e.Filename + ": " + e.Message
}

// BatchEntry is one slot of a batch result. Exactly one of Analysis
// and Error is set.
type BatchEntry struct {
	Filename string          `json:"filename"`
	Analysis *ResumeAnalysis `json:"analysis,omitempty"`
	Error    *FileError      `json:"error,omitempty"`
}

// Succeeded reports whether the entry holds an analysis.
func (e BatchEntry) Succeeded() bool {
	return e.Analysis != nil
}

// BatchResult wraps the entries of one batch run
type BatchResult struct {
	TargetRole string       `json:"targetRole"`
	Entries    []BatchEntry `json:"entries"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
}

// NewBatchResult counts outcomes over entries.
func NewBatchResult(role string, entries []BatchEntry) *BatchResult {
	r := &BatchResult{TargetRole: role, Entries: entries}
	for _, e := range entries {
		if e.Succeeded() {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}
	return r
}

// ResumeFile is raw input for one analysis
type ResumeFile struct {
	Filename    string `json:"filename"`
	Data        []byte `json:"-"`
	ContentType string `json:"contentType,omitempty"`
}

// OutreachEmail is a generated candidate outreach message
type OutreachEmail struct {
	To            string `json:"to,omitempty"`
	CandidateName string `json:"candidateName"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	Sent          bool   `json:"sent"`
}
