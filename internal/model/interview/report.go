package interview

// ATSReport is the resume analysis attached to a session after a successful
// upload. A later upload overwrites it; a failed upload leaves it untouched.
type ATSReport struct {
	Score            Score    `json:"score"`
	MissingKeywords  []string `json:"missing_keywords"`
	FormattingIssues []string `json:"formatting_issues,omitempty"`
	Summary          string   `json:"summary,omitempty"`
}

// ReportCard is the closing performance report, displayed exactly as the
// backend returned it.
type ReportCard struct {
	Communication Score    `json:"communication"`
	Technical     Score    `json:"technical"`
	Confidence    Score    `json:"confidence"`
	Feedback      string   `json:"feedback"`
	Improvements  []string `json:"improvements,omitempty"`
	ATSScore      Score    `json:"ats_score,omitempty"`
	MissingSkills []string `json:"missing_skills,omitempty"`
}
