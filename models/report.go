package models

import (
	"time"
)

// AuditResult is the structured record parsed out of the consistency
// audit reply. Every field degrades to its default when the reply does
// not contain the matching line; parsing never fails.
type AuditResult struct {
	Hallucinated string `json:"hallucinated"`
	Difference   string `json:"difference"`
	Explanation  string `json:"explanation"`
	Score        int    `json:"score"`
	Tier         string `json:"tier"`
}

// AnalysisResult bundles everything one completed analysis produced.
type AnalysisResult struct {
	MedicalReport   string       `json:"medical_report"`
	LaymanReport    string       `json:"layman_report"`
	SimilarityScore float64      `json:"similarity_score"`
	Audit           *AuditResult `json:"audit,omitempty"`
	Source          string       `json:"source"`
	CompletedAt     time.Time    `json:"completed_at"`
}
