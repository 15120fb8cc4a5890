package parser

import (
	"testing"

	"chexray-pipeline/models"
)

func TestParseAudit(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected *models.AuditResult
	}{
		{
			name: "well-formed reply",
			response: `Hallucinated: YES
Difference: HIGH
Explanation: foo bar
Hallucination Score: 73`,
			expected: &models.AuditResult{
				Hallucinated: "YES",
				Difference:   "HIGH",
				Explanation:  "foo bar",
				Score:        73,
				Tier:         TierSignificant,
			},
		},
		{
			name: "reordered lines and mixed casing",
			response: `hallucination SCORE: 12
EXPLANATION: looks fine
difference: low
HALLUCINATED: no`,
			expected: &models.AuditResult{
				Hallucinated: "no",
				Difference:   "low",
				Explanation:  "looks fine",
				Score:        12,
				Tier:         TierNone,
			},
		},
		{
			name: "explanation containing colons",
			response: `Hallucinated: NO
Difference: LOW
Explanation: Report B adds context: dosage, timing
Hallucination Score: 5`,
			expected: &models.AuditResult{
				Hallucinated: "NO",
				Difference:   "LOW",
				Explanation:  "Report B adds context: dosage, timing",
				Score:        5,
				Tier:         TierNone,
			},
		},
		{
			name: "surrounding whitespace and prose",
			response: `Sure, here is my assessment:

   Hallucinated: NO
   Difference: MEDIUM
   Explanation: minor rephrasing only
   Hallucination Score: 30

Let me know if you need more detail.`,
			expected: &models.AuditResult{
				Hallucinated: "NO",
				Difference:   "MEDIUM",
				Explanation:  "minor rephrasing only",
				Score:        30,
				Tier:         TierMinor,
			},
		},
		{
			name: "missing score line",
			response: `Hallucinated: YES
Difference: HIGH
Explanation: invented a fracture`,
			expected: &models.AuditResult{
				Hallucinated: "YES",
				Difference:   "HIGH",
				Explanation:  "invented a fracture",
				Score:        0,
				Tier:         TierNone,
			},
		},
		{
			name: "non-numeric score",
			response: `Hallucinated: NO
Difference: LOW
Explanation: fine
Hallucination Score: not-a-number`,
			expected: &models.AuditResult{
				Hallucinated: "NO",
				Difference:   "LOW",
				Explanation:  "fine",
				Score:        0,
				Tier:         TierNone,
			},
		},
		{
			name:     "score line without a colon",
			response: "the hallucination score is high",
			expected: &models.AuditResult{
				Hallucinated: DefaultFlag,
				Difference:   DefaultFlag,
				Explanation:  DefaultExplanation,
				Score:        0,
				Tier:         TierNone,
			},
		},
		{
			name:     "out-of-range score resets to default",
			response: "Hallucination Score: 250",
			expected: &models.AuditResult{
				Hallucinated: DefaultFlag,
				Difference:   DefaultFlag,
				Explanation:  DefaultExplanation,
				Score:        0,
				Tier:         TierNone,
			},
		},
		{
			name:     "empty reply keeps all defaults",
			response: "",
			expected: &models.AuditResult{
				Hallucinated: DefaultFlag,
				Difference:   DefaultFlag,
				Explanation:  DefaultExplanation,
				Score:        0,
				Tier:         TierNone,
			},
		},
		{
			name:     "garbage reply keeps all defaults",
			response: "¯\\_(ツ)_/¯\nno structured output here\n42",
			expected: &models.AuditResult{
				Hallucinated: DefaultFlag,
				Difference:   DefaultFlag,
				Explanation:  DefaultExplanation,
				Score:        0,
				Tier:         TierNone,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAudit(tt.response)
			if got.Hallucinated != tt.expected.Hallucinated {
				t.Errorf("Hallucinated = %q, want %q", got.Hallucinated, tt.expected.Hallucinated)
			}
			if got.Difference != tt.expected.Difference {
				t.Errorf("Difference = %q, want %q", got.Difference, tt.expected.Difference)
			}
			if got.Explanation != tt.expected.Explanation {
				t.Errorf("Explanation = %q, want %q", got.Explanation, tt.expected.Explanation)
			}
			if got.Score != tt.expected.Score {
				t.Errorf("Score = %d, want %d", got.Score, tt.expected.Score)
			}
			if got.Tier != tt.expected.Tier {
				t.Errorf("Tier = %q, want %q", got.Tier, tt.expected.Tier)
			}
		})
	}
}

func TestScoreTier(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, TierNone},
		{20, TierNone},
		{21, TierMinor},
		{50, TierMinor},
		{51, TierSignificant},
		{100, TierSignificant},
	}

	for _, tt := range tests {
		if got := ScoreTier(tt.score); got != tt.want {
			t.Errorf("ScoreTier(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
