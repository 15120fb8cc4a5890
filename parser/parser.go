package parser

import (
	"strconv"
	"strings"

	"chexray-pipeline/models"
)

// Defaults used when the audit reply is missing a field. The reply
// format is not contractually guaranteed, so every field degrades
// independently instead of failing the pipeline.
const (
	DefaultFlag        = "UNKNOWN"
	DefaultExplanation = "No explanation found."
)

// Tier labels derived from the hallucination score.
const (
	TierNone        = "no significant"
	TierMinor       = "minor"
	TierSignificant = "significant"
)

// ParseAudit extracts the structured audit record out of a free-text
// LLM reply. Matching is line-oriented, case-insensitive and
// order-independent. It never fails; unmatched fields keep their
// defaults and an unparsable score becomes 0.
func ParseAudit(response string) *models.AuditResult {
	result := &models.AuditResult{
		Hallucinated: DefaultFlag,
		Difference:   DefaultFlag,
		Explanation:  DefaultExplanation,
		Score:        0,
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "hallucinated:"):
			result.Hallucinated = afterFirstColon(line)
		case strings.HasPrefix(lower, "difference:"):
			result.Difference = afterFirstColon(line)
		case strings.HasPrefix(lower, "explanation:"):
			// Explanation text may itself contain colons, split once.
			result.Explanation = afterFirstColon(line)
		case strings.Contains(lower, "hallucination score"):
			result.Score = parseScore(line)
		}
	}

	result.Tier = ScoreTier(result.Score)
	return result
}

// ScoreTier maps a hallucination score onto a display tier.
// Boundaries at 20 and 50 are inclusive-low.
func ScoreTier(score int) string {
	switch {
	case score <= 20:
		return TierNone
	case score <= 50:
		return TierMinor
	default:
		return TierSignificant
	}
}

func afterFirstColon(line string) string {
	_, rest, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}

// parseScore reads the integer between the first and second colon of
// the score line. Any parse failure yields 0, as does an out-of-range
// value; the score contract is [0,100].
func parseScore(line string) int {
	parts := strings.Split(line, ":")
	if len(parts) < 2 {
		return 0
	}
	score, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	if score < 0 || score > 100 {
		return 0
	}
	return score
}
