package llm

import "fmt"

// Prompt templates are versioned configuration data. Changing the
// wording changes model behavior, so edits here should be deliberate
// and reviewed against the audit parser's expected reply format.

const translatePromptTemplate = `You are a medical translator. Translate this medical report into simple, patient-friendly language that anyone can understand. Give direct response as you are actually giving the report.

Medical Report: %s

Provide a clear, layman translation:`

const auditPromptTemplate = `
You are a medical analysis expert LLM.

Two reports are provided:
- Report A = Original medical report
- Report B = Layman translation generated by another LLM

Your ONLY job:
- Decide if Report B contains *hallucinations* (incorrect additions NOT in Report A).
- Normal explanation or simplification is allowed.
- Only WRONG MEDICAL ADDITIONS count as hallucinations.

Return EXACTLY this format:

Hallucinated: YES or NO
Difference: HIGH / MEDIUM / LOW
Explanation: <short explanation>
Hallucination Score: <0-100 number>

-----------------
Report A:
%s

Report B:
%s
`

// TranslatePrompt embeds the medical report verbatim into the fixed
// translation instruction.
func TranslatePrompt(medicalReport string) string {
	return fmt.Sprintf(translatePromptTemplate, medicalReport)
}

// AuditPrompt embeds both reports verbatim into the fixed audit
// instruction.
func AuditPrompt(medicalReport, laymanReport string) string {
	return fmt.Sprintf(auditPromptTemplate, medicalReport, laymanReport)
}
