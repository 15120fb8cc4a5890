package llm

// Client abstracts the hosted LLM provider used by the pipeline.
// Implementations must be concurrency-safe if used across goroutines.
type Client interface {
	// Translate turns a technical medical report into patient-friendly
	// language. The returned text is the model output verbatim,
	// including any formatting markers the model chose to emit.
	Translate(medicalReport string) (string, error)
	// AuditConsistency asks the model to judge whether the layman report
	// contains medical additions not grounded in the original report.
	// It returns the raw model reply; parsing is the caller's concern.
	AuditConsistency(medicalReport, laymanReport string) (string, error)
	// Embed returns the embedding vector for the given text.
	Embed(text string) ([]float64, error)
	// SourceName returns a short provider label (e.g., "Gemini", "ChatGPT").
	SourceName() string
}
