package service

import (
	"errors"
	"time"

	"github.com/apex/log"

	"chexray-pipeline/config"
	"chexray-pipeline/gemini"
	"chexray-pipeline/imaging"
	"chexray-pipeline/inference"
	"chexray-pipeline/llm"
	"chexray-pipeline/metrics"
	"chexray-pipeline/models"
	"chexray-pipeline/openai"
	"chexray-pipeline/parser"
	"chexray-pipeline/session"
	"chexray-pipeline/similarity"
)

// Precondition errors raised before the pipeline starts. They mean the
// request was not actionable, not that an upstream call failed.
var (
	ErrNoImage    = errors.New("no image uploaded")
	ErrNoEndpoint = errors.New("no inference endpoint configured")
)

// Service runs the analysis pipeline: encode -> inference -> translate
// -> similarity -> audit. Each stage blocks until its network call
// returns or times out; there is no retry and no cancellation.
type Service struct {
	config    *config.Config
	inference *inference.Client
	llmClient llm.Client
	encoder   *imaging.Encoder
	scorer    *similarity.Scorer
	sessions  *session.Store
}

// NewService creates the pipeline service with the configured LLM
// provider.
func NewService(cfg *config.Config) *Service {
	var client llm.Client
	if cfg.LLMProvider == "openai" {
		client = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIEmbeddingModel)
	} else {
		client = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiEmbeddingModel)
	}
	log.Infof("Pipeline LLM provider=%s", client.SourceName())

	return NewServiceWith(cfg, inference.NewClient(cfg.InferenceTimeout, cfg.ProbeTimeout), client)
}

// NewServiceWith wires the service with explicit collaborators. Tests
// use it to inject fake clients.
func NewServiceWith(cfg *config.Config, inf *inference.Client, client llm.Client) *Service {
	return &Service{
		config:    cfg,
		inference: inf,
		llmClient: client,
		encoder:   &imaging.Encoder{MaxDimension: cfg.MaxImageDimension},
		scorer:    similarity.NewScorer(client),
		sessions:  session.NewStore(),
	}
}

// Sessions exposes the session store to the HTTP layer.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// Endpoint resolves the inference endpoint for a session: the session
// override wins, then the configured default.
func (s *Service) Endpoint(sess *session.Session) string {
	if endpoint, _ := sess.Overrides(); endpoint != "" {
		return endpoint
	}
	return s.config.InferenceURL
}

// Probe checks backend reachability and records the outcome on the
// session. The flag reflects only this probe; it goes stale by design.
func (s *Service) Probe(sess *session.Session, endpoint string) bool {
	connected := s.inference.Probe(endpoint)

	metrics.LastProbeSeconds.Set(metrics.NowUnixSeconds())
	if connected {
		metrics.InferenceConnected.Set(1)
	} else {
		metrics.InferenceConnected.Set(0)
	}

	if sess != nil {
		sess.SetConnected(connected)
	}
	log.WithField("endpoint", endpoint).Infof("Probe result: %v", connected)
	return connected
}

// Analyze runs the full pipeline for a session's uploaded image. All
// results are staged in locals and committed to the session only when
// every stage has succeeded, so a failed attempt never leaves partial
// state behind and never pairs reports from different attempts.
func (s *Service) Analyze(sess *session.Session, endpoint string) (*models.AnalysisResult, error) {
	imageData := sess.Image()
	if len(imageData) == 0 {
		return nil, ErrNoImage
	}
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}

	sess.BeginAnalysis()

	imageBase64, err := s.stageEncode(imageData)
	if err != nil {
		return nil, s.fail(sess, "encode", err)
	}

	medicalReport, err := s.stageInference(endpoint, imageBase64)
	if err != nil {
		return nil, s.fail(sess, "inference", err)
	}

	laymanReport, err := s.stageTranslate(medicalReport)
	if err != nil {
		return nil, s.fail(sess, "translate", err)
	}

	// Similarity runs first, then the audit; they are independent of
	// each other but both need the full report pair.
	score, err := s.stageSimilarity(medicalReport, laymanReport)
	if err != nil {
		return nil, s.fail(sess, "similarity", err)
	}

	audit, err := s.stageAudit(medicalReport, laymanReport)
	if err != nil {
		return nil, s.fail(sess, "audit", err)
	}

	result := &models.AnalysisResult{
		MedicalReport:   medicalReport,
		LaymanReport:    laymanReport,
		SimilarityScore: score,
		Audit:           audit,
		Source:          s.llmClient.SourceName(),
		CompletedAt:     time.Now(),
	}
	sess.Commit(result)

	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	metrics.HallucinationScore.Observe(float64(audit.Score))
	log.WithFields(log.Fields{
		"session":    sess.ID(),
		"score":      audit.Score,
		"tier":       audit.Tier,
		"similarity": score,
	}).Info("Analysis complete")

	return result, nil
}

func (s *Service) fail(sess *session.Session, stage string, err error) error {
	metrics.AnalysesTotal.WithLabelValues(stage + "_error").Inc()
	log.WithField("session", sess.ID()).Errorf("Analysis failed at %s stage: %v", stage, err)
	sess.Fail(err.Error())
	return err
}

func (s *Service) stageEncode(imageData []byte) (string, error) {
	defer observeStage("encode", time.Now())
	return s.encoder.EncodeBase64(imageData)
}

func (s *Service) stageInference(endpoint, imageBase64 string) (string, error) {
	defer observeStage("inference", time.Now())
	return s.inference.Analyze(endpoint, imageBase64)
}

func (s *Service) stageTranslate(medicalReport string) (string, error) {
	defer observeStage("translate", time.Now())
	return s.llmClient.Translate(medicalReport)
}

func (s *Service) stageSimilarity(medicalReport, laymanReport string) (float64, error) {
	defer observeStage("similarity", time.Now())
	return s.scorer.Score(medicalReport, laymanReport)
}

func (s *Service) stageAudit(medicalReport, laymanReport string) (*models.AuditResult, error) {
	defer observeStage("audit", time.Now())
	reply, err := s.llmClient.AuditConsistency(medicalReport, laymanReport)
	if err != nil {
		return nil, err
	}
	// The parse is tolerant: a malformed reply degrades to defaults
	// instead of failing the attempt.
	return parser.ParseAudit(reply), nil
}

func observeStage(stage string, start time.Time) {
	metrics.StageDurationSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
