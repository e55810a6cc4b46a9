package core

import (
	"bytes"
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/huangsam/legacylens/core/algo"
	"github.com/huangsam/legacylens/core/extract"
	"github.com/huangsam/legacylens/core/repair"
	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/sirupsen/logrus"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Orchestrator produces an AnalysisRecord for one file, preferring the model
// and falling back to heuristics whenever the model cannot be used.
type Orchestrator struct {
	client       contract.ModelClient // nil means heuristics only
	extractor    *extract.Extractor
	callTimeout  time.Duration
	probeTimeout time.Duration
	keys         []string
	log          logrus.FieldLogger
}

// NewOrchestrator creates an orchestrator. A nil client disables the model path.
func NewOrchestrator(client contract.ModelClient, callTimeout, probeTimeout time.Duration, log logrus.FieldLogger) *Orchestrator {
	if callTimeout <= 0 {
		callTimeout = contract.DefaultModelTimeout
	}
	if probeTimeout <= 0 {
		probeTimeout = contract.DefaultProbeTimeout
	}
	return &Orchestrator{
		client:       client,
		extractor:    extract.New(log),
		callTimeout:  callTimeout,
		probeTimeout: probeTimeout,
		keys:         repair.DefaultKeys,
		log:          log,
	}
}

// DecodeContent strips a UTF-8 BOM and rejects content that is not valid
// UTF-8 text.
func DecodeContent(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return "", &contract.InputError{Op: "decode", Err: errors.New("content is not valid UTF-8")}
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return "", &contract.InputError{Op: "decode", Err: errors.New("content contains NUL bytes")}
	}
	return string(content), nil
}

// metricsResult is what either metrics path produced.
type metricsResult struct {
	metrics    schema.RawMetrics
	values     map[string]any // model values, nil on the heuristic path
	provenance schema.Provenance
	details    map[string]any
}

// Analyze runs the full analysis for content. It only fails when the content
// cannot be decoded; model failures degrade to heuristics.
func (o *Orchestrator) Analyze(ctx context.Context, content []byte, filename string, tech schema.Technology) (schema.AnalysisRecord, error) {
	start := time.Now()
	text, err := DecodeContent(content)
	if err != nil {
		return schema.AnalysisRecord{}, err
	}
	if tech == "" {
		tech = extract.DetectTechnology(filename, content)
	}

	var res metricsResult
	ok := false
	available := o.available(ctx)
	if available {
		res, ok = o.modelMetrics(ctx, text, filename, tech)
	}
	if !ok {
		res = o.heuristicMetrics(text, tech)
	}

	m := o.validate(ctx, res.metrics)
	record := schema.AnalysisRecord{
		Technology:           tech,
		Metrics:              m,
		MaintainabilityIndex: o.derived(ctx, res.values, repair.KeyMaintainabilityIndex, algo.MaintainabilityIndex(m)),
		RiskScore:            o.derived(ctx, res.values, repair.KeyRiskScore, algo.RiskScore(m)),
		ComplexityLevel:      algo.ComplexityLevelFor(m.CyclomaticComplexity),
		TechnicalDebt:        algo.TechnicalDebt(m),
		QualityScore:         algo.QualityScore(m),
		Provenance:           res.provenance,
		AnalyzerVersion:      contract.AnalyzerVersion,
		Details:              res.details,
		Issues:               []schema.Issue{},
	}
	record.RiskLevel = algo.RiskLevelFor(record.RiskScore)

	if available {
		record.Issues = o.runSubScans(ctx, text, tech)
		record.Details["model"] = o.client.Name()
	}

	record.Duration = time.Since(start)
	record.CreatedAt = time.Now()

	o.log.WithFields(logrus.Fields{
		"file_id":    fileIDFromContext(ctx),
		"provenance": record.Provenance,
		"complexity": m.CyclomaticComplexity,
		"issues":     len(record.Issues),
	}).Debug("Analysis computed")
	return record, nil
}

// available probes the model with a short timeout.
func (o *Orchestrator) available(ctx context.Context) bool {
	if o.client == nil {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, o.probeTimeout)
	defer cancel()
	if !o.client.IsAvailable(probeCtx) {
		o.log.WithField("file_id", fileIDFromContext(ctx)).Info("Model unavailable, using heuristics")
		return false
	}
	return true
}

func (o *Orchestrator) heuristicMetrics(text string, tech schema.Technology) metricsResult {
	return metricsResult{
		metrics:    o.extractor.Extract(text, tech),
		provenance: schema.HeuristicProvenance,
		details:    map[string]any{"source": "heuristic"},
	}
}

// modelMetrics asks the model for metrics. ok is false when the call failed or
// recovery had to synthesize metrics, in which case heuristics are used.
func (o *Orchestrator) modelMetrics(ctx context.Context, text, filename string, tech schema.Technology) (metricsResult, bool) {
	log := o.log.WithField("file_id", fileIDFromContext(ctx))

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	raw, err := o.client.Generate(callCtx, metricsPrompt(filename, tech, o.keys), text)
	if err != nil {
		log.WithError(&contract.ExternalServiceError{Service: o.client.Name(), Err: err}).Warn("Model metrics failed, using heuristics")
		return metricsResult{}, false
	}

	rec := repair.Recover(raw, o.keys, text)
	log = log.WithField("strategy", rec.Strategy)
	if rec.Fallback {
		log.Warn("Model response unrecoverable, using heuristics")
		return metricsResult{}, false
	}
	log.Debug("Model response recovered")

	return metricsResult{
		metrics:    repair.ToRawMetrics(rec.Values),
		values:     rec.Values,
		provenance: schema.AIProvenance,
		details: map[string]any{
			"source":            "ai",
			"recovery_strategy": string(rec.Strategy),
			"backfilled":        rec.Backfilled,
			"reported_level":    repair.String(rec.Values, repair.KeyComplexityLevel),
		},
	}, true
}

// validate applies merge defaults. Complexity must be at least 1.
func (o *Orchestrator) validate(ctx context.Context, m schema.RawMetrics) schema.RawMetrics {
	if m.CyclomaticComplexity < 1 {
		o.log.WithField("file_id", fileIDFromContext(ctx)).
			WithError(&contract.ValidationError{Field: repair.KeyCyclomaticComplexity, Reason: "below 1"}).
			Debug("Defaulting metric")
		m.CyclomaticComplexity = 1
	}
	return m
}

// derived returns a model-supplied score when it is in range, else computed.
func (o *Orchestrator) derived(ctx context.Context, values map[string]any, key string, computed float64) float64 {
	if values == nil {
		return computed
	}
	v, ok := repair.Float(values, key)
	if !ok || v < 0 || v > 100 {
		o.log.WithField("file_id", fileIDFromContext(ctx)).
			WithError(&contract.ValidationError{Field: key, Reason: "missing or out of range"}).
			Debug("Recomputing score")
		return computed
	}
	return v
}
