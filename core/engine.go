// Package core ingests legacy source files and turns them into analyses and suggestions.
package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/legacylens/core/algo"
	"github.com/huangsam/legacylens/core/extract"
	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/sirupsen/logrus"
)

// interruptedMessage is recorded on files whose analysis never finished.
const interruptedMessage = "analysis interrupted before completion"

// awaitInterval is how often Await polls a file analyzed by the pool.
const awaitInterval = 50 * time.Millisecond

// Engine is the downstream API: ingestion, analysis, status and suggestions.
// Each file's state machine is independent and there is no global lock.
type Engine struct {
	files        contract.FileStore
	analyses     contract.AnalysisStore
	blobs        contract.ContentStore
	orchestrator *Orchestrator
	fingerprint  Fingerprinter
	fpAlgo       schema.FingerprintAlgo
	autoAnalyze  bool
	workers      int
	queueSize    int
	pool         *WorkerPool
	log          logrus.FieldLogger
	now          func() time.Time
}

// NewEngine wires an engine from configuration. A nil client disables the model path.
func NewEngine(cfg *contract.Config, mgr contract.StoreManager, blobs contract.ContentStore, client contract.ModelClient) *Engine {
	log := contract.Logger.WithField("component", "engine")
	return &Engine{
		files:        mgr.GetFileStore(),
		analyses:     mgr.GetAnalysisStore(),
		blobs:        blobs,
		orchestrator: NewOrchestrator(client, cfg.ModelTimeout, cfg.ProbeTimeout, contract.Logger.WithField("component", "orchestrator")),
		fingerprint:  FingerprinterFor(cfg.FingerprintAlgo),
		fpAlgo:       cfg.FingerprintAlgo,
		autoAnalyze:  cfg.AutoAnalyze,
		workers:      cfg.Workers,
		queueSize:    cfg.QueueSize,
		log:          log,
		now:          time.Now,
	}
}

// Start launches the background worker pool used by AnalyzeAsync and by
// ingestion when auto-analyze is on. It is a no-op when already started.
func (e *Engine) Start(ctx context.Context) {
	if e.pool != nil {
		return
	}
	e.pool = NewWorkerPool(ctx, e.workers, e.queueSize, e.runJob, e.onJobPanic, e.log)
}

// Close drains queued analyses and stops the workers.
func (e *Engine) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

// Ingest stores content once per fingerprint. Identical content yields the
// existing file with a duplicate outcome and never triggers analysis.
func (e *Engine) Ingest(ctx context.Context, filename string, content []byte) (schema.IngestResult, error) {
	if len(content) > contract.MaxContentBytes {
		return schema.IngestResult{}, &contract.InputError{
			Op:  "ingest",
			Err: fmt.Errorf("content is %d bytes, limit is %d", len(content), contract.MaxContentBytes),
		}
	}

	fp := e.fingerprint(content)
	if existing, ok, err := e.lookupFingerprint(ctx, fp); err != nil {
		return schema.IngestResult{}, err
	} else if ok {
		return duplicateResult(existing, filename), nil
	}

	key := contentKey(fp)
	if err := e.blobs.Put(ctx, key, content); err != nil {
		return schema.IngestResult{}, &contract.PersistenceError{Op: "store content", Err: err}
	}

	now := e.now()
	file := schema.SourceFile{
		ID:          uuid.NewString(),
		Filename:    filename,
		Technology:  extract.DetectTechnology(filename, content),
		ContentPath: key,
		Size:        int64(len(content)),
		Fingerprint: fp,
		Status:      schema.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.files.CreateFile(ctx, file); err != nil {
		if !errors.Is(err, contract.ErrDuplicate) {
			// No row references the blob yet.
			if delErr := e.blobs.Delete(ctx, key); delErr != nil {
				e.log.WithField("key", key).WithError(delErr).Warn("Could not remove orphaned content")
			}
			return schema.IngestResult{}, &contract.PersistenceError{Op: "create file", Err: err}
		}
		// Lost a concurrent ingest of the same content.
		existing, ok, lookupErr := e.lookupFingerprint(ctx, fp)
		if lookupErr != nil || !ok {
			return schema.IngestResult{}, &contract.PersistenceError{Op: "create file", Err: err}
		}
		return duplicateResult(existing, filename), nil
	}

	e.log.WithFields(logrus.Fields{
		"file_id":    file.ID,
		"filename":   filename,
		"technology": file.Technology,
	}).Info("Ingested file")

	if e.autoAnalyze && e.pool != nil {
		if err := e.pool.Submit(file.ID, false); err != nil {
			e.log.WithField("file_id", file.ID).WithError(err).Warn("Analysis not queued, file stays UPLOADED")
		}
	}

	return schema.IngestResult{
		FileID:      file.ID,
		Filename:    filename,
		Outcome:     schema.UploadedOutcome,
		Fingerprint: fp,
		Technology:  file.Technology,
	}, nil
}

func (e *Engine) lookupFingerprint(ctx context.Context, fp string) (schema.SourceFile, bool, error) {
	file, err := e.files.GetFileByFingerprint(ctx, fp)
	switch {
	case err == nil:
		return file, true, nil
	case errors.Is(err, contract.ErrNotFound):
		return schema.SourceFile{}, false, nil
	default:
		return schema.SourceFile{}, false, &contract.PersistenceError{Op: "lookup fingerprint", Err: err}
	}
}

func duplicateResult(file schema.SourceFile, filename string) schema.IngestResult {
	return schema.IngestResult{
		FileID:      file.ID,
		Filename:    filename,
		Outcome:     schema.DuplicateOutcome,
		Fingerprint: file.Fingerprint,
		Technology:  file.Technology,
	}
}

// Analyze runs the analysis of a file synchronously. An ANALYZED file returns
// its latest record unless force is set.
func (e *Engine) Analyze(ctx context.Context, fileID string, force bool) (schema.AnalysisRecord, error) {
	ctx = withForce(withFileID(ctx, fileID), force)

	file, err := e.files.GetFile(ctx, fileID)
	if err != nil {
		return schema.AnalysisRecord{}, fmt.Errorf("get file %s: %w", fileID, err)
	}

	if file.Status == schema.StatusAnalyzed && !isForced(ctx) {
		latest, err := e.analyses.LatestForFile(ctx, fileID)
		if err == nil {
			return latest, nil
		}
		if !errors.Is(err, contract.ErrNotFound) {
			return schema.AnalysisRecord{}, &contract.PersistenceError{Op: "latest analysis", Err: err}
		}
		e.log.WithField("file_id", fileID).Warn("Analyzed file has no record, re-analyzing")
	}

	if err := Transition(file.Status, schema.StatusProcessing); err != nil {
		return schema.AnalysisRecord{}, err
	}
	if err := e.files.UpdateStatus(ctx, fileID, file.Status, schema.StatusProcessing, "", e.now()); err != nil {
		if errors.Is(err, contract.ErrInvalidTransition) {
			return schema.AnalysisRecord{}, err
		}
		return schema.AnalysisRecord{}, &contract.PersistenceError{Op: "start processing", Err: err}
	}

	return e.process(ctx, file)
}

// process runs a file that is already PROCESSING to ANALYZED or FAILED.
func (e *Engine) process(ctx context.Context, file schema.SourceFile) (schema.AnalysisRecord, error) {
	log := e.log.WithField("file_id", file.ID)

	data, err := e.blobs.Get(ctx, file.ContentPath)
	if err != nil {
		return schema.AnalysisRecord{}, e.fail(ctx, file.ID, &contract.InputError{Op: "read content", Err: err})
	}

	record, err := e.orchestrator.Analyze(ctx, data, file.Filename, file.Technology)
	if err != nil {
		return schema.AnalysisRecord{}, e.fail(ctx, file.ID, err)
	}
	record.FileID = file.ID
	record.Details["fingerprint_algo"] = string(e.fpAlgo)

	text, _ := DecodeContent(data)
	suggestions := GenerateSuggestions(text, record.Metrics, record.Technology)

	id, err := e.analyses.SaveAnalysis(ctx, record, suggestions)
	if err != nil {
		log.WithFields(logrus.Fields{
			"complexity":  record.Metrics.CyclomaticComplexity,
			"risk_score":  record.RiskScore,
			"suggestions": len(suggestions),
		}).WithError(err).Error("Analysis computed but not saved")
		return record, e.fail(ctx, file.ID, &contract.PersistenceError{Op: "save analysis", Err: err})
	}
	record.ID = id

	if err := e.files.UpdateStatus(ctx, file.ID, schema.StatusProcessing, schema.StatusAnalyzed, "", e.now()); err != nil {
		return record, e.fail(ctx, file.ID, &contract.PersistenceError{Op: "finish processing", Err: err})
	}

	log.WithFields(logrus.Fields{
		"analysis_id": id,
		"provenance":  record.Provenance,
		"level":       record.ComplexityLevel,
	}).Info("Analysis complete")
	return record, nil
}

// fail moves a PROCESSING file to FAILED and returns cause. Only fatal errors
// reach here; the message is stored for the file's status.
func (e *Engine) fail(ctx context.Context, fileID string, cause error) error {
	log := e.log.WithField("file_id", fileID)
	if !contract.IsFatal(cause) {
		log.WithError(cause).Warn("Non-fatal error reached failure path")
	}
	if err := e.files.UpdateStatus(ctx, fileID, schema.StatusProcessing, schema.StatusFailed, cause.Error(), e.now()); err != nil {
		log.WithError(err).Error("Could not record failure")
	}
	log.WithError(cause).Error("Analysis failed")
	return cause
}

// AnalyzeAsync queues an analysis on the worker pool and returns immediately.
func (e *Engine) AnalyzeAsync(ctx context.Context, fileID string, force bool) error {
	if e.pool == nil {
		return errors.New("worker pool not started")
	}
	file, err := e.files.GetFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("get file %s: %w", fileID, err)
	}
	if file.Status == schema.StatusProcessing {
		return Transition(file.Status, schema.StatusProcessing)
	}
	return e.pool.Submit(fileID, force)
}

func (e *Engine) runJob(ctx context.Context, fileID string, force bool) {
	if _, err := e.Analyze(ctx, fileID, force); err != nil {
		log := e.log.WithField("file_id", fileID).WithError(err)
		if errors.Is(err, contract.ErrInvalidTransition) {
			log.Debug("File already being analyzed")
			return
		}
		log.Warn("Background analysis did not complete")
	}
}

// Await returns the analysis of a freshly ingested file. An UPLOADED file is
// analyzed on the caller's goroutine; a file already PROCESSING on the pool is
// polled until it settles. A FAILED file returns its recorded error.
func (e *Engine) Await(ctx context.Context, fileID string) (schema.AnalysisRecord, error) {
	ticker := time.NewTicker(awaitInterval)
	defer ticker.Stop()
	for {
		file, err := e.files.GetFile(ctx, fileID)
		if err != nil {
			return schema.AnalysisRecord{}, fmt.Errorf("get file %s: %w", fileID, err)
		}
		switch file.Status {
		case schema.StatusAnalyzed:
			return e.Analyze(ctx, fileID, false)
		case schema.StatusFailed:
			return schema.AnalysisRecord{}, fmt.Errorf("analysis of %s failed: %s", fileID, file.ErrorMessage)
		case schema.StatusUploaded:
			record, err := e.Analyze(ctx, fileID, false)
			if !errors.Is(err, contract.ErrInvalidTransition) {
				return record, err
			}
			// Lost the start to a pool worker.
		}
		select {
		case <-ctx.Done():
			return schema.AnalysisRecord{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (e *Engine) onJobPanic(ctx context.Context, fileID string, recovered any) {
	cause := &contract.PersistenceError{Op: "analyze", Err: fmt.Errorf("panic: %v", recovered)}
	_ = e.fail(ctx, fileID, cause)
}

// GetStatus returns the current state of a file without side effects.
func (e *Engine) GetStatus(ctx context.Context, fileID string) (schema.ProcessingState, error) {
	file, err := e.files.GetFile(ctx, fileID)
	if err != nil {
		return schema.ProcessingState{}, fmt.Errorf("get file %s: %w", fileID, err)
	}
	state := schema.ProcessingState{
		FileID:       file.ID,
		Filename:     file.Filename,
		Status:       file.Status,
		ErrorMessage: file.ErrorMessage,
		UpdatedAt:    file.UpdatedAt,
		FailedAt:     file.FailedAt,
	}
	latest, err := e.analyses.LatestForFile(ctx, fileID)
	switch {
	case err == nil:
		state.LatestAnalysisID = latest.ID
	case !errors.Is(err, contract.ErrNotFound):
		return schema.ProcessingState{}, &contract.PersistenceError{Op: "latest analysis", Err: err}
	}
	return state, nil
}

// GetSuggestions returns the suggestions of an analysis, most severe first.
func (e *Engine) GetSuggestions(ctx context.Context, analysisID int64) ([]schema.Suggestion, error) {
	if _, err := e.analyses.GetAnalysis(ctx, analysisID); err != nil {
		return nil, fmt.Errorf("get analysis %d: %w", analysisID, err)
	}
	return e.analyses.GetSuggestions(ctx, analysisID)
}

// GetAnalysis returns one analysis record.
func (e *Engine) GetAnalysis(ctx context.Context, analysisID int64) (schema.AnalysisRecord, error) {
	return e.analyses.GetAnalysis(ctx, analysisID)
}

// ListFiles returns files matching the filter, newest first.
func (e *Engine) ListFiles(ctx context.Context, filter schema.FileListFilter) ([]schema.SourceFile, error) {
	return e.files.ListFiles(ctx, filter)
}

// History returns every analysis of a file, newest first.
func (e *Engine) History(ctx context.Context, fileID string) ([]schema.AnalysisRecord, error) {
	if _, err := e.files.GetFile(ctx, fileID); err != nil {
		return nil, fmt.Errorf("get file %s: %w", fileID, err)
	}
	records, err := e.analyses.ListForFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].ID > records[j].ID })
	return records, nil
}

// TopRisks returns the latest analysis of each file ranked by risk score,
// highest first. A limit <= 0 keeps all.
func (e *Engine) TopRisks(ctx context.Context, limit int) ([]schema.AnalysisRecord, error) {
	all, err := e.analyses.AllAnalyses(ctx)
	if err != nil {
		return nil, &contract.PersistenceError{Op: "list analyses", Err: err}
	}
	latest := make(map[string]schema.AnalysisRecord, len(all))
	for _, r := range all {
		if cur, ok := latest[r.FileID]; !ok || r.ID > cur.ID {
			latest[r.FileID] = r
		}
	}
	records := make([]schema.AnalysisRecord, 0, len(latest))
	for _, r := range latest {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID > records[j].ID })
	return algo.RankAnalyses(records, limit), nil
}

// Pending returns the number of queued background analyses.
func (e *Engine) Pending() int {
	if e.pool == nil {
		return 0
	}
	return e.pool.Pending()
}

// RecoverStale moves files stuck in PROCESSING for longer than olderThan to
// FAILED so they can be re-submitted. It returns how many were reset.
func (e *Engine) RecoverStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := e.files.ListStale(ctx, schema.StatusProcessing, e.now().Add(-olderThan))
	if err != nil {
		return 0, &contract.PersistenceError{Op: "list stale", Err: err}
	}
	reset := 0
	for _, file := range stale {
		err := e.files.UpdateStatus(ctx, file.ID, schema.StatusProcessing, schema.StatusFailed, interruptedMessage, e.now())
		if err != nil {
			e.log.WithField("file_id", file.ID).WithError(err).Warn("Could not reset stale file")
			continue
		}
		reset++
	}
	if reset > 0 {
		e.log.WithField("count", reset).Info("Reset stale files")
	}
	return reset, nil
}

// ResumePending queues every UPLOADED file on the worker pool. It stops at
// the first full-queue error and returns how many were queued.
func (e *Engine) ResumePending(ctx context.Context) (int, error) {
	if e.pool == nil {
		return 0, errors.New("worker pool not started")
	}
	pending, err := e.files.ListFiles(ctx, schema.FileListFilter{Status: schema.StatusUploaded})
	if err != nil {
		return 0, &contract.PersistenceError{Op: "list pending", Err: err}
	}
	for i, file := range pending {
		if err := e.pool.Submit(file.ID, false); err != nil {
			return i, err
		}
	}
	return len(pending), nil
}
