package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/vexora/internal/analyzer"
	"github.com/raysh454/vexora/internal/interfaces"
	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/metrics"
	"github.com/raysh454/vexora/internal/model"
)

var (
	ErrJobNotFound        = errors.New("job not found")
	ErrOrchestratorClosed = errors.New("orchestrator is closed")
	ErrEmptyBatch         = errors.New("batch has no items")
	ErrBatchTooLarge      = errors.New("batch has too many items")
	ErrUnsupportedKind    = errors.New("batch items must be url or text")
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Processed int         `json:"processed,omitempty"`
	Total     int         `json:"total,omitempty"`
	Item      *ItemResult `json:"item,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

func (s JobStatus) finished() bool {
	return s == JobDone || s == JobFailed || s == JobCanceled
}

// BatchItem is one input of a batch job.
type BatchItem struct {
	Kind   model.Kind `json:"type" example:"url"`
	Input  string     `json:"input" example:"https://example.org"`
	Format string     `json:"format,omitempty" example:"plain"` // text only: plain | html
}

// ItemResult is the outcome of one batch item.
type ItemResult struct {
	Index     int                   `json:"index"`
	Kind      model.Kind            `json:"type"`
	Input     string                `json:"input"`
	Result    *model.AnalysisResult `json:"result,omitempty"`
	HistoryID string                `json:"history_id,omitempty"`
	Error     string                `json:"error,omitempty"`
}

type Job struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	Status    JobStatus    `json:"status"`
	Error     string       `json:"error,omitempty"`
	Total     int          `json:"total"`
	Processed int          `json:"processed"`
	StartedAt time.Time    `json:"started_at"`
	EndedAt   time.Time    `json:"ended_at,omitzero"`
	Results   []ItemResult `json:"results,omitempty"`

	Events chan JobEvent `json:"-"`
}

// snapshot copies the job so it can be encoded without holding the lock.
func (j *Job) snapshot() *Job {
	cp := *j
	cp.Results = make([]ItemResult, 0, j.Processed)
	for _, r := range j.Results {
		if r.Result != nil || r.Error != "" {
			cp.Results = append(cp.Results, r)
		}
	}
	return &cp
}

// Orchestrator runs batch analysis jobs in the background and tracks them
// until they age out.
type Orchestrator struct {
	analyzer    interfaces.Analyzer
	history     interfaces.HistoryStore
	metrics     *metrics.Metrics
	logger      logging.Logger
	concurrency int
	maxItems    int
	retention   time.Duration

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
	closed     bool
	wg         sync.WaitGroup
}

// NewOrchestrator ties the analyzer and history store to the batch settings.
// history may be nil, in which case results are never saved.
func NewOrchestrator(cfg BatchConfig, a interfaces.Analyzer, h interfaces.HistoryStore, m *metrics.Metrics, logger logging.Logger) *Orchestrator {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Orchestrator{
		analyzer:    a,
		history:     h,
		metrics:     m,
		logger:      logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
		concurrency: cfg.Concurrency,
		maxItems:    cfg.MaxItems,
		retention:   cfg.JobRetention,
		jobs:        make(map[string]*Job),
		jobCancels:  make(map[string]context.CancelFunc),
	}
}

func (o *Orchestrator) newJob(kind string, total int) *Job {
	// room for every progress event plus pending, running and the result
	buf := total + 3
	if buf < 16 {
		buf = 16
	}
	return &Job{
		ID:        uuid.New().String(),
		Type:      kind,
		Status:    JobPending,
		Total:     total,
		StartedAt: time.Now().UTC(),
		Results:   make([]ItemResult, total),
		Events:    make(chan JobEvent, buf),
	}
}

func (o *Orchestrator) emitJobEvent(job *Job, ev JobEvent) {
	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) setStatus(job *Job, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	job.Status = status
	job.Error = errMsg
	if status.finished() {
		job.EndedAt = time.Now().UTC()
	}
	o.jobsMu.Unlock()

	typ := JobEventStatus
	if status == JobDone {
		typ = JobEventResult
	}
	o.emitJobEvent(job, JobEvent{JobID: job.ID, Type: typ, Status: status, Error: errMsg})
}

// progressCallback returns the function batch workers report completed items to.
func (o *Orchestrator) progressCallback(job *Job) func(ItemResult) {
	return func(r ItemResult) {
		o.jobsMu.Lock()
		job.Results[r.Index] = r
		job.Processed++
		processed := job.Processed
		o.jobsMu.Unlock()

		o.emitJobEvent(job, JobEvent{
			JobID:     job.ID,
			Type:      JobEventProgress,
			Processed: processed,
			Total:     job.Total,
			Item:      &r,
		})
	}
}

// validateBatch checks every item up front so a job never starts with input
// the analyzers would only report as malformed.
func (o *Orchestrator) validateBatch(items []BatchItem) error {
	if len(items) == 0 {
		return ErrEmptyBatch
	}
	if o.maxItems > 0 && len(items) > o.maxItems {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(items), o.maxItems)
	}
	for i, it := range items {
		var err error
		switch it.Kind {
		case model.KindURL:
			err = analyzer.ValidateURL(it.Input)
		case model.KindText:
			err = analyzer.ValidateText(it.Input)
		default:
			err = ErrUnsupportedKind
		}
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// StartBatchJob validates items and analyses them concurrently in the
// background. The returned job's Events channel is closed when it ends.
func (o *Orchestrator) StartBatchJob(ctx context.Context, items []BatchItem, save bool) (*Job, error) {
	if err := o.validateBatch(items); err != nil {
		return nil, err
	}

	job := o.newJob("batch", len(items))
	jobCtx, cancel := context.WithCancel(ctx)

	o.jobsMu.Lock()
	if o.closed {
		o.jobsMu.Unlock()
		cancel()
		return nil, ErrOrchestratorClosed
	}
	o.pruneLocked()
	o.jobs[job.ID] = job
	o.jobCancels[job.ID] = cancel
	o.wg.Add(1)
	snap := job.snapshot()
	o.jobsMu.Unlock()

	o.emitJobEvent(job, JobEvent{JobID: job.ID, Type: JobEventStatus, Status: JobPending})
	o.logger.Info("batch job started", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "items", Value: len(items)})
	o.metrics.JobStarted()

	go o.run(jobCtx, job, items, save)
	return snap, nil
}

func (o *Orchestrator) run(ctx context.Context, job *Job, items []BatchItem, save bool) {
	defer func() {
		o.jobsMu.Lock()
		if cancel := o.jobCancels[job.ID]; cancel != nil {
			cancel()
		}
		delete(o.jobCancels, job.ID)
		o.jobsMu.Unlock()

		// Close events channel so websocket loop can terminate cleanly
		close(job.Events)
		o.metrics.JobFinished()
		o.wg.Done()
	}()

	o.setStatus(job, JobRunning, "")
	report := o.progressCallback(job)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, it := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report(o.analyzeItem(gctx, i, it, save))
			return nil
		})
	}
	err := g.Wait()

	switch {
	case ctx.Err() != nil:
		o.setStatus(job, JobCanceled, ctx.Err().Error())
		o.logger.Info("batch job canceled", logging.Field{Key: "job_id", Value: job.ID})
	case err != nil:
		o.setStatus(job, JobFailed, err.Error())
		o.logger.Warn("batch job failed", logging.Field{Key: "job_id", Value: job.ID}, logging.Err(err))
	default:
		o.setStatus(job, JobDone, "")
		o.logger.Info("batch job finished", logging.Field{Key: "job_id", Value: job.ID})
	}
}

func (o *Orchestrator) analyzeItem(ctx context.Context, index int, it BatchItem, save bool) ItemResult {
	out := ItemResult{Index: index, Kind: it.Kind, Input: it.Input}

	var res *model.AnalysisResult
	switch it.Kind {
	case model.KindURL:
		res = o.analyzer.AnalyzeURL(ctx, it.Input)
	case model.KindText:
		text := it.Input
		if it.Format == "html" {
			plain, err := analyzer.TextFromHTML(text)
			if err != nil {
				out.Error = err.Error()
				return out
			}
			text = plain
		}
		res = o.analyzer.AnalyzeText(ctx, text)
	}
	// A canceled probe reads as an unreachable site; that verdict is not real.
	if err := ctx.Err(); err != nil {
		out.Error = err.Error()
		return out
	}
	out.Result = res

	if save && o.history != nil && res != nil {
		item, err := o.history.Save(ctx, it.Kind, it.Input, res)
		if err != nil {
			o.logger.Warn("saving batch result", logging.Field{Key: "index", Value: index}, logging.Err(err))
		} else {
			out.HistoryID = item.ID
		}
	}
	return out
}

// pruneLocked drops finished jobs older than the retention window.
func (o *Orchestrator) pruneLocked() {
	if o.retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-o.retention)
	for id, j := range o.jobs {
		if j.Status.finished() && j.EndedAt.Before(cutoff) {
			delete(o.jobs, id)
		}
	}
}

// CancelJob stops a running job. Cancelling a finished job is a no-op.
func (o *Orchestrator) CancelJob(jobID string) error {
	o.jobsMu.Lock()
	_, known := o.jobs[jobID]
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if !known {
		return ErrJobNotFound
	}
	if cancel != nil {
		cancel()
	}
	return nil
}

// GetJob returns a snapshot of a job.
func (o *Orchestrator) GetJob(jobID string) (*Job, error) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return j.snapshot(), nil
}

// ListJobs returns snapshots of all retained jobs, oldest first.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	o.pruneLocked()
	out := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		out = append(out, j.snapshot())
	}
	o.jobsMu.Unlock()

	sort.Slice(out, func(i, k int) bool { return out[i].StartedAt.Before(out[k].StartedAt) })
	return out
}

// Close cancels running jobs, waits for them to wind down and rejects new
// ones. It is safe to call more than once.
func (o *Orchestrator) Close() {
	_ = o.Shutdown(context.Background())
}

// Shutdown is Close bounded by ctx.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.jobsMu.Lock()
	o.closed = true
	for _, cancel := range o.jobCancels {
		cancel()
	}
	o.jobsMu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
