package app

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/raysh454/vexora/internal/analyzer"
	"github.com/raysh454/vexora/internal/history"
	"github.com/raysh454/vexora/internal/model"
	"github.com/raysh454/vexora/internal/testutil"

	_ "modernc.org/sqlite"
)

// newTestOrchestrator creates an Orchestrator over a dummy analyzer and an
// in-memory history store.
func newTestOrchestrator(t *testing.T, a *testutil.DummyAnalyzer) (*Orchestrator, *history.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	logger := &testutil.DummyLogger{}
	hs, err := history.New(db, history.DriverSQLite, 0, logger)
	if err != nil {
		t.Fatalf("new history: %v", err)
	}
	t.Cleanup(func() { hs.Close() })

	cfg := DefaultConfig().Batch
	cfg.Concurrency = 2
	cfg.MaxItems = 5

	orch := NewOrchestrator(cfg, a, hs, nil, logger)
	t.Cleanup(orch.Close)
	return orch, hs
}

func drain(job *Job) []JobEvent {
	var evs []JobEvent
	for ev := range job.Events {
		evs = append(evs, ev)
	}
	return evs
}

// ─── Job management ────────────────────────────────────────────────────

func TestGetJob_UnknownJob(t *testing.T) {
	t.Parallel()
	o, _ := newTestOrchestrator(t, &testutil.DummyAnalyzer{})

	if _, err := o.GetJob("nonexistent"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
	if err := o.CancelJob("nonexistent"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestListJobs_EmptyInitially(t *testing.T) {
	t.Parallel()
	o, _ := newTestOrchestrator(t, &testutil.DummyAnalyzer{})

	if jobs := o.ListJobs(); len(jobs) != 0 {
		t.Errorf("expected 0 jobs, got %d", len(jobs))
	}
}

// ─── Validation ────────────────────────────────────────────────────────

func TestStartBatchJob_RejectsBadBatches(t *testing.T) {
	t.Parallel()
	o, _ := newTestOrchestrator(t, &testutil.DummyAnalyzer{})
	ctx := context.Background()

	cases := []struct {
		name  string
		items []BatchItem
		want  error
	}{
		{"empty", nil, ErrEmptyBatch},
		{"too many", make([]BatchItem, 6), ErrBatchTooLarge},
		{"image", []BatchItem{{Kind: model.KindImage, Input: "a.png"}}, ErrUnsupportedKind},
		{"blank url", []BatchItem{{Kind: model.KindURL, Input: "  "}}, analyzer.ErrEmptyInput},
		{"short text", []BatchItem{{Kind: model.KindText, Input: "hi"}}, analyzer.ErrTextTooShort},
	}
	for _, tc := range cases {
		if _, err := o.StartBatchJob(ctx, tc.items, false); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if jobs := o.ListJobs(); len(jobs) != 0 {
		t.Errorf("rejected batches must not create jobs, got %d", len(jobs))
	}
}

// ─── Batch job lifecycle ───────────────────────────────────────────────

func TestStartBatchJob_RunsToDone(t *testing.T) {
	t.Parallel()
	a := &testutil.DummyAnalyzer{}
	o, hs := newTestOrchestrator(t, a)

	items := []BatchItem{
		{Kind: model.KindURL, Input: "https://example.org"},
		{Kind: model.KindURL, Input: "http://scam.example.xyz"},
		{Kind: model.KindText, Input: "You won the lottery, claim now"},
		{Kind: model.KindText, Input: "<p>See you at <b>dinner</b> tonight</p>", Format: "html"},
	}
	job, err := o.StartBatchJob(context.Background(), items, true)
	if err != nil {
		t.Fatalf("StartBatchJob: %v", err)
	}
	if job.ID == "" || job.Type != "batch" || job.Total != 4 {
		t.Fatalf("unexpected job: %+v", job)
	}

	evs := drain(job)
	last := evs[len(evs)-1]
	if last.Type != JobEventResult || last.Status != JobDone {
		t.Errorf("expected final result event, got %+v", last)
	}
	progress := 0
	for _, ev := range evs {
		if ev.Type == JobEventProgress {
			progress++
			if ev.Item == nil || ev.Total != 4 {
				t.Errorf("bad progress event: %+v", ev)
			}
		}
	}
	if progress != 4 {
		t.Errorf("expected 4 progress events, got %d", progress)
	}

	final, err := o.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if final.Status != JobDone || final.Processed != 4 || len(final.Results) != 4 {
		t.Fatalf("unexpected final job: %+v", final)
	}
	if final.Results[1].Result.Status != model.StatusDanger || final.Results[2].Result.Status != model.StatusDanger {
		t.Errorf("results out of order: %+v", final.Results)
	}
	if final.Results[0].HistoryID == "" {
		t.Error("expected saved history id")
	}
	if final.EndedAt.IsZero() {
		t.Error("expected end time")
	}

	saved, err := hs.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 4 {
		t.Errorf("expected 4 history items, got %d", len(saved))
	}
	if a.CallCount() != 4 {
		t.Errorf("expected 4 analyses, got %d", a.CallCount())
	}
}

func TestStartBatchJob_NoSave(t *testing.T) {
	t.Parallel()
	o, hs := newTestOrchestrator(t, &testutil.DummyAnalyzer{})

	job, err := o.StartBatchJob(context.Background(), []BatchItem{{Kind: model.KindURL, Input: "example.org"}}, false)
	if err != nil {
		t.Fatal(err)
	}
	drain(job)

	saved, _ := hs.List(context.Background(), 0)
	if len(saved) != 0 {
		t.Errorf("expected nothing saved, got %d", len(saved))
	}
}

func TestStartBatchJob_CancelJobTransitionsToCanceled(t *testing.T) {
	t.Parallel()
	gate := make(chan struct{})
	o, _ := newTestOrchestrator(t, &testutil.DummyAnalyzer{Gate: gate})

	items := []BatchItem{
		{Kind: model.KindURL, Input: "a.example"},
		{Kind: model.KindURL, Input: "b.example"},
		{Kind: model.KindURL, Input: "c.example"},
	}
	job, err := o.StartBatchJob(context.Background(), items, false)
	if err != nil {
		t.Fatalf("StartBatchJob: %v", err)
	}
	if err := o.CancelJob(job.ID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}
	drain(job)

	final, _ := o.GetJob(job.ID)
	if final.Status != JobCanceled {
		t.Errorf("expected canceled, got %q", final.Status)
	}
	if final.Error == "" {
		t.Error("expected cancellation reason")
	}
}

func TestStartBatchJob_CanceledItemsCarryNoVerdict(t *testing.T) {
	t.Parallel()
	gate := make(chan struct{})
	a := &testutil.DummyAnalyzer{Gate: gate}
	o, hs := newTestOrchestrator(t, a)

	items := []BatchItem{
		{Kind: model.KindURL, Input: "a.example"},
		{Kind: model.KindURL, Input: "b.example"},
		{Kind: model.KindURL, Input: "c.example"},
	}
	job, err := o.StartBatchJob(context.Background(), items, true)
	if err != nil {
		t.Fatalf("StartBatchJob: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for a.CallCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("items never started")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := o.CancelJob(job.ID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}
	drain(job)

	final, _ := o.GetJob(job.ID)
	inFlight := 0
	for i, r := range final.Results {
		if r.Result != nil {
			t.Errorf("item %d: canceled item reported verdict %+v", i, r.Result)
		}
		if r.Error != "" {
			inFlight++
		}
	}
	if inFlight != 2 {
		t.Errorf("expected 2 items with a cancellation error, got %d", inFlight)
	}
	saved, _ := hs.List(context.Background(), 0)
	if len(saved) != 0 {
		t.Errorf("canceled items must not be saved, got %d", len(saved))
	}
}

func TestStartBatchJob_AppearsInListJobs(t *testing.T) {
	t.Parallel()
	gate := make(chan struct{})
	o, _ := newTestOrchestrator(t, &testutil.DummyAnalyzer{Gate: gate})

	job, err := o.StartBatchJob(context.Background(), []BatchItem{{Kind: model.KindURL, Input: "example.org"}}, false)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, j := range o.ListJobs() {
		if j.ID == job.ID {
			found = true
		}
	}
	if !found {
		t.Error("started job not found in ListJobs")
	}
	close(gate)
	drain(job)
}

func TestStartBatchJob_RejectsWhenClosed(t *testing.T) {
	t.Parallel()
	o, _ := newTestOrchestrator(t, &testutil.DummyAnalyzer{})
	o.Close()

	_, err := o.StartBatchJob(context.Background(), []BatchItem{{Kind: model.KindURL, Input: "example.org"}}, false)
	if !errors.Is(err, ErrOrchestratorClosed) {
		t.Fatalf("expected ErrOrchestratorClosed, got %v", err)
	}
}

// ─── Close ─────────────────────────────────────────────────────────────

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()
	o, _ := newTestOrchestrator(t, &testutil.DummyAnalyzer{})
	o.Close()
	o.Close()
}

func TestClose_CancelsRunningJobs(t *testing.T) {
	t.Parallel()
	gate := make(chan struct{})
	o, _ := newTestOrchestrator(t, &testutil.DummyAnalyzer{Gate: gate})

	job, err := o.StartBatchJob(context.Background(), []BatchItem{{Kind: model.KindURL, Input: "example.org"}}, false)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		o.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return while a job was blocked")
	}
	drain(job)

	final, _ := o.GetJob(job.ID)
	if final.Status != JobCanceled {
		t.Errorf("expected canceled, got %q", final.Status)
	}
}

// ─── Progress callback ─────────────────────────────────────────────────

func TestProgressCallback_EmitsProgressEvents(t *testing.T) {
	t.Parallel()
	o, _ := newTestOrchestrator(t, &testutil.DummyAnalyzer{})

	job := o.newJob("batch", 10)
	cb := o.progressCallback(job)
	cb(ItemResult{Index: 3, Kind: model.KindURL, Input: "x"})

	select {
	case ev := <-job.Events:
		if ev.Type != JobEventProgress {
			t.Errorf("expected progress event, got %q", ev.Type)
		}
		if ev.Processed != 1 || ev.Total != 10 || ev.Item.Index != 3 {
			t.Errorf("expected 1/10 for item 3, got %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timed out waiting for progress event")
	}
}

func TestPrune_DropsExpiredJobs(t *testing.T) {
	t.Parallel()
	o, _ := newTestOrchestrator(t, &testutil.DummyAnalyzer{})
	o.retention = time.Minute

	old := o.newJob("batch", 1)
	old.Status = JobDone
	old.EndedAt = time.Now().Add(-time.Hour)
	running := o.newJob("batch", 1)
	running.Status = JobRunning

	o.jobsMu.Lock()
	o.jobs[old.ID] = old
	o.jobs[running.ID] = running
	o.jobsMu.Unlock()

	jobs := o.ListJobs()
	if len(jobs) != 1 || jobs[0].ID != running.ID {
		t.Errorf("expected only the running job, got %d jobs", len(jobs))
	}
}
