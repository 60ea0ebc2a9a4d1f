// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/media"
	"github.com/raysh454/vexora/internal/model"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── Prober ────────────────────────────────────────────────────────────

// DummyProber implements interfaces.Prober. URLs listed in Fail are
// unreachable; with FailAll every probe fails.
type DummyProber struct {
	Fail    map[string]bool
	FailAll bool
	Delay   time.Duration

	mu    sync.Mutex
	Calls []string
}

// ErrUnreachable is returned by DummyProber for failing URLs.
var ErrUnreachable = errors.New("dummy: host unreachable")

func (d *DummyProber) Probe(ctx context.Context, url string) error {
	d.mu.Lock()
	d.Calls = append(d.Calls, url)
	d.mu.Unlock()
	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if d.FailAll || d.Fail[url] {
		return ErrUnreachable
	}
	return nil
}

// CallCount returns how many probes were made.
func (d *DummyProber) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Calls)
}

// ─── MediaProber ───────────────────────────────────────────────────────

// DummyMediaProber implements interfaces.MediaProber with fixed answers.
// Zero values mean "absent".
type DummyMediaProber struct {
	Width, Height int
	Duration      time.Duration
}

func (d *DummyMediaProber) ImageDimensions(context.Context, media.File) (int, int, bool) {
	if d.Width == 0 && d.Height == 0 {
		return 0, 0, false
	}
	return d.Width, d.Height, true
}

func (d *DummyMediaProber) VideoDuration(context.Context, media.File) (time.Duration, bool) {
	if d.Duration == 0 {
		return 0, false
	}
	return d.Duration, true
}

// ─── Media files ───────────────────────────────────────────────────────

// FakeFile returns an in-memory media file of the given declared size. Only
// the declared attributes matter to the simulator, so the content is zeros.
func FakeFile(name string, size int, mime string) *media.Memory {
	return &media.Memory{
		FileName: name,
		MIME:     mime,
		Data:     make([]byte, size),
		Modified: time.Date(2024, time.March, 9, 12, 0, 0, 0, time.UTC),
	}
}

// ─── Analyzer ──────────────────────────────────────────────────────────

// DummyAnalyzer implements interfaces.Analyzer. URLs containing "scam" are
// danger, everything else is safe. When Gate is set, URL analyses wait until
// it is closed or the context ends.
type DummyAnalyzer struct {
	Gate chan struct{}

	mu    sync.Mutex
	Calls int
}

func (d *DummyAnalyzer) record() {
	d.mu.Lock()
	d.Calls++
	d.mu.Unlock()
}

// CallCount returns how many analyses ran.
func (d *DummyAnalyzer) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Calls
}

func (d *DummyAnalyzer) AnalyzeURL(ctx context.Context, raw string) *model.AnalysisResult {
	d.record()
	if d.Gate != nil {
		select {
		case <-d.Gate:
		case <-ctx.Done():
		}
	}
	if strings.Contains(raw, "scam") {
		return SampleResult(model.StatusDanger, 90)
	}
	return SampleResult(model.StatusSafe, 100)
}

func (d *DummyAnalyzer) AnalyzeText(_ context.Context, text string) *model.AnalysisResult {
	d.record()
	if strings.Contains(strings.ToLower(text), "lottery") {
		return SampleResult(model.StatusDanger, 95)
	}
	return SampleResult(model.StatusSafe, 95)
}

func (d *DummyAnalyzer) AnalyzeImage(context.Context, media.File) *model.AnalysisResult {
	d.record()
	return SampleResult(model.StatusSafe, 88)
}

func (d *DummyAnalyzer) AnalyzeVideo(context.Context, media.File) *model.AnalysisResult {
	d.record()
	return SampleResult(model.StatusWarning, 61)
}

// ─── Analysis results ──────────────────────────────────────────────────

// SampleResult builds a small result for history and server tests.
func SampleResult(status model.Status, confidence float64) *model.AnalysisResult {
	return &model.AnalysisResult{
		Status:      status,
		Confidence:  confidence,
		Title:       "Sample " + string(status),
		Description: "sample result",
		Metadata:    []model.MetadataItem{{Label: "domain", Value: "example.org"}},
		RiskFactors: []model.RiskFactor{{Severity: model.SeverityLow, Description: "No suspicious patterns detected"}},
	}
}
