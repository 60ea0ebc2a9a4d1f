// Package analyzer runs the four risk pipelines (URL, text, image, video)
// against the active detection policy and turns the fired rules into an
// AnalysisResult.
package analyzer

import (
	"context"
	"errors"
	"time"

	"github.com/raysh454/vexora/internal/assessor"
	"github.com/raysh454/vexora/internal/detector"
	"github.com/raysh454/vexora/internal/interfaces"
	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/media"
	"github.com/raysh454/vexora/internal/metrics"
	"github.com/raysh454/vexora/internal/model"
	"github.com/raysh454/vexora/internal/policy"
)

var ErrNoProber = errors.New("analyzer: a URL prober is required")

// Options wires the collaborators of a DefaultAnalyzer. Only Prober is
// required; every other field has a default.
type Options struct {
	// Policy holds the active detection policy. Defaults to the built-in policy.
	Policy *policy.Store

	// Scorer supplies rule weights. Defaults to assessor.DefaultConfig.
	Scorer *assessor.Scorer

	// Prober answers the URL reachability check.
	Prober interfaces.Prober

	// Media extracts dimensions and durations. Nil reports every file as
	// having no readable metadata.
	Media interfaces.MediaProber

	// Images and Videos produce perceptual signals. Both default to the
	// deterministic simulator, which also backs them up on error.
	Images detector.ImageDetector
	Videos detector.VideoDetector

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// DefaultAnalyzer implements interfaces.Analyzer. It holds no per-call state
// and is safe for concurrent use.
type DefaultAnalyzer struct {
	policy  *policy.Store
	scorer  *assessor.Scorer
	prober  interfaces.Prober
	media   interfaces.MediaProber
	images  detector.ImageDetector
	videos  detector.VideoDetector
	sim     *detector.Simulator
	metrics *metrics.Metrics
	logger  logging.Logger
}

var _ interfaces.Analyzer = (*DefaultAnalyzer)(nil)

// NewDefaultAnalyzer builds an analyzer from opts.
func NewDefaultAnalyzer(opts Options, logger logging.Logger) (*DefaultAnalyzer, error) {
	if opts.Prober == nil {
		return nil, ErrNoProber
	}
	if opts.Policy == nil {
		opts.Policy = policy.NewStore(policy.Default())
	}
	if opts.Scorer == nil {
		s, err := assessor.NewScorer(nil)
		if err != nil {
			return nil, err
		}
		opts.Scorer = s
	}
	sim := detector.NewSimulator()
	if opts.Images == nil {
		opts.Images = sim
	}
	if opts.Videos == nil {
		opts.Videos = sim
	}

	componentLogger := logger.With(logging.Field{Key: "component", Value: "analyzer"})
	componentLogger.Debug("created analyzer",
		logging.Field{Key: "scoring_version", Value: opts.Scorer.Version()},
		logging.Field{Key: "policy_version", Value: opts.Policy.Current().Version})

	return &DefaultAnalyzer{
		policy:  opts.Policy,
		scorer:  opts.Scorer,
		prober:  opts.Prober,
		media:   opts.Media,
		images:  opts.Images,
		videos:  opts.Videos,
		sim:     sim,
		metrics: opts.Metrics,
		logger:  componentLogger,
	}, nil
}

// AnalyzeURL scores a URL. Unparseable input yields a warning result.
func (a *DefaultAnalyzer) AnalyzeURL(ctx context.Context, raw string) *model.AnalysisResult {
	start := time.Now()
	res := a.analyzeURL(ctx, a.policy.Current(), raw)
	a.observe(model.KindURL, res, start)
	return res
}

// AnalyzeText classifies a message as SCAM or REAL.
func (a *DefaultAnalyzer) AnalyzeText(ctx context.Context, text string) *model.AnalysisResult {
	start := time.Now()
	res := a.analyzeText(a.policy.Current(), text)
	a.observe(model.KindText, res, start)
	return res
}

// AnalyzeImage scores an image file from its declared attributes and
// simulated perceptual signals.
func (a *DefaultAnalyzer) AnalyzeImage(ctx context.Context, f media.File) *model.AnalysisResult {
	start := time.Now()
	res := a.analyzeImage(ctx, a.policy.Current(), f)
	a.observe(model.KindImage, res, start)
	return res
}

// AnalyzeVideo scores a video file.
func (a *DefaultAnalyzer) AnalyzeVideo(ctx context.Context, f media.File) *model.AnalysisResult {
	start := time.Now()
	res := a.analyzeVideo(ctx, f)
	a.observe(model.KindVideo, res, start)
	return res
}

// Policy returns the policy snapshot new analyses will use.
func (a *DefaultAnalyzer) Policy() *policy.Policy {
	return a.policy.Current()
}

func (a *DefaultAnalyzer) observe(kind model.Kind, res *model.AnalysisResult, start time.Time) {
	elapsed := time.Since(start)
	a.metrics.ObserveAnalysis(string(kind), string(res.Status), elapsed)
	a.logger.Debug("analysis finished",
		logging.Field{Key: "modality", Value: string(kind)},
		logging.Field{Key: "status", Value: string(res.Status)},
		logging.Field{Key: "confidence", Value: res.Confidence},
		logging.Field{Key: "elapsed_ms", Value: elapsed.Milliseconds()})
}
