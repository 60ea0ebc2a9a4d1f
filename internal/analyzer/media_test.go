package analyzer_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/vexora/internal/analyzer"
	"github.com/raysh454/vexora/internal/detector"
	"github.com/raysh454/vexora/internal/media"
	"github.com/raysh454/vexora/internal/model"
	"github.com/raysh454/vexora/internal/testutil"
)

func severities(res *model.AnalysisResult) []model.Severity {
	out := make([]model.Severity, 0, len(res.RiskFactors))
	for _, f := range res.RiskFactors {
		out = append(out, f.Severity)
	}
	return out
}

func findingLabels(res *model.AnalysisResult) string {
	out := make([]string, 0, len(res.DetailedAnalysis))
	for _, d := range res.DetailedAnalysis {
		out = append(out, d.Label)
	}
	return strings.Join(out, ",")
}

func TestAnalyzeImage_PinnedSimulation(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(t, &testutil.DummyProber{}, nil)

	cases := []struct {
		name     string
		file     *media.Memory
		score    float64
		status   model.Status
		factors  []string
		findings string
		aiScore  string
	}{
		{
			name:     "clean",
			file:     testutil.FakeFile("c.png", 1000, "image/png"),
			score:    0.2073262036778033,
			status:   model.StatusSafe,
			factors:  []string{"No signs of manipulation detected"},
			findings: "Ocular Symmetry",
			aiScore:  "20.7%",
		},
		{
			name:   "generated",
			file:   testutil.FakeFile("a.png", 1000, "image/png"),
			score:  0.8007922387681902,
			status: model.StatusDanger,
			factors: []string{
				"Image shows signs of AI generation or manipulation",
				"Digital artifacts consistent with AI generation",
			},
			findings: "Texture Inconsistency,Edge Sharpness",
			aiScore:  "65.1%",
		},
		{
			name:   "face inconsistency",
			file:   testutil.FakeFile("d.png", 1000, "image/png"),
			score:  0.4855931861326098,
			status: model.StatusWarning,
			factors: []string{
				"Inconsistencies detected in facial features",
				"Digital artifacts consistent with AI generation",
			},
			findings: "Ocular Symmetry",
			aiScore:  "13.6%",
		},
		{
			name:   "renamed jpeg",
			file:   testutil.FakeFile("selfie.png", 204800, "image/jpeg"),
			score:  0.4674936674535275,
			status: model.StatusWarning,
			factors: []string{
				"File extension does not match actual file type",
				"Original EXIF metadata appears to be stripped",
			},
			findings: "",
			aiScore:  "16.7%",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := a.AnalyzeImage(context.Background(), tc.file)
			if res.Status != tc.status {
				t.Fatalf("status = %s, want %s", res.Status, tc.status)
			}
			if want := expectedConfidence(tc.score, 0.55); res.Confidence != want {
				t.Errorf("confidence = %v, want %v", res.Confidence, want)
			}
			var got []string
			for _, f := range res.RiskFactors {
				got = append(got, f.Description)
			}
			if !reflect.DeepEqual(got, tc.factors) {
				t.Errorf("factors = %q, want %q", got, tc.factors)
			}
			if fl := findingLabels(res); fl != tc.findings {
				t.Errorf("findings = %q, want %q", fl, tc.findings)
			}
			if v, _ := res.Meta("aiGenerationScore"); v != tc.aiScore {
				t.Errorf("aiGenerationScore = %q, want %q", v, tc.aiScore)
			}
		})
	}
}

// expectedConfidence mirrors the media classification formulas.
func expectedConfidence(score, danger float64) float64 {
	s := math.Min(score, 1)
	switch {
	case s < 0.3:
		return 100 - float64(s*100)
	case s < danger:
		return 50 + float64(s*50)
	default:
		return math.Min(100, 70+float64(s*33.3))
	}
}

func TestAnalyzeImage_Metadata(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(t, &testutil.DummyProber{}, &testutil.DummyMediaProber{Width: 640, Height: 480})

	res := a.AnalyzeImage(context.Background(), testutil.FakeFile("c.png", 1000, "image/png"))

	want := []model.MetadataItem{
		{Label: "fileName", Value: "c.png"},
		{Label: "fileSize", Value: "1000 B"},
		{Label: "fileType", Value: "image/png"},
		{Label: "lastModified", Value: "3/9/2024"},
		{Label: "Dimensions", Value: "640 x 480"},
		{Label: "faceDetection", Value: "1 face(s)"},
		{Label: "aiGenerationScore", Value: "20.7%"},
		{Label: "noiseAnalysis", Value: "Irregular"},
		{Label: "quantization", Value: "Consistent"},
	}
	if !reflect.DeepEqual(res.Metadata, want) {
		t.Errorf("metadata =\n %+v\nwant\n %+v", res.Metadata, want)
	}
	if res.Title != "Image Appears Authentic" {
		t.Errorf("title = %q", res.Title)
	}
}

func TestAnalyzeImage_NoDimensionsReportsZero(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(t, &testutil.DummyProber{}, &testutil.DummyMediaProber{})

	res := a.AnalyzeImage(context.Background(), testutil.FakeFile("scan.gif", 10, ""))
	if v, _ := res.Meta("Dimensions"); v != "0 x 0" {
		t.Errorf("Dimensions = %q", v)
	}
	if v, _ := res.Meta("fileType"); v != "Unknown" {
		t.Errorf("fileType = %q", v)
	}
	if !hasFactor(res, model.SeverityMedium, "File extension does not match actual file type") {
		t.Errorf("an empty declared type should not match .gif: %+v", res.RiskFactors)
	}
}

func TestAnalyzeImage_Deterministic(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(t, &testutil.DummyProber{}, nil)
	b := newAnalyzer(t, &testutil.DummyProber{}, nil)

	first := a.AnalyzeImage(context.Background(), testutil.FakeFile("portrait.jpg", 88123, "image/jpeg"))
	second := b.AnalyzeImage(context.Background(), testutil.FakeFile("portrait.jpg", 88123, "image/jpeg"))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical files gave different results:\n%+v\n%+v", first, second)
	}
}

type brokenDetector struct{}

var errModelOffline = errors.New("model offline")

func (brokenDetector) DetectImage(context.Context, media.File) (*detector.ImageSignals, error) {
	return nil, errModelOffline
}

func (brokenDetector) DetectVideo(context.Context, media.File, string) (*detector.VideoSignals, error) {
	return nil, errModelOffline
}

func TestAnalyzeMedia_DetectorFailureFallsBackToSimulator(t *testing.T) {
	t.Parallel()
	logger := &testutil.DummyLogger{}
	broken, err := analyzer.NewDefaultAnalyzer(analyzer.Options{
		Prober: &testutil.DummyProber{},
		Images: brokenDetector{},
		Videos: brokenDetector{},
	}, logger)
	if err != nil {
		t.Fatal(err)
	}
	plain := newAnalyzer(t, &testutil.DummyProber{}, nil)

	img := testutil.FakeFile("a.png", 1000, "image/png")
	if got, want := broken.AnalyzeImage(context.Background(), img), plain.AnalyzeImage(context.Background(), img); !reflect.DeepEqual(got, want) {
		t.Errorf("image fallback differs from simulator")
	}
	vid := testutil.FakeFile("c.mp4", 5000, "video/mp4")
	if got, want := broken.AnalyzeVideo(context.Background(), vid), plain.AnalyzeVideo(context.Background(), vid); !reflect.DeepEqual(got, want) {
		t.Errorf("video fallback differs from simulator")
	}
	if logger.WarnCount() != 2 {
		t.Errorf("expected 2 warnings, got %d", logger.WarnCount())
	}
}

func TestAnalyzeVideo_PinnedSimulation(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(t, &testutil.DummyProber{}, nil)

	res := a.AnalyzeVideo(context.Background(), testutil.FakeFile("b.mp4", 5000000, "video/mp4"))
	want := []model.MetadataItem{
		{Label: "fileName", Value: "b.mp4"},
		{Label: "fileSize", Value: "4.8 MB"},
		{Label: "fileType", Value: "video/mp4"},
		{Label: "Duration", Value: "11s"},
		{Label: "Resolution", Value: "1920x1080"},
		{Label: "Frame Rate", Value: "30 fps"},
		{Label: "Codec", Value: "H.264"},
		{Label: "Faces Detected", Value: "No"},
		{Label: "deepfakeScore", Value: "7.9%"},
		{Label: "lipSyncMatch", Value: "75.2%"},
		{Label: "syncOffset", Value: "21ms"},
		{Label: "compressionArtifacts", Value: "High (Lossy)"},
	}
	if !reflect.DeepEqual(res.Metadata, want) {
		t.Errorf("metadata =\n %+v\nwant\n %+v", res.Metadata, want)
	}
	if res.Status != model.StatusSafe || res.Title != "Video Appears Authentic" {
		t.Errorf("got %s %q", res.Status, res.Title)
	}
	if want := expectedConfidence(0.0793281327933073, 0.55); res.Confidence != want {
		t.Errorf("confidence = %v, want %v", res.Confidence, want)
	}
	if !hasFactor(res, model.SeverityLow, "No signs of video manipulation detected") {
		t.Errorf("factors = %+v", res.RiskFactors)
	}
	if len(res.DetailedAnalysis) != 0 {
		t.Errorf("unexpected findings: %+v", res.DetailedAnalysis)
	}
}

func TestAnalyzeVideo_HighDeepfakeScore(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(t, &testutil.DummyProber{}, nil)

	res := a.AnalyzeVideo(context.Background(), testutil.FakeFile("c.mp4", 5000000, "video/mp4"))
	if res.Status != model.StatusDanger || res.Confidence != 100 {
		t.Fatalf("got %s/%v, want danger/100", res.Status, res.Confidence)
	}
	wantSev := []model.Severity{model.SeverityHigh, model.SeverityHigh, model.SeverityMedium, model.SeverityMedium, model.SeverityLow}
	if got := severities(res); !reflect.DeepEqual(got, wantSev) {
		t.Errorf("severities = %v, want %v", got, wantSev)
	}
	if fl := findingLabels(res); fl != "Temporal Glitch,Ocular Artifact,Lip-Sync Lag,Face Boundary Blend" {
		t.Errorf("findings = %q", fl)
	}
	if res.DetailedAnalysis[0].Timestamp != "00:03" {
		t.Errorf("first finding timestamp = %q", res.DetailedAnalysis[0].Timestamp)
	}
	if v, _ := res.Meta("deepfakeScore"); v != "61.1%" {
		t.Errorf("deepfakeScore = %q", v)
	}
}

func TestAnalyzeVideo_ProbedDurationReplacesSimulatedOne(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(t, &testutil.DummyProber{}, &testutil.DummyMediaProber{Duration: 65 * time.Second})

	res := a.AnalyzeVideo(context.Background(), testutil.FakeFile("a.mp4", 5000000, "video/mp4"))
	if v, _ := res.Meta("Duration"); v != "1m 5s" {
		t.Errorf("Duration = %q", v)
	}
	if v, _ := res.Meta("deepfakeScore"); v != "31.5%" {
		t.Errorf("deepfakeScore = %q, the duration draw should be skipped", v)
	}
	if v, _ := res.Meta("Faces Detected"); v != "No" {
		t.Errorf("Faces Detected = %q", v)
	}
	if res.Status != model.StatusDanger {
		t.Errorf("status = %s, want danger", res.Status)
	}
	wantSev := []model.Severity{model.SeverityMedium, model.SeverityMedium, model.SeverityLow}
	if got := severities(res); !reflect.DeepEqual(got, wantSev) {
		t.Errorf("severities = %v, want %v", got, wantSev)
	}
}

func TestAnalyzeVideo_WarningBand(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(t, &testutil.DummyProber{}, nil)

	res := a.AnalyzeVideo(context.Background(), testutil.FakeFile("a.mp4", 5000000, "video/mp4"))
	if res.Status != model.StatusWarning || res.Title != "Potential Video Manipulation" {
		t.Fatalf("got %s %q", res.Status, res.Title)
	}
	if want := expectedConfidence(0.35964888548478485, 0.55); res.Confidence != want {
		t.Errorf("confidence = %v, want %v", res.Confidence, want)
	}
	if v, _ := res.Meta("Duration"); v != "124s" {
		t.Errorf("Duration = %q", v)
	}
}
