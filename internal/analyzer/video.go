package analyzer

import (
	"context"
	"strconv"

	"github.com/raysh454/vexora/internal/assessor"
	"github.com/raysh454/vexora/internal/detector"
	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/media"
	"github.com/raysh454/vexora/internal/model"
	"github.com/raysh454/vexora/internal/utils"
)

var videoWords = verdicts{
	safe:    verdict{"Video Appears Authentic", "Analysis indicates this is likely genuine, unmanipulated video content."},
	warning: verdict{"Potential Video Manipulation", "Some indicators suggest this video may contain synthetic or altered content."},
	danger:  verdict{"⚠️ DEEPFAKE VIDEO DETECTED", "High probability of AI-generated or manipulated video. Do not trust this content!"},
	clean:   "No signs of video manipulation detected",
}

// Frame findings are illustrative; they do not depend on the signal values.
var frameFindings = []model.DetailedAnalysis{
	{Timestamp: "00:03", Label: "Temporal Glitch", Description: "Background flickering detected during high-motion movement.", Confidence: 82},
	{Timestamp: "00:08", Label: "Ocular Artifact", Description: `Subtle "shadow eye" effect during rapid head rotation.`, Confidence: 78},
	{Timestamp: "00:15", Label: "Lip-Sync Lag", Description: "Audio-visual desync exceeds natural threshold (115ms).", Confidence: 89},
	{Timestamp: "00:22", Label: "Face Boundary Blend", Description: "Inconsistent masking observed around the jawline boundary.", Confidence: 94},
}

const (
	lipSyncThreshold      = 0.7
	videoFaceThreshold    = 0.75
	videoFindingThreshold = 0.4
)

func (a *DefaultAnalyzer) analyzeVideo(ctx context.Context, f media.File) *model.AnalysisResult {
	md := fileMetadata(f)

	probed := ""
	if a.media != nil {
		if d, ok := a.media.VideoDuration(ctx, f); ok {
			probed = utils.FormatDuration(d)
		}
	}
	sig := a.videoSignals(ctx, f, probed)

	md = append(md,
		item("Duration", sig.Duration),
		item("Resolution", sig.Resolution),
		item("Frame Rate", sig.FrameRate),
		item("Codec", sig.Codec),
		item("Faces Detected", pick(sig.FacesPresent, "Yes", "No")),
	)

	acc := a.scorer.NewAccumulator()
	acc.Add(sig.DeepfakeScore)
	if sig.DeepfakeScore > gradedFactorThreshold {
		acc.Factor(assessor.RuleVideoDeepfake, graded(sig.DeepfakeScore))
	}
	if sig.LipSyncScore < lipSyncThreshold && sig.FacesPresent {
		acc.Fire(assessor.RuleVideoLipSync)
	}
	if sig.FaceConsistency < videoFaceThreshold && sig.FacesPresent {
		acc.Fire(assessor.RuleVideoFaceInconsistency)
	}
	if sig.BlinkAnomaly && sig.FacesPresent {
		acc.Fire(assessor.RuleVideoBlink)
	}
	if sig.VoiceArtifacts {
		acc.Fire(assessor.RuleVideoVoice)
	}
	if sig.TemporalArtifacts {
		acc.Fire(assessor.RuleVideoTemporal)
	}

	md = append(md,
		item("deepfakeScore", utils.Percent(sig.DeepfakeScore)),
		item("lipSyncMatch", utils.Percent(sig.LipSyncScore)),
		item("syncOffset", strconv.Itoa(sig.SyncOffsetMS)+"ms"),
		item("compressionArtifacts", pick(sig.CompressionArtifacts, "High (Lossy)", "Standard")),
	)

	var details []model.DetailedAnalysis
	if sig.DeepfakeScore > videoFindingThreshold {
		details = append(details, frameFindings...)
	}

	return build(assessor.MediaThresholds, videoWords, acc, md, details)
}

func (a *DefaultAnalyzer) videoSignals(ctx context.Context, f media.File, probed string) *detector.VideoSignals {
	sig, err := a.videos.DetectVideo(ctx, f, probed)
	if err != nil || sig == nil {
		a.logger.Warn("video detector failed, using simulator",
			logging.Field{Key: "file", Value: f.Name()}, logging.Err(err))
		sig, _ = a.sim.DetectVideo(ctx, f, probed)
	}
	return sig
}
