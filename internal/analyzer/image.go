package analyzer

import (
	"context"
	"strconv"
	"strings"

	"github.com/raysh454/vexora/internal/assessor"
	"github.com/raysh454/vexora/internal/detector"
	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/media"
	"github.com/raysh454/vexora/internal/model"
	"github.com/raysh454/vexora/internal/policy"
	"github.com/raysh454/vexora/internal/utils"
)

var imageWords = verdicts{
	safe:    verdict{"Image Appears Authentic", "Analysis indicates this is likely an unmanipulated image."},
	warning: verdict{"Potential Manipulation Detected", "Some indicators suggest this image may have been edited or generated."},
	danger:  verdict{"⚠️ DEEPFAKE DETECTED", "High probability of AI-generated or manipulated content. Exercise extreme caution!"},
	clean:   "No signs of manipulation detected",
}

var (
	textureFinding = model.DetailedAnalysis{Label: "Texture Inconsistency", Description: "Local variance in noise patterns detected in top-left quadrant.", Confidence: 84}
	edgeFinding    = model.DetailedAnalysis{Label: "Edge Sharpness", Description: "Unnatural sharpness on subject boundaries suggests layer masking.", Confidence: 76}
	ocularFinding  = model.DetailedAnalysis{Label: "Ocular Symmetry", Description: "Iris patterns show slight geometric misalignment between eyes.", Confidence: 91}
)

const (
	gradedFactorThreshold = 0.3
	gradedHighThreshold   = 0.6
	imageFindingThreshold = 0.4
	imageFaceThreshold    = 0.7
	ocularThreshold       = 0.8
)

func (a *DefaultAnalyzer) analyzeImage(ctx context.Context, pol *policy.Policy, f media.File) *model.AnalysisResult {
	md := fileMetadata(f)
	md = append(md, item("lastModified", utils.FormatDate(f.LastModified())))

	width, height := 0, 0
	if a.media != nil {
		if w, h, ok := a.media.ImageDimensions(ctx, f); ok {
			width, height = w, h
		}
	}
	md = append(md, item("Dimensions", strconv.Itoa(width)+" x "+strconv.Itoa(height)))

	acc := a.scorer.NewAccumulator()

	if want, ok := pol.ExpectedMIME(extension(f.Name())); ok && f.MIMEType() != want {
		acc.Fire(assessor.RuleImageExtensionMismatch)
	}

	sig := a.imageSignals(ctx, f)

	faces := "N/A"
	if sig.FacesDetected {
		faces = strconv.Itoa(sig.FaceCount) + " face(s)"
	}
	md = append(md,
		item("faceDetection", faces),
		item("aiGenerationScore", utils.Percent(sig.AIGenerationScore)),
		item("noiseAnalysis", pick(sig.NoiseAnomaly, "Irregular", "Natural")),
		item("quantization", pick(sig.QuantizationMismatch, "Mismatch Detected", "Consistent")),
	)

	acc.Add(sig.AIGenerationScore)
	if sig.AIGenerationScore > gradedFactorThreshold {
		acc.Factor(assessor.RuleImageAIGenerated, graded(sig.AIGenerationScore))
	}
	if sig.FacesDetected && sig.FaceConsistency < imageFaceThreshold {
		acc.Fire(assessor.RuleImageFaceInconsistency)
	}
	if sig.ArtifactsDetected {
		acc.Fire(assessor.RuleImageArtifacts)
	}
	if sig.MissingEXIF {
		acc.Fire(assessor.RuleImageMissingEXIF)
	}

	var details []model.DetailedAnalysis
	if sig.AIGenerationScore > imageFindingThreshold {
		details = append(details, textureFinding, edgeFinding)
	}
	if sig.FacesDetected && sig.FaceConsistency < ocularThreshold {
		details = append(details, ocularFinding)
	}

	return build(assessor.MediaThresholds, imageWords, acc, md, details)
}

func (a *DefaultAnalyzer) imageSignals(ctx context.Context, f media.File) *detector.ImageSignals {
	sig, err := a.images.DetectImage(ctx, f)
	if err != nil || sig == nil {
		a.logger.Warn("image detector failed, using simulator",
			logging.Field{Key: "file", Value: f.Name()}, logging.Err(err))
		sig, _ = a.sim.DetectImage(ctx, f)
	}
	return sig
}

// fileMetadata is the leading block shared by image and video results.
func fileMetadata(f media.File) []model.MetadataItem {
	mime := f.MIMEType()
	if mime == "" {
		mime = "Unknown"
	}
	return []model.MetadataItem{
		item("fileName", f.Name()),
		item("fileSize", utils.FormatFileSize(f.Size())),
		item("fileType", mime),
	}
}

// extension is the text after the last dot, or the whole name without one.
func extension(name string) string {
	return strings.ToLower(name[strings.LastIndex(name, ".")+1:])
}

// graded picks the severity of a score-valued factor.
func graded(score float64) model.Severity {
	if score > gradedHighThreshold {
		return model.SeverityHigh
	}
	return model.SeverityMedium
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
