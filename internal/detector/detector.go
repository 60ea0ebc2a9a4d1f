// Package detector defines the perceptual signal contract for image and video
// analysis. The analyzers only read ImageSignals and VideoSignals, so a real
// inference backend can replace the Simulator without touching the rules.
package detector

import (
	"context"

	"github.com/raysh454/vexora/internal/media"
)

// ImageSignals is the signal vector for a still image.
type ImageSignals struct {
	AIGenerationScore       float64 `json:"aiGenerationScore"`
	FacesDetected           bool    `json:"facesDetected"`
	FaceCount               int     `json:"faceCount"`
	FaceConsistency         float64 `json:"faceConsistency"`
	ArtifactsDetected       bool    `json:"artifactsDetected"`
	MissingEXIF             bool    `json:"missingExif"`
	ManipulationProbability float64 `json:"manipulationProbability"`
	NoiseAnomaly            bool    `json:"noiseAnomaly"`
	QuantizationMismatch    bool    `json:"quantizationMismatch"`
}

// VideoSignals is the signal vector for a video.
type VideoSignals struct {
	Duration             string  `json:"duration"`
	Resolution           string  `json:"resolution"`
	FrameRate            string  `json:"frameRate"`
	Codec                string  `json:"codec"`
	FacesPresent         bool    `json:"facesPresent"`
	DeepfakeScore        float64 `json:"deepfakeScore"`
	LipSyncScore         float64 `json:"lipSyncScore"`
	FaceConsistency      float64 `json:"faceConsistency"`
	BlinkAnomaly         bool    `json:"blinkAnomaly"`
	VoiceArtifacts       bool    `json:"voiceArtifacts"`
	TemporalArtifacts    bool    `json:"temporalArtifacts"`
	SyncOffsetMS         int     `json:"syncOffsetMs"`
	CompressionArtifacts bool    `json:"compressionArtifacts"`
}

// ImageDetector produces image signals.
type ImageDetector interface {
	DetectImage(ctx context.Context, f media.File) (*ImageSignals, error)
}

// VideoDetector produces video signals. probedDuration is the formatted
// duration from real metadata, or "" when probing found none.
type VideoDetector interface {
	DetectVideo(ctx context.Context, f media.File, probedDuration string) (*VideoSignals, error)
}
