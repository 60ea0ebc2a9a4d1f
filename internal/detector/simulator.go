package detector

import (
	"context"
	"math"
	"strconv"

	"github.com/raysh454/vexora/internal/media"
	"github.com/raysh454/vexora/internal/seedrand"
)

// Simulator derives signals from a file's declared name, size and MIME type
// through seedrand. The same declared attributes always yield the same
// signals. Draw order is part of the contract: reordering any draw changes
// every result.
type Simulator struct{}

// NewSimulator returns the deterministic stand-in detector.
func NewSimulator() *Simulator { return &Simulator{} }

// Key is the seed for f: "name-size-mime".
func Key(f media.File) string {
	return f.Name() + "-" + strconv.FormatInt(f.Size(), 10) + "-" + f.MIMEType()
}

func (s *Simulator) DetectImage(_ context.Context, f media.File) (*ImageSignals, error) {
	return SimulateImage(Key(f)), nil
}

func (s *Simulator) DetectVideo(_ context.Context, f media.File, probedDuration string) (*VideoSignals, error) {
	return SimulateVideo(Key(f), probedDuration), nil
}

// SimulateImage draws the image signal vector for key.
func SimulateImage(key string) *ImageSignals {
	rng := seedrand.New(key)
	sig := &ImageSignals{}

	base := rng.Next()
	// explicit conversions keep products from fusing into FMA instructions
	sig.AIGenerationScore = float64(base * 0.4)
	if base > 0.7 {
		sig.AIGenerationScore += 0.3
	}
	sig.FacesDetected = rng.Next() > 0.2
	// the count draw only happens when the gate draw passes
	if rng.Next() > 0.2 {
		sig.FaceCount = int(math.Floor(rng.Next()*3)) + 1
	}
	sig.FaceConsistency = 0.5 + float64(rng.Next()*0.5)
	sig.ArtifactsDetected = rng.Next() > 0.6
	sig.MissingEXIF = rng.Next() > 0.5
	sig.ManipulationProbability = rng.Next() * 0.6
	sig.NoiseAnomaly = rng.Next() > 0.7
	sig.QuantizationMismatch = rng.Next() > 0.8
	return sig
}

// SimulateVideo draws the video signal vector for key. The duration draw is
// skipped when probedDuration is set.
func SimulateVideo(key, probedDuration string) *VideoSignals {
	rng := seedrand.New(key)
	sig := &VideoSignals{Codec: "H.264"}

	if probedDuration != "" {
		sig.Duration = probedDuration
	} else {
		sig.Duration = strconv.Itoa(int(math.Floor(rng.Next()*120))+10) + "s"
	}
	sig.Resolution = "1280x720"
	if rng.Next() > 0.5 {
		sig.Resolution = "1920x1080"
	}
	sig.FrameRate = "24 fps"
	if rng.Next() > 0.5 {
		sig.FrameRate = "30 fps"
	}
	sig.FacesPresent = rng.Next() > 0.2
	sig.DeepfakeScore = float64(rng.Next() * 0.4)
	if rng.Next() > 0.7 {
		sig.DeepfakeScore += 0.35
	}
	sig.LipSyncScore = 0.5 + float64(rng.Next()*0.5)
	sig.FaceConsistency = 0.5 + float64(rng.Next()*0.5)
	sig.BlinkAnomaly = rng.Next() > 0.7
	sig.VoiceArtifacts = rng.Next() > 0.6
	sig.TemporalArtifacts = rng.Next() > 0.65
	sig.SyncOffsetMS = int(math.Floor(rng.Next() * 100))
	sig.CompressionArtifacts = rng.Next() > 0.6
	return sig
}
