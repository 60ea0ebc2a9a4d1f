// Package mediaprobe reads real metadata from media files: pixel dimensions
// of still images and the duration of MP4/QuickTime videos. Every failure is
// reported as "absent" so the analyzers can fall back to simulated values.
package mediaprobe

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/media"
	"github.com/raysh454/vexora/internal/metrics"
)

// Prober implements interfaces.MediaProber.
type Prober struct {
	logger  logging.Logger
	metrics *metrics.Metrics
}

// New returns a Prober. m may be nil.
func New(logger logging.Logger, m *metrics.Metrics) *Prober {
	return &Prober{
		logger:  logger.With(logging.Field{Key: "component", Value: "mediaprobe"}),
		metrics: m,
	}
}

// ImageDimensions decodes just the image header.
func (p *Prober) ImageDimensions(ctx context.Context, f media.File) (int, int, bool) {
	if ctx.Err() != nil {
		return 0, 0, false
	}
	rc, err := f.Open()
	if err != nil {
		p.fail("image", f, err)
		return 0, 0, false
	}
	defer rc.Close()

	cfg, format, err := image.DecodeConfig(rc)
	if err != nil {
		p.fail("image", f, err)
		return 0, 0, false
	}
	p.logger.Debug("image dimensions probed",
		logging.Field{Key: "file", Value: f.Name()},
		logging.Field{Key: "format", Value: format})
	return cfg.Width, cfg.Height, true
}

// VideoDuration reads the movie header of an ISO base media file.
func (p *Prober) VideoDuration(ctx context.Context, f media.File) (time.Duration, bool) {
	if ctx.Err() != nil {
		return 0, false
	}
	rc, err := f.Open()
	if err != nil {
		p.fail("video", f, err)
		return 0, false
	}
	defer rc.Close()

	d, err := MP4Duration(rc)
	if err != nil {
		p.fail("video", f, err)
		return 0, false
	}
	return d, true
}

func (p *Prober) fail(kind string, f media.File, err error) {
	p.logger.Debug("media probe failed",
		logging.Field{Key: "kind", Value: kind},
		logging.Field{Key: "file", Value: f.Name()},
		logging.Field{Key: "error", Value: err.Error()})
	p.metrics.ProbeFailed(kind)
}
