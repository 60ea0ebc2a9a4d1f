package interfaces

import (
	"context"
	"time"

	"github.com/raysh454/vexora/internal/media"
	"github.com/raysh454/vexora/internal/model"
)

// Analyzer is the contract consumed by the CLI, the HTTP API and batch jobs.
//
// Every method is total: for any input it returns a populated result. Malformed
// input is reported inside the result, and probe failures either count as risk
// signals or degrade to simulated values. The context bounds the network and
// media probes.
type Analyzer interface {
	AnalyzeURL(ctx context.Context, raw string) *model.AnalysisResult
	AnalyzeText(ctx context.Context, text string) *model.AnalysisResult
	AnalyzeImage(ctx context.Context, f media.File) *model.AnalysisResult
	AnalyzeVideo(ctx context.Context, f media.File) *model.AnalysisResult
}

// MediaProber extracts real metadata from files. Both methods report ok=false
// instead of failing.
type MediaProber interface {
	ImageDimensions(ctx context.Context, f media.File) (width, height int, ok bool)
	VideoDuration(ctx context.Context, f media.File) (d time.Duration, ok bool)
}

// HistoryStore persists analysis results, newest first.
type HistoryStore interface {
	Save(ctx context.Context, kind model.Kind, input string, result *model.AnalysisResult) (*model.HistoryItem, error)
	List(ctx context.Context, limit int) ([]*model.HistoryItem, error)
	Get(ctx context.Context, id string) (*model.HistoryItem, error)
	Clear(ctx context.Context) error
	Close() error
}
