package webclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/raysh454/vexora/internal/logging"
)

// Prober answers reachability questions with a single HEAD request. Any HTTP
// response, whatever its status, means the site exists; only transport
// failures are reported. There is no retry.
type Prober struct {
	client WebClient
	logger logging.Logger
}

func NewProber(client WebClient, logger logging.Logger) *Prober {
	return &Prober{
		client: client,
		logger: logger.With(logging.Field{Key: "component", Value: "prober"}),
	}
}

func (p *Prober) Probe(ctx context.Context, url string) error {
	resp, err := p.client.Do(ctx, &Request{Method: http.MethodHead, URL: url})
	if err != nil {
		p.logger.Debug("probe failed",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		return fmt.Errorf("probe %s: %w", url, err)
	}
	p.logger.Debug("probe answered",
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "status", Value: resp.StatusCode})
	return nil
}
