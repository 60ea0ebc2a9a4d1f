package webclient

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/chromedp/chromedp"

	"github.com/raysh454/vexora/internal/logging"
)

var registerOnce sync.Once

// RegisterDefaultBackends registers the default nethttp and chromedp backends.
// Call this early in main() to make backends available to NewWebClient. It is
// safe to call more than once.
func RegisterDefaultBackends() {
	registerOnce.Do(func() {
		RegisterBackend(string(ClientNetHTTP), func(cfg Config, logger logging.Logger) (WebClient, error) {
			client := &http.Client{Timeout: cfg.timeout()}
			return NewNetHTTPClient(cfg, logger, client)
		})

		RegisterBackend(string(ClientChromedp), func(cfg Config, logger logging.Logger) (WebClient, error) {
			var opts []chromedp.ExecAllocatorOption
			if cfg.Headless != nil && !*cfg.Headless {
				// If headless is explicitly false, add option to show browser
				opts = append(opts, chromedp.Flag("headless", false))
			}
			client, err := NewChromeDPClient(cfg, logger, opts...)
			if err != nil {
				return nil, fmt.Errorf("create chromedp client: %w", err)
			}
			return client, nil
		})
	})
}
