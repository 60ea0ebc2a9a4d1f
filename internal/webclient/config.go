package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

// DefaultUserAgent identifies probe traffic.
const DefaultUserAgent = "vexora-probe/1.0"

// Config is the minimal configuration required for constructing a WebClient.
// app.Config carries one and passes it down, so this package never imports app.
type Config struct {
	Client    Client
	Timeout   time.Duration
	UserAgent string

	// Headless only applies to the chromedp backend. Nil means headless.
	Headless *bool
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 10 * time.Second
	}
	return c.Timeout
}

func (c Config) userAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}
