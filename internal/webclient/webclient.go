// Package webclient performs the outbound requests behind the URL
// reachability probe. Backends are pluggable: a plain net/http client and a
// headless Chrome client for sites that only answer real browsers.
package webclient

import "context"

type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
