package interfaces

import "context"

// Prober checks whether a URL answers at all. Any HTTP response, whatever its
// status, means reachable; a nil error is success.
type Prober interface {
	Probe(ctx context.Context, url string) error
}
