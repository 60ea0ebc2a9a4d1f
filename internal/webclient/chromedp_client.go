package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/vexora/internal/logging"
)

// ChromeDPClient drives a shared headless Chrome. Each request gets its own
// tab; the status and headers come from the main document's network response.
type ChromeDPClient struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	logger      logging.Logger
}

func NewChromeDPClient(cfg Config, logger logging.Logger, opts ...chromedp.ExecAllocatorOption) (*ChromeDPClient, error) {
	all := append(append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...), opts...)
	all = append(all, chromedp.UserAgent(cfg.userAgent()))
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), all...)

	l := logger.With(logging.Field{Key: "backend", Value: "chromedp"})
	l.Debug("created chromedp webclient", logging.Field{Key: "timeout", Value: cfg.timeout().String()})

	return &ChromeDPClient{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		timeout:     cfg.timeout(),
		logger:      l,
	}, nil
}

// documentResponse captures the first document response seen in a tab.
type documentResponse struct {
	mu      sync.Mutex
	status  int
	headers http.Header
}

func (d *documentResponse) listen(ctx context.Context) {
	chromedp.ListenTarget(ctx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Type != network.ResourceTypeDocument || e.Response == nil {
			return
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.status != 0 {
			return
		}
		d.status = int(e.Response.Status)
		d.headers = http.Header{}
		for k, v := range e.Response.Headers {
			d.headers.Set(k, fmt.Sprint(v))
		}
	})
}

func (d *documentResponse) snapshot() (int, http.Header) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status, d.headers
}

// Do navigates to req.URL. Only GET and HEAD are meaningful for a browser;
// HEAD skips reading the rendered document.
func (cdc *ChromeDPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	method := strings.ToUpper(req.Method)
	if method != "" && method != http.MethodGet && method != http.MethodHead {
		return nil, fmt.Errorf("chromedp: unsupported method %s", method)
	}

	tabCtx, cancel := chromedp.NewContext(cdc.allocCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, cdc.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var doc documentResponse
	doc.listen(tabCtx)

	actions := []chromedp.Action{network.Enable(), chromedp.Navigate(req.URL)}
	var html string
	if method != http.MethodHead {
		actions = append(actions, chromedp.OuterHTML("html", &html))
	}
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		cdc.logger.Warn("chromedp navigation failed",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("chromedp navigate: %w", err)
	}

	status, headers := doc.snapshot()
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{
		Request:    req,
		Headers:    headers,
		Body:       []byte(html),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

// Get is a convenience method for simple GET requests
func (cdc *ChromeDPClient) Get(ctx context.Context, url string) (*Response, error) {
	return cdc.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

// Close shuts down the browser.
func (cdc *ChromeDPClient) Close() error {
	cdc.allocCancel()
	return nil
}
