package webclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raysh454/vexora/internal/testutil"
	"github.com/raysh454/vexora/internal/webclient"
)

// ─── Do: real HTTP round-trip via httptest ──────────────────────────────

func TestNetHTTPClient_Do_GET_ReturnsBody(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "hello")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "response body")
	}))
	defer ts.Close()

	client, err := webclient.NewNetHTTPClient(webclient.Config{}, &testutil.DummyLogger{}, ts.Client())
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	defer client.Close()

	resp, err := client.Get(context.Background(), ts.URL+"/test")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "response body" {
		t.Errorf("expected 'response body', got %q", resp.Body)
	}
	if resp.Headers.Get("X-Custom") != "hello" {
		t.Errorf("expected X-Custom header 'hello', got %q", resp.Headers.Get("X-Custom"))
	}
}

func TestNetHTTPClient_Do_SendsHeadersAndUserAgent(t *testing.T) {
	t.Parallel()
	var gotUA, gotAuth, gotMethod string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("X-Token")
		gotMethod = r.Method
	}))
	defer ts.Close()

	client, _ := webclient.NewNetHTTPClient(webclient.Config{UserAgent: "test-agent"}, &testutil.DummyLogger{}, ts.Client())
	_, err := client.Do(context.Background(), &webclient.Request{
		Method:  "head",
		URL:     ts.URL,
		Headers: http.Header{"X-Token": []string{"abc"}},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotUA != "test-agent" || gotAuth != "abc" || gotMethod != http.MethodHead {
		t.Errorf("unexpected request: ua=%q token=%q method=%q", gotUA, gotAuth, gotMethod)
	}
}

func TestNetHTTPClient_Do_NilRequest(t *testing.T) {
	t.Parallel()
	client, _ := webclient.NewNetHTTPClient(webclient.Config{}, &testutil.DummyLogger{}, nil)
	if _, err := client.Do(context.Background(), nil); !errors.Is(err, webclient.ErrNilRequest) {
		t.Fatalf("expected ErrNilRequest, got %v", err)
	}
}

func TestNetHTTPClient_Do_ContextCancelled(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	logger := &testutil.DummyLogger{}
	client, _ := webclient.NewNetHTTPClient(webclient.Config{}, logger, ts.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.Get(ctx, ts.URL); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if logger.WarnCount() == 0 {
		t.Error("expected a warning to be logged")
	}
}

// ─── Prober ────────────────────────────────────────────────────────────

func TestProber_AnyStatusIsReachable(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	client, _ := webclient.NewNetHTTPClient(webclient.Config{}, &testutil.DummyLogger{}, ts.Client())
	p := webclient.NewProber(client, &testutil.DummyLogger{})
	if err := p.Probe(context.Background(), ts.URL); err != nil {
		t.Fatalf("403 should still count as reachable: %v", err)
	}
}

func TestProber_TransportFailure(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	client, _ := webclient.NewNetHTTPClient(webclient.Config{Timeout: time.Second}, &testutil.DummyLogger{}, nil)
	p := webclient.NewProber(client, &testutil.DummyLogger{})
	if err := p.Probe(context.Background(), url); err == nil {
		t.Fatal("expected probe of closed server to fail")
	}
}
