package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()
	m := New()
	m.ObserveAnalysis("url", "danger", 120*time.Millisecond)
	m.ObserveAnalysis("url", "danger", 80*time.Millisecond)
	m.ObserveAnalysis("text", "safe", time.Millisecond)
	m.ProbeFailed("reachability")
	m.PolicyReloaded(nil)
	m.PolicyReloaded(errors.New("bad yaml"))
	m.JobStarted()
	m.JobStarted()
	m.JobFinished()

	if got := testutil.ToFloat64(m.analyses.WithLabelValues("url", "danger")); got != 2 {
		t.Errorf("url/danger = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.probeFailures.WithLabelValues("reachability")); got != 1 {
		t.Errorf("probe failures = %v", got)
	}
	if got := testutil.ToFloat64(m.policyReloads.WithLabelValues("error")); got != 1 {
		t.Errorf("reload errors = %v", got)
	}
	if got := testutil.ToFloat64(m.batchJobs); got != 1 {
		t.Errorf("active jobs = %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.ObserveAnalysis("url", "safe", time.Second)
	m.ProbeFailed("image")
	m.PolicyReloaded(nil)
	m.JobStarted()
	m.JobFinished()
	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()
	m := New()
	m.ObserveAnalysis("image", "warning", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `vexora_analyses_total{modality="image",status="warning"} 1`) {
		t.Errorf("exposition missing analyses counter:\n%s", body)
	}
}
