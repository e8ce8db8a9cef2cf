package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmrzaf/empgen/internal/domain"
)

func TestMetricsCountersAndHandler(t *testing.T) {
	m := New()
	m.ObserveGenerated(5)
	m.ObserveGenerated(0)
	m.ObserveExport(domain.ExportStatusSuccess, 20*time.Millisecond)
	m.ObserveExport(domain.ExportStatusFailed, time.Millisecond)
	m.ObserveExport(domain.ExportStatusSuccess, time.Millisecond)

	if got := testutil.ToFloat64(m.recordsGenerated); got != 5 {
		t.Fatalf("expected 5 generated, got %v", got)
	}
	if got := testutil.ToFloat64(m.exports.WithLabelValues("success")); got != 2 {
		t.Fatalf("expected 2 successful exports, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `empgen_exports_total{status="failed"} 1`) {
		t.Fatalf("metrics output missing failed export counter:\n%s", body)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveGenerated(1)
	m.ObserveExport(domain.ExportStatusSuccess, time.Second)
}
